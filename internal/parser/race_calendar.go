package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RaceRow is one grand prix of a season calendar.
type RaceRow struct {
	Link  string // empty for races without a result page yet
	Track string
	Laps  int
}

// RaceCalendar parses a season page listing every grand prix.
type RaceCalendar struct {
	doc *goquery.Document
}

// NewRaceCalendar parses html.
func NewRaceCalendar(html string) (*RaceCalendar, error) {
	doc, err := load("RaceCalendar", html)
	if err != nil {
		return nil, err
	}
	return &RaceCalendar{doc: doc}, nil
}

func (p *RaceCalendar) rows(accessor string) ([][]string, *goquery.Selection, error) {
	table := p.doc.Find(resultTable).First()
	if table.Length() == 0 {
		return nil, nil, malformed("RaceCalendar", accessor, resultTable)
	}
	trs := table.Find(dataRows)
	cells := make([][]string, trs.Length())
	trs.Each(func(i int, tr *goquery.Selection) {
		cells[i] = cellTexts(tr)
	})
	return cells, trs, nil
}

// Links returns the race result hrefs. Races not yet run have no link and are skipped.
func (p *RaceCalendar) Links() ([]string, error) {
	_, trs, err := p.rows("Links")
	if err != nil {
		return nil, err
	}
	var links []string
	trs.Each(func(_ int, tr *goquery.Selection) {
		if href, ok := tr.Find("td").Eq(2).Find("a[href]").Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links, nil
}

// Tracks returns the circuit names.
func (p *RaceCalendar) Tracks() ([]string, error) {
	rows, _, err := p.rows("Tracks")
	if err != nil {
		return nil, err
	}
	tracks := make([]string, 0, len(rows))
	for _, cells := range rows {
		if len(cells) > 3 {
			tracks = append(tracks, cells[3])
		}
	}
	return tracks, nil
}

// Laps returns the scheduled lap counts. A '*' footnote marker is dropped.
func (p *RaceCalendar) Laps() ([]int, error) {
	rows, _, err := p.rows("Laps")
	if err != nil {
		return nil, err
	}
	laps := make([]int, 0, len(rows))
	for _, cells := range rows {
		if len(cells) > 5 {
			laps = append(laps, atoi(strings.ReplaceAll(cells[5], "*", "")))
		}
	}
	return laps, nil
}

// Races returns one row per calendar line, keeping links aligned with tracks.
func (p *RaceCalendar) Races() ([]RaceRow, error) {
	rows, trs, err := p.rows("Races")
	if err != nil {
		return nil, err
	}
	races := make([]RaceRow, 0, len(rows))
	for i, cells := range rows {
		if len(cells) <= 5 {
			continue
		}
		href, _ := trs.Eq(i).Find("td").Eq(2).Find("a[href]").Attr("href")
		races = append(races, RaceRow{
			Link:  href,
			Track: cells[3],
			Laps:  atoi(strings.ReplaceAll(cells[5], "*", "")),
		})
	}
	return races, nil
}
