package parser

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// Race result entry status.
const (
	StatusClassified   = ""
	StatusDisqualified = "DSQ"
	StatusRetired      = "DNF"
)

// RaceResultRow is one entrant of a race classification.
type RaceResultRow struct {
	Position  int // 0 for retirements
	Driver    string
	Team      string
	Speed     string
	Status    string
	RetireLap int
}

// DriverPointsRow is one line of the points table under a race result.
type DriverPointsRow struct {
	Position int
	Driver   string
	Points   float64
}

// RaceResult parses a race page: classification, retirements and points tables.
type RaceResult struct {
	doc    *goquery.Document
	tables *goquery.Selection
}

// NewRaceResult parses html.
func NewRaceResult(html string) (*RaceResult, error) {
	doc, err := load("RaceResult", html)
	if err != nil {
		return nil, err
	}
	return &RaceResult{doc: doc, tables: doc.Find(resultTable)}, nil
}

func (p *RaceResult) table(accessor string, i int) (*goquery.Selection, error) {
	if p.tables.Length() <= i {
		return nil, malformed("RaceResult", accessor, resultTable+"["+strconv.Itoa(i)+"]")
	}
	return p.tables.Eq(i), nil
}

// Results returns classified finishers, then disqualified entrants renumbered
// after the last finisher, then retirements in reverse page order (last to stop first).
func (p *RaceResult) Results() ([]RaceResultRow, error) {
	finished, err := p.table("Results", 0)
	if err != nil {
		return nil, err
	}
	retired, err := p.table("Results", 1)
	if err != nil {
		return nil, err
	}

	var rows []RaceResultRow
	finished.Find(dataRows).Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) < 4 {
			return
		}
		parts := splitNumbered(cells[0])
		if len(parts) == 0 {
			return
		}
		row := RaceResultRow{
			Driver: TrimDriverSuffix(parts[len(parts)-1]),
			Team:   cells[1],
			Speed:  cells[3],
		}
		if IsDisqualified(parts[0]) {
			row.Status = StatusDisqualified
		} else {
			row.Position = atoi(parts[0])
		}
		rows = append(rows, row)
	})

	var dnf []RaceResultRow
	retired.Find(dataRows).Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) < 2 {
			return
		}
		parts := splitNumbered(cells[0])
		if len(parts) == 0 {
			return
		}
		row := RaceResultRow{
			Driver: TrimDriverSuffix(parts[len(parts)-1]),
			Team:   cells[1],
			Status: StatusRetired,
		}
		if len(cells) > 2 {
			row.RetireLap = atoi(cells[2])
		}
		dnf = append(dnf, row)
	})
	for i := len(dnf) - 1; i >= 0; i-- {
		rows = append(rows, dnf[i])
	}

	return Resequence(rows), nil
}

// Weather returns the conditions line under the race title.
func (p *RaceResult) Weather() (string, error) {
	s := p.doc.Find("span.subInfo").First()
	if s.Length() == 0 {
		return "", malformed("RaceResult", "Weather", "span.subInfo")
	}
	return clean(s.Text()), nil
}

// Points returns the drivers' points table.
func (p *RaceResult) Points() ([]DriverPointsRow, error) {
	table, err := p.table("Points", 2)
	if err != nil {
		return nil, err
	}

	var rows []DriverPointsRow
	table.Find(dataRows).Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) < 2 {
			return
		}
		parts := splitNumbered(cells[1])
		if len(parts) == 0 {
			return
		}
		rows = append(rows, DriverPointsRow{
			Position: atoi(parts[0]),
			Driver:   TrimDriverSuffix(parts[len(parts)-1]),
			Points:   parsePoints(cells[len(cells)-1]),
		})
	})
	return rows, nil
}
