package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TestingRow is one driver line of a testing day table.
type TestingRow struct {
	Position int
	Driver   string
	Team     string
	Time     string // empty when no time was set
	Laps     int
	Tyres    string
}

// testing table columns, matched against the lowercased header cells
var testingColumns = struct {
	driver, team, time, laps, tyres []string
}{
	driver: []string{"пилот", "гонщик"},
	team:   []string{"команда"},
	time:   []string{"время"},
	laps:   []string{"круги"},
	tyres:  []string{"шины"},
}

var startsWithDigit = regexp.MustCompile(`^\d`)

// Testing parses a testing report page: one results table per day.
type Testing struct {
	doc *goquery.Document
}

// NewTesting parses html.
func NewTesting(html string) (*Testing, error) {
	doc, err := load("Testing", html)
	if err != nil {
		return nil, err
	}
	return &Testing{doc: doc}, nil
}

// Dates returns the day headings ("28 февраля") in page order.
func (p *Testing) Dates() []string {
	var dates []string
	p.doc.Find("h3").Each(func(_ int, s *goquery.Selection) {
		text := clean(s.Text())
		if startsWithDigit.MatchString(text) {
			dates = append(dates, text)
		}
	})
	return dates
}

// Track returns the last dot-separated part of the page title.
func (p *Testing) Track() (string, error) {
	h1 := p.doc.Find("h1").First()
	if h1.Length() == 0 {
		return "", malformed("Testing", "Track", "h1")
	}
	parts := strings.Split(h1.Text(), ".")
	return clean(parts[len(parts)-1]), nil
}

// Results returns one slice of rows per results table, in page order.
// "+delta" times are resolved against the first row of their table.
func (p *Testing) Results() ([][]TestingRow, error) {
	tables := p.doc.Find(resultTable)
	if tables.Length() == 0 {
		return nil, malformed("Testing", "Results", resultTable)
	}

	var results [][]TestingRow
	var err error
	tables.EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var rows []TestingRow
		rows, err = parseTestingTable(table)
		if err != nil {
			return false
		}
		results = append(results, rows)
		return true
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

type columnMap struct {
	driver, team, time, laps, tyres int
}

func mapColumns(headers []string) columnMap {
	find := func(names []string) int {
		for i, h := range headers {
			h = strings.ToLower(h)
			for _, n := range names {
				if h == n {
					return i
				}
			}
		}
		return -1
	}
	return columnMap{
		driver: find(testingColumns.driver),
		team:   find(testingColumns.team),
		time:   find(testingColumns.time),
		laps:   find(testingColumns.laps),
		tyres:  find(testingColumns.tyres),
	}
}

func parseTestingTable(table *goquery.Selection) ([]TestingRow, error) {
	header := table.Find(headerRow).First()
	if header.Length() == 0 {
		return nil, malformed("Testing", "Results", headerRow)
	}
	cols := mapColumns(cellTexts(header))
	if cols.driver < 0 {
		return nil, malformed("Testing", "Results", "пилот|гонщик column")
	}
	if cols.time < 0 {
		return nil, malformed("Testing", "Results", "время column")
	}

	cell := func(cells []string, i int) string {
		if i < 0 || i >= len(cells) {
			return ""
		}
		return cells[i]
	}

	var rows []TestingRow
	var deltas []int
	best := ""
	table.Find(dataRows).Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)

		var row TestingRow
		parts := splitNumbered(cell(cells, cols.driver))
		switch len(parts) {
		case 0:
		case 1:
			row.Driver = parts[0]
		default:
			row.Position = atoi(parts[0])
			row.Driver = parts[len(parts)-1]
		}
		row.Driver = TrimDriverSuffix(row.Driver)
		row.Team = cell(cells, cols.team)
		rawTime := cell(cells, cols.time)
		row.Time, _ = NormalizeTime(rawTime)
		row.Laps = atoi(cell(cells, cols.laps))
		row.Tyres = cell(cells, cols.tyres)

		switch {
		case row.Time == "":
		case strings.HasPrefix(rawTime, "+"):
			deltas = append(deltas, len(rows))
		case best == "":
			best = row.Time
		}
		rows = append(rows, row)
	})

	// deltas count from the first row with an absolute time
	for _, i := range deltas {
		if best == "" {
			return nil, malformed("Testing", "Results", "best lap time")
		}
		abs, err := ResolveDelta(best, rows[i].Time)
		if err != nil {
			return nil, malformed("Testing", "Results", fmt.Sprintf("lap time in row %d", i+1))
		}
		rows[i].Time = abs
	}
	return rows, nil
}
