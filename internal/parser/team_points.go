package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// TeamPointsRow is one line of the constructors' championship table.
type TeamPointsRow struct {
	Position int
	Team     string
	Points   float64
}

// TeamPoints parses the constructors' standings page.
type TeamPoints struct {
	doc *goquery.Document
}

// NewTeamPoints parses html.
func NewTeamPoints(html string) (*TeamPoints, error) {
	doc, err := load("TeamPoints", html)
	if err != nil {
		return nil, err
	}
	return &TeamPoints{doc: doc}, nil
}

// Points returns the standings. A first cell without "pos." gets its row number.
func (p *TeamPoints) Points() ([]TeamPointsRow, error) {
	table := p.doc.Find(resultTable).First()
	if table.Length() == 0 {
		return nil, malformed("TeamPoints", "Points", resultTable)
	}

	var rows []TeamPointsRow
	table.Find(dataRows).Each(func(i int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) == 0 {
			return
		}
		row := TeamPointsRow{Points: parsePoints(cells[len(cells)-1])}

		parts := splitNumbered(cells[0])
		if len(parts) == 2 && atoi(parts[0]) > 0 {
			row.Position, row.Team = atoi(parts[0]), parts[1]
		} else {
			row.Position, row.Team = i+1, cells[0]
		}
		rows = append(rows, row)
	})
	return rows, nil
}
