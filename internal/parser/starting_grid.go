package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GridRow is one starting position.
type GridRow struct {
	Position int // 0 when the cell carries no position
	Driver   string
	Time     string // normalized qualifying time, empty if none
}

var (
	gridDriverWithPos = regexp.MustCompile(`^\d{1,2}\.\s*?[а-яА-Я.\s\-]{2,}$`)
	gridDriver        = regexp.MustCompile(`^[а-яА-Я.\s\-]{2,}$`)
	gridExtraSpaces   = regexp.MustCompile(`\s{2,}`)
	gridPosition      = regexp.MustCompile(`(?m)^(\d{1,2})\.?`)
	gridTime          = regexp.MustCompile(`(\d+:\d+\.\d+)`)

	// bold cells that look like names but are not drivers
	gridNotDrivers = map[string]bool{"без времени": true, "старт с пит-лейн": true}
)

// StartingGrid parses the grid page, a free-form table of bold driver names.
type StartingGrid struct {
	doc *goquery.Document
}

// NewStartingGrid parses html.
func NewStartingGrid(html string) (*StartingGrid, error) {
	doc, err := load("StartingGrid", html)
	if err != nil {
		return nil, err
	}
	return &StartingGrid{doc: doc}, nil
}

// Positions returns grid entries in table order.
func (p *StartingGrid) Positions() ([]GridRow, error) {
	table := p.doc.Find("div#content table").First()
	if table.Length() == 0 {
		return nil, malformed("StartingGrid", "Positions", "div#content table")
	}

	var rows []GridRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			text := clean(td.Text())
			if text == "" {
				return
			}
			bold := td.Find("b")
			if bold.Length() == 0 {
				return
			}

			var driver string
			bold.EachWithBreak(func(_ int, b *goquery.Selection) bool {
				driver = gridDriverName(b.Text())
				return driver == ""
			})
			if driver == "" {
				return
			}

			row := GridRow{Driver: driver}
			if m := gridPosition.FindStringSubmatch(text); m != nil {
				row.Position = atoi(m[1])
			}
			if m := gridTime.FindStringSubmatch(text); m != nil {
				row.Time, _ = NormalizeTime(m[1])
			}
			rows = append(rows, row)
		})
	})
	return rows, nil
}

// gridDriverName extracts a surname from "3. Льюис Хэмилтон" or "Льюис Хэмилтон".
func gridDriverName(raw string) string {
	text := clean(raw)
	switch {
	case gridDriverWithPos.MatchString(text):
		var info []string
		for _, c := range strings.Split(text, ".") {
			if c = strings.Trim(strings.TrimSpace(c), "."); c != "" {
				info = append(info, c)
			}
		}
		if len(info) < 2 {
			return ""
		}
		return lastWord(info[1])
	case gridDriver.MatchString(text):
		collapsed := strings.ToLower(strings.TrimSpace(gridExtraSpaces.ReplaceAllString(text, " ")))
		if gridNotDrivers[collapsed] {
			return ""
		}
		return lastWord(text)
	}
	return ""
}

func lastWord(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return TrimDriverSuffix(words[len(words)-1])
}
