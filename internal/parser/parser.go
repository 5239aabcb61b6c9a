// Package parser turns f1news.ru and proxy catalog pages into typed rows.
//
// Every parser is built from the raw HTML with NewX and exposes accessors that
// locate one structural marker each. A missing marker is reported as
// *errs.MalformedPageError naming the parser, the accessor and the marker.
package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"f1stats/internal/shared/errs"
)

const (
	resultTable = "table.f1Table"
	dataRows    = "tr.lineOne, tr.lineTwo"
	headerRow   = "tr.firstLine"
)

func load(parser, html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrapf(err, "%s: parse html", parser)
	}
	return doc, nil
}

// cellTexts returns the trimmed text of every td in row.
func cellTexts(row *goquery.Selection) []string {
	cells := row.Find("td")
	out := make([]string, cells.Length())
	cells.Each(func(i int, td *goquery.Selection) {
		out[i] = clean(td.Text())
	})
	return out
}

// clean trims and turns non-breaking spaces into plain ones.
func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}

// splitNumbered splits "1. 7. Райкконен" into its non-empty dot-separated parts.
func splitNumbered(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ".") {
		p = strings.TrimSpace(strings.ReplaceAll(p, "*", ""))
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// atoi parses s, returning 0 for anything that is not a number.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// parsePoints accepts both "12.5" and "12,5".
func parsePoints(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}

func malformed(parser, accessor, marker string) error {
	return errs.Malformed(parser, accessor, marker)
}
