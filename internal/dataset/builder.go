// Package dataset assembles CSV-ready records from parsed pages.
package dataset

import (
	"context"
	"errors"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"f1stats/internal/parser"
	"f1stats/internal/shared/errs"
	"f1stats/internal/shared/logger"
)

// Source returns page text by site and uri. *pipeline.Pipeline implements it.
type Source interface {
	ScrapeData(ctx context.Context, site, uri string, params, headers map[string]string) (string, error)
}

// TestingRecord is one driver-day of pre-season testing.
type TestingRecord struct {
	Position int      `csv:"position"`
	Team     string   `csv:"team"`
	Time     string   `csv:"time"`
	Laps     int      `csv:"laps"`
	Tyres    string   `csv:"tyres"`
	Day      int      `csv:"day"`
	Year     int      `csv:"year"`
	Strength *float64 `csv:"strength,omitempty"`
}

// TeamPointsRecord is one constructor's final standing.
type TeamPointsRecord struct {
	Position int     `csv:"position"`
	Team     string  `csv:"team"`
	Points   float64 `csv:"points"`
	Year     int     `csv:"year"`
}

// RaceRecord is one calendar entry.
type RaceRecord struct {
	Round int    `csv:"round"`
	Track string `csv:"track"`
	Laps  int    `csv:"laps"`
	Link  string `csv:"link"`
	Year  int    `csv:"year"`
}

// Builder turns the reference URI tables into records for one site.
type Builder struct {
	source Source
	site   string
	log    zerolog.Logger
}

// NewBuilder reads pages of site from source.
func NewBuilder(source Source, site string) *Builder {
	if site == "" {
		site = Site
	}
	return &Builder{source: source, site: site, log: logger.WithComponent("Dataset")}
}

// skippable reports whether a page failure should drop that page and continue.
func skippable(err error) bool {
	var me *errs.MalformedPageError
	var pe *errs.ProxyScraperError
	return errors.As(err, &me) || errors.As(err, &pe) ||
		errors.Is(err, errs.ErrProxyUnavailable) || errs.IsHTTPError(err)
}

// Testing returns every driver-day of the year's testing. Days are numbered
// from 1 in chronological order; pages list the newest day first. When the
// year has a standings table, records carry the min-max scaled team points as
// Strength and teams without standings are dropped.
func (b *Builder) Testing(ctx context.Context, year int) ([]TestingRecord, error) {
	uris, ok := TestingURIs[b.site][year]
	if !ok {
		return nil, errs.NewConfigurationError("year", "no testing pages for this year")
	}

	var records []TestingRecord
	day := 1
	for _, uri := range uris {
		tables, err := b.testingPage(ctx, uri)
		if err != nil {
			if skippable(err) {
				b.log.Warn().Err(err).Str("uri", uri).Msg("Skipping testing page.")
				continue
			}
			return nil, err
		}
		for i := len(tables) - 1; i >= 0; i-- {
			for _, row := range parser.MergeSharedLaps(tables[i]) {
				records = append(records, TestingRecord{
					Position: row.Position,
					Team:     row.Team,
					Time:     row.Time,
					Laps:     row.Laps,
					Tyres:    row.Tyres,
					Day:      day,
					Year:     year,
				})
			}
			day++
		}
	}

	if _, ok := TeamPointsURIs[b.site][year]; !ok {
		return records, nil
	}
	points, err := b.TeamPoints(ctx, year)
	if err != nil {
		if skippable(err) {
			b.log.Warn().Err(err).Int("year", year).Msg("No team strength available.")
			return records, nil
		}
		return nil, err
	}
	return withStrength(records, points), nil
}

func (b *Builder) testingPage(ctx context.Context, uri string) ([][]parser.TestingRow, error) {
	html, err := b.source.ScrapeData(ctx, b.site, uri, nil, nil)
	if err != nil {
		return nil, err
	}
	p, err := parser.NewTesting(html)
	if err != nil {
		return nil, err
	}
	return p.Results()
}

// TeamPoints returns the year's constructors' standings.
func (b *Builder) TeamPoints(ctx context.Context, year int) ([]TeamPointsRecord, error) {
	uri, ok := TeamPointsURIs[b.site][year]
	if !ok {
		return nil, errs.NewConfigurationError("year", "no team points page for this year")
	}
	html, err := b.source.ScrapeData(ctx, b.site, uri, nil, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "team points %d", year)
	}
	p, err := parser.NewTeamPoints(html)
	if err != nil {
		return nil, err
	}
	rows, err := p.Points()
	if err != nil {
		return nil, err
	}

	out := make([]TeamPointsRecord, len(rows))
	for i, r := range rows {
		out[i] = TeamPointsRecord{Position: r.Position, Team: r.Team, Points: r.Points, Year: year}
	}
	return out, nil
}

// RaceCalendar returns the year's grands prix in calendar order.
func (b *Builder) RaceCalendar(ctx context.Context, year int) ([]RaceRecord, error) {
	uri, ok := RaceCatalogURIs[b.site][year]
	if !ok {
		return nil, errs.NewConfigurationError("year", "no race calendar page for this year")
	}
	html, err := b.source.ScrapeData(ctx, b.site, uri, nil, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "race calendar %d", year)
	}
	p, err := parser.NewRaceCalendar(html)
	if err != nil {
		return nil, err
	}
	races, err := p.Races()
	if err != nil {
		return nil, err
	}

	out := make([]RaceRecord, len(races))
	for i, r := range races {
		out[i] = RaceRecord{Round: i + 1, Track: r.Track, Laps: r.Laps, Link: r.Link, Year: year}
	}
	return out, nil
}

// withStrength joins records with scaled team points and orders them by day,
// time and strength. Records without a time sort last within their day.
func withStrength(records []TestingRecord, points []TeamPointsRecord) []TestingRecord {
	raw := make([]float64, len(points))
	for i, p := range points {
		raw[i] = p.Points
	}
	scaled := MinMaxScale(raw)
	strength := make(map[string]float64, len(points))
	for i, p := range points {
		strength[p.Team] = scaled[i]
	}

	out := make([]TestingRecord, 0, len(records))
	for _, r := range records {
		s, ok := strength[r.Team]
		if !ok {
			continue
		}
		r.Strength = &s
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Time != b.Time {
			if a.Time == "" || b.Time == "" {
				return b.Time == ""
			}
			return lapLess(a.Time, b.Time)
		}
		return *a.Strength < *b.Strength
	})
	return out
}

// lapLess compares lap times numerically, falling back to text order when
// either side does not parse.
func lapLess(a, b string) bool {
	am, errA := parser.LapMillis(a)
	bm, errB := parser.LapMillis(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return am < bm
}

// MinMaxScale maps values linearly onto [0, 1]. Equal values all map to 0.
func MinMaxScale(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}
