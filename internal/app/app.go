package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"f1stats/internal/cache"
	"f1stats/internal/dataset"
	"f1stats/internal/pipeline"
	"f1stats/internal/shared/errs"
	"f1stats/internal/shared/logger"
	"f1stats/internal/shared/types"
)

// CSV file prefixes, one per dataset.
const (
	TestingPrefix      = "testing"
	TeamPointsPrefix   = "team-points"
	RaceCalendarPrefix = "race-calendar"
)

// App is one batch run: a pipeline, a dataset builder and the storage root
// the CSV files land in.
type App struct {
	cfg     *types.Config
	runID   string
	source  dataset.Source
	builder *dataset.Builder
	log     zerolog.Logger
}

// New wires the pipeline described by cfg and tags the global logger with a
// fresh run id.
func New(cfg *types.Config) (*App, error) {
	p, err := pipeline.Build(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithSource(cfg, p), nil
}

// NewWithSource builds an App that reads pages from src instead of the network.
func NewWithSource(cfg *types.Config, src dataset.Source) *App {
	runID := uuid.NewString()
	logger.WithRun(runID)
	return &App{
		cfg:     cfg,
		runID:   runID,
		source:  src,
		builder: dataset.NewBuilder(src, cfg.ScrapeConf.Site),
		log:     logger.WithComponent("App"),
	}
}

// RunID identifies this run in the logs.
func (a *App) RunID() string { return a.runID }

// Testing writes the testing dataset for the years first..last (last = 0 for
// a single year) and returns the CSV path.
func (a *App) Testing(ctx context.Context, first, last int) (string, error) {
	if last == 0 {
		last = first
	}
	if last < first {
		return "", errs.NewConfigurationError("year2", fmt.Sprintf("must not be before %d", first))
	}

	var rows []dataset.TestingRecord
	for year := first; year <= last; year++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		records, err := a.builder.Testing(ctx, year)
		if err != nil {
			return "", err
		}
		a.log.Info().Int("year", year).Int("rows", len(records)).Msg("Testing data assembled.")
		rows = append(rows, records...)
	}
	return a.write(TestingPrefix, first, last, rows)
}

// TeamPoints writes the constructors' standings of year.
func (a *App) TeamPoints(ctx context.Context, year int) (string, error) {
	rows, err := a.builder.TeamPoints(ctx, year)
	if err != nil {
		return "", err
	}
	return a.write(TeamPointsPrefix, year, 0, rows)
}

// RaceCalendar writes the race calendar of year.
func (a *App) RaceCalendar(ctx context.Context, year int) (string, error) {
	rows, err := a.builder.RaceCalendar(ctx, year)
	if err != nil {
		return "", err
	}
	return a.write(RaceCalendarPrefix, year, 0, rows)
}

func (a *App) write(prefix string, first, last int, rows any) (string, error) {
	path, err := dataset.WriteCSV(a.cfg.StorageConf.Path, dataset.FileName(prefix, first, last), rows)
	if err != nil {
		return "", err
	}
	a.log.Info().Str("path", path).Msg("Dataset written.")
	return path, nil
}

// FlushCache removes every entry stored under prefix. It reports whether the
// prefix directory existed.
func FlushCache(cfg *types.Config, prefix string) (bool, error) {
	c, err := cache.New(cfg.StorageConf.Path, prefix)
	if err != nil {
		return false, err
	}
	flushed := c.Flush()
	l := logger.WithComponent("App")
	l.Info().Str("prefix", prefix).Bool("flushed", flushed).Msg("Cache flushed.")
	return flushed, nil
}
