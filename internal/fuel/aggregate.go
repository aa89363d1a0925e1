// Package fuel aggregates a fuel-consumed field across a paginated telemetry
// listing and derives the CO2 saving from it.
//
// The field name and nesting are not known in advance. The first populated
// page is sampled to detect it, then every row of every page is summed:
//
//	page 1 ──▶ NormalizeRows ──▶ DetectFieldKey ──▶ ExtractValue (per row)
//	page 2 ──▶ NormalizeRows ──────────────────────▶ ExtractValue (per row)
//	...                                      until a short or empty page
//
// The total is converted to kilograms and passed through Derive.
package fuel

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/janekbaraniewski/co2meter/internal/payload"
)

// PageFetcher returns the payload of one page. Pages are numbered from 1.
type PageFetcher interface {
	FetchPage(ctx context.Context, page, size int) (payload.Value, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, page, size int) (payload.Value, error)

func (f PageFetcherFunc) FetchPage(ctx context.Context, page, size int) (payload.Value, error) {
	return f(ctx, page, size)
}

// Walk is the outcome of one pagination pass.
type Walk struct {
	FieldKey string
	Total    float64 // in the field's native unit
	Pages    int     // fetches performed, including a trailing empty page
	Rows     int
	Matched  int // rows that contributed a value
}

// Result is the outcome of one aggregation run.
type Result struct {
	Walk
	MassKg float64
	Metric float64 // tonnes of CO2 saved
}

// WalkPages fetches pages sequentially and sums the detected field. Fetch
// errors are returned unchanged; no partial walk is returned on failure.
func WalkPages(ctx context.Context, fetcher PageFetcher, pageSize int) (Walk, error) {
	if pageSize <= 0 {
		return Walk{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}

	var w Walk
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return Walk{}, err
		}

		p, err := fetcher.FetchPage(ctx, page, pageSize)
		w.Pages++
		if err != nil {
			return Walk{}, err
		}

		rows := NormalizeRows(p)
		if len(rows) == 0 {
			if w.FieldKey == "" {
				return Walk{}, ErrNoData
			}
			break
		}

		if w.FieldKey == "" {
			key, ok := DetectFieldKey(rows)
			if !ok {
				return Walk{}, ErrFieldNotDetected
			}
			w.FieldKey = key
			log.Printf("fuel: detected field %q on page %d", key, page)
		}

		for _, row := range rows {
			if v, ok := ExtractValue(row, w.FieldKey); ok {
				w.Total += v
				w.Matched++
			}
		}
		w.Rows += len(rows)

		if len(rows) < pageSize {
			break
		}
	}
	return w, nil
}

// Aggregate validates the unit, walks every page and derives the metric. The
// unit is checked before the first fetch.
func Aggregate(ctx context.Context, fetcher PageFetcher, pageSize int, unit UnitSpec) (Result, error) {
	if err := unit.Validate(); err != nil {
		return Result{}, err
	}

	w, err := WalkPages(ctx, fetcher, pageSize)
	if err != nil {
		return Result{}, err
	}

	mass, err := unit.ToKilograms(w.Total)
	if err != nil {
		return Result{}, err
	}

	metric := Derive(mass)
	if !finite(w.Total) || !finite(mass) || !finite(metric) {
		return Result{}, fmt.Errorf("%w: %v over %d rows", ErrNonFinite, w.Total, w.Matched)
	}

	return Result{
		Walk:   w,
		MassKg: mass,
		Metric: metric,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
