// internal/report/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownSection = errors.New("unknown report section")
)

// Window bounds one reporting run. All section queries read the same rolling
// window so the grids stay mutually consistent.
type Window struct {
	From time.Time
	To   time.Time
}

// SectionFunc returns a grid: header plus presentation-ready string rows.
type SectionFunc func(ctx context.Context, db *sql.DB, window Window) ([]string, [][]string, error)

var Registry = map[string]SectionFunc{
	"orders":       Orders,
	"interactions": Interactions,
	"analytics":    Analytics,
}

func Execute(ctx context.Context, db *sql.DB, section string, window Window) ([]string, [][]string, error) {
	fn, exists := Registry[section]
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	return fn(ctx, db, window)
}
