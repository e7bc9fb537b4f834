// Package catalog loads the question collection once at startup.
//
// A catalog comes from exactly one Source: a JSON or YAML file, a static HTTP
// resource, or the questions table in PostgreSQL. The load is never retried;
// a failed load leaves an empty catalog whose Err reports a *LoadError so the
// caller can tell "could not load" apart from "nothing matched".
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-questions/internal/question"
)

// Source produces the full ordered question collection.
type Source interface {
	Load(ctx context.Context) ([]question.Record, error)
	String() string
}

// LoadError reports that the catalog source was unreachable or unparsable.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Catalog is the result of a single load.
type Catalog struct {
	source  string
	records []question.Record
	err     *LoadError
}

// Open loads the catalog from src. It always returns a catalog; check Err.
func Open(ctx context.Context, src Source) *Catalog {
	c := &Catalog{source: src.String()}

	records, err := src.Load(ctx)
	if err != nil {
		c.err = &LoadError{Source: c.source, Err: err}
		slog.Error("catalog load failed", "source", c.source, "error", err)
		return c
	}

	for i := range records {
		records[i].Normalize()
	}
	c.records = records

	slog.Info("catalog loaded", "source", c.source, "questions", len(records))
	return c
}

// Records returns the collection in storage order. Callers must not modify it.
func (c *Catalog) Records() []question.Record {
	return c.records
}

// Len returns the number of loaded records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Source names where the catalog was loaded from.
func (c *Catalog) Source() string {
	return c.source
}

// Err returns the *LoadError of a failed load, or nil.
func (c *Catalog) Err() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

func checkIDs(records []question.Record) error {
	seen := make(map[int]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate question id %d", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
