package main

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"holidaycal/internal/model"
)

// occurrenceFilter selects occurrences with a compiled expr program. The
// zero value keeps everything.
type occurrenceFilter struct {
	program *vm.Program
}

func compileFilter(src string) (occurrenceFilter, error) {
	if src == "" {
		return occurrenceFilter{}, nil
	}
	program, err := expr.Compile(src, expr.Env(filterEnv(model.Occurrence{})), expr.AsBool())
	if err != nil {
		return occurrenceFilter{}, fmt.Errorf("invalid --filter: %w", err)
	}
	return occurrenceFilter{program: program}, nil
}

func (f occurrenceFilter) apply(in []model.Occurrence) ([]model.Occurrence, error) {
	if f.program == nil {
		return in, nil
	}
	out := make([]model.Occurrence, 0, len(in))
	for _, o := range in {
		res, err := expr.Run(f.program, filterEnv(o))
		if err != nil {
			return nil, fmt.Errorf("evaluate --filter on %s %s: %w", o.Date, o.Name, err)
		}
		if keep, _ := res.(bool); keep {
			out = append(out, o)
		}
	}
	return out, nil
}

func filterEnv(o model.Occurrence) map[string]any {
	var year, month, day int
	if d, err := time.Parse(time.DateOnly, o.Date); err == nil {
		year, month, day = d.Year(), int(d.Month()), d.Day()
	}
	return map[string]any{
		"calendar":    o.Calendar,
		"name":        o.Name,
		"description": o.Description,
		"kind":        o.Kind,
		"date":        o.Date,
		"weekday":     o.Weekday,
		"year":        year,
		"month":       month,
		"day":         day,
	}
}
