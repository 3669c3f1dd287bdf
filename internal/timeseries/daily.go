// Package timeseries turns cleaned sales records into a contiguous daily
// series and derives the calendar regressors the forecaster trains on.
package timeseries

import (
	"fmt"
	"time"

	"salespulse/internal/dataset"
	"salespulse/internal/errors"
)

// NullPolicy controls how rows with a null sales value contribute to the
// daily aggregation.
type NullPolicy int

const (
	// NullAsZero sums null sales as 0, matching the original dashboard.
	NullAsZero NullPolicy = iota
	// NullExcluded skips null sales entirely.
	NullExcluded
)

// ParseNullPolicy converts a config string into a NullPolicy.
func ParseNullPolicy(s string) (NullPolicy, error) {
	switch s {
	case "zero", "":
		return NullAsZero, nil
	case "exclude":
		return NullExcluded, nil
	default:
		return NullAsZero, fmt.Errorf("unknown null policy %q (want zero or exclude)", s)
	}
}

// DailyPoint is one calendar day's total sales.
type DailyPoint struct {
	Date  time.Time `json:"date"`
	Sales float64   `json:"sales"`
}

// DailySeries is a contiguous per-day aggregation: dates strictly
// increase by exactly one day with no gaps, zero-filled for days absent
// from the source.
type DailySeries []DailyPoint

// Origin returns the first date in the series.
func (s DailySeries) Origin() time.Time {
	return s[0].Date
}

// Last returns the final date in the series.
func (s DailySeries) Last() time.Time {
	return s[len(s)-1].Date
}

// Values returns the sales column as a slice aligned with the series.
func (s DailySeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Sales
	}
	return out
}

// Aggregate collapses cleaned records into a daily series spanning the
// inclusive [min, max] date range, one entry per calendar day. Rows with
// a null date cannot be bucketed and are skipped; null sales follow the
// given policy. Fails with InsufficientDataError when no row has a valid
// date.
func Aggregate(ct *dataset.CleanedTable, policy NullPolicy) (DailySeries, error) {
	totals := make(map[time.Time]float64)
	var minDate, maxDate time.Time

	for _, rec := range ct.Records {
		if rec.OrderDate == nil {
			continue
		}
		day := *rec.OrderDate

		value := 0.0
		if rec.Sales != nil {
			value = *rec.Sales
		} else if policy == NullExcluded {
			continue
		}

		if minDate.IsZero() || day.Before(minDate) {
			minDate = day
		}
		if maxDate.IsZero() || day.After(maxDate) {
			maxDate = day
		}
		totals[day] += value
	}

	if len(totals) == 0 {
		return nil, errors.NewInsufficientDataError(0, 1)
	}

	days := int(maxDate.Sub(minDate).Hours()/24) + 1
	series := make(DailySeries, 0, days)
	for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, 1) {
		series = append(series, DailyPoint{Date: d, Sales: totals[d]})
	}

	return series, nil
}
