package plan

import (
	"time"
)

type Interval string

const (
	Interval24h Interval = "24h"
	Interval7d  Interval = "7d"
	Interval30d Interval = "30d"
	Interval90d Interval = "90d"
	Interval1y  Interval = "1y"
	IntervalMTD Interval = "mtd"
	IntervalQTD Interval = "qtd"
	IntervalYTD Interval = "ytd"
	IntervalAll Interval = "all"

	// IntervalCustom marks a window built from explicit start/end bounds.
	IntervalCustom Interval = "custom"
)

const DefaultInterval = Interval24h

var fixedIntervals = map[Interval]time.Duration{
	Interval24h: 24 * time.Hour,
	Interval7d:  7 * 24 * time.Hour,
	Interval30d: 30 * 24 * time.Hour,
	Interval90d: 90 * 24 * time.Hour,
	Interval1y:  365 * 24 * time.Hour,
}

// ParseInterval reports whether s names a supported interval.
func ParseInterval(s string) (Interval, bool) {
	i := Interval(s)
	if _, ok := fixedIntervals[i]; ok {
		return i, true
	}
	switch i {
	case IntervalMTD, IntervalQTD, IntervalYTD, IntervalAll:
		return i, true
	}
	return "", false
}

// Intervals lists the supported interval names in ascending span order.
func Intervals() []Interval {
	return []Interval{
		Interval24h, Interval7d, Interval30d, Interval90d, Interval1y,
		IntervalMTD, IntervalQTD, IntervalYTD, IntervalAll,
	}
}

type WindowParams struct {
	Interval Interval
	Start    *time.Time
	End      *time.Time
	Location *time.Location

	// DataAvailableFrom is the earliest instant data may exist for, usually
	// the workspace creation time.
	DataAvailableFrom time.Time
	Now               time.Time
}

type Window struct {
	Start    time.Time
	End      time.Time
	Interval Interval

	// RequestedStart is the start before clamping to DataAvailableFrom.
	RequestedStart time.Time
}

// ResolveWindow turns an interval and optional explicit bounds into a concrete
// time range. An explicit start overrides the interval; an explicit end anchors
// the interval instead of now.
func ResolveWindow(p WindowParams) Window {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	end := now
	if p.End != nil {
		end = *p.End
	}

	var w Window
	switch {
	case p.Start != nil:
		start := *p.Start
		if start.After(end) {
			start, end = end, start
		}
		w = Window{Start: start, End: end, Interval: IntervalCustom}
	default:
		interval := p.Interval
		if interval == "" {
			interval = DefaultInterval
		}
		w = Window{Start: intervalStart(interval, end.In(loc), p.DataAvailableFrom), End: end, Interval: interval}
	}

	w.RequestedStart = w.Start
	if !p.DataAvailableFrom.IsZero() && w.Start.Before(p.DataAvailableFrom) {
		w.Start = p.DataAvailableFrom
	}
	if w.Start.After(w.End) {
		w.Start = w.End
	}
	return w
}

func intervalStart(interval Interval, anchor time.Time, availableFrom time.Time) time.Time {
	if d, ok := fixedIntervals[interval]; ok {
		return anchor.Add(-d)
	}

	y, m, _ := anchor.Date()
	loc := anchor.Location()
	switch interval {
	case IntervalMTD:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case IntervalQTD:
		quarterMonth := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, quarterMonth, 1, 0, 0, 0, 0, loc)
	case IntervalYTD:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case IntervalAll:
		if !availableFrom.IsZero() {
			return availableFrom
		}
		return FoundingDate
	}
	return anchor.Add(-fixedIntervals[DefaultInterval])
}

// FoundingDate is the earliest possible event time when a workspace has no
// recorded creation date.
var FoundingDate = time.Date(2022, time.September, 22, 0, 0, 0, 0, time.UTC)
