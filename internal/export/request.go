package export

import (
	"net/url"
	"strings"
	"time"

	"eventexport/internal/analytics"
	"eventexport/internal/plan"

	pkgerrors "eventexport/pkg/errors"
)

// Request is a validated export request. It is not modified after parsing.
type Request struct {
	EventType analytics.EventType
	Columns   []string

	Domain   string
	Key      string
	FolderID string

	// Interval is empty when the caller did not name one.
	Interval plan.Interval
	Start    *time.Time
	End      *time.Time
	Location *time.Location

	// Filters holds dimension filters keyed by parameter name.
	Filters map[string]string
}

// SingleLink reports whether the request targets one link.
func (r *Request) SingleLink() bool {
	return r.Domain != "" && r.Key != ""
}

const dateLayout = "2006-01-02"

// ParseRequest validates raw query parameters. Unknown parameters are ignored.
func ParseRequest(q url.Values) (*Request, error) {
	req := &Request{
		Domain:   strings.TrimSpace(q.Get("domain")),
		Key:      strings.TrimSpace(q.Get("key")),
		FolderID: strings.TrimSpace(q.Get("folderId")),
		Location: time.UTC,
	}

	rawEvent := q.Get("event")
	if strings.TrimSpace(rawEvent) == "" {
		return nil, pkgerrors.Validation("event", "event is required")
	}
	eventType, ok := analytics.ParseEventType(rawEvent)
	if !ok {
		return nil, pkgerrors.Validation("event", "event must be one of click, lead, sale")
	}
	req.EventType = eventType

	columns := ParseColumns(q.Get("columns"))
	if len(columns) == 0 {
		return nil, pkgerrors.Validation("columns", "at least one column is required")
	}
	req.Columns = columns

	if tz := strings.TrimSpace(q.Get("timezone")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, pkgerrors.Validation("timezone", "unknown timezone "+tz)
		}
		req.Location = loc
	}

	if raw := strings.TrimSpace(q.Get("interval")); raw != "" {
		interval, ok := plan.ParseInterval(raw)
		if !ok {
			return nil, pkgerrors.Validation("interval", "interval must be one of "+intervalList())
		}
		req.Interval = interval
	}

	var err error
	if req.Start, err = parseDate("start", q.Get("start"), req.Location, false); err != nil {
		return nil, err
	}
	if req.End, err = parseDate("end", q.Get("end"), req.Location, true); err != nil {
		return nil, err
	}

	for param := range analytics.DimensionColumns {
		if v := strings.TrimSpace(q.Get(param)); v != "" {
			if req.Filters == nil {
				req.Filters = make(map[string]string)
			}
			req.Filters[param] = v
		}
	}

	return req, nil
}

// ParseColumns splits a comma-separated column list, dropping blanks and
// repeats while keeping first-seen order.
func ParseColumns(raw string) []string {
	parts := strings.Split(raw, ",")
	columns := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		columns = append(columns, p)
	}
	return columns
}

// parseDate accepts RFC 3339 timestamps or bare dates in loc. A bare date is
// read as midnight, or as the last instant of that day when endOfDay is set,
// so an end date includes the whole named day.
func parseDate(field, raw string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, nil
	}
	return nil, pkgerrors.Validation(field, field+" must be an ISO 8601 date or timestamp")
}

func intervalList() string {
	intervals := plan.Intervals()
	names := make([]string, len(intervals))
	for i, in := range intervals {
		names[i] = string(in)
	}
	return strings.Join(names, ", ")
}
