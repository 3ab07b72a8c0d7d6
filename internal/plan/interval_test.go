package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func TestParseInterval(t *testing.T) {
	for _, i := range Intervals() {
		got, ok := ParseInterval(string(i))
		assert.True(t, ok, string(i))
		assert.Equal(t, i, got)
	}

	_, ok := ParseInterval("2w")
	assert.False(t, ok)
	_, ok = ParseInterval("custom")
	assert.False(t, ok)
}

func TestResolveWindow(t *testing.T) {
	created := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		params    WindowParams
		wantStart time.Time
		wantEnd   time.Time
		wantIntv  Interval
	}{
		{
			name:      "default interval is 24h",
			params:    WindowParams{Now: testNow},
			wantStart: testNow.Add(-24 * time.Hour),
			wantEnd:   testNow,
			wantIntv:  Interval24h,
		},
		{
			name:      "fixed interval",
			params:    WindowParams{Interval: Interval7d, Now: testNow},
			wantStart: testNow.Add(-7 * 24 * time.Hour),
			wantEnd:   testNow,
			wantIntv:  Interval7d,
		},
		{
			name:      "month to date",
			params:    WindowParams{Interval: IntervalMTD, Now: testNow},
			wantStart: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   testNow,
			wantIntv:  IntervalMTD,
		},
		{
			name:      "quarter to date",
			params:    WindowParams{Interval: IntervalQTD, Now: testNow},
			wantStart: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   testNow,
			wantIntv:  IntervalQTD,
		},
		{
			name:      "all starts at workspace creation",
			params:    WindowParams{Interval: IntervalAll, DataAvailableFrom: created, Now: testNow},
			wantStart: created,
			wantEnd:   testNow,
			wantIntv:  IntervalAll,
		},
		{
			name: "explicit start overrides interval",
			params: WindowParams{
				Interval: Interval1y,
				Start:    timePtr(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)),
				End:      timePtr(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)),
				Now:      testNow,
			},
			wantStart: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
			wantIntv:  IntervalCustom,
		},
		{
			name: "reversed bounds are swapped",
			params: WindowParams{
				Start: timePtr(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)),
				End:   timePtr(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)),
				Now:   testNow,
			},
			wantStart: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
			wantIntv:  IntervalCustom,
		},
		{
			name: "start clamped to creation date",
			params: WindowParams{
				Start:             timePtr(time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)),
				DataAvailableFrom: created,
				Now:               testNow,
			},
			wantStart: created,
			wantEnd:   testNow,
			wantIntv:  IntervalCustom,
		},
		{
			name: "explicit end anchors interval",
			params: WindowParams{
				Interval: Interval7d,
				End:      timePtr(time.Date(2024, time.May, 8, 0, 0, 0, 0, time.UTC)),
				Now:      testNow,
			},
			wantStart: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.May, 8, 0, 0, 0, 0, time.UTC),
			wantIntv:  Interval7d,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ResolveWindow(tt.params)
			assert.True(t, tt.wantStart.Equal(w.Start), "start: want %s got %s", tt.wantStart, w.Start)
			assert.True(t, tt.wantEnd.Equal(w.End), "end: want %s got %s", tt.wantEnd, w.End)
			assert.Equal(t, tt.wantIntv, w.Interval)
		})
	}
}

func TestResolveWindow_KeepsRequestedStart(t *testing.T) {
	created := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	requested := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)

	w := ResolveWindow(WindowParams{Start: &requested, DataAvailableFrom: created, Now: testNow})

	assert.True(t, requested.Equal(w.RequestedStart))
	assert.True(t, created.Equal(w.Start))
}

func TestResolveWindow_Timezone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, time.May, 31, 20, 0, 0, 0, time.UTC) // June 1st 06:00 in UTC+10

	w := ResolveWindow(WindowParams{Interval: IntervalMTD, Location: loc, Now: now})

	assert.True(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, loc).Equal(w.Start))
}
