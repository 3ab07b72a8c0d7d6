package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventexport/internal/analytics"
	"eventexport/internal/constants"
	"eventexport/internal/logger"
	"eventexport/internal/plan"

	pkgerrors "eventexport/pkg/errors"
)

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestService_Export(t *testing.T) {
	f := newFixture()
	f.source.records = []analytics.EventRecord{
		clickAt("dub.sh", "abc", testNow.Add(-time.Hour)),
		clickAt("dub.sh", "_root", testNow.Add(-2*time.Hour)),
	}
	hist := &fakeHistory{}
	notifier := &fakeNotifier{}
	svc := NewService(f.gate, f.source, logger.NopLogger(), WithHistory(hist), WithNotifier(notifier))

	result, err := svc.Export(context.Background(), testPrincipal(), url.Values{
		"event":    {"clicks"},
		"columns":  {"link, url,country"},
		"interval": {"7d"},
		"country":  {"US"},
	})
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, "click_export.csv", result.Filename)
	assert.Equal(t, 2, result.Rows)
	assert.False(t, result.LimitReached)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, [][]string{
		{"Link", "Destination URL", "Country"},
		{"dub.sh/abc", "https://acme.com/abc", "United States"},
		{"dub.sh", "https://acme.com/_root", "United States"},
	}, readCSV(t, result.Body))

	assert.Equal(t, 1, f.source.calls)
	assert.Equal(t, "ws_1", f.source.last.WorkspaceID)
	assert.Equal(t, analytics.EventClick, f.source.last.EventType)
	assert.Equal(t, testNow, f.source.last.End)
	assert.Equal(t, testNow.Add(-7*24*time.Hour), f.source.last.Start)
	assert.Equal(t, []string{"fold_shared"}, f.source.last.FolderIDs)
	assert.Equal(t, map[string]string{"country": "US"}, f.source.last.Dimensions)

	require.Len(t, hist.records, 1)
	assert.Equal(t, result.ID, hist.records[0].ID)
	assert.Equal(t, "user_1", hist.records[0].UserID)
	assert.Equal(t, string(plan.Interval7d), hist.records[0].Interval)
	assert.Equal(t, len(result.Body), hist.records[0].SizeBytes)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, result.ID, notifier.events[0].ExportID)
	assert.Equal(t, []string{"link", "url", "country"}, notifier.events[0].Columns)
}

func TestService_EmptyResultStillHasHeader(t *testing.T) {
	f := newFixture()
	svc := NewService(f.gate, f.source, logger.NopLogger())

	result, err := svc.Export(context.Background(), testPrincipal(), url.Values{
		"event":   {"sale"},
		"columns": {"timestamp,saleAmount"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sale_export.csv", result.Filename)
	assert.Equal(t, "Date,Sale Amount\n", string(result.Body))
	assert.Zero(t, result.Rows)
}

func TestService_NoFetchBeforeAuthorization(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fixture, *Principal)
		query url.Values
		check func(error) bool
	}{
		{
			name:  "invalid request",
			query: url.Values{"event": {"click"}},
			check: pkgerrors.IsValidation,
		},
		{
			name:  "usage exceeded",
			setup: func(f *fixture, p *Principal) { p.Workspace.Usage = p.Workspace.UsageLimit + 1 },
			query: url.Values{"event": {"click"}, "columns": {"url"}},
			check: pkgerrors.IsUsageExceeded,
		},
		{
			name:  "folder denied",
			query: url.Values{"event": {"click"}, "columns": {"url"}, "folderId": {"fold_private"}},
			check: pkgerrors.IsForbidden,
		},
		{
			name:  "plan limit",
			setup: func(f *fixture, p *Principal) { p.Workspace.Plan = "free" },
			query: url.Values{"event": {"click"}, "columns": {"url"}, "interval": {"1y"}},
			check: pkgerrors.IsPlanLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			p := testPrincipal()
			p.Workspace.CreatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			if tt.setup != nil {
				tt.setup(f, &p)
			}
			hist := &fakeHistory{}
			svc := NewService(f.gate, f.source, logger.NopLogger(), WithHistory(hist))

			result, err := svc.Export(context.Background(), p, tt.query)
			svc.Wait()

			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, tt.check(err), err.Error())
			assert.Zero(t, f.source.calls)
			assert.Empty(t, hist.records)
		})
	}
}

func TestService_DataSourceFailure(t *testing.T) {
	f := newFixture()
	f.source.err = errors.New("connection refused")
	svc := NewService(f.gate, f.source, logger.NopLogger())

	_, err := svc.Export(context.Background(), testPrincipal(), url.Values{
		"event":   {"lead"},
		"columns": {"customer"},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDataSource(err))
	assert.Equal(t, 503, pkgerrors.ToHTTPStatus(err))
}

func TestService_RowCap(t *testing.T) {
	f := newFixture()
	f.source.records = []analytics.EventRecord{
		clickAt("dub.sh", "a", testNow.Add(-time.Minute)),
		clickAt("dub.sh", "b", testNow.Add(-2*time.Minute)),
		clickAt("dub.sh", "c", testNow.Add(-3*time.Minute)),
	}
	svc := NewService(f.gate, f.source, logger.NopLogger(), WithMaxRows(2))

	result, err := svc.Export(context.Background(), testPrincipal(), url.Values{
		"event":   {"click"},
		"columns": {"link"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.source.last.Limit)
	assert.Equal(t, 2, result.Rows)
	assert.True(t, result.LimitReached)
	assert.Equal(t, [][]string{{"Link"}, {"dub.sh/a"}, {"dub.sh/b"}}, readCSV(t, result.Body))
}

func TestService_SideEffectFailuresDoNotFailExport(t *testing.T) {
	f := newFixture()
	hist := &fakeHistory{err: errors.New("mongo down")}
	notifier := &fakeNotifier{err: errors.New("kafka down")}
	svc := NewService(f.gate, f.source, logger.NopLogger(),
		WithHistory(hist),
		WithNotifier(notifier),
		WithSideEffectTimeout(time.Second),
	)

	result, err := svc.Export(context.Background(), testPrincipal(), url.Values{
		"event":   {"click"},
		"columns": {"url"},
	})
	svc.Wait()

	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestWithMaxRows_IgnoresOutOfRange(t *testing.T) {
	f := newFixture()
	for _, n := range []int{0, -1, constants.MaxExportRows + 1} {
		svc := NewService(f.gate, f.source, logger.NopLogger(), WithMaxRows(n))
		assert.Equal(t, constants.MaxExportRows, svc.maxRows)
	}
}
