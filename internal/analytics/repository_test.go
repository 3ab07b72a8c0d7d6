package analytics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEventsQuery(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	t.Run("readable folder set", func(t *testing.T) {
		query, args := buildEventsQuery(Filter{
			WorkspaceID: "ws_1",
			EventType:   EventClick,
			Start:       start,
			End:         end,
			FolderIDs:   []string{"fold_a", "fold_b"},
			Limit:       100,
		})

		assert.Contains(t, query, "workspace_id = $1 AND event_type = $2 AND timestamp >= $3 AND timestamp <= $4")
		assert.Contains(t, query, "(folder_id IS NULL OR folder_id = ANY($5))")
		assert.True(t, strings.HasSuffix(query, "ORDER BY timestamp DESC\n\t\tLIMIT $6"))
		require.Len(t, args, 6)
		assert.Equal(t, "ws_1", args[0])
		assert.Equal(t, "click", args[1])
		assert.Equal(t, pq.Array([]string{"fold_a", "fold_b"}), args[4])
		assert.Equal(t, 100, args[5])
	})

	t.Run("nil folder set only matches unfiled links", func(t *testing.T) {
		_, args := buildEventsQuery(Filter{WorkspaceID: "ws_1", EventType: EventLead, Limit: 1})
		assert.Equal(t, pq.Array([]string{}), args[4])
	})

	t.Run("explicit folder and link", func(t *testing.T) {
		query, args := buildEventsQuery(Filter{
			WorkspaceID: "ws_1",
			EventType:   EventSale,
			LinkID:      "link_1",
			FolderID:    "fold_a",
			FolderIDs:   []string{"ignored"},
			Limit:       10,
		})

		assert.Contains(t, query, "link_id = $5 AND folder_id = $6")
		assert.NotContains(t, query, "ANY(")
		assert.Equal(t, "link_1", args[4])
		assert.Equal(t, "fold_a", args[5])
	})

	t.Run("domain without link", func(t *testing.T) {
		query, args := buildEventsQuery(Filter{
			WorkspaceID: "ws_1",
			EventType:   EventClick,
			Domain:      "acme.link",
			Limit:       10,
		})

		assert.Contains(t, query, "domain = $5 AND (folder_id IS NULL")
		assert.Equal(t, "acme.link", args[4])
	})

	t.Run("dimensions are sorted and whitelisted", func(t *testing.T) {
		query, args := buildEventsQuery(Filter{
			WorkspaceID: "ws_1",
			EventType:   EventClick,
			FolderID:    "fold_a",
			Dimensions: map[string]string{
				"os":             "iOS",
				"country":        "US",
				"1=1; DROP city": "x",
			},
			Limit: 10,
		})

		assert.Contains(t, query, "country = $6 AND os = $7")
		assert.NotContains(t, query, "DROP")
		assert.Equal(t, "US", args[5])
		assert.Equal(t, "iOS", args[6])
		assert.Len(t, args, 8)
	})
}

type fakeRow struct {
	values []interface{}
	err    error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *bool:
			*p = r.values[i].(bool)
		case *int64:
			*p = r.values[i].(int64)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

func row(eventType string, clickID, customerName string, amount int64) fakeRow {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return fakeRow{values: []interface{}{
		eventType, ts,
		"link_1", "acme.link", "promo", "",
		"US", "Austin", "TX", "NA",
		"Desktop", "Chrome", "macOS",
		clickID, "qr", "https://acme.com", "google.com", "https://google.com", "1.2.3.4", true,
		"Purchase",
		"", customerName, "",
		"inv_1", amount, "usd", "stripe",
	}}
}

func TestScanEvent(t *testing.T) {
	t.Run("click", func(t *testing.T) {
		rec, err := scanEvent(row("click", "clk_1", "", 0))
		require.NoError(t, err)
		click, ok := rec.(*ClickEvent)
		require.True(t, ok)
		assert.Equal(t, "clk_1", click.Click.ID)
		assert.True(t, click.Click.QR)
		assert.Equal(t, "Austin", click.City)
	})

	t.Run("lead without click or customer", func(t *testing.T) {
		rec, err := scanEvent(row("lead", "", "", 0))
		require.NoError(t, err)
		lead, ok := rec.(*LeadEvent)
		require.True(t, ok)
		assert.Nil(t, lead.Click)
		assert.Nil(t, lead.Customer)
		assert.Equal(t, "Purchase", lead.EventName)
	})

	t.Run("sale", func(t *testing.T) {
		rec, err := scanEvent(row("sale", "clk_1", "Ada", 4999))
		require.NoError(t, err)
		sale, ok := rec.(*SaleEvent)
		require.True(t, ok)
		require.NotNil(t, sale.Sale)
		assert.Equal(t, int64(4999), sale.Sale.Amount)
		require.NotNil(t, sale.Customer)
		assert.Equal(t, "Ada", sale.Customer.Name)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := scanEvent(row("view", "", "", 0))
		assert.Error(t, err)
	})

	t.Run("scan error", func(t *testing.T) {
		_, err := scanEvent(fakeRow{err: errors.New("bad column")})
		assert.ErrorContains(t, err, "bad column")
	})
}
