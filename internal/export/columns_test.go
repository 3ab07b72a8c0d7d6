package export

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eventexport/internal/analytics"
)

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"trigger":    "Event",
		"event":      "Event",
		"url":        "Destination URL",
		"os":         "OS",
		"referer":    "Referrer",
		"refererUrl": "Referrer URL",
		"timestamp":  "Date",
		"invoiceId":  "Invoice ID",
		"saleAmount": "Sale Amount",
		"link":       "Link",
		"country":    "Country",
		"bogus":      "Bogus",
		"":           "",
	}

	for key, want := range tests {
		t.Run(key, func(t *testing.T) {
			assert.Equal(t, want, Label(key))
		})
	}
}

func TestProjectAll_HeaderFollowsRequestedOrder(t *testing.T) {
	columns := ParseColumns("event, url,link")
	table := ProjectAll(columns, nil)

	assert.Equal(t, []string{"Event", "Destination URL", "Link"}, table.Header)
	assert.Empty(t, table.Rows)
}

func TestValue_Link(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "dub.sh", Value("link", clickAt("dub.sh", "_root", ts)))
	assert.Equal(t, "dub.sh/abc", Value("link", clickAt("dub.sh", "abc", ts)))
	assert.Equal(t, "", Value("link", clickAt("", "abc", ts)))
}

func TestValue_Click(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 123_000_000, time.FixedZone("CEST", 2*3600))
	ev := clickAt("dub.sh", "abc", ts)
	ev.Click.QR = true
	ev.Click.Referer = "google.com"
	ev.OS = "macOS"

	cols := []string{"timestamp", "trigger", "url", "country", "qr", "referer", "os", "event", "customer", "saleAmount", "bogus"}
	row := Project(cols, ev)

	assert.Equal(t, []string{
		"2024-05-01T08:00:00.123Z",
		"click",
		"https://acme.com/abc",
		"United States",
		"true",
		"google.com",
		"macOS",
		"", "", "", "",
	}, row)
}

func TestValue_Sale(t *testing.T) {
	sale := &analytics.SaleEvent{
		EventBase: analytics.EventBase{Domain: "dub.sh", Key: "abc", Country: "ZZ"},
		EventName: "Purchase",
		Customer:  &analytics.Customer{Name: "Jane Doe", Email: "jane@acme.com"},
		Sale:      &analytics.Sale{InvoiceID: "inv_1", Amount: 4999, PaymentProcessor: "stripe"},
	}

	assert.Equal(t, "$49.99", Value("saleAmount", sale))
	assert.Equal(t, "Purchase", Value("event", sale))
	assert.Equal(t, "Jane Doe <jane@acme.com>", Value("customer", sale))
	assert.Equal(t, "inv_1", Value("invoiceId", sale))
	assert.Equal(t, "stripe", Value("paymentProcessor", sale))
	assert.Equal(t, "ZZ", Value("country", sale))
	assert.Equal(t, "", Value("url", sale))
	assert.Equal(t, "", Value("trigger", sale))
}

func TestValue_Customer(t *testing.T) {
	tests := []struct {
		name     string
		customer *analytics.Customer
		want     string
	}{
		{"name and email", &analytics.Customer{Name: "Jane", Email: "j@x.io"}, "Jane <j@x.io>"},
		{"name only", &analytics.Customer{Name: "Jane"}, "Jane"},
		{"email only", &analytics.Customer{Email: "j@x.io"}, "<j@x.io>"},
		{"empty", &analytics.Customer{}, ""},
		{"missing", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &analytics.LeadEvent{Customer: tt.customer}
			assert.Equal(t, tt.want, Value("customer", lead))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$0.00", FormatAmount(0))
	assert.Equal(t, "$0.05", FormatAmount(5))
	assert.Equal(t, "$49.99", FormatAmount(4999))
	assert.Equal(t, "$1200.00", FormatAmount(120000))
	assert.Equal(t, "$-1.50", FormatAmount(-150))
	assert.Equal(t, "$92233720368547758.07", FormatAmount(math.MaxInt64))
	assert.Equal(t, "$-92233720368547758.08", FormatAmount(math.MinInt64))
}

func TestColumns(t *testing.T) {
	for _, et := range []analytics.EventType{analytics.EventClick, analytics.EventLead, analytics.EventSale} {
		cols := Columns(et)
		assert.NotEmpty(t, cols, et)
		assert.Equal(t, "timestamp", cols[0].Key)
		assert.Equal(t, "Date", cols[0].Label)
	}
	assert.Empty(t, Columns(analytics.EventType("views")))
}
