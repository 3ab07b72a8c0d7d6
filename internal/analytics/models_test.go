package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEventType(t *testing.T) {
	tests := []struct {
		in   string
		want EventType
		ok   bool
	}{
		{"click", EventClick, true},
		{"clicks", EventClick, true},
		{"Leads", EventLead, true},
		{" sale ", EventSale, true},
		{"sales", EventSale, true},
		{"views", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseEventType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 123456789, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-03-01T08:30:00.123Z", FormatTimestamp(ts))
}

func TestEventRecord_Field(t *testing.T) {
	base := EventBase{
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		LinkID:    "link_1",
		Domain:    "acme.link",
		Key:       "promo",
		Country:   "US",
		Device:    "Desktop",
	}

	click := &ClickEvent{EventBase: base, Click: Click{ID: "clk_1", QR: true}}
	v, ok := click.Field("qr")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	v, ok = click.Field("timestamp")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-02T03:04:05.000Z", v)

	_, ok = click.Field("city")
	assert.False(t, ok, "empty attributes are absent")

	_, ok = click.Field("eventName")
	assert.False(t, ok)

	lead := &LeadEvent{EventBase: base, EventName: "Signup"}
	v, ok = lead.Field("eventName")
	assert.True(t, ok)
	assert.Equal(t, "Signup", v)

	sale := &SaleEvent{EventBase: base, Sale: &Sale{Currency: "usd", PaymentProcessor: "stripe"}}
	v, ok = sale.Field("paymentProcessor")
	assert.True(t, ok)
	assert.Equal(t, "stripe", v)

	_, ok = (&SaleEvent{EventBase: base}).Field("currency")
	assert.False(t, ok)
}

func TestAccessors(t *testing.T) {
	c := &Click{ID: "clk_1"}
	cust := &Customer{Name: "Ada"}

	click := &ClickEvent{EventBase: EventBase{LinkID: "a"}, Click: *c}
	lead := &LeadEvent{EventBase: EventBase{LinkID: "b"}, Click: c, Customer: cust}
	sale := &SaleEvent{EventBase: EventBase{LinkID: "c"}}

	assert.Equal(t, "a", Base(click).LinkID)
	assert.Equal(t, "b", Base(lead).LinkID)
	assert.Equal(t, "c", Base(sale).LinkID)

	assert.Equal(t, "clk_1", ClickOf(click).ID)
	assert.Same(t, c, ClickOf(lead))
	assert.Nil(t, ClickOf(sale))

	assert.Nil(t, CustomerOf(click))
	assert.Same(t, cust, CustomerOf(lead))

	assert.Equal(t, EventClick, click.Type())
	assert.Equal(t, EventLead, lead.Type())
	assert.Equal(t, EventSale, sale.Type())
}
