package export

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"eventexport/internal/analytics"
	"eventexport/internal/constants"
)

var columnLabels = map[string]string{
	"trigger":          "Event",
	"event":            "Event",
	"url":              "Destination URL",
	"os":               "OS",
	"referer":          "Referrer",
	"refererUrl":       "Referrer URL",
	"timestamp":        "Date",
	"invoiceId":        "Invoice ID",
	"saleAmount":       "Sale Amount",
	"clickId":          "Click ID",
	"ip":               "IP Address",
	"qr":               "QR Scan",
	"linkId":           "Link ID",
	"folderId":         "Folder ID",
	"paymentProcessor": "Payment Processor",
}

// extractor returns false when the record has no value for the column,
// including when the column does not apply to the record's variant.
type extractor func(analytics.EventRecord) (string, bool)

var extractors = map[string]extractor{
	"trigger":    triggerValue,
	"event":      eventNameValue,
	"url":        clickValue(func(c *analytics.Click) string { return c.URL }),
	"referer":    clickValue(func(c *analytics.Click) string { return c.Referer }),
	"refererUrl": clickValue(func(c *analytics.Click) string { return c.RefererURL }),
	"clickId":    clickValue(func(c *analytics.Click) string { return c.ID }),
	"ip":         clickValue(func(c *analytics.Click) string { return c.IP }),
	"link":       linkValue,
	"country":    countryValue,
	"customer":   customerValue,
	"invoiceId":  invoiceIDValue,
	"saleAmount": saleAmountValue,
}

// Label returns the header for a column key. Keys without a fixed label are
// shown with their first letter upper-cased.
func Label(key string) string {
	if label, ok := columnLabels[key]; ok {
		return label
	}
	return capitalize(key)
}

// Value renders one cell. It never fails: columns that do not apply to the
// record render empty.
func Value(key string, r analytics.EventRecord) string {
	if fn, ok := extractors[key]; ok {
		v, _ := fn(r)
		return v
	}
	v, _ := r.Field(key)
	return v
}

// Table is a projected export: one header and rows in header order.
type Table struct {
	Header []string
	Rows   [][]string
}

// Project renders the cells of one record in column order.
func Project(columns []string, r analytics.EventRecord) []string {
	row := make([]string, len(columns))
	for i, key := range columns {
		row[i] = Value(key, r)
	}
	return row
}

func ProjectAll(columns []string, records []analytics.EventRecord) Table {
	header := make([]string, len(columns))
	for i, key := range columns {
		header[i] = Label(key)
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = Project(columns, r)
	}
	return Table{Header: header, Rows: rows}
}

type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var defaultColumns = map[analytics.EventType][]string{
	analytics.EventClick: {
		"timestamp", "trigger", "link", "url", "country", "city", "region", "continent",
		"device", "browser", "os", "referer", "refererUrl", "ip", "qr", "clickId",
	},
	analytics.EventLead: {
		"timestamp", "event", "link", "customer", "url", "country", "city", "region", "continent",
		"device", "browser", "os", "referer", "refererUrl", "clickId",
	},
	analytics.EventSale: {
		"timestamp", "event", "link", "customer", "invoiceId", "saleAmount", "currency",
		"paymentProcessor", "url", "country", "city", "device", "browser", "os", "referer", "clickId",
	},
}

// Columns lists the columns that carry data for an event type.
func Columns(eventType analytics.EventType) []Column {
	keys := defaultColumns[eventType]
	columns := make([]Column, len(keys))
	for i, key := range keys {
		columns[i] = Column{Key: key, Label: Label(key)}
	}
	return columns
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func triggerValue(r analytics.EventRecord) (string, bool) {
	e, ok := r.(*analytics.ClickEvent)
	if !ok || e.Click.Trigger == "" {
		return "", false
	}
	return e.Click.Trigger, true
}

func eventNameValue(r analytics.EventRecord) (string, bool) {
	switch e := r.(type) {
	case *analytics.LeadEvent:
		return e.EventName, e.EventName != ""
	case *analytics.SaleEvent:
		return e.EventName, e.EventName != ""
	}
	return "", false
}

func clickValue(get func(*analytics.Click) string) extractor {
	return func(r analytics.EventRecord) (string, bool) {
		c := analytics.ClickOf(r)
		if c == nil {
			return "", false
		}
		v := get(c)
		return v, v != ""
	}
}

func linkValue(r analytics.EventRecord) (string, bool) {
	b := analytics.Base(r)
	if b == nil || b.Domain == "" {
		return "", false
	}
	if b.Key == "" || b.Key == constants.RootLinkKey {
		return b.Domain, true
	}
	return b.Domain + "/" + b.Key, true
}

func countryValue(r analytics.EventRecord) (string, bool) {
	b := analytics.Base(r)
	if b == nil || b.Country == "" {
		return "", false
	}
	return CountryName(b.Country), true
}

func customerValue(r analytics.EventRecord) (string, bool) {
	c := analytics.CustomerOf(r)
	if c == nil {
		return "", false
	}
	switch {
	case c.Email == "":
		return c.Name, c.Name != ""
	case c.Name == "":
		return "<" + c.Email + ">", true
	}
	return c.Name + " <" + c.Email + ">", true
}

func invoiceIDValue(r analytics.EventRecord) (string, bool) {
	e, ok := r.(*analytics.SaleEvent)
	if !ok || e.Sale == nil || e.Sale.InvoiceID == "" {
		return "", false
	}
	return e.Sale.InvoiceID, true
}

func saleAmountValue(r analytics.EventRecord) (string, bool) {
	e, ok := r.(*analytics.SaleEvent)
	if !ok || e.Sale == nil {
		return "", false
	}
	return FormatAmount(e.Sale.Amount), true
}

// FormatAmount renders minor currency units as dollars with two decimals.
func FormatAmount(minor int64) string {
	sign := ""
	abs := uint64(minor)
	if minor < 0 {
		sign = "-"
		abs = -abs
	}
	return fmt.Sprintf("$%s%d.%02d", sign, abs/100, abs%100)
}
