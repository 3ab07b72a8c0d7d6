package analytics

import (
	"strconv"
	"strings"
	"time"
)

type EventType string

const (
	EventClick EventType = "click"
	EventLead  EventType = "lead"
	EventSale  EventType = "sale"
)

var eventTypeAliases = map[string]EventType{
	"click":  EventClick,
	"clicks": EventClick,
	"lead":   EventLead,
	"leads":  EventLead,
	"sale":   EventSale,
	"sales":  EventSale,
}

// ParseEventType accepts the singular and plural spellings of an event type.
func ParseEventType(s string) (EventType, bool) {
	t, ok := eventTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// EventRecord is one of *ClickEvent, *LeadEvent or *SaleEvent.
type EventRecord interface {
	Type() EventType
	// Field looks up a flat, same-named attribute of the record.
	Field(name string) (string, bool)

	sealed()
}

// Location and client attributes shared by every variant.
type EventBase struct {
	Timestamp time.Time
	LinkID    string
	Domain    string
	Key       string
	FolderID  string
	Country   string
	City      string
	Region    string
	Continent string
	Device    string
	Browser   string
	OS        string
}

func (b *EventBase) field(name string) (string, bool) {
	switch name {
	case "timestamp":
		if b.Timestamp.IsZero() {
			return "", false
		}
		return FormatTimestamp(b.Timestamp), true
	case "linkId":
		return nonEmpty(b.LinkID)
	case "domain":
		return nonEmpty(b.Domain)
	case "key":
		return nonEmpty(b.Key)
	case "folderId":
		return nonEmpty(b.FolderID)
	case "country":
		return nonEmpty(b.Country)
	case "city":
		return nonEmpty(b.City)
	case "region":
		return nonEmpty(b.Region)
	case "continent":
		return nonEmpty(b.Continent)
	case "device":
		return nonEmpty(b.Device)
	case "browser":
		return nonEmpty(b.Browser)
	case "os":
		return nonEmpty(b.OS)
	}
	return "", false
}

// Click is the click that produced an event. Lead and sale events carry the
// click they were attributed to.
type Click struct {
	ID         string
	Trigger    string
	URL        string
	Referer    string
	RefererURL string
	IP         string
	QR         bool
}

type Customer struct {
	ID    string
	Name  string
	Email string
}

type Sale struct {
	InvoiceID        string
	Amount           int64 // minor units
	Currency         string
	PaymentProcessor string
}

type ClickEvent struct {
	EventBase
	Click Click
}

func (*ClickEvent) Type() EventType { return EventClick }
func (*ClickEvent) sealed()         {}

func (e *ClickEvent) Field(name string) (string, bool) {
	if name == "qr" {
		return strconv.FormatBool(e.Click.QR), true
	}
	return e.EventBase.field(name)
}

type LeadEvent struct {
	EventBase
	EventName string
	Click     *Click
	Customer  *Customer
}

func (*LeadEvent) Type() EventType { return EventLead }
func (*LeadEvent) sealed()         {}

func (e *LeadEvent) Field(name string) (string, bool) {
	if name == "eventName" {
		return nonEmpty(e.EventName)
	}
	return e.EventBase.field(name)
}

type SaleEvent struct {
	EventBase
	EventName string
	Click     *Click
	Customer  *Customer
	Sale      *Sale
}

func (*SaleEvent) Type() EventType { return EventSale }
func (*SaleEvent) sealed()         {}

func (e *SaleEvent) Field(name string) (string, bool) {
	switch name {
	case "eventName":
		return nonEmpty(e.EventName)
	case "paymentProcessor":
		if e.Sale != nil {
			return nonEmpty(e.Sale.PaymentProcessor)
		}
		return "", false
	case "currency":
		if e.Sale != nil {
			return nonEmpty(e.Sale.Currency)
		}
		return "", false
	}
	return e.EventBase.field(name)
}

// Base returns the attributes shared by all variants.
func Base(r EventRecord) *EventBase {
	switch e := r.(type) {
	case *ClickEvent:
		return &e.EventBase
	case *LeadEvent:
		return &e.EventBase
	case *SaleEvent:
		return &e.EventBase
	}
	return nil
}

// ClickOf returns the click attached to a record, if any.
func ClickOf(r EventRecord) *Click {
	switch e := r.(type) {
	case *ClickEvent:
		return &e.Click
	case *LeadEvent:
		return e.Click
	case *SaleEvent:
		return e.Click
	}
	return nil
}

// CustomerOf returns the customer attached to a lead or sale.
func CustomerOf(r EventRecord) *Customer {
	switch e := r.(type) {
	case *LeadEvent:
		return e.Customer
	case *SaleEvent:
		return e.Customer
	}
	return nil
}

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t as ISO-8601 in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}
