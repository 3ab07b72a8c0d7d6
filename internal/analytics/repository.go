package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"eventexport/pkg/metrics"
)

// Filter is the normalized query handed to the event store.
type Filter struct {
	WorkspaceID string
	EventType   EventType
	Start       time.Time
	End         time.Time
	Domain      string
	LinkID      string

	// FolderID restricts results to one folder. When empty, results are
	// limited to links outside any folder plus those in FolderIDs.
	FolderID  string
	FolderIDs []string

	Dimensions map[string]string
	Limit      int
}

type Source interface {
	FetchEvents(ctx context.Context, f Filter) ([]EventRecord, error)
}

// DimensionColumns maps filterable request parameters to event columns.
var DimensionColumns = map[string]string{
	"country": "country",
	"city":    "city",
	"device":  "device",
	"browser": "browser",
	"os":      "os",
	"referer": "referer",
	"trigger": "trigger",
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectEvents = `
		SELECT event_type, timestamp,
			COALESCE(link_id, ''), COALESCE(domain, ''), COALESCE(key, ''), COALESCE(folder_id, ''),
			COALESCE(country, ''), COALESCE(city, ''), COALESCE(region, ''), COALESCE(continent, ''),
			COALESCE(device, ''), COALESCE(browser, ''), COALESCE(os, ''),
			COALESCE(click_id, ''), COALESCE(trigger, ''), COALESCE(url, ''),
			COALESCE(referer, ''), COALESCE(referer_url, ''), COALESCE(ip, ''), COALESCE(qr, false),
			COALESCE(event_name, ''),
			COALESCE(customer_id, ''), COALESCE(customer_name, ''), COALESCE(customer_email, ''),
			COALESCE(invoice_id, ''), COALESCE(amount, 0), COALESCE(currency, ''), COALESCE(payment_processor, '')
		FROM events`

func buildEventsQuery(f Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "workspace_id = "+arg(f.WorkspaceID))
	conds = append(conds, "event_type = "+arg(string(f.EventType)))
	conds = append(conds, "timestamp >= "+arg(f.Start))
	conds = append(conds, "timestamp <= "+arg(f.End))

	if f.LinkID != "" {
		conds = append(conds, "link_id = "+arg(f.LinkID))
	} else if f.Domain != "" {
		conds = append(conds, "domain = "+arg(f.Domain))
	}

	if f.FolderID != "" {
		conds = append(conds, "folder_id = "+arg(f.FolderID))
	} else {
		folderIDs := f.FolderIDs
		if folderIDs == nil {
			folderIDs = []string{}
		}
		conds = append(conds, "(folder_id IS NULL OR folder_id = ANY("+arg(pq.Array(folderIDs))+"))")
	}

	keys := make([]string, 0, len(f.Dimensions))
	for k := range f.Dimensions {
		if _, ok := DimensionColumns[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		conds = append(conds, DimensionColumns[k]+" = "+arg(f.Dimensions[k]))
	}

	query := selectEvents + "\n\t\tWHERE " + strings.Join(conds, " AND ") +
		"\n\t\tORDER BY timestamp DESC\n\t\tLIMIT " + arg(f.Limit)
	return query, args
}

func (r *PostgresRepository) FetchEvents(ctx context.Context, f Filter) ([]EventRecord, error) {
	start := time.Now()
	query, args := buildEventsQuery(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.observe("error", start)
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	records := make([]EventRecord, 0, 64)
	for rows.Next() {
		select {
		case <-ctx.Done():
			r.observe("canceled", start)
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		record, err := scanEvent(rows)
		if err != nil {
			r.observe("error", start)
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		r.observe("error", start)
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	r.observe("success", start)
	return records, nil
}

func (r *PostgresRepository) observe(status string, start time.Time) {
	metrics.IncDatabaseQuery("postgresql", "fetch_events", status)
	metrics.ObserveDatabaseQueryDuration("postgresql", "fetch_events", time.Since(start))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (EventRecord, error) {
	var (
		eventType string
		base      EventBase
		click     Click
		eventName string
		customer  Customer
		sale      Sale
	)

	if err := row.Scan(
		&eventType, &base.Timestamp,
		&base.LinkID, &base.Domain, &base.Key, &base.FolderID,
		&base.Country, &base.City, &base.Region, &base.Continent,
		&base.Device, &base.Browser, &base.OS,
		&click.ID, &click.Trigger, &click.URL,
		&click.Referer, &click.RefererURL, &click.IP, &click.QR,
		&eventName,
		&customer.ID, &customer.Name, &customer.Email,
		&sale.InvoiceID, &sale.Amount, &sale.Currency, &sale.PaymentProcessor,
	); err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	clickRef := &click
	if click.ID == "" {
		clickRef = nil
	}
	customerRef := &customer
	if customer == (Customer{}) {
		customerRef = nil
	}

	switch EventType(eventType) {
	case EventClick:
		return &ClickEvent{EventBase: base, Click: click}, nil
	case EventLead:
		return &LeadEvent{EventBase: base, EventName: eventName, Click: clickRef, Customer: customerRef}, nil
	case EventSale:
		return &SaleEvent{EventBase: base, EventName: eventName, Click: clickRef, Customer: customerRef, Sale: &sale}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", eventType)
}
