package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventexport/internal/analytics"
	"eventexport/internal/broker"
	"eventexport/internal/history"
	"eventexport/internal/plan"
	"eventexport/internal/workspace"

	pkgerrors "eventexport/pkg/errors"
)

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

type fakeDomains struct {
	mu      sync.Mutex
	domains map[string]bool
	err     error
	calls   int
	// delay makes lookups slow; a cancelled ctx aborts them like a database query.
	delay time.Duration
}

func (f *fakeDomains) GetDomain(ctx context.Context, workspaceID, slug string) (*workspace.Domain, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to get domain: %w", ctx.Err())
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if !f.domains[slug] {
		return nil, pkgerrors.NotFound("domain")
	}
	return &workspace.Domain{ID: "dom_" + slug, WorkspaceID: workspaceID, Slug: slug}, nil
}

type fakeLinks struct {
	links map[string]*workspace.Link
	calls int
}

func (f *fakeLinks) GetLink(ctx context.Context, workspaceID, domain, key string) (*workspace.Link, error) {
	f.calls++
	if l, ok := f.links[domain+"/"+key]; ok {
		return l, nil
	}
	return nil, pkgerrors.NotFound("link")
}

type fakeFolders struct {
	mu        sync.Mutex
	readable  []string
	readErr   error
	allowed   map[string]bool
	missing   map[string]bool
	checked   []string
	readCalls int
}

func (f *fakeFolders) CheckFolderPermission(ctx context.Context, workspaceID, userID, folderID, permission string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = append(f.checked, folderID)
	if f.missing[folderID] {
		return pkgerrors.NotFound("folder")
	}
	if !f.allowed[folderID] {
		return pkgerrors.PermissionDenied("folder")
	}
	return nil
}

func (f *fakeFolders) ReadableFolderIDs(ctx context.Context, workspaceID, userID string) ([]string, error) {
	f.mu.Lock()
	f.readCalls++
	f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.readable, nil
}

type fakeSource struct {
	records []analytics.EventRecord
	err     error
	calls   int
	last    analytics.Filter
}

func (f *fakeSource) FetchEvents(ctx context.Context, filter analytics.Filter) ([]analytics.EventRecord, error) {
	f.calls++
	f.last = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeHistory struct {
	mu      sync.Mutex
	records []history.Record
	err     error
}

func (f *fakeHistory) Insert(ctx context.Context, rec *history.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeHistory) ListRecent(ctx context.Context, workspaceID string, limit int) ([]history.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]history.Record, 0, len(f.records))
	for _, r := range f.records {
		if r.WorkspaceID == workspaceID {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []CompletedEvent
	err    error
}

func (f *fakeNotifier) PublishCompleted(ctx context.Context, ev CompletedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type fakeProducer struct {
	topic    string
	messages []broker.Message
	err      error
}

func (f *fakeProducer) Publish(ctx context.Context, topic string, msg broker.Message) error {
	if f.err != nil {
		return f.err
	}
	f.topic = topic
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

type fixture struct {
	domains *fakeDomains
	links   *fakeLinks
	folders *fakeFolders
	source  *fakeSource
	plans   *plan.Validator
	gate    *Gate
}

func newFixture() *fixture {
	f := &fixture{
		domains: &fakeDomains{domains: map[string]bool{"dub.sh": true}},
		links: &fakeLinks{links: map[string]*workspace.Link{
			"dub.sh/abc":    {ID: "link_abc", Domain: "dub.sh", Key: "abc"},
			"dub.sh/secret": {ID: "link_secret", Domain: "dub.sh", Key: "secret", FolderID: "fold_private"},
		}},
		folders: &fakeFolders{
			readable: []string{"fold_shared"},
			allowed:  map[string]bool{"fold_shared": true},
			missing:  map[string]bool{"fold_gone": true},
		},
		source: &fakeSource{},
		plans: plan.NewValidator(map[string]int{
			"free":       30,
			"pro":        365,
			"enterprise": 0,
		}),
	}
	f.gate = NewGate(f.domains, f.links, f.folders, f.plans)
	f.gate.now = func() time.Time { return testNow }
	return f
}

func testPrincipal() Principal {
	return Principal{
		Workspace: workspace.Workspace{
			ID:         "ws_1",
			Slug:       "acme",
			Plan:       "pro",
			CreatedAt:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			Usage:      10,
			UsageLimit: 1000,
		},
		Session: workspace.Session{UserID: "user_1"},
	}
}

func clickAt(domain, key string, ts time.Time) *analytics.ClickEvent {
	return &analytics.ClickEvent{
		EventBase: analytics.EventBase{Timestamp: ts, Domain: domain, Key: key, Country: "US"},
		Click:     analytics.Click{ID: "clk_" + key, Trigger: "click", URL: "https://acme.com/" + key},
	}
}
