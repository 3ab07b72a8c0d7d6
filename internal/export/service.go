package export

import (
	"bytes"
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"eventexport/internal/analytics"
	"eventexport/internal/constants"
	"eventexport/internal/history"
	"eventexport/internal/logger"
	"eventexport/internal/plan"
	"eventexport/pkg/logging"
	"eventexport/pkg/metrics"
	"eventexport/pkg/tracing"

	pkgerrors "eventexport/pkg/errors"
)

// Stage is a state of the export pipeline. Stages only move forward; any
// failure moves the export to StageRejected.
type Stage string

const (
	StageReceived   Stage = "received"
	StageValidated  Stage = "validated"
	StageAuthorized Stage = "authorized"
	StageFetched    Stage = "fetched"
	StageProjected  Stage = "projected"
	StageEncoded    Stage = "encoded"
	StageDelivered  Stage = "delivered"
	StageRejected   Stage = "rejected"
)

const (
	defaultSideEffectTimeout = 10 * time.Second
	tracerName               = "export-service"
)

// Result is a fully encoded export ready to be written to the client.
type Result struct {
	ID        string
	EventType analytics.EventType
	Filename  string
	Body      []byte
	Rows      int
	// LimitReached is set when the row cap was hit and older events were left out.
	LimitReached bool
	Window       plan.Window
}

type Service struct {
	gate     *Gate
	source   analytics.Source
	logger   logger.Logger
	maxRows  int
	history  history.Repository
	notifier Notifier

	sideEffectTimeout time.Duration
	wg                sync.WaitGroup
}

type ServiceOption func(*Service)

// WithMaxRows caps the rows fetched per export. Values outside
// (0, MaxExportRows] are ignored.
func WithMaxRows(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 && n <= constants.MaxExportRows {
			s.maxRows = n
		}
	}
}

func WithHistory(repo history.Repository) ServiceOption {
	return func(s *Service) {
		s.history = repo
	}
}

func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithSideEffectTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.sideEffectTimeout = d
		}
	}
}

func NewService(gate *Gate, source analytics.Source, log logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		gate:              gate,
		source:            source,
		logger:            log,
		maxRows:           constants.MaxExportRows,
		sideEffectTimeout: defaultSideEffectTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export runs the pipeline for one request. Nothing is fetched before the
// request has been validated and authorized, and the CSV is only returned once
// fully encoded.
func (s *Service) Export(ctx context.Context, p Principal, q url.Values) (*Result, error) {
	started := time.Now()
	ctx = logging.WithWorkspaceID(ctx, p.Workspace.ID)
	ctx, span := tracing.GetTracer(tracerName).Start(ctx, "export.run",
		trace.WithAttributes(attribute.String("workspace.id", p.Workspace.ID)),
	)
	defer span.End()

	s.transition(ctx, StageReceived)

	result, eventType, err := s.run(ctx, p, q, started)
	if err != nil {
		tracing.RecordError(span, err)
		s.reject(ctx, eventType, err, started)
		return nil, err
	}

	s.transition(ctx, StageDelivered)
	metrics.IncExportRequest(string(eventType), "success")
	metrics.ObserveExportDuration(time.Since(started), "success")
	return result, nil
}

func (s *Service) run(ctx context.Context, p Principal, q url.Values, started time.Time) (*Result, analytics.EventType, error) {
	req, err := s.validate(ctx, q)
	if err != nil {
		return nil, "", err
	}
	s.transition(ctx, StageValidated)

	scope, err := s.authorize(ctx, p, req)
	if err != nil {
		return nil, req.EventType, err
	}
	s.transition(ctx, StageAuthorized)

	records, err := s.fetch(ctx, p, req, scope)
	if err != nil {
		return nil, req.EventType, err
	}
	s.transition(ctx, StageFetched, "rows", len(records))

	_, projectSpan := tracing.GetTracer(tracerName).Start(ctx, "export.project")
	table := ProjectAll(req.Columns, records)
	projectSpan.End()
	s.transition(ctx, StageProjected)

	_, encodeSpan := tracing.GetTracer(tracerName).Start(ctx, "export.encode")
	var buf bytes.Buffer
	err = EncodeCSV(&buf, table)
	tracing.RecordError(encodeSpan, err)
	encodeSpan.End()
	if err != nil {
		return nil, req.EventType, pkgerrors.ErrInternal.WithCause(err).WithMessage("failed to encode export")
	}

	result := &Result{
		ID:           uuid.New().String(),
		EventType:    req.EventType,
		Filename:     string(req.EventType) + "_export.csv",
		Body:         buf.Bytes(),
		Rows:         len(records),
		LimitReached: len(records) >= s.maxRows,
		Window:       scope.Window,
	}
	s.transition(ctx, StageEncoded, "size_bytes", len(result.Body))

	metrics.ObserveExportRows(string(req.EventType), result.Rows)
	metrics.ObserveExportSize(string(req.EventType), len(result.Body))

	s.dispatchSideEffects(ctx, p, req, scope, result, time.Since(started))
	return result, req.EventType, nil
}

func (s *Service) validate(ctx context.Context, q url.Values) (*Request, error) {
	_, span := tracing.GetTracer(tracerName).Start(ctx, "export.validate")
	defer span.End()

	req, err := ParseRequest(q)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("export.event_type", string(req.EventType)),
		attribute.Int("export.columns", len(req.Columns)),
	)
	return req, nil
}

func (s *Service) authorize(ctx context.Context, p Principal, req *Request) (*Scope, error) {
	ctx, span := tracing.GetTracer(tracerName).Start(ctx, "export.authorize")
	defer span.End()

	scope, err := s.gate.Authorize(ctx, p, req)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("export.interval", string(scope.Window.Interval)))
	return scope, nil
}

func (s *Service) fetch(ctx context.Context, p Principal, req *Request, scope *Scope) ([]analytics.EventRecord, error) {
	ctx, span := tracing.GetTracer(tracerName).Start(ctx, "export.fetch")
	defer span.End()

	records, err := s.source.FetchEvents(ctx, analytics.Filter{
		WorkspaceID: p.Workspace.ID,
		EventType:   req.EventType,
		Start:       scope.Window.Start,
		End:         scope.Window.End,
		Domain:      scope.Domain,
		LinkID:      scope.LinkID,
		FolderID:    scope.FolderID,
		FolderIDs:   scope.FolderIDs,
		Dimensions:  req.Filters,
		Limit:       s.maxRows,
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrDataSource)
	}

	if len(records) > s.maxRows {
		records = records[:s.maxRows]
	}
	span.SetAttributes(attribute.Int("export.rows", len(records)))
	return records, nil
}

func (s *Service) transition(ctx context.Context, stage Stage, keysAndValues ...interface{}) {
	metrics.IncExportStage(string(stage))
	s.logger.DebugwCtx(ctx, "Export stage reached", append([]interface{}{"stage", stage}, keysAndValues...)...)
}

func (s *Service) reject(ctx context.Context, eventType analytics.EventType, err error, started time.Time) {
	metrics.IncExportStage(string(StageRejected))
	metrics.IncExportRequest(string(eventType), pkgerrors.Code(err))
	metrics.ObserveExportDuration(time.Since(started), "rejected")

	if pkgerrors.ToHTTPStatus(err) >= 500 {
		s.logger.ErrorwCtx(ctx, "Export failed", "stage", StageRejected, "error", err)
		return
	}
	s.logger.InfowCtx(ctx, "Export rejected", "stage", StageRejected, "error_code", pkgerrors.Code(err), "error", err)
}

// dispatchSideEffects records the export and announces it. Both are best
// effort: they run after the response is ready and their failures are only
// logged and counted.
func (s *Service) dispatchSideEffects(ctx context.Context, p Principal, req *Request, scope *Scope, result *Result, elapsed time.Duration) {
	if s.history == nil && s.notifier == nil {
		return
	}

	now := time.Now().UTC()
	rec := history.Record{
		ID:          result.ID,
		WorkspaceID: p.Workspace.ID,
		UserID:      p.Session.UserID,
		RequestID:   logging.GetRequestID(ctx),
		EventType:   string(req.EventType),
		Columns:     req.Columns,
		Interval:    string(scope.Window.Interval),
		Start:       scope.Window.Start,
		End:         scope.Window.End,
		LinkID:      scope.LinkID,
		FolderID:    scope.FolderID,
		Filters:     req.Filters,
		Rows:        result.Rows,
		Truncated:   result.LimitReached,
		SizeBytes:   len(result.Body),
		DurationMs:  elapsed.Milliseconds(),
		CreatedAt:   now,
	}
	ev := CompletedEvent{
		ExportID:    result.ID,
		WorkspaceID: p.Workspace.ID,
		UserID:      p.Session.UserID,
		EventType:   string(req.EventType),
		Columns:     req.Columns,
		Interval:    string(scope.Window.Interval),
		Start:       scope.Window.Start,
		End:         scope.Window.End,
		Rows:        result.Rows,
		Truncated:   result.LimitReached,
		SizeBytes:   len(result.Body),
		CompletedAt: now,
	}

	bgCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(bgCtx, s.sideEffectTimeout)
		defer cancel()

		if s.history != nil {
			if err := s.history.Insert(ctx, &rec); err != nil {
				metrics.IncExportSideEffectFailure("history")
				s.logger.WarnwCtx(ctx, "Failed to record export history", "export_id", rec.ID, "error", err)
			}
		}
		if s.notifier != nil {
			if err := s.notifier.PublishCompleted(ctx, ev); err != nil {
				metrics.IncExportSideEffectFailure("event")
				s.logger.WarnwCtx(ctx, "Failed to publish export event", "export_id", ev.ExportID, "error", err)
			}
		}
	}()
}

// Wait blocks until in-flight side effects have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
