package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"personpatch/internal/audit"
	"personpatch/internal/person/merge"
	"personpatch/internal/person/metrics"
	"personpatch/internal/person/models"
	id "personpatch/pkg/domain"
	dErrors "personpatch/pkg/domain-errors"
	"personpatch/pkg/mergepatch"
	"personpatch/pkg/platform/sentinel"
	"personpatch/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

const tracerName = "personpatch/internal/person/service"

// Store is the persistence contract every backend implements.
type Store interface {
	ListAll(ctx context.Context) ([]*models.Person, error)
	FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error)
	Insert(ctx context.Context, p *models.Person) (id.PersonID, error)
	Replace(ctx context.Context, personID id.PersonID, p *models.Person) (*models.Person, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates reads, creation and merge-patch updates of people.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// List returns every stored person in insertion order.
func (s *Service) List(ctx context.Context) ([]*models.Person, error) {
	ctx, span := s.tracer.Start(ctx, "person.List")
	defer span.End()

	people, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list people"))
	}
	span.SetAttributes(attribute.Int("person.count", len(people)))
	return people, nil
}

// Get loads one person.
func (s *Service) Get(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	ctx, span := s.tracer.Start(ctx, "person.Get", trace.WithAttributes(attribute.String("person.id", personID.String())))
	defer span.End()

	p, err := s.store.FindByID(ctx, personID)
	if err != nil {
		return nil, s.fail(span, translateStoreError(err, "failed to load person"))
	}
	return p, nil
}

// Create validates req, stores the resulting person under a fresh id and
// returns it.
func (s *Service) Create(ctx context.Context, req *models.PersonRequest) (*models.Person, error) {
	start := time.Now()
	defer s.observeCreate(start)
	ctx, span := s.tracer.Start(ctx, "person.Create")
	defer span.End()

	today := id.TodayUTC(requestcontext.Now(ctx))
	if err := req.Validate(today); err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeValidation, "person is invalid"))
	}

	p := models.ToDomain("", req)
	s.logger.DebugContext(ctx, "converted request to person", "person", p)

	personID, err := s.store.Insert(ctx, p)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeConflict, "person already exists"))
		}
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person"))
	}
	p.ID = personID
	span.SetAttributes(attribute.String("person.id", personID.String()))

	s.emit(ctx, audit.Event{
		Action:          audit.ActionPersonCreated,
		PersonID:        personID,
		ChangedSections: models.ChangedSections(&models.Person{}, p),
	})
	s.incrementCreated()
	return p, nil
}

// Patch applies an RFC 7396 merge patch to the stored person and replaces it.
// Nothing is written unless the patched person passes validation.
func (s *Service) Patch(ctx context.Context, personID id.PersonID, patch mergepatch.Node) (*models.Person, error) {
	start := time.Now()
	defer s.observePatch(start)
	ctx, span := s.tracer.Start(ctx, "person.Patch", trace.WithAttributes(attribute.String("person.id", personID.String())))
	defer span.End()

	updated, changed, err := s.patch(ctx, personID, patch)
	outcome := patchOutcome(err)
	span.SetAttributes(attribute.String("patch.outcome", outcome))
	s.incrementPatchOutcome(outcome)
	if err != nil {
		return nil, s.fail(span, err)
	}

	s.emit(ctx, audit.Event{
		Action:          audit.ActionPersonPatched,
		PersonID:        personID,
		ChangedSections: changed,
	})
	return updated, nil
}

func (s *Service) patch(ctx context.Context, personID id.PersonID, patch mergepatch.Node) (*models.Person, []string, error) {
	current, err := s.store.FindByID(ctx, personID)
	if err != nil {
		return nil, nil, translateStoreError(err, "failed to load person")
	}

	updated, err := merge.Apply(ctx, current, patch)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.store.Replace(ctx, personID, updated); err != nil {
		return nil, nil, translateStoreError(err, "failed to store patched person")
	}
	return updated, models.ChangedSections(current, updated), nil
}

func translateStoreError(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "person not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func patchOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeApplied
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound:
		return metrics.OutcomeNotFound
	case dErrors.CodeValidation:
		return metrics.OutcomeValidationFailed
	case dErrors.CodeMalformedPatch:
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeError
	}
}

// fail records err on the span and returns it unchanged.
func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}

// emit publishes a change event. Publishing failures never fail the request.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish person event",
			"request_id", requestcontext.RequestID(ctx),
			"action", event.Action,
			"person_id", event.PersonID,
			"error", err,
		)
	}
}

func (s *Service) incrementCreated() {
	if s.metrics != nil {
		s.metrics.IncrementPeopleCreated()
	}
}

func (s *Service) incrementPatchOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementPatchOutcome(outcome)
	}
}

func (s *Service) observeCreate(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCreate(start)
	}
}

func (s *Service) observePatch(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObservePatch(start)
	}
}
