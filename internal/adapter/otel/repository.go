package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aureonlegal/caseflow/internal/domain"
)

const tracerName = "github.com/aureonlegal/caseflow/internal/adapter/otel"

// TracingCaseRepository wraps a domain.CaseRepository with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and records
// errors. Only the case repository is decorated: it carries all the
// engine's runtime writes, which is where the tracing pays off.
type TracingCaseRepository struct {
	next   domain.CaseRepository
	tracer trace.Tracer
}

// Compile-time check: TracingCaseRepository implements domain.CaseRepository.
var _ domain.CaseRepository = (*TracingCaseRepository)(nil)

// NewTracingCaseRepository creates a tracing decorator around the given repository.
func NewTracingCaseRepository(next domain.CaseRepository) *TracingCaseRepository {
	return &TracingCaseRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

// record closes the span, marking it failed when err is set.
func record(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *TracingCaseRepository) Create(ctx context.Context, c domain.Case) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.Create",
		trace.WithAttributes(attribute.String("case.id", c.ID)),
	)
	err := r.next.Create(ctx, c)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) GetByID(ctx context.Context, id string) (domain.Case, error) {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.GetByID",
		trace.WithAttributes(attribute.String("case.id", id)),
	)
	c, err := r.next.GetByID(ctx, id)
	record(span, err)
	return c, err
}

func (r *TracingCaseRepository) List(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error) {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	cases, err := r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(cases)))
	}
	record(span, err)
	return cases, err
}

func (r *TracingCaseRepository) Update(ctx context.Context, c domain.Case) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.Update",
		trace.WithAttributes(attribute.String("case.id", c.ID)),
	)
	err := r.next.Update(ctx, c)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) SetCurrentStage(ctx context.Context, caseID string, stageID *string, enteredAt *time.Time) error {
	attrs := []attribute.KeyValue{attribute.String("case.id", caseID)}
	if stageID != nil {
		attrs = append(attrs, attribute.String("stage.id", *stageID))
	}
	ctx, span := r.tracer.Start(ctx, "CaseRepository.SetCurrentStage",
		trace.WithAttributes(attrs...),
	)
	err := r.next.SetCurrentStage(ctx, caseID, stageID, enteredAt)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) SetStatus(ctx context.Context, caseID, statusID string) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.SetStatus",
		trace.WithAttributes(
			attribute.String("case.id", caseID),
			attribute.String("status.id", statusID),
		),
	)
	err := r.next.SetStatus(ctx, caseID, statusID)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) SetDriveFolder(ctx context.Context, caseID, folderID, folderURL string) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.SetDriveFolder",
		trace.WithAttributes(attribute.String("case.id", caseID)),
	)
	err := r.next.SetDriveFolder(ctx, caseID, folderID, folderURL)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) AppendHistory(ctx context.Context, h domain.StageHistory) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.AppendHistory",
		trace.WithAttributes(
			attribute.String("case.id", h.CaseID),
			attribute.String("stage.id", h.StageID),
		),
	)
	err := r.next.AppendHistory(ctx, h)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) OpenHistory(ctx context.Context, caseID, stageID string) (domain.StageHistory, bool, error) {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.OpenHistory",
		trace.WithAttributes(
			attribute.String("case.id", caseID),
			attribute.String("stage.id", stageID),
		),
	)
	h, ok, err := r.next.OpenHistory(ctx, caseID, stageID)
	record(span, err)
	return h, ok, err
}

func (r *TracingCaseRepository) CloseHistory(ctx context.Context, historyID string, leftAt time.Time) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.CloseHistory")
	err := r.next.CloseHistory(ctx, historyID, leftAt)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) HistoryForCase(ctx context.Context, caseID string) ([]domain.StageHistory, error) {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.HistoryForCase",
		trace.WithAttributes(attribute.String("case.id", caseID)),
	)
	history, err := r.next.HistoryForCase(ctx, caseID)
	record(span, err)
	return history, err
}

func (r *TracingCaseRepository) CreateInstance(ctx context.Context, a domain.ActionInstance) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.CreateInstance",
		trace.WithAttributes(
			attribute.String("case.id", a.CaseID),
			attribute.String("template.id", a.TemplateID),
		),
	)
	err := r.next.CreateInstance(ctx, a)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) GetInstance(ctx context.Context, id string) (domain.ActionInstance, error) {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.GetInstance",
		trace.WithAttributes(attribute.String("instance.id", id)),
	)
	a, err := r.next.GetInstance(ctx, id)
	record(span, err)
	return a, err
}

func (r *TracingCaseRepository) UpdateInstance(ctx context.Context, a domain.ActionInstance) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.UpdateInstance",
		trace.WithAttributes(
			attribute.String("instance.id", a.ID),
			attribute.String("instance.status", string(a.Status)),
		),
	)
	err := r.next.UpdateInstance(ctx, a)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) DeleteInstance(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.DeleteInstance",
		trace.WithAttributes(attribute.String("instance.id", id)),
	)
	err := r.next.DeleteInstance(ctx, id)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) InstancesForCase(ctx context.Context, caseID string) ([]domain.ActionInstance, error) {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.InstancesForCase",
		trace.WithAttributes(attribute.String("case.id", caseID)),
	)
	instances, err := r.next.InstancesForCase(ctx, caseID)
	record(span, err)
	return instances, err
}

func (r *TracingCaseRepository) OverdueInstances(ctx context.Context, asOf time.Time) ([]domain.ActionInstance, error) {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.OverdueInstances")
	instances, err := r.next.OverdueInstances(ctx, asOf)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(instances)))
	}
	record(span, err)
	return instances, err
}

func (r *TracingCaseRepository) AppendLog(ctx context.Context, e domain.CaseLogEntry) error {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.AppendLog",
		trace.WithAttributes(attribute.String("case.id", e.CaseID)),
	)
	err := r.next.AppendLog(ctx, e)
	record(span, err)
	return err
}

func (r *TracingCaseRepository) LogForCase(ctx context.Context, caseID string) ([]domain.CaseLogEntry, error) {
	ctx, span := r.tracer.Start(ctx, "CaseRepository.LogForCase",
		trace.WithAttributes(attribute.String("case.id", caseID)),
	)
	entries, err := r.next.LogForCase(ctx, caseID)
	record(span, err)
	return entries, err
}
