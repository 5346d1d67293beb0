package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

func TestTimesheetAdd_WritesEntryAndLogSummary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	w := seedWorld(t, store)
	caso := mustCreateCase(t, store, "c-1", w)

	svc := app.NewTimesheetService(store.Timesheets, store.Cases, store.Catalog, testLogger())

	workedOn := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	entry, err := svc.Add(ctx, caso.ID, workedOn, w.User.ID, 90*time.Minute, "Analise de documentos")
	if err != nil {
		t.Fatalf("adding entry: %v", err)
	}
	if entry.Duration != 90*time.Minute {
		t.Errorf("Duration = %v, want 90m", entry.Duration)
	}

	entries, err := store.Cases.LogForCase(ctx, caso.ID)
	if err != nil {
		t.Fatalf("loading log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	want := "--- Timesheet ---\nDate: 07/04/2025\nProfessional: Ana Lima\nTime: 01:30\nDescription: Analise de documentos"
	if entries[0].Description != want {
		t.Errorf("log entry = %q, want %q", entries[0].Description, want)
	}
}

func TestTimesheetAdd_CaseNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	w := seedWorld(t, store)

	svc := app.NewTimesheetService(store.Timesheets, store.Cases, store.Catalog, testLogger())

	_, err := svc.Add(ctx, "missing", time.Now().UTC(), w.User.ID, time.Hour, "x")
	if !errors.Is(err, domain.ErrCaseNotFound) {
		t.Errorf("got %v, want ErrCaseNotFound", err)
	}
}

func TestTimesheetTotalForCase(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	w := seedWorld(t, store)
	caso := mustCreateCase(t, store, "c-1", w)

	svc := app.NewTimesheetService(store.Timesheets, store.Cases, store.Catalog, testLogger())

	workedOn := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Add(ctx, caso.ID, workedOn, w.User.ID, 90*time.Minute, "Analise"); err != nil {
		t.Fatalf("adding entry: %v", err)
	}
	if _, err := svc.Add(ctx, caso.ID, workedOn, w.User.ID, 45*time.Minute, "Ligacao"); err != nil {
		t.Fatalf("adding entry: %v", err)
	}

	total, err := svc.TotalForCase(ctx, caso.ID)
	if err != nil {
		t.Fatalf("summing entries: %v", err)
	}
	if total != 135*time.Minute {
		t.Errorf("total = %v, want 135m", total)
	}
	if got := domain.FormatDuration(total); got != "02:15" {
		t.Errorf("formatted total = %q, want %q", got, "02:15")
	}
}

func TestTimesheetDelete_KeepsLogSummary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	w := seedWorld(t, store)
	caso := mustCreateCase(t, store, "c-1", w)

	svc := app.NewTimesheetService(store.Timesheets, store.Cases, store.Catalog, testLogger())

	entry, err := svc.Add(ctx, caso.ID, time.Now().UTC(), w.User.ID, time.Hour, "Analise")
	if err != nil {
		t.Fatalf("adding entry: %v", err)
	}
	if err := svc.Delete(ctx, entry.ID); err != nil {
		t.Fatalf("deleting entry: %v", err)
	}

	remaining, err := svc.ListForCase(ctx, caso.ID)
	if err != nil {
		t.Fatalf("listing entries: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("got %d entries, want 0", len(remaining))
	}

	logEntries, err := store.Cases.LogForCase(ctx, caso.ID)
	if err != nil {
		t.Fatalf("loading log: %v", err)
	}
	if len(logEntries) != 1 {
		t.Errorf("got %d log entries, want 1", len(logEntries))
	}

	if err := svc.Delete(ctx, entry.ID); !errors.Is(err, domain.ErrEntryNotFound) {
		t.Errorf("got %v, want ErrEntryNotFound", err)
	}
}
