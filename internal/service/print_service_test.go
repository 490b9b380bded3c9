package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"epos-bridge/internal/bridge"
	"epos-bridge/internal/command"
	"epos-bridge/internal/metrics"
	"epos-bridge/internal/model"
	"epos-bridge/internal/repository"
)

type printFixture struct {
	svc       *PrintService
	printers  *fakePrinterRepo
	jobs      *fakeJobRepo
	drv       *recordingDriver
	drivers   *fakeDrivers
	publisher *fakePublisher
}

func newPrintFixture(t *testing.T, printers ...*model.Printer) *printFixture {
	t.Helper()
	f := &printFixture{
		printers:  newFakePrinterRepo(printers...),
		jobs:      newFakeJobRepo(),
		drv:       &recordingDriver{},
		publisher: &fakePublisher{},
	}
	f.drivers = &fakeDrivers{drv: f.drv, supported: true}
	f.svc = NewPrintService(f.printers, f.jobs, f.drivers, command.NewTranslator(zap.NewNop()),
		f.publisher, metrics.New(), testConfig(), zap.NewNop())
	return f
}

func batchOf(records ...command.Record) *bridge.Batch {
	return &bridge.Batch{RequestID: "req-1", Commands: records}
}

func TestSubmitForwardsRecordsInOrder(t *testing.T) {
	f := newPrintFixture(t, testPrinter("front-1"))

	job, err := f.svc.Submit(context.Background(), "front-1", batchOf(
		command.Record{"id": "appendText", "value": "Hello\n"},
		command.Record{"id": "addFeedLine", "value": 2},
		command.Record{"id": "addCut", "value": "CUT_FEED"},
	), model.JobSourceHTTP)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	want := []string{"text:Hello\n", "feed:2", "cut:1"}
	if !reflect.DeepEqual(f.drv.calls, want) {
		t.Errorf("driver calls = %q, want %q", f.drv.calls, want)
	}
	if job.Status != model.JobStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", job.Status)
	}
	if job.Forwarded != 3 || job.Dropped != 0 {
		t.Errorf("forwarded/dropped = %d/%d, want 3/0", job.Forwarded, job.Dropped)
	}
	if job.BytesSent == 0 || job.BytesSent != f.drv.sent {
		t.Errorf("bytes sent = %d, driver sent %d", job.BytesSent, f.drv.sent)
	}
	if job.RequestID == nil || *job.RequestID != "req-1" {
		t.Errorf("request id = %v, want req-1", job.RequestID)
	}
	if f.drv.connected {
		t.Error("driver still connected after job")
	}
	if len(f.printers.touched) != 1 {
		t.Errorf("last print touched %d times, want 1", len(f.printers.touched))
	}
	if len(f.jobs.completed) != 1 || f.jobs.completed[0].Status != model.JobStatusCompleted {
		t.Errorf("stored completions = %+v", f.jobs.completed)
	}

	events := f.publisher.types()
	wantEvents := []model.EventType{model.EventJobStarted, model.EventJobCompleted}
	if !reflect.DeepEqual(events, wantEvents) {
		t.Errorf("events = %v, want %v", events, wantEvents)
	}
}

func TestSubmitDropsBadRecordsWithoutFailing(t *testing.T) {
	f := newPrintFixture(t, testPrinter("front-1"))

	job, err := f.svc.Submit(context.Background(), "front-1", batchOf(
		command.Record{"value": "no id"},
		command.Record{"id": "addBarcode"},
		command.Record{"id": "appendText", "value": "ok"},
		command.Record{"id": "addTextFont", "value": "FONT_Z"},
	), model.JobSourceWebSocket)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if job.Status != model.JobStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", job.Status)
	}
	if job.Forwarded != 1 || job.Dropped != 3 {
		t.Errorf("forwarded/dropped = %d/%d, want 1/3", job.Forwarded, job.Dropped)
	}

	statuses := make([]string, len(job.Results))
	for i, r := range job.Results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		statuses[i] = r.Status
	}
	want := []string{
		string(command.StatusMissingID),
		string(command.StatusUnknownCommand),
		string(command.StatusForwarded),
		string(command.StatusUnmapped),
	}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("statuses = %v, want %v", statuses, want)
	}
	if got := job.OutcomeCounts[string(command.StatusForwarded)]; got != 1 {
		t.Errorf("forwarded count = %v, want 1", got)
	}
	if _, ok := job.OutcomeCounts[string(command.StatusDriverError)]; ok {
		t.Error("zero counts should be omitted")
	}
}

func TestSubmitConnectFailure(t *testing.T) {
	f := newPrintFixture(t, testPrinter("front-1"))
	f.drv.connectErr = errors.New("connection refused")

	job, err := f.svc.Submit(context.Background(), "front-1", batchOf(
		command.Record{"id": "appendText", "value": "x"},
	), model.JobSourceMQTT)
	if !errors.Is(err, ErrPrinterUnavailable) {
		t.Fatalf("error = %v, want ErrPrinterUnavailable", err)
	}
	if job == nil {
		t.Fatal("failed job should still be returned")
	}
	if job.Status != model.JobStatusFailed {
		t.Errorf("status = %s, want FAILED", job.Status)
	}
	if job.ErrorMessage == nil || !strings.Contains(*job.ErrorMessage, "connection refused") {
		t.Errorf("error message = %v", job.ErrorMessage)
	}
	if job.Results[0].Status != string(command.StatusNoPrinter) {
		t.Errorf("untranslated record status = %s, want no_printer", job.Results[0].Status)
	}
	if len(f.printers.touched) != 0 {
		t.Error("last print time updated for failed job")
	}
	events := f.publisher.types()
	if events[len(events)-1] != model.EventJobFailed {
		t.Errorf("last event = %s, want JOB_FAILED", events[len(events)-1])
	}
}

func TestSubmitSendFailure(t *testing.T) {
	f := newPrintFixture(t, testPrinter("front-1"))
	f.drv.sendErr = errors.New("broken pipe")

	job, err := f.svc.Submit(context.Background(), "front-1", batchOf(
		command.Record{"id": "appendText", "value": "x"},
	), model.JobSourceHTTP)
	if !errors.Is(err, ErrPrinterUnavailable) {
		t.Fatalf("error = %v, want ErrPrinterUnavailable", err)
	}
	if job.Status != model.JobStatusFailed || job.BytesSent != 0 {
		t.Errorf("job = %s with %d bytes, want FAILED with 0", job.Status, job.BytesSent)
	}
	if job.Results[0].Status != string(command.StatusForwarded) {
		t.Errorf("record status = %s, want forwarded", job.Results[0].Status)
	}
	if f.drv.buffered != 0 {
		t.Errorf("buffer not cleared after failed send: %d", f.drv.buffered)
	}
}

func TestSubmitRejects(t *testing.T) {
	disabled := testPrinter("off-1")
	disabled.Enabled = false

	tooMany := make([]command.Record, 11)
	for i := range tooMany {
		tooMany[i] = command.Record{"id": "appendText", "value": "x"}
	}

	tests := []struct {
		name      string
		printerID string
		batch     *bridge.Batch
		want      error
	}{
		{"nil batch", "front-1", nil, ErrInvalidRequest},
		{"empty batch", "front-1", &bridge.Batch{}, ErrInvalidRequest},
		{"too many", "front-1", &bridge.Batch{Commands: tooMany}, ErrTooManyCommands},
		{"unknown printer", "nope", batchOf(command.Record{"id": "appendText", "value": "x"}), repository.ErrPrinterNotFound},
		{"disabled", "off-1", batchOf(command.Record{"id": "appendText", "value": "x"}), ErrPrinterDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPrintFixture(t, testPrinter("front-1"), disabled)
			job, err := f.svc.Submit(context.Background(), tt.printerID, tt.batch, model.JobSourceHTTP)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if job != nil {
				t.Errorf("job = %+v, want nil", job)
			}
			if len(f.jobs.jobs) != 0 {
				t.Error("rejected batch created a job")
			}
		})
	}
}

func TestListJobsLimits(t *testing.T) {
	f := newPrintFixture(t, testPrinter("front-1"))
	ctx := context.Background()

	for _, tc := range []struct{ in, want int }{{0, 50}, {10, 10}, {10000, 500}} {
		if _, err := f.svc.ListJobs(ctx, "front-1", tc.in); err != nil {
			t.Fatalf("ListJobs: %v", err)
		}
		if f.jobs.lastLimit != tc.want {
			t.Errorf("limit %d -> %d, want %d", tc.in, f.jobs.lastLimit, tc.want)
		}
	}

	if _, err := f.svc.ListJobs(ctx, "missing", 10); !errors.Is(err, repository.ErrPrinterNotFound) {
		t.Errorf("error = %v, want ErrPrinterNotFound", err)
	}
}

func TestGetJob(t *testing.T) {
	f := newPrintFixture(t, testPrinter("front-1"))
	job, err := f.svc.Submit(context.Background(), "front-1", batchOf(
		command.Record{"id": "appendText", "value": "x"},
	), model.JobSourceHTTP)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got, err := f.svc.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != model.JobStatusCompleted {
		t.Errorf("stored status = %s", got.Status)
	}
}
