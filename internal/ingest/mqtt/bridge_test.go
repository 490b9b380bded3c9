package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"epos-bridge/internal/bridge"
	"epos-bridge/internal/config"
	"epos-bridge/internal/events"
	"epos-bridge/internal/model"
	"epos-bridge/internal/service"
)

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, payload: payload})
	return nil
}

func (p *fakePublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.msgs...)
}

type fakeSubmitter struct {
	printerIDs []string
	err        error
	failJob    bool
}

func (f *fakeSubmitter) Submit(ctx context.Context, printerID string, batch *bridge.Batch, source model.JobSource) (*model.PrintJob, error) {
	f.printerIDs = append(f.printerIDs, printerID)
	if f.err != nil {
		return nil, f.err
	}
	job := &model.PrintJob{ID: uuid.New(), PrinterID: printerID, Source: source, Status: model.JobStatusCompleted}
	if f.failJob {
		job.Status = model.JobStatusFailed
		return job, service.ErrPrinterUnavailable
	}
	return job, nil
}

func testMQTTConfig() *config.MQTTConfig {
	return &config.MQTTConfig{TopicPrefix: "epos", QoS: 1, Timeout: time.Second}
}

func decodeResult(t *testing.T, msg published) Result {
	t.Helper()
	var r Result
	if err := json.Unmarshal(msg.payload, &r); err != nil {
		t.Fatalf("decode %s: %v", msg.payload, err)
	}
	return r
}

func TestHandleMessage(t *testing.T) {
	jobs := &fakeSubmitter{}
	pub := &fakePublisher{}
	b := NewBridge(testMQTTConfig(), jobs, nil, zap.NewNop())

	b.HandleMessage(context.Background(), pub, "epos/printers/front-1/jobs",
		[]byte(`{"request_id":"r1","commands":[{"id":"appendText","value":"hi"}]}`))

	msgs := pub.all()
	if len(msgs) != 1 || msgs[0].topic != "epos/printers/front-1/results" {
		t.Fatalf("published = %+v", msgs)
	}
	r := decodeResult(t, msgs[0])
	if r.Type != "job_result" || r.RequestID != "r1" || r.Job == nil || r.Job.Source != model.JobSourceMQTT {
		t.Errorf("result = %+v", r)
	}
	if len(jobs.printerIDs) != 1 || jobs.printerIDs[0] != "front-1" {
		t.Errorf("submitted for %v", jobs.printerIDs)
	}
}

func TestHandleMessageErrors(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		err      error
		failJob  bool
		wantType string
		wantJob  bool
	}{
		{"malformed", `{`, nil, false, "error", false},
		{"empty", `{"commands":[]}`, nil, false, "error", false},
		{"rejected", `{"commands":[{"id":"appendText","value":"x"}]}`, service.ErrPrinterDisabled, false, "error", false},
		{"printer down", `{"commands":[{"id":"appendText","value":"x"}]}`, nil, true, "job_result", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			b := NewBridge(testMQTTConfig(), &fakeSubmitter{err: tt.err, failJob: tt.failJob}, nil, zap.NewNop())
			b.HandleMessage(context.Background(), pub, "epos/printers/front-1/jobs", []byte(tt.payload))

			msgs := pub.all()
			if len(msgs) != 1 {
				t.Fatalf("published %d messages", len(msgs))
			}
			r := decodeResult(t, msgs[0])
			if r.Type != tt.wantType || (r.Job != nil) != tt.wantJob || r.Error == "" {
				t.Errorf("result = %+v", r)
			}
		})
	}
}

func TestHandleMessageIgnoresForeignTopics(t *testing.T) {
	jobs := &fakeSubmitter{}
	pub := &fakePublisher{}
	b := NewBridge(testMQTTConfig(), jobs, nil, zap.NewNop())

	b.HandleMessage(context.Background(), pub, "epos/printers/front-1/results", []byte(`{}`))
	if len(pub.all()) != 0 || len(jobs.printerIDs) != 0 {
		t.Error("message on result topic was processed")
	}
}

func TestForwardEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewEventBus(zap.NewNop())
	go bus.Run(ctx)

	pub := &fakePublisher{}
	b := NewBridge(testMQTTConfig(), &fakeSubmitter{}, bus, zap.NewNop())

	done := make(chan struct{})
	go func() {
		b.forwardEvents(ctx, pub)
		close(done)
	}()

	job := &model.PrintJob{ID: uuid.New(), PrinterID: "front-1", Status: model.JobStatusFailed}
	deadline := time.Now().Add(2 * time.Second)
	for len(pub.all()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("event not published")
		}
		bus.Publish(model.NewPrinterEvent(model.EventJobFailed, job))
		time.Sleep(10 * time.Millisecond)
	}

	msg := pub.all()[0]
	if msg.topic != "epos/printers/front-1/events" {
		t.Errorf("topic = %s", msg.topic)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder did not stop")
	}
}

func TestReceiveDoesNotBlock(t *testing.T) {
	b := NewBridge(testMQTTConfig(), &fakeSubmitter{}, nil, zap.NewNop())
	for i := 0; i < inboxSize; i++ {
		b.inbox <- message{}
	}

	done := make(chan bool, 1)
	go func() {
		ok, _ := b.receive(paho.PublishReceived{
			Packet: &paho.Publish{Topic: "epos/printers/x/jobs", Payload: []byte(`{}`)},
		})
		done <- ok
	}()
	select {
	case ok := <-done:
		if !ok {
			t.Error("message not acknowledged")
		}
	case <-time.After(time.Second):
		t.Fatal("receive blocked on a full inbox")
	}
}
