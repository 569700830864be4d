package pubsub

import (
	"testing"
	"time"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
)

func init() {
	// Initialize logger for tests
	logger.Init()
}

func TestNewEmbeddedNATSPubSub(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	defer ps.Close()

	if ps.server == nil {
		t.Error("server should not be nil")
	}
	if ps.nc == nil {
		t.Error("NATS connection should not be nil")
	}
	if ps.js == nil {
		t.Error("JetStream context should not be nil")
	}
	if ps.GetServerURL() == "" {
		t.Error("server URL should not be empty")
	}
}

func TestEmbeddedNATSSubscribeUnsubscribe(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	defer ps.Close()

	ch := ps.Subscribe()
	if ps.GetSubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", ps.GetSubscriberCount())
	}

	ps.Unsubscribe(ch)
	if ps.GetSubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe, got %d", ps.GetSubscriberCount())
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed after unsubscribe")
		}
	default:
		t.Error("channel should be closed and readable")
	}
}

func TestEmbeddedNATSPublishAndReceive(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	defer ps.Close()

	// Give the subscription goroutine time to start
	time.Sleep(100 * time.Millisecond)

	ch := ps.Subscribe()

	event := Event{
		Type:    EventReportParsed,
		Payload: map[string]interface{}{"reportId": "555"},
	}

	ps.Publish(event)

	select {
	case received := <-ch:
		if received.Type != EventReportParsed {
			t.Errorf("expected type %s, got %s", EventReportParsed, received.Type)
		}
		if received.Payload["reportId"] != "555" {
			t.Error("payload mismatch")
		}
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for event")
	}
}

func TestEmbeddedNATSMultipleSubscribers(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	defer ps.Close()

	time.Sleep(100 * time.Millisecond)

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()

	ps.Publish(Event{Type: EventReportDone})

	for i, ch := range []chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.Type != EventReportDone {
				t.Errorf("subscriber %d: expected type %s, got %s", i, EventReportDone, received.Type)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestEmbeddedNATSClose(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}

	ch := ps.Subscribe()

	// Close should not panic and should close subscriber channels
	ps.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed after Close()")
		}
	default:
		t.Error("channel should be closed and readable")
	}
}

func TestDefaultEmbeddedNATSOptions(t *testing.T) {
	opts := DefaultEmbeddedNATSOptions()

	if opts.Port != -1 {
		t.Errorf("expected port -1 (random), got %d", opts.Port)
	}
	if opts.Subject != "reports.events" {
		t.Errorf("expected subject reports.events, got %s", opts.Subject)
	}
	if opts.StreamName != StreamName {
		t.Errorf("expected stream name %s, got %s", StreamName, opts.StreamName)
	}
	if opts.StoreDir != "" {
		t.Errorf("expected empty store dir, got %s", opts.StoreDir)
	}
}

func TestEmbeddedNATSCustomOptions(t *testing.T) {
	opts := EmbeddedNATSOptions{
		Port:       0, // Random port
		Subject:    "custom.events",
		StreamName: "CUSTOM_STREAM",
		StoreDir:   "", // In-memory
	}

	ps, err := NewEmbeddedNATSPubSub(opts)
	if err != nil {
		t.Fatalf("Failed to create embedded NATS with custom options: %v", err)
	}
	defer ps.Close()

	if ps.subject != "custom.events" {
		t.Errorf("expected subject custom.events, got %s", ps.subject)
	}
}
