package entity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hearthhome/hearth-core/internal/infrastructure/mqtt"
)

// fakePublisher records published messages.
type fakePublisher struct {
	topics   []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(topic string, payload []byte, _ byte, _ bool) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

// fakeRefresher records refresh requests.
type fakeRefresher struct {
	requested []string
}

func (f *fakeRefresher) RequestRefresh(_ context.Context, integrationID string) error {
	f.requested = append(f.requested, integrationID)
	return nil
}

func newCommanderFixture(t *testing.T) (*Commander, *fakePublisher, *fakeRefresher, *Registry) {
	t.Helper()
	reg := NewRegistry()
	sw := &Entity{
		ID:            "switch-1",
		Name:          "Desk Lamp",
		IntegrationID: "int-1",
		Capabilities:  []Capability{CapOnOff},
	}
	if err := reg.Add(sw); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	pub := &fakePublisher{}
	ref := &fakeRefresher{}
	return NewCommander(reg, pub, ref, mqtt.Topics{}.EntityCommand, 1), pub, ref, reg
}

func TestExecute_PublishThenRefresh(t *testing.T) {
	cmd, pub, ref, _ := newCommanderFixture(t)

	id, err := cmd.Execute(context.Background(), "switch-1", "turn_on", map[string]any{"fade_ms": 200})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if id == "" {
		t.Error("Execute() returned empty command ID")
	}

	if len(pub.topics) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.topics))
	}
	if want := "hearth/command/int-1/switch-1"; pub.topics[0] != want {
		t.Errorf("topic = %q, want %q", pub.topics[0], want)
	}

	var payload map[string]any
	if err := json.Unmarshal(pub.payloads[0], &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload["command"] != "turn_on" {
		t.Errorf("payload command = %v, want turn_on", payload["command"])
	}
	if payload["id"] != id {
		t.Errorf("payload id = %v, want %v", payload["id"], id)
	}

	// Refresh is triggered after a successful publish, not before.
	if len(ref.requested) != 1 || ref.requested[0] != "int-1" {
		t.Errorf("refresh requests = %v, want [int-1]", ref.requested)
	}
}

func TestExecute_CapabilityRejected(t *testing.T) {
	cmd, pub, ref, _ := newCommanderFixture(t)

	_, err := cmd.Execute(context.Background(), "switch-1", "set_position", nil)
	if !errors.Is(err, ErrCommandNotSupported) {
		t.Fatalf("Execute(set_position) = %v, want ErrCommandNotSupported", err)
	}
	if !strings.Contains(err.Error(), "position") {
		t.Errorf("error %q does not name the missing capability", err)
	}
	if len(pub.topics) != 0 {
		t.Error("command published despite capability rejection")
	}
	if len(ref.requested) != 0 {
		t.Error("refresh triggered despite capability rejection")
	}
}

func TestExecute_PublishFailureSkipsRefresh(t *testing.T) {
	cmd, pub, ref, _ := newCommanderFixture(t)
	pub.err = errors.New("broker gone")

	_, err := cmd.Execute(context.Background(), "switch-1", "turn_on", nil)
	if err == nil {
		t.Fatal("Execute() = nil, want publish error")
	}
	if len(ref.requested) != 0 {
		t.Error("refresh triggered despite failed publish")
	}
}

func TestExecute_UnknownEntity(t *testing.T) {
	cmd, _, _, _ := newCommanderFixture(t)

	_, err := cmd.Execute(context.Background(), "missing", "turn_on", nil)
	if !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("Execute(missing) = %v, want ErrEntityNotFound", err)
	}
}

func TestExecute_NoPublisher(t *testing.T) {
	reg := NewRegistry()
	cmd := NewCommander(reg, nil, nil, mqtt.Topics{}.EntityCommand, 1)

	_, err := cmd.Execute(context.Background(), "any", "turn_on", nil)
	if !errors.Is(err, ErrPublisherUnavailable) {
		t.Errorf("Execute() = %v, want ErrPublisherUnavailable", err)
	}
}
