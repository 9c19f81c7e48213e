package memory

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
)

func TestAppendAndMessages(t *testing.T) {
	m := New()
	m.Append(RoleUser, "hi")
	m.Append(RoleAssistant, "hello")

	msgs := m.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len = %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "hi" {
		t.Errorf("first = %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "hello" {
		t.Errorf("second = %+v", msgs[1])
	}
	if msgs[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	m := New(WithCapacity(3))
	for i := 0; i < 5; i++ {
		m.Append(RoleUser, "msg-"+strconv.Itoa(i))
	}

	msgs := m.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d", len(msgs))
	}
	if msgs[0].Content != "msg-2" || msgs[2].Content != "msg-4" {
		t.Errorf("kept %q .. %q", msgs[0].Content, msgs[2].Content)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	m := New()
	m.Append(RoleUser, "original")

	msgs := m.Messages()
	msgs[0].Content = "mutated"

	if m.Messages()[0].Content != "original" {
		t.Error("transcript mutated through returned slice")
	}
}

func TestClear(t *testing.T) {
	m := New()
	m.Append(RoleUser, "hi")
	m.Clear()
	if m.Len() != 0 {
		t.Errorf("len after clear = %d", m.Len())
	}
}

type captureSink struct {
	recorded []Message
}

func (s *captureSink) Record(msg Message) { s.recorded = append(s.recorded, msg) }

func TestSinkMirrorsAppends(t *testing.T) {
	sink := &captureSink{}
	m := New(WithSink(sink))
	m.Append(RoleToolCall, "search_web")

	if len(sink.recorded) != 1 {
		t.Fatalf("recorded = %d", len(sink.recorded))
	}
	if sink.recorded[0].Role != RoleToolCall || sink.recorded[0].Content != "search_web" {
		t.Errorf("recorded = %+v", sink.recorded[0])
	}
}

type capturePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestNATSSinkPublishesJSON(t *testing.T) {
	pub := &capturePublisher{}
	sink := NewNATSSink(pub, "", nil)

	m := New(WithSink(sink))
	m.Append(RoleAssistant, "All steps completed.")

	if len(pub.subjects) != 1 || pub.subjects[0] != "deviceagent.transcript" {
		t.Fatalf("subjects = %v", pub.subjects)
	}

	var msg Message
	if err := json.Unmarshal(pub.payloads[0], &msg); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if msg.Role != RoleAssistant || msg.Content != "All steps completed." {
		t.Errorf("published = %+v", msg)
	}
}

func TestNATSSinkCustomSubject(t *testing.T) {
	pub := &capturePublisher{}
	sink := NewNATSSink(pub, "agent.session.7", nil)

	sink.Record(Message{Role: RoleUser, Content: "hi"})

	if pub.subjects[0] != "agent.session.7" {
		t.Errorf("subject = %q", pub.subjects[0])
	}
}

func TestNATSSinkPublishFailureIsDropped(t *testing.T) {
	sink := NewNATSSink(&capturePublisher{err: errors.New("disconnected")}, "", nil)

	// Must not panic; the transcript itself is unaffected.
	sink.Record(Message{Role: RoleUser, Content: "hi"})
}
