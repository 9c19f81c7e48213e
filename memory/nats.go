package memory

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Publisher is the subset of nats.Conn the sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink mirrors transcript messages onto a NATS subject so external
// tooling can observe a running session. Publish failures are logged
// and dropped.
type NATSSink struct {
	pub     Publisher
	subject string
	logger  *slog.Logger
}

const defaultSubject = "deviceagent.transcript"

// NewNATSSink creates a sink publishing to subject. An empty subject
// selects the default.
func NewNATSSink(pub Publisher, subject string, logger *slog.Logger) *NATSSink {
	if subject == "" {
		subject = defaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSSink{
		pub:     pub,
		subject: subject,
		logger:  logger.With("category", "memory"),
	}
}

// ConnectNATSSink dials url and returns a sink backed by the connection.
func ConnectNATSSink(url, subject string, logger *slog.Logger) (*NATSSink, error) {
	nc, err := nats.Connect(url, nats.Name("deviceagent"))
	if err != nil {
		return nil, err
	}
	return NewNATSSink(nc, subject, logger), nil
}

// Record implements Sink.
func (s *NATSSink) Record(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("Failed to encode transcript message", "error", err)
		return
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		s.logger.Warn("Failed to publish transcript message", "subject", s.subject, "error", err)
	}
}
