package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// natsConn is the subset of *nats.Conn the mirror needs.
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSMirror forwards pipeline events to NATS subjects of the form
// <prefix>.generation.<event>. Publishing is fail-soft: a broker outage
// is logged and never fails a generation.
type NATSMirror struct {
	conn   natsConn
	prefix string
}

// NewNATSMirror connects to the broker and returns a mirror.
func NewNATSMirror(url, subjectPrefix string) (*NATSMirror, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return newNATSMirror(conn, subjectPrefix), nil
}

func newNATSMirror(conn natsConn, subjectPrefix string) *NATSMirror {
	prefix := strings.TrimSuffix(subjectPrefix, ".")
	if prefix == "" {
		prefix = "memoria"
	}
	return &NATSMirror{conn: conn, prefix: prefix}
}

// Attach subscribes the mirror to every event on the bus.
func (m *NATSMirror) Attach(bus *Bus) {
	bus.SubscribeAll(func(e Event) error {
		m.publish(e)
		return nil
	})
}

func (m *NATSMirror) publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	subject := fmt.Sprintf("%s.generation.%s", m.prefix, e.Name())
	if err := m.conn.Publish(subject, data); err != nil {
		slog.Warn("nats publish failed",
			slog.String("subject", subject),
			slog.Any("error", err))
	}
}

// Close drains the connection.
func (m *NATSMirror) Close() error {
	return m.conn.Drain()
}
