package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ProgramGenerated is announced after a fresh (uncached) generation.
type ProgramGenerated struct {
	Digest      string    `json:"digest"`
	Format      string    `json:"format"`
	Bytes       int       `json:"bytes"`
	Definitions int       `json:"definitions"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Publisher announces generation events.
type Publisher interface {
	Publish(ctx context.Context, ev ProgramGenerated) error
}

// msgPublisher is the part of *nats.Conn the publisher needs.
type msgPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher sends events as JSON on one subject.
type NATSPublisher struct {
	conn    msgPublisher
	subject string
}

func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

func (p *NATSPublisher) Publish(ctx context.Context, ev ProgramGenerated) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("nats publish %q: %w", p.subject, err)
	}
	return nil
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}
