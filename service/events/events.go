package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ChatRoom/global/config"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Event types published after a handler's storage side effects succeed.
const (
	TypeMemberJoined   = "member.joined"
	TypeMemberBanned   = "member.banned"
	TypeMessageCreated = "message.created"
)

type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	// Key groups related events (room id); brokers that partition use it.
	Key  string `json:"-"`
	Data any    `json:"data"`
}

func NewEnvelope(typ, key string, data any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Key:        key,
		Data:       data,
	}
}

func (e Envelope) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	return b, errors.Wrapf(err, "encode %s", e.Type)
}

type Publisher interface {
	Publish(ctx context.Context, e Envelope) error
	Close() error
}

// Open builds the publisher selected by cfg.Driver.
func Open(cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Driver {
	case "", config.EventsDriverNone:
		return Nop{}, nil
	case config.EventsDriverNats:
		return NewNatsPublisher(cfg.NatsURL, cfg.Topic)
	case config.EventsDriverKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.Topic)
	case config.EventsDriverAmqp:
		return NewAmqpPublisher(cfg.AmqpURL, cfg.Topic)
	default:
		return nil, errors.Errorf("unknown events driver %q", cfg.Driver)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, Envelope) error { return nil }
func (Nop) Close() error                            { return nil }

// Recorder keeps published envelopes in memory.
type Recorder struct {
	mu  sync.Mutex
	out []Envelope
}

func (r *Recorder) Publish(_ context.Context, e Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Published returns a copy of what was recorded so far.
func (r *Recorder) Published() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.out...)
}

// OfType filters Published by event type.
func (r *Recorder) OfType(typ string) []Envelope {
	var out []Envelope
	for _, e := range r.Published() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
