package events

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// NatsPublisher publishes core NATS messages on <topic>.<type>.
type NatsPublisher struct {
	nc    *nats.Conn
	topic string
}

func NewNatsPublisher(url, topic string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("chatroom-gateway"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "connect nats %s", url)
	}
	return &NatsPublisher{nc: nc, topic: topic}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, e Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := e.Encode()
	if err != nil {
		return err
	}
	msg := nats.NewMsg(p.topic + "." + e.Type)
	msg.Data = body
	msg.Header.Set(nats.MsgIdHdr, e.ID)
	msg.Header.Set("Content-Type", "application/json")
	return errors.Wrap(p.nc.PublishMsg(msg), "nats publish")
}

func (p *NatsPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return errors.Wrap(err, "drain nats")
	}
	return nil
}
