package realtime

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// NATSPublisher publishes on subjects named notifications.<key>.
type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("inkwell"))
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}
	return &NATSPublisher{nc: nc}, nil
}

func NATSSubject(key string) string {
	return "notifications." + key
}

func (p *NATSPublisher) Publish(ctx context.Context, channelKey, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(event, payload)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(NATSSubject(channelKey), data); err != nil {
		return errors.Wrapf(err, "nats publish %s", channelKey)
	}
	return nil
}

func (p *NATSPublisher) IsConnected() bool {
	return p.nc != nil && p.nc.Status() == nats.CONNECTED
}

func (p *NATSPublisher) Close() error {
	p.nc.Close()
	return nil
}
