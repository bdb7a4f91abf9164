package events

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher is the part of *nats.Conn the forwarder needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// NATSForwarder republishes bus events to NATS subjects "<prefix>.<event type>".
type NATSForwarder struct {
	conn   Publisher
	prefix string
	logger *zerolog.Logger
}

func NewNATSForwarder(conn Publisher, prefix string, logger *zerolog.Logger) *NATSForwarder {
	return &NATSForwarder{conn: conn, prefix: prefix, logger: logger}
}

// Attach subscribes the forwarder to every event on the bus.
func (f *NATSForwarder) Attach(bus *EventBus) {
	bus.SubscribeAll(f.Handle)
}

func (f *NATSForwarder) Handle(event *Event) error {
	subject := f.Subject(event.Type)
	if err := f.conn.Publish(subject, event.Payload); err != nil {
		f.logger.Error().Err(err).Str("subject", subject).Msg("nats publish failed")
		return err
	}
	return nil
}

func (f *NATSForwarder) Subject(eventType string) string {
	if f.prefix == "" {
		return eventType
	}
	return f.prefix + "." + eventType
}

// ConnectNATS dials the server and keeps reconnecting in the background.
func ConnectNATS(url string, logger *zerolog.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("shareit"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
}
