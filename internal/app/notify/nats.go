package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Nats publishes each event on <prefix>.account.<id>.<type>.
type Nats struct {
	conn   *nats.Conn
	prefix string
}

func NewNats(url, prefix string) (*Nats, error) {
	opts := []nats.Option{
		nats.Name("server-tonix-app"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.Timeout(5 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("nats reconnected to %s", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connect nats %s", url)
	}
	return &Nats{conn: conn, prefix: prefix}, nil
}

func Subject(prefix string, e Event) string {
	return prefix + ".account." + strconv.FormatInt(e.AccountID, 10) + "." + e.Type
}

func (n *Nats) Publish(_ context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	return errors.Wrap(n.conn.Publish(Subject(n.prefix, e), payload), "publish event")
}

// Close flushes buffered events before disconnecting.
func (n *Nats) Close() {
	if err := n.conn.Drain(); err != nil {
		log.Warnf("drain nats: %v", err)
	}
}
