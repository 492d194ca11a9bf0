// Package events publishes exchange events to NATS for downstream
// analytics. Publishing is best-effort: failures are logged and never
// affect a flow.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/internal/model"
	"github.com/sinoai/medassist-bot/pkg/logger"
)

// SubjectPrefix is the prefix for all bot event subjects.
const SubjectPrefix = "bot.exchange"

// Publisher wraps a NATS connection. A nil Publisher is valid and
// drops all events, so callers never need to branch on whether
// publishing is enabled.
type Publisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

// Connect establishes a connection to the NATS server.
func Connect(url string, log *logger.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{conn: conn, logger: log}, nil
}

// PublishExchange publishes one exchange event on
// bot.exchange.<status>.
func (p *Publisher) PublishExchange(ev *model.ExchangeEvent) {
	if p == nil {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("failed to marshal exchange event", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s.%s", SubjectPrefix, ev.Status)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish exchange event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
