package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/internal/telegram"
	"github.com/sinoai/medassist-bot/pkg/logger"
)

// UpdateSource long-polls for new updates.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
}

// Poller drives the long-poll intake loop and fans updates out to the
// router, one goroutine per update.
type Poller struct {
	source  UpdateSource
	router  *Router
	timeout int
	logger  *logger.Logger
}

// NewPoller creates the intake loop. timeout is the long-poll timeout
// in seconds.
func NewPoller(source UpdateSource, router *Router, timeout int, log *logger.Logger) *Poller {
	return &Poller{
		source:  source,
		router:  router,
		timeout: timeout,
		logger:  log,
	}
}

// Run polls until ctx is cancelled. Poll errors back off and retry;
// they never terminate the loop.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("poll failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
			continue
		}

		for _, upd := range updates {
			offset = upd.UpdateID + 1
			// In-flight work survives loop shutdown so a flow that
			// already reached inference still persists its exchange.
			go p.router.HandleUpdate(context.WithoutCancel(ctx), upd)
		}
	}
}
