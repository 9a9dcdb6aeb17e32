// Package presentation walks a customer through a recorded order: greeting,
// item gallery, summary and the follow-up action prompt.
package presentation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/orderrelay/internal/clock"
	"github.com/smallbiznis/orderrelay/internal/config"
	"github.com/smallbiznis/orderrelay/internal/messaging"
	"github.com/smallbiznis/orderrelay/internal/observability/logger"
	"github.com/smallbiznis/orderrelay/internal/observability/metrics"
	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrSendFailed marks a stage whose message could not be delivered.
var ErrSendFailed = errors.New("presentation_send_failed")

const (
	stageGreeting = "greeting"
	stageGallery  = "gallery"
	stageSummary  = "summary"
	stagePrompt   = "prompt"
	stageNotFound = "not_found"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Orders    domain.Service
	Transport messaging.Transport
	Sleeper   clock.Sleeper
	Relay     *config.RelayConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Sequencer struct {
	log       *zap.Logger
	orders    domain.Service
	transport messaging.Transport
	sleeper   clock.Sleeper
	relay     *config.RelayConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) *Sequencer {
	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = clock.System{}
	}
	return &Sequencer{
		log:       p.Log.Named("presentation"),
		orders:    p.Orders,
		transport: p.Transport,
		sleeper:   sleeper,
		relay:     p.Relay,
		metrics:   p.Metrics,
	}
}

// Run looks up orderID and presents it to the customer at to.
//
// An unknown order produces a single not-found message and no error. A
// store failure is returned wrapping domain.ErrStoreUnavailable. Gallery
// failures are logged and skipped; greeting, summary and prompt failures
// stop the run and are returned wrapping ErrSendFailed.
func (s *Sequencer) Run(ctx context.Context, to messaging.Endpoint, orderID string) error {
	log := logger.WithChat(logger.WithContext(ctx, s.log), to.String(), orderID)

	order, err := s.orders.Lookup(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Info("order not found")
		s.metrics.RecordPresentation(ctx, stageNotFound)
		if _, err := s.transport.SendText(ctx, to, NotFoundText, messaging.FormatMarkdown); err != nil {
			return s.sendFailed(ctx, log, stageNotFound, err)
		}
		return nil
	}
	if err != nil {
		s.metrics.RecordPresentation(ctx, "store_unavailable")
		return err
	}

	if err := s.present(ctx, log, to, order); err != nil {
		s.metrics.RecordPresentation(ctx, "failed")
		return err
	}
	s.metrics.RecordPresentation(ctx, "ok")
	log.Info("order presented", zap.Int("items", len(order.Items)))
	return nil
}

func (s *Sequencer) present(ctx context.Context, log *zap.Logger, to messaging.Endpoint, order domain.Order) error {
	pacing := s.relay.Get().Pacing

	if _, err := s.transport.SendText(ctx, to, greeting(order), messaging.FormatMarkdown); err != nil {
		return s.sendFailed(ctx, log, stageGreeting, err)
	}

	for i, item := range order.Items {
		if i > 0 {
			if err := s.pause(ctx, pacing.BetweenItems); err != nil {
				return err
			}
		}
		if _, err := s.transport.SendVisual(ctx, to, item.Image, caption(order, item)); err != nil {
			s.metrics.RecordSendFailure(ctx, stageGallery)
			log.Warn("item image not delivered",
				zap.Int("item_index", i),
				zap.String("item", item.Name),
				zap.Error(err),
			)
		}
	}

	if err := s.pause(ctx, pacing.BeforeSummary); err != nil {
		return err
	}
	if _, err := s.transport.SendText(ctx, to, FormatSummary(order), messaging.FormatMarkdown); err != nil {
		return s.sendFailed(ctx, log, stageSummary, err)
	}

	if err := s.pause(ctx, pacing.BeforePrompt); err != nil {
		return err
	}
	actions := PromptActions(order.ID)
	if len(actions) < 2 {
		log.Warn("order id too long for follow-up actions", zap.Int("actions", len(actions)))
	}
	if _, err := s.transport.SendActions(ctx, to, PromptText, messaging.FormatPlain, actions); err != nil {
		return s.sendFailed(ctx, log, stagePrompt, err)
	}
	return nil
}

func (s *Sequencer) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.sleeper.Sleep(ctx, d)
}

func (s *Sequencer) sendFailed(ctx context.Context, log *zap.Logger, stage string, err error) error {
	s.metrics.RecordSendFailure(ctx, stage)
	log.Warn("presentation stage not delivered", zap.String("stage", stage), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrSendFailed, stage, err)
}
