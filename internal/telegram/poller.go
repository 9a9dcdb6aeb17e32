package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/smallbiznis/orderrelay/internal/config"
	"github.com/smallbiznis/orderrelay/internal/messaging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const pollTimeoutSeconds = 60

// Dispatcher handles one inbound event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev messaging.Event)
}

type updateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type PollerParams struct {
	fx.In

	Bot        *tgbotapi.BotAPI
	Dispatcher Dispatcher
	Cfg        config.Config
	Log        *zap.Logger
}

// Poller long-polls updates and hands each one to the dispatcher on its own
// goroutine, so a slow presentation never delays other chats.
type Poller struct {
	source     updateSource
	dispatcher Dispatcher
	operator   messaging.Endpoint
	log        *zap.Logger

	handlers   sync.WaitGroup
	loopDone   chan struct{}
	stopLoop   context.CancelFunc
	cancelWork context.CancelFunc
}

func NewPoller(p PollerParams) *Poller {
	return newPoller(p.Bot, p.Dispatcher, messaging.Endpoint(strings.TrimSpace(p.Cfg.OperatorChatID)), p.Log)
}

func newPoller(source updateSource, dispatcher Dispatcher, operator messaging.Endpoint, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		source:     source,
		dispatcher: dispatcher,
		operator:   operator,
		log:        log.Named("telegram.poller"),
	}
}

func (p *Poller) Start(context.Context) error {
	workCtx, cancelWork := context.WithCancel(context.Background())
	loopCtx, stopLoop := context.WithCancel(workCtx)
	p.cancelWork, p.stopLoop = cancelWork, stopLoop
	p.loopDone = make(chan struct{})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := p.source.GetUpdatesChan(u)

	go p.loop(loopCtx, workCtx, updates)
	p.log.Info("polling for updates")
	return nil
}

// loop stops reading when loopCtx ends; handlers run on workCtx, which
// outlives the loop until Stop has drained them.
func (p *Poller) loop(loopCtx, workCtx context.Context, updates tgbotapi.UpdatesChannel) {
	defer close(p.loopDone)
	for {
		select {
		case <-loopCtx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			ev, ok := ToEvent(update, p.operator)
			if !ok {
				continue
			}
			p.handlers.Add(1)
			go func() {
				defer p.handlers.Done()
				p.dispatcher.Dispatch(workCtx, ev)
			}()
		}
	}
}

// Stop stops polling and waits for in-flight handlers until ctx expires.
func (p *Poller) Stop(ctx context.Context) error {
	if p.stopLoop == nil {
		return nil
	}
	p.source.StopReceivingUpdates()
	p.stopLoop()

	done := make(chan struct{})
	go func() {
		<-p.loopDone
		p.handlers.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancelWork()
		p.log.Info("poller stopped")
		return nil
	case <-ctx.Done():
		p.cancelWork()
		p.log.Warn("poller stop timed out with handlers in flight")
		return ctx.Err()
	}
}
