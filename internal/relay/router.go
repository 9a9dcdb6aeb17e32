// Package relay turns inbound chat events into presentation runs, payment
// prompts and operator hand-offs, and routes operator replies back to the
// customer they belong to.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderrelay/internal/config"
	"github.com/smallbiznis/orderrelay/internal/correlation"
	"github.com/smallbiznis/orderrelay/internal/messaging"
	"github.com/smallbiznis/orderrelay/internal/observability/logger"
	"github.com/smallbiznis/orderrelay/internal/observability/metrics"
	"github.com/smallbiznis/orderrelay/internal/observability/tracing"
	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"github.com/smallbiznis/orderrelay/internal/presentation"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrCorrelationUnresolved means an operator reply matched no customer chat.
var ErrCorrelationUnresolved = errors.New("correlation_unresolved")

// Presenter runs the order presentation for one customer chat.
type Presenter interface {
	Run(ctx context.Context, to messaging.Endpoint, orderID string) error
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Cfg       config.Config
	Relay     *config.RelayConfigHolder
	Orders    domain.Service
	Transport messaging.Transport
	Presenter Presenter
	Table     *correlation.Table
	Node      *snowflake.Node  `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
}

type Router struct {
	log       *zap.Logger
	relay     *config.RelayConfigHolder
	orders    domain.Service
	transport messaging.Transport
	presenter Presenter
	table     *correlation.Table
	node      *snowflake.Node
	metrics   *metrics.Metrics
	operator  messaging.Endpoint

	inflight sync.WaitGroup
}

func New(p Params) *Router {
	log := p.Log.Named("relay")
	operator := messaging.Endpoint(strings.TrimSpace(p.Cfg.OperatorChatID))
	if operator == "" {
		log.Warn("ADMIN_CHAT_ID not set, operator forwarding disabled")
	}
	return &Router{
		log:       log,
		relay:     p.Relay,
		orders:    p.Orders,
		transport: p.Transport,
		presenter: p.Presenter,
		table:     p.Table,
		node:      p.Node,
		metrics:   p.Metrics,
		operator:  operator,
	}
}

// Dispatch handles one inbound event. It never panics and never returns an
// error: failures are logged, and the customer gets an apology when the
// event came from a known chat.
func (r *Router) Dispatch(ctx context.Context, ev messaging.Event) {
	if r.node != nil {
		ctx = logger.WithEventID(ctx, r.node.Generate().String())
	}
	ctx, span := tracing.StartDispatch(ctx, string(ev.Kind), ev.ID)
	defer span.End()

	log := logger.WithChat(logger.WithContext(ctx, r.log), ev.Origin.String(), "").
		With(zap.String("kind", string(ev.Kind)))
	r.metrics.RecordEvent(ctx, string(ev.Kind))

	defer func() {
		if rec := recover(); rec != nil {
			span.SetStatus(codes.Error, "panic")
			log.Error("dispatch panicked", zap.Any("panic", rec), zap.Stack("stack"))
			r.apologize(ctx, log, ev.Origin)
		}
	}()

	if err := r.dispatch(ctx, log, ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		log.Error("dispatch failed", zap.Error(err))
		r.apologize(ctx, log, ev.Origin)
	}
}

// Wait blocks until every background operator forward has finished.
func (r *Router) Wait() {
	r.inflight.Wait()
}

func (r *Router) dispatch(ctx context.Context, log *zap.Logger, ev messaging.Event) error {
	switch ev.Kind {
	case messaging.EventStart:
		return r.handleStart(ctx, ev)
	case messaging.EventText:
		return r.handleText(ctx, log, ev)
	case messaging.EventAction:
		return r.handleAction(ctx, log, ev)
	case messaging.EventOperatorReply:
		if !r.isOperator(ev.Origin) {
			return r.handleText(ctx, log, ev)
		}
		return r.handleOperatorReply(ctx, log, ev)
	default:
		log.Debug("event ignored")
		return nil
	}
}

func (r *Router) isOperator(e messaging.Endpoint) bool {
	return r.operator != "" && e == r.operator
}

func (r *Router) handleStart(ctx context.Context, ev messaging.Event) error {
	arg := strings.TrimSpace(ev.Payload)
	if arg == "" {
		return r.reply(ctx, ev.Origin, welcomeText)
	}
	orderID := arg
	if LooksLikeOrderID(arg) {
		orderID = NormalizeOrderID(arg)
	}
	return r.presenter.Run(ctx, ev.Origin, orderID)
}

func (r *Router) handleText(ctx context.Context, log *zap.Logger, ev messaging.Event) error {
	text := strings.TrimSpace(ev.Payload)
	switch {
	case LooksLikeOrderID(text):
		return r.presenter.Run(ctx, ev.Origin, NormalizeOrderID(text))
	case isHelpKeyword(text):
		return r.reply(ctx, ev.Origin, helpText)
	case r.isOperator(ev.Origin):
		log.Debug("operator text without reply target ignored")
		return nil
	default:
		return r.reply(ctx, ev.Origin, unknownText)
	}
}

func (r *Router) handleAction(ctx context.Context, log *zap.Logger, ev messaging.Event) error {
	req, ok := presentation.ParseAction(ev.Payload)
	if !ok {
		log.Warn("unrecognised action", zap.String("data", ev.Payload))
		r.ack(ctx, log, ev.ID, "")
		return nil
	}

	log = log.With(zap.String("order_id", req.OrderID), zap.String("action", string(req.Kind)))
	switch req.Kind {
	case presentation.ActionPay:
		return r.handlePay(ctx, log, ev, req)
	case presentation.ActionMethod:
		return r.handleMethod(ctx, log, ev, req)
	case presentation.ActionAdmin:
		return r.handleContact(ctx, log, ev, req)
	}
	return nil
}

func (r *Router) handlePay(ctx context.Context, log *zap.Logger, ev messaging.Event, req presentation.ActionRequest) error {
	order, err := r.orders.Lookup(ctx, req.OrderID)
	if errors.Is(err, domain.ErrNotFound) {
		r.ack(ctx, log, ev.ID, ackOrderNotFound)
		return nil
	}
	if err != nil {
		r.ack(ctx, log, ev.ID, "")
		return err
	}

	r.ack(ctx, log, ev.ID, "")
	body, rows, skipped := presentation.PaymentSelection(order)
	if len(skipped) > 0 {
		log.Warn("payment methods left out of selection", zap.Strings("methods", skipped))
	}
	if _, err := r.transport.SendActions(ctx, ev.Origin, body, messaging.FormatMarkdown, rows); err != nil {
		r.metrics.RecordSendFailure(ctx, "payment_selection")
		return fmt.Errorf("send payment selection: %w", err)
	}
	return nil
}

func (r *Router) handleMethod(ctx context.Context, log *zap.Logger, ev messaging.Event, req presentation.ActionRequest) error {
	order, err := r.orders.Lookup(ctx, req.OrderID)
	if errors.Is(err, domain.ErrNotFound) {
		r.ack(ctx, log, ev.ID, ackOrderNotFound)
		return nil
	}
	if err != nil {
		r.ack(ctx, log, ev.ID, "")
		return err
	}

	option, ok := order.PaymentMethod(req.Method)
	if !ok {
		log.Info("payment method not found", zap.String("method", req.Method), zap.Error(domain.ErrPaymentMethodNotFound))
		r.ack(ctx, log, ev.ID, ackMethodNotFound)
		return nil
	}

	r.ack(ctx, log, ev.ID, "")
	if _, err := r.transport.SendText(ctx, ev.Origin, presentation.PaymentDetails(order, option), messaging.FormatMarkdown); err != nil {
		r.metrics.RecordSendFailure(ctx, "payment_details")
		return fmt.Errorf("send payment details: %w", err)
	}
	return nil
}

func (r *Router) reply(ctx context.Context, to messaging.Endpoint, body string) error {
	if _, err := r.transport.SendText(ctx, to, body, messaging.FormatMarkdown); err != nil {
		r.metrics.RecordSendFailure(ctx, "reply")
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// ack answers an action event. Failures are logged, never returned.
func (r *Router) ack(ctx context.Context, log *zap.Logger, eventID, text string) {
	if eventID == "" {
		return
	}
	if err := r.transport.Acknowledge(ctx, eventID, text); err != nil {
		r.metrics.RecordSendFailure(ctx, "acknowledge")
		log.Warn("action acknowledgement failed", zap.Error(err))
	}
}

func (r *Router) apologize(ctx context.Context, log *zap.Logger, to messaging.Endpoint) {
	if to == "" {
		return
	}
	if _, err := r.transport.SendText(ctx, to, apologyText, messaging.FormatPlain); err != nil {
		r.metrics.RecordSendFailure(ctx, "apology")
		log.Warn("apology not delivered", zap.Error(err))
	}
}
