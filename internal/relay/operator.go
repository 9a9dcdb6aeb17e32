package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/orderrelay/internal/correlation"
	"github.com/smallbiznis/orderrelay/internal/messaging"
	"github.com/smallbiznis/orderrelay/internal/observability/logger"
	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"github.com/smallbiznis/orderrelay/internal/presentation"
	"go.uber.org/zap"
)

// ForwardStatus summarises a background operator hand-off.
type ForwardStatus string

const (
	ForwardDelivered ForwardStatus = "delivered"
	// ForwardPartial means the notification went out and was linked, but
	// the order context message did not.
	ForwardPartial  ForwardStatus = "partial"
	ForwardFailed   ForwardStatus = "failed"
	ForwardDisabled ForwardStatus = "disabled"
)

// Outcome is the result of one operator hand-off. It never reaches the customer.
type Outcome struct {
	Status         ForwardStatus
	NotificationID int
	ContextSent    bool
	Err            error
}

type contactRequest struct {
	orderID  string
	customer messaging.Endpoint
	from     messaging.Sender
}

func (r *Router) handleContact(ctx context.Context, log *zap.Logger, ev messaging.Event, req presentation.ActionRequest) error {
	r.ack(ctx, log, ev.ID, "")
	if _, err := r.transport.SendText(ctx, ev.Origin, contactingText(req.OrderID), messaging.FormatMarkdown); err != nil {
		r.metrics.RecordSendFailure(ctx, "contact_ack")
		log.Warn("contact acknowledgement not delivered", zap.Error(err))
	}

	r.forwardAsync(ctx, log, contactRequest{orderID: req.OrderID, customer: ev.Origin, from: ev.From})
	return nil
}

// forwardAsync runs the hand-off on its own goroutine with a context that
// outlives the inbound event but is bounded by the forward timeout.
func (r *Router) forwardAsync(ctx context.Context, log *zap.Logger, req contactRequest) {
	timeout := r.relay.Get().OperatorForwardTimeout
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		outcome := r.forwardToOperator(fctx, req)
		r.metrics.RecordOperatorForward(fctx, string(outcome.Status))

		fields := []zap.Field{
			zap.String("status", string(outcome.Status)),
			zap.Int("notification_id", outcome.NotificationID),
			zap.Bool("context_sent", outcome.ContextSent),
		}
		switch outcome.Status {
		case ForwardDelivered:
			log.Info("operator notified", fields...)
		case ForwardDisabled:
			log.Debug("operator forwarding disabled", fields...)
		default:
			log.Warn("operator hand-off incomplete", append(fields, zap.Error(outcome.Err))...)
		}
	}()
}

func (r *Router) forwardToOperator(ctx context.Context, req contactRequest) Outcome {
	if r.operator == "" {
		return Outcome{Status: ForwardDisabled}
	}

	notificationID, err := r.transport.SendText(ctx, r.operator, operatorNotification(req.orderID, req.customer, req.from), messaging.FormatMarkdown)
	if err != nil {
		return Outcome{Status: ForwardFailed, Err: fmt.Errorf("send operator notification: %w", err)}
	}
	r.table.Link(req.customer, notificationID)
	outcome := Outcome{Status: ForwardDelivered, NotificationID: notificationID}

	order, err := r.orders.Lookup(ctx, req.orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return outcome
	}
	if err != nil {
		outcome.Status, outcome.Err = ForwardPartial, err
		return outcome
	}

	contextID, err := r.transport.SendText(ctx, r.operator, operatorContext(order), messaging.FormatMarkdown)
	if err != nil {
		outcome.Status, outcome.Err = ForwardPartial, fmt.Errorf("send operator context: %w", err)
		return outcome
	}
	// Concurrent hand-offs can land between the notification and its context.
	r.table.LinkFollowUp(req.customer, contextID)
	outcome.ContextSent = true
	return outcome
}

func (r *Router) handleOperatorReply(ctx context.Context, log *zap.Logger, ev messaging.Event) error {
	body := strings.TrimSpace(ev.Payload)
	if body == "" {
		log.Debug("empty operator reply ignored")
		return nil
	}

	customer, match := r.table.ResolveByReply(ev.RepliedTo)
	r.metrics.RecordCorrelation(ctx, string(match))
	if match == correlation.MatchNone {
		log.Info("operator reply dropped",
			zap.Int("replied_to", ev.RepliedTo),
			zap.Error(ErrCorrelationUnresolved),
		)
		return nil
	}

	log = logger.WithChat(log, ev.Origin.String(), "").With(
		zap.String("customer_chat_id", customer.String()),
		zap.String("match", string(match)),
	)

	confirmation := operatorDeliveredText
	if _, err := r.transport.SendText(ctx, customer, operatorReplyText(ev.Payload), messaging.FormatMarkdown); err != nil {
		r.metrics.RecordSendFailure(ctx, "operator_reply")
		log.Warn("operator reply not delivered", zap.Error(err))
		confirmation = operatorFailedText
	} else {
		log.Info("operator reply forwarded")
	}

	if _, err := r.transport.SendText(ctx, r.operator, confirmation, messaging.FormatPlain); err != nil {
		r.metrics.RecordSendFailure(ctx, "operator_confirmation")
		log.Warn("operator confirmation not delivered", zap.Error(err))
	}
	return nil
}
