package presentation

import (
	"regexp"
	"strings"
)

// ActionKind identifies what a selectable action asks for.
type ActionKind string

const (
	ActionPay    ActionKind = "pay"
	ActionMethod ActionKind = "method"
	ActionAdmin  ActionKind = "admin"
)

// ActionRequest is a decoded action payload. Everything needed to resume
// the conversation travels inside the payload.
type ActionRequest struct {
	Kind    ActionKind
	OrderID string
	Method  string
}

// MaxActionData is the largest payload, in bytes, the chat platform accepts
// for one action.
const MaxActionData = 64

var whitespaceRun = regexp.MustCompile(`\s+`)

func FitsAction(data string) bool { return len(data) <= MaxActionData }

func PayAction(orderID string) string   { return string(ActionPay) + ":" + orderID }
func AdminAction(orderID string) string { return string(ActionAdmin) + ":" + orderID }

// MethodAction encodes a payment option choice. Whitespace runs in name
// become a single underscore.
func MethodAction(orderID, name string) string {
	return string(ActionMethod) + ":" + orderID + ":" + whitespaceRun.ReplaceAllString(name, "_")
}

// ParseAction decodes a payload produced by PayAction, AdminAction or
// MethodAction. Order ids never contain ':', so the first two separators
// are unambiguous and the method name keeps any later ones.
func ParseAction(data string) (ActionRequest, bool) {
	kind, rest, ok := strings.Cut(strings.TrimSpace(data), ":")
	if !ok || rest == "" {
		return ActionRequest{}, false
	}

	switch ActionKind(kind) {
	case ActionPay, ActionAdmin:
		return ActionRequest{Kind: ActionKind(kind), OrderID: rest}, true
	case ActionMethod:
		orderID, escaped, ok := strings.Cut(rest, ":")
		if !ok || orderID == "" || escaped == "" {
			return ActionRequest{}, false
		}
		return ActionRequest{
			Kind:    ActionMethod,
			OrderID: orderID,
			Method:  strings.ReplaceAll(escaped, "_", " "),
		}, true
	default:
		return ActionRequest{}, false
	}
}
