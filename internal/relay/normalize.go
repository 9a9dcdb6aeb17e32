package relay

import (
	"regexp"
	"strings"
)

const orderPrefix = "ORDER_"

var orderIDPattern = regexp.MustCompile(`(?i)^(ORDER_)?[A-Z0-9_]+$`)

// Keywords that are also identifier-shaped; they always mean help.
var helpKeywords = map[string]struct{}{
	"help":  {},
	"start": {},
}

func isHelpKeyword(text string) bool {
	_, ok := helpKeywords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// LooksLikeOrderID reports whether text is shaped like an order identifier.
func LooksLikeOrderID(text string) bool {
	text = strings.TrimSpace(text)
	if isHelpKeyword(text) {
		return false
	}
	return orderIDPattern.MatchString(text)
}

// NormalizeOrderID upper-cases text and adds the ORDER_ prefix when missing:
// "12345", "order_12345" and "ORDER_12345" all become "ORDER_12345".
func NormalizeOrderID(text string) string {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if strings.HasPrefix(upper, orderPrefix) {
		return upper
	}
	return orderPrefix + upper
}
