package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/orderrelay/internal/clock"
	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"github.com/smallbiznis/orderrelay/internal/telegram"
	"go.uber.org/zap"
)

type handlers struct {
	clock    clock.Clock
	identity telegram.Identity
	orders   domain.Service
	log      *zap.Logger
}

// health answers 503 while the order store cannot be read.
func (h handlers) health(c *gin.Context) {
	if h.orders != nil {
		if err := h.orders.Ping(c.Request.Context()); err != nil {
			h.log.Warn("order store unavailable", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"bot":       "running",
		"timestamp": h.clock.Now().Format(time.RFC3339),
	})
}

func (h handlers) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Order relay bot is running!",
		"bot":       "@" + h.identity.Username,
		"timestamp": h.clock.Now().Format(time.RFC3339),
	})
}
