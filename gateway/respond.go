package gateway

import (
	"net/http"

	"github.com/example/stockdesk/pkg/inventory"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// envelope is the shape of every response. Successful responses also carry
// one entity key such as "order" or "products".
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func statusOf(kind inventory.Kind) int {
	switch kind {
	case inventory.KindValidation, inventory.KindInsufficientStock,
		inventory.KindInvalidTransition, inventory.KindPaymentVerification:
		return http.StatusBadRequest
	case inventory.KindUnauthorized:
		return http.StatusUnauthorized
	case inventory.KindForbidden:
		return http.StatusForbidden
	case inventory.KindNotFound:
		return http.StatusNotFound
	case inventory.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (g *Gateway) fail(c *gin.Context, err error) {
	kind := inventory.KindOf(err)
	if kind == inventory.KindInternal {
		g.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(statusOf(kind), envelope{Message: inventory.MessageOf(err)})
}

// ok writes {success: true, message, key: value}; key may be empty.
func ok(c *gin.Context, status int, message, key string, value interface{}) {
	body := gin.H{"success": true, "message": message}
	if key != "" {
		body[key] = value
	}
	c.JSON(status, body)
}

// bind decodes the JSON body into dst and answers 400 on failure.
func (g *Gateway) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		g.fail(c, &inventory.Error{Kind: inventory.KindValidation, Message: "invalid request body"})
		return false
	}
	return true
}
