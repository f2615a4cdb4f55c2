package httpserver

import (
	"net/http"

	paymentsvc "freshcart/internal/service/payment"
	"github.com/gin-gonic/gin"
)

func createIntentHandler(payments PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OrderID string `json:"orderId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
			badRequest(c, "orderId is required")
			return
		}
		out, err := payments.OpenIntent(c.Request.Context(), currentUser(c).ID, req.OrderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"clientSecret":    out.ClientSecret,
			"paymentIntentId": out.IntentID,
		})
	}
}

func confirmPaymentHandler(payments PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PaymentIntentID string `json:"paymentIntentId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.PaymentIntentID == "" {
			badRequest(c, "paymentIntentId is required")
			return
		}
		order, err := payments.Confirm(c.Request.Context(), currentUser(c).ID, req.PaymentIntentID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order": gin.H{
				"orderId":       order.ID,
				"orderNumber":   order.Number,
				"status":        order.Status,
				"paymentStatus": order.Payment.Status,
				"total":         dollars(order.Pricing.TotalCents),
			},
		})
	}
}

func paymentStatusHandler(payments PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		order, err := payments.Status(c.Request.Context(), u.ID, u.IsAdmin(), c.Param("orderId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"orderId":       order.ID,
			"orderNumber":   order.Number,
			"status":        order.Status,
			"paymentStatus": order.Payment.Status,
			"total":         dollars(order.Pricing.TotalCents),
		})
	}
}

func refundHandler(payments PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OrderID string  `json:"orderId"`
			Amount  float64 `json:"amount"`
			Reason  string  `json:"reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
			badRequest(c, "orderId is required")
			return
		}
		var amountCents int64
		if req.Amount > 0 {
			amountCents = toCents(req.Amount)
		}
		out, err := payments.Refund(c.Request.Context(), paymentsvc.RefundInput{
			OrderID:     req.OrderID,
			AmountCents: amountCents,
			Reason:      req.Reason,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"refund": gin.H{
				"id":     out.RefundID,
				"amount": dollars(out.AmountCents),
				"status": out.Status,
			},
		})
	}
}

// webhookHandler feeds raw processor notifications to the payment service.
// A bad signature gets a 400 so the processor retries against a fixed secret;
// everything else is acknowledged to stop redelivery.
func webhookHandler(payments PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := c.GetRawData()
		if err != nil {
			badRequest(c, "unreadable payload")
			return
		}
		if err := payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
