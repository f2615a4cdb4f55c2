package httpserver

import (
	"net/http"
	"time"

	"freshcart/internal/domain"
	ordersvc "freshcart/internal/service/order"
	"github.com/gin-gonic/gin"
)

// Money crosses the wire in whole currency units; internally everything is
// minor units.
func dollars(cents int64) float64 {
	return float64(cents) / 100
}

func toCents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

type itemView struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

type pricingView struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shippingCost"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type orderView struct {
	ID                string                 `json:"id"`
	OrderNumber       string                 `json:"orderNumber"`
	UserID            string                 `json:"user"`
	Items             []itemView             `json:"items"`
	ShippingAddress   domain.ShippingAddress `json:"shippingAddress"`
	PaymentInfo       domain.PaymentInfo     `json:"paymentInfo"`
	Pricing           pricingView            `json:"pricing"`
	Status            domain.OrderStatus     `json:"status"`
	TrackingNumber    string                 `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time             `json:"estimatedDelivery,omitempty"`
	DeliveredAt       *time.Time             `json:"deliveredAt,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

func viewOrder(o *domain.Order) orderView {
	items := make([]itemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, itemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     dollars(item.PriceCents),
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}
	return orderView{
		ID:              o.ID,
		OrderNumber:     o.Number,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentInfo:     o.Payment,
		Pricing: pricingView{
			Subtotal: dollars(o.Pricing.SubtotalCents),
			Shipping: dollars(o.Pricing.ShippingCents),
			Tax:      dollars(o.Pricing.TaxCents),
			Total:    dollars(o.Pricing.TotalCents),
		},
		Status:            o.Status,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		DeliveredAt:       o.DeliveredAt,
		Notes:             o.Notes,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func viewOrders(orders []domain.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, viewOrder(&orders[i]))
	}
	return views
}

type createOrderRequest struct {
	Items           []ordersvc.ItemInput   `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentInfo     struct {
		Method string `json:"method"`
	} `json:"paymentInfo"`
}

func createOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		order, err := orders.Create(c.Request.Context(), currentUser(c).ID, ordersvc.CreateInput{
			Items:   req.Items,
			Address: req.ShippingAddress,
			Method:  req.PaymentInfo.Method,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "order": viewOrder(order)})
	}
}

func listMyOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListMine(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": viewOrders(list)})
	}
}

func getOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		order, err := orders.Get(c.Request.Context(), u.ID, u.IsAdmin(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": viewOrder(order)})
	}
}

func cancelOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.Cancel(c.Request.Context(), currentUser(c).ID, c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": viewOrder(order)})
	}
}

func listAllOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListAll(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": viewOrders(list)})
	}
}

func updateOrderStatusHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ordersvc.UpdateStatusInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		order, err := orders.UpdateStatus(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": viewOrder(order)})
	}
}
