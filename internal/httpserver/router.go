package httpserver

import (
	"context"
	"log"

	"freshcart/internal/domain"
	catalogsvc "freshcart/internal/service/catalog"
	ordersvc "freshcart/internal/service/order"
	paymentsvc "freshcart/internal/service/payment"
	usersvc "freshcart/internal/service/user"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps holds the services the router dispatches to.
type Deps struct {
	UserSvc    UserService
	OrderSvc   OrderService
	PaymentSvc PaymentService
	CatalogSvc CatalogService
}

type UserService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type OrderService interface {
	Create(ctx context.Context, userID string, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, userID string, isAdmin bool, orderID string) (*domain.Order, error)
	ListMine(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, in ordersvc.UpdateStatusInput) (*domain.Order, error)
}

type PaymentService interface {
	OpenIntent(ctx context.Context, userID, orderID string) (*paymentsvc.IntentOutput, error)
	Confirm(ctx context.Context, userID, intentID string) (*domain.Order, error)
	Status(ctx context.Context, userID string, isAdmin bool, orderID string) (*domain.Order, error)
	Refund(ctx context.Context, in paymentsvc.RefundInput) (*paymentsvc.RefundOutput, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

type CatalogService interface {
	ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, in catalogsvc.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, in catalogsvc.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = corsOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")

	api.POST("/auth/register", registerHandler(deps.UserSvc))
	api.POST("/auth/login", loginHandler(deps.UserSvc))
	api.GET("/auth/me", authMiddleware(deps.UserSvc), meHandler())

	api.GET("/products", listProductsHandler(deps.CatalogSvc))
	api.GET("/products/:id", getProductHandler(deps.CatalogSvc))
	api.GET("/categories", listCategoriesHandler(deps.CatalogSvc))
	api.GET("/categories/:id", getCategoryHandler(deps.CatalogSvc))

	authed := api.Group("", authMiddleware(deps.UserSvc))
	admin := authed.Group("", adminOnly())

	admin.POST("/categories", createCategoryHandler(deps.CatalogSvc))
	admin.PUT("/categories/:id", updateCategoryHandler(deps.CatalogSvc))
	admin.DELETE("/categories/:id", deleteCategoryHandler(deps.CatalogSvc))

	authed.POST("/orders", createOrderHandler(deps.OrderSvc))
	authed.GET("/orders/my", listMyOrdersHandler(deps.OrderSvc))
	authed.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
	authed.PUT("/orders/:id/cancel", cancelOrderHandler(deps.OrderSvc))
	admin.GET("/orders", listAllOrdersHandler(deps.OrderSvc))
	admin.PUT("/orders/:id/status", updateOrderStatusHandler(deps.OrderSvc))

	authed.POST("/payment/create-payment-intent", createIntentHandler(deps.PaymentSvc))
	authed.POST("/payment/confirm", confirmPaymentHandler(deps.PaymentSvc))
	authed.GET("/payment/status/:orderId", paymentStatusHandler(deps.PaymentSvc))
	admin.POST("/payment/refund", refundHandler(deps.PaymentSvc))

	// Public: the processor authenticates itself through the signature.
	api.POST("/payment/webhook", webhookHandler(deps.PaymentSvc))

	return router
}
