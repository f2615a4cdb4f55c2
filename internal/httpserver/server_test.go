package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"freshcart/internal/domain"
	"freshcart/internal/gateway"
	catalogsvc "freshcart/internal/service/catalog"
	ordersvc "freshcart/internal/service/order"
	paymentsvc "freshcart/internal/service/payment"
	usersvc "freshcart/internal/service/user"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsers struct {
	byToken map[string]*domain.User
}

func (s *stubUsers) Register(_ context.Context, in usersvc.RegisterInput) (*domain.User, string, error) {
	return &domain.User{ID: "u-new", Email: in.Email, Role: domain.RoleUser}, "tok-new", nil
}

func (s *stubUsers) Login(_ context.Context, email, _ string) (*domain.User, string, error) {
	return &domain.User{ID: "u1", Email: email, Role: domain.RoleUser}, "tok-u1", nil
}

func (s *stubUsers) Authenticate(_ context.Context, token string) (*domain.User, error) {
	u, ok := s.byToken[token]
	if !ok {
		return nil, usersvc.ErrInvalidToken
	}
	return u, nil
}

type stubOrders struct {
	order      *domain.Order
	err        error
	lastCreate ordersvc.CreateInput
}

func (s *stubOrders) Create(_ context.Context, _ string, in ordersvc.CreateInput) (*domain.Order, error) {
	s.lastCreate = in
	return s.order, s.err
}

func (s *stubOrders) Get(_ context.Context, _ string, _ bool, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) ListMine(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, s.err
}

func (s *stubOrders) ListAll(_ context.Context) ([]domain.Order, error) {
	return nil, s.err
}

func (s *stubOrders) Cancel(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) UpdateStatus(_ context.Context, _ string, _ ordersvc.UpdateStatusInput) (*domain.Order, error) {
	return s.order, s.err
}

type stubPayments struct {
	intent     *paymentsvc.IntentOutput
	order      *domain.Order
	refund     *paymentsvc.RefundOutput
	err        error
	webhookErr error
	lastRefund paymentsvc.RefundInput
	lastSig    string
}

func (s *stubPayments) OpenIntent(_ context.Context, _, _ string) (*paymentsvc.IntentOutput, error) {
	return s.intent, s.err
}

func (s *stubPayments) Confirm(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubPayments) Status(_ context.Context, _ string, _ bool, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubPayments) Refund(_ context.Context, in paymentsvc.RefundInput) (*paymentsvc.RefundOutput, error) {
	s.lastRefund = in
	return s.refund, s.err
}

func (s *stubPayments) HandleWebhook(_ context.Context, _ []byte, sigHeader string) error {
	s.lastSig = sigHeader
	return s.webhookErr
}

type stubCatalog struct {
	product  *domain.Product
	category *domain.Category
	err      error
}

func (s *stubCatalog) ListProducts(_ context.Context, _ string) ([]domain.Product, error) {
	return nil, s.err
}

func (s *stubCatalog) GetProduct(_ context.Context, _ string) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubCatalog) ListCategories(_ context.Context) ([]domain.Category, error) {
	return nil, s.err
}

func (s *stubCatalog) GetCategory(_ context.Context, _ string) (*domain.Category, error) {
	return s.category, s.err
}

func (s *stubCatalog) CreateCategory(_ context.Context, _ catalogsvc.CategoryInput) (*domain.Category, error) {
	return s.category, s.err
}

func (s *stubCatalog) UpdateCategory(_ context.Context, _ string, _ catalogsvc.CategoryInput) (*domain.Category, error) {
	return s.category, s.err
}

func (s *stubCatalog) DeleteCategory(_ context.Context, _ string) error {
	return s.err
}

func defaultUsers() *stubUsers {
	return &stubUsers{byToken: map[string]*domain.User{
		"tok-u1":    {ID: "u1", Email: "shopper@example.com", Role: domain.RoleUser},
		"tok-admin": {ID: "a1", Email: "admin@example.com", Role: domain.RoleAdmin},
	}}
}

func testRouter(deps Deps) *gin.Engine {
	if deps.UserSvc == nil {
		deps.UserSvc = defaultUsers()
	}
	if deps.OrderSvc == nil {
		deps.OrderSvc = &stubOrders{}
	}
	if deps.PaymentSvc == nil {
		deps.PaymentSvc = &stubPayments{}
	}
	if deps.CatalogSvc == nil {
		deps.CatalogSvc = &stubCatalog{}
	}
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, nil, deps, []string{"http://localhost:3000"})
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestAuthRequired(t *testing.T) {
	router := testRouter(Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/orders/my", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Fatalf("expected error envelope, got %v", body)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	router := testRouter(Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/orders/my", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminRouteRejectsShopper(t *testing.T) {
	router := testRouter(Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/orders", "tok-u1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAdminRouteAllowsAdmin(t *testing.T) {
	router := testRouter(Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/orders", "tok-admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateOrderMapsRequestBody(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{ID: "o1", Number: "ORD-000001"}}
	router := testRouter(Deps{OrderSvc: orders})

	rec := doRequest(t, router, http.MethodPost, "/api/orders", "tok-u1", map[string]any{
		"items":           []map[string]any{{"product": "p1", "quantity": 2}},
		"shippingAddress": map[string]any{"firstName": "Ada"},
		"paymentInfo":     map[string]any{"method": "card"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	in := orders.lastCreate
	if len(in.Items) != 1 || in.Items[0].ProductID != "p1" || in.Items[0].Quantity != 2 {
		t.Fatalf("items not mapped: %+v", in.Items)
	}
	if in.Method != "card" || in.Address.FirstName != "Ada" {
		t.Fatalf("request not mapped: %+v", in)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	router := testRouter(Deps{OrderSvc: &stubOrders{err: domain.ErrNotFound}})
	rec := doRequest(t, router, http.MethodGet, "/api/orders/missing", "tok-u1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetOrderForbidden(t *testing.T) {
	router := testRouter(Deps{OrderSvc: &stubOrders{err: domain.ErrForbidden}})
	rec := doRequest(t, router, http.MethodGet, "/api/orders/o1", "tok-u1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestOrderViewRendersDollars(t *testing.T) {
	order := &domain.Order{
		ID:     "o1",
		Number: "ORD-000001",
		UserID: "u1",
		Items:  []domain.OrderItem{{ProductID: "p1", Name: "Organic Apples", PriceCents: 299, Quantity: 2}},
		Pricing: domain.Pricing{
			SubtotalCents: 598,
			TaxCents:      48,
			TotalCents:    646,
		},
		Status: domain.OrderPending,
	}
	router := testRouter(Deps{OrderSvc: &stubOrders{order: order}})

	rec := doRequest(t, router, http.MethodGet, "/api/orders/o1", "tok-u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	view, _ := body["order"].(map[string]any)
	pricing, _ := view["pricing"].(map[string]any)
	if pricing["subtotal"] != 5.98 || pricing["tax"] != 0.48 || pricing["total"] != 6.46 {
		t.Fatalf("unexpected pricing view %v", pricing)
	}
	items, _ := view["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", view["items"])
	}
	if item, _ := items[0].(map[string]any); item["price"] != 2.99 {
		t.Fatalf("unexpected item view %v", items[0])
	}
}

func TestCreateIntentRequiresOrderID(t *testing.T) {
	router := testRouter(Deps{})
	rec := doRequest(t, router, http.MethodPost, "/api/payment/create-payment-intent", "tok-u1", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateIntentReturnsClientSecret(t *testing.T) {
	payments := &stubPayments{intent: &paymentsvc.IntentOutput{IntentID: "pi_1", ClientSecret: "pi_1_secret"}}
	router := testRouter(Deps{PaymentSvc: payments})

	rec := doRequest(t, router, http.MethodPost, "/api/payment/create-payment-intent", "tok-u1", map[string]any{"orderId": "o1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["clientSecret"] != "pi_1_secret" || body["paymentIntentId"] != "pi_1" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCreateIntentAlreadyPaid(t *testing.T) {
	router := testRouter(Deps{PaymentSvc: &stubPayments{err: domain.ErrAlreadyPaid}})
	rec := doRequest(t, router, http.MethodPost, "/api/payment/create-payment-intent", "tok-u1", map[string]any{"orderId": "o1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestConfirmPaymentSummary(t *testing.T) {
	order := &domain.Order{
		ID:      "o1",
		Number:  "ORD-000001",
		Status:  domain.OrderConfirmed,
		Payment: domain.PaymentInfo{Status: domain.PaymentPaid},
		Pricing: domain.Pricing{TotalCents: 646},
	}
	router := testRouter(Deps{PaymentSvc: &stubPayments{order: order}})

	rec := doRequest(t, router, http.MethodPost, "/api/payment/confirm", "tok-u1", map[string]any{"paymentIntentId": "pi_1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	view, _ := body["order"].(map[string]any)
	if view["orderNumber"] != "ORD-000001" || view["paymentStatus"] != "paid" || view["total"] != 6.46 {
		t.Fatalf("unexpected summary %v", view)
	}
}

func TestPaymentStatusIncludesTotal(t *testing.T) {
	order := &domain.Order{
		ID:      "o1",
		Number:  "ORD-000001",
		Status:  domain.OrderConfirmed,
		Payment: domain.PaymentInfo{Status: domain.PaymentPaid},
		Pricing: domain.Pricing{TotalCents: 646},
	}
	router := testRouter(Deps{PaymentSvc: &stubPayments{order: order}})

	rec := doRequest(t, router, http.MethodGet, "/api/payment/status/o1", "tok-u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["paymentStatus"] != "paid" || body["status"] != "confirmed" {
		t.Fatalf("unexpected status body %v", body)
	}
	if body["total"] != 6.46 {
		t.Fatalf("total missing or wrong: %v", body["total"])
	}
}

func TestPaymentGatewayErrorMapsTo502(t *testing.T) {
	router := testRouter(Deps{PaymentSvc: &stubPayments{err: domain.ErrGateway}})
	rec := doRequest(t, router, http.MethodPost, "/api/payment/confirm", "tok-u1", map[string]any{"paymentIntentId": "pi_1"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestRefundConvertsAmountToCents(t *testing.T) {
	payments := &stubPayments{refund: &paymentsvc.RefundOutput{RefundID: "re_1", AmountCents: 646, Status: "succeeded"}}
	router := testRouter(Deps{PaymentSvc: payments})

	rec := doRequest(t, router, http.MethodPost, "/api/payment/refund", "tok-admin", map[string]any{
		"orderId": "o1",
		"amount":  6.46,
		"reason":  "damaged goods",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if payments.lastRefund.AmountCents != 646 || payments.lastRefund.Reason != "damaged goods" {
		t.Fatalf("unexpected refund input %+v", payments.lastRefund)
	}
	body := decodeBody(t, rec)
	refund, _ := body["refund"].(map[string]any)
	if refund["id"] != "re_1" || refund["amount"] != 6.46 || refund["status"] != "succeeded" {
		t.Fatalf("unexpected refund view %v", refund)
	}
}

func TestRefundRequiresAdmin(t *testing.T) {
	router := testRouter(Deps{})
	rec := doRequest(t, router, http.MethodPost, "/api/payment/refund", "tok-u1", map[string]any{"orderId": "o1"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestWebhookAck(t *testing.T) {
	payments := &stubPayments{}
	router := testRouter(Deps{PaymentSvc: payments})

	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{"type":"payment_intent.succeeded"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["received"] != true {
		t.Fatalf("expected ack, got %v", body)
	}
	if payments.lastSig != "t=1,v1=abc" {
		t.Fatalf("signature header not forwarded: %q", payments.lastSig)
	}
}

func TestWebhookBadSignature(t *testing.T) {
	router := testRouter(Deps{PaymentSvc: &stubPayments{webhookErr: gateway.ErrSignature}})

	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCategoryInUseMapsTo400(t *testing.T) {
	router := testRouter(Deps{CatalogSvc: &stubCatalog{err: domain.ErrCategoryInUse}})
	rec := doRequest(t, router, http.MethodDelete, "/api/categories/c1", "tok-admin", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := testRouter(Deps{})
	rec := doRequest(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
