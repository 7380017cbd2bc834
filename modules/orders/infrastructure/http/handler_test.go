package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalsingh7053/VyaparX/internal/platform/auth"
	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/orders/application/commands"
	"github.com/kunalsingh7053/VyaparX/modules/orders/application/queries"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	orderhttp "github.com/kunalsingh7053/VyaparX/modules/orders/infrastructure/http"
	"github.com/kunalsingh7053/VyaparX/modules/orders/infrastructure/persistence"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

type stubCart []domain.CartLine

func (c stubCart) Cart(ctx context.Context, userID types.UserID) ([]domain.CartLine, error) {
	return c, nil
}

type stubCatalog map[string]domain.Product

func (c stubCatalog) Product(ctx context.Context, id types.ProductID) (domain.Product, error) {
	p, ok := c[id.String()]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

type testServer struct {
	mux      *http.ServeMux
	verifier *auth.Verifier
	catalog  stubCatalog
}

func newTestServer(t *testing.T, stock int) *testServer {
	t.Helper()
	pid, err := types.ParseProductID("p1")
	require.NoError(t, err)

	repo := persistence.NewInMemoryRepository()
	scope := transaction.NewSerialScope()
	registry := eventbus.NewEventHandlerRegistry(nil)
	cart := stubCart{{ProductID: pid, Quantity: 2}}
	catalog := stubCatalog{"p1": {ID: pid, Title: "Kurta", Price: types.MustNewMoney(10000, "INR"), Stock: stock}}

	verifier := auth.NewVerifier("test-secret-0123456789abcdef012345", nil)
	mux := http.NewServeMux()
	orderhttp.RegisterRoutes(mux, auth.NewGuard(verifier, nil), orderhttp.Handlers{
		CreateOrder:   commands.NewCreateOrderHandler(repo, scope, registry, cart, catalog),
		CancelOrder:   commands.NewCancelOrderHandler(repo, scope, registry),
		UpdateAddress: commands.NewUpdateShippingAddressHandler(repo, scope, registry),
		FulfilOrder:   commands.NewFulfilOrderHandler(repo, scope, registry),
		GetOrder:      queries.NewGetOrderHandler(repo),
		ListOrders:    queries.NewListUserOrdersHandler(repo),
	}, nil)

	return &testServer{mux: mux, verifier: verifier, catalog: catalog}
}

func (s *testServer) do(t *testing.T, method, path, userID string, role auth.Role, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		token, err := s.verifier.Issue(userID, userID+"@example.com", role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

const validAddress = `{"shippingAddress":{"street":"221B MG Road","city":"Pune","state":"MH","pinCode":"411001","country":"India"}}`

type orderBody struct {
	Message string           `json:"message"`
	Order   queries.OrderDTO `json:"order"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createOrder(t *testing.T, s *testServer, userID string) queries.OrderDTO {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/orders", userID, auth.RoleUser, validAddress)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[orderBody](t, rec).Order
}

func TestCreateOrder(t *testing.T) {
	s := newTestServer(t, 10)

	order := createOrder(t, s, "u1")

	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "200", order.TotalPrice.Amount.String())
	assert.Equal(t, "INR", order.TotalPrice.Currency)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	s := newTestServer(t, 1)

	rec := s.do(t, http.MethodPost, "/orders", "u1", auth.RoleUser, validAddress)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product Kurta is out of stock", decode[errorBody](t, rec).Message)

	list := s.do(t, http.MethodGet, "/orders/me", "u1", auth.RoleUser, "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, 0, decode[queries.OrderListDTO](t, list).TotalOrders)
}

func TestCreateOrder_Rejections(t *testing.T) {
	s := newTestServer(t, 10)

	tests := []struct {
		name       string
		userID     string
		role       auth.Role
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"no token", "", auth.RoleUser, validAddress, http.StatusUnauthorized, "Unauthorized: No token provided"},
		{"seller cannot order", "s1", auth.RoleSeller, validAddress, http.StatusForbidden, "Forbidden: Insufficient permissions"},
		{"missing fields", "u1", auth.RoleUser, `{"shippingAddress":{"street":"X","city":"Y"}}`, http.StatusBadRequest, "Invalid shipping address"},
		{"malformed body", "u1", auth.RoleUser, `{`, http.StatusBadRequest, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/orders", tt.userID, tt.role, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decode[errorBody](t, rec).Message)
		})
	}
}

func TestGetOrder(t *testing.T) {
	s := newTestServer(t, 10)
	order := createOrder(t, s, "u1")

	rec := s.do(t, http.MethodGet, "/orders/"+order.ID, "u1", auth.RoleUser, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.ID, decode[orderBody](t, rec).Order.ID)

	rec = s.do(t, http.MethodGet, "/orders/"+order.ID, "u2", auth.RoleUser, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decode[errorBody](t, rec).Message)

	rec = s.do(t, http.MethodGet, "/orders/not-a-valid-id", "u1", auth.RoleUser, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid orderId", decode[errorBody](t, rec).Message)
}

func TestListMyOrders(t *testing.T) {
	s := newTestServer(t, 10)
	for i := 0; i < 3; i++ {
		createOrder(t, s, "u1")
	}
	createOrder(t, s, "u2")

	rec := s.do(t, http.MethodGet, "/orders/me?page=2&limit=2", "u1", auth.RoleUser, "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[queries.OrderListDTO](t, rec)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 2, list.Limit)
	assert.Equal(t, 3, list.TotalOrders)
	assert.Equal(t, 2, list.TotalPages)
	assert.Len(t, list.Orders, 1)
}

func TestListMyOrders_PageBeyondAddressableRange(t *testing.T) {
	s := newTestServer(t, 10)
	createOrder(t, s, "u1")

	rec := s.do(t, http.MethodGet, "/orders/me?page=4611686018427387905&limit=10", "u1", auth.RoleUser, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := decode[queries.OrderListDTO](t, rec)
	assert.Equal(t, 1, list.TotalOrders)
	assert.Equal(t, 1, list.TotalPages)
	assert.Empty(t, list.Orders)
}

func TestGetOrder_PricesFrozenAtCreation(t *testing.T) {
	s := newTestServer(t, 10)
	order := createOrder(t, s, "u1")

	p1 := s.catalog["p1"]
	p1.Price = types.MustNewMoney(99900, "INR")
	s.catalog["p1"] = p1

	rec := s.do(t, http.MethodGet, "/orders/"+order.ID, "u1", auth.RoleUser, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[orderBody](t, rec).Order

	assert.Equal(t, "200", got.TotalPrice.Amount.String())
	require.Len(t, got.Items, 1)
	assert.Equal(t, "100", got.Items[0].UnitPrice.Amount.String())
	assert.Equal(t, "200", got.Items[0].Price.Amount.String())

	// A new order picks up the new price; the old one keeps its own.
	fresh := createOrder(t, s, "u1")
	assert.Equal(t, "1998", fresh.TotalPrice.Amount.String())
}

func TestCancelOrder(t *testing.T) {
	s := newTestServer(t, 10)
	order := createOrder(t, s, "u1")
	path := "/orders/" + order.ID + "/cancel"

	rec := s.do(t, http.MethodPost, path, "u2", auth.RoleUser, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: You can only cancel your own orders", decode[errorBody](t, rec).Message)

	rec = s.do(t, http.MethodPost, path, "u1", auth.RoleUser, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode[orderBody](t, rec).Order.Status)

	rec = s.do(t, http.MethodPost, path, "u1", auth.RoleUser, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only pending orders can be cancelled", decode[errorBody](t, rec).Message)
}

func TestUpdateAddress(t *testing.T) {
	s := newTestServer(t, 10)
	order := createOrder(t, s, "u1")
	path := "/orders/" + order.ID + "/address"

	newAddress := `{"shippingAddress":{"street":"1 Park St","city":"Kolkata","state":"WB","pinCode":"700016","country":"India"}}`
	rec := s.do(t, http.MethodPatch, path, "u1", auth.RoleUser, newAddress)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kolkata", decode[orderBody](t, rec).Order.ShippingAddress.City)

	rec = s.do(t, http.MethodPatch, path, "u2", auth.RoleUser, newAddress)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, path, "u1", auth.RoleUser, `{"shippingAddress":{"street":"X"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid shipping address", decode[errorBody](t, rec).Message)

	s.do(t, http.MethodPost, "/orders/"+order.ID+"/cancel", "u1", auth.RoleUser, "")
	rec = s.do(t, http.MethodPatch, path, "u1", auth.RoleUser, newAddress)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only pending or confirmed orders can be updated", decode[errorBody](t, rec).Message)
}

func TestFulfil(t *testing.T) {
	s := newTestServer(t, 10)
	order := createOrder(t, s, "u1")

	rec := s.do(t, http.MethodPost, "/orders/"+order.ID+"/ship", "u1", auth.RoleUser, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unpaid orders cannot ship.
	rec = s.do(t, http.MethodPost, "/orders/"+order.ID+"/ship", "s1", auth.RoleSeller, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_transition", decode[errorBody](t, rec).Error)
}
