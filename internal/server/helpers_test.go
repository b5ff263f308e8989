package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quickcart/internal/catalog"
	"quickcart/internal/handler"
	infraRepo "quickcart/internal/infra/repository"
	"quickcart/internal/kvstore"
	"quickcart/internal/middleware"
	"quickcart/internal/notify"
	"quickcart/internal/pricing"
	"quickcart/internal/server"
	"quickcart/internal/usecase"
	auth "quickcart/internal/usecase/auth_usecase"
	"quickcart/internal/validator"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// 商品APIのフェイク
// =====================

const fakeCatalog = `[
 {"id":1,"title":"Backpack","price":20,"category":"bags","image":"b.png","rating":{"rate":4.1,"count":10}},
 {"id":2,"title":"Ring","price":150,"category":"jewelery","image":"r.png","rating":{"rate":3.2,"count":5}}
]`

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, fakeCatalog)
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `["bags","jewelery"]`)
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1,"title":"Backpack","price":20,"category":"bags","image":"b.png"}`)
	})
	mux.HandleFunc("/products/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":2,"title":"Ring","price":150,"category":"jewelery","image":"r.png"}`)
	})
	// 存在しないIDは 200 + 空ボディ
	mux.HandleFunc("/products/999", func(w http.ResponseWriter, r *http.Request) {})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// =====================
// アプリ全体（メモリKV）
// =====================

func newApp(t *testing.T, paymentRate float64) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := kvstore.NewMemoryStore()

	carts := infraRepo.NewCartKVRepository(store, log)
	sessions := infraRepo.NewSessionKVRepository(store)
	orders := infraRepo.NewOrderKVRepository(store, log)
	users := infraRepo.NewUserKVRepository(store, log)

	catalogClient := catalog.NewClient(catalog.Options{
		BaseURL: catalogServer(t).URL,
		Timeout: 2 * time.Second,
	}, log)

	hub := notify.NewHub(log)
	t.Cleanup(hub.Close)

	policy := pricing.DefaultPolicy()
	clock := usecase.SystemClock{}

	cartUC := usecase.NewCartUsecase(carts, catalogClient, hub, policy, log)
	checkoutUC := usecase.NewCheckoutUsecase(carts, orders, sessions, validator.NewCheckoutValidator(),
		usecase.NewRandomPayment(paymentRate), clock, hub, policy, log)

	authValidator := validator.NewAuthValidator()
	registerUC := auth.NewRegisterUserUsecase(users, sessions, authValidator, auth.NewBcryptPasswordHasher(bcrypt.MinCost), clock, log)
	loginUC := auth.NewLoginUsecase(users, sessions, authValidator, auth.NewBcryptPasswordVerifier(), log)
	sessionUC := auth.NewSessionUsecase(sessions, carts, hub, log)

	e := server.New(server.Options{
		Session: middleware.SessionConfig{
			Tokens: middleware.NewSessionTokens("test-secret", time.Hour),
		},
		Sessions: sessions,
		Handlers: server.Handlers{
			Health:   handler.NewHealthHandler(catalogClient),
			Product:  handler.NewProductHandler(usecase.NewProductUsecase(catalogClient, log)),
			Contact:  handler.NewContactHandler(usecase.NewContactUsecase(validator.NewContactValidator(), log)),
			Auth:     handler.NewAuthHandler(registerUC, loginUC, sessionUC),
			Cart:     handler.NewCartHandler(cartUC),
			Checkout: handler.NewCheckoutHandler(checkoutUC),
			Order:    handler.NewOrderHandler(usecase.NewOrderUsecase(orders, sessions, log)),
			WS:       handler.NewWSHandler(hub, cartUC, log),
		},
		Log: log,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

// =====================
// Cookieを持つクライアント
// =====================

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTestClient(t *testing.T, srv *httptest.Server) *TestClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &TestClient{
		BaseURL: strings.TrimRight(srv.URL, "/"),
		HTTP: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

func (c *TestClient) Do(t *testing.T, method, path string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return res
}

// 登録してログイン状態のクライアントを返す
func signedUp(t *testing.T, srv *httptest.Server, email string) *TestClient {
	t.Helper()

	c := NewTestClient(t, srv)
	res := c.Do(t, http.MethodPost, "/auth/signup", SignupRequest{
		Name: "Alice", Email: email, Password: "secret1", ConfirmPassword: "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	return c
}

// =====================
// DTO
// =====================

type ErrorResponse struct {
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields"`
	Redirect string            `json:"redirect"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StatusResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type SummaryDTO struct {
	ItemCount     int     `json:"item_count"`
	Subtotal      float64 `json:"subtotal"`
	Shipping      float64 `json:"shipping"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
	ShippingLabel string  `json:"shipping_label"`
	TotalLabel    string  `json:"total_label"`
}

type CartLineDTO struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

type NoticeDTO struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type CartViewDTO struct {
	Items     []CartLineDTO `json:"items"`
	Summary   SummaryDTO    `json:"summary"`
	CartCount int           `json:"cart_count"`
	Notice    *NoticeDTO    `json:"notice"`
}

type AddressDTO struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	ZipCode  string `json:"zip_code"`
}

type CheckoutRequest struct {
	Shipping       AddressDTO `json:"shipping"`
	SameAsShipping bool       `json:"same_as_shipping"`
}

type OrderDTO struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	Total  float64    `json:"total"`
	BillTo AddressDTO `json:"bill_to"`
}

type PlaceOrderResponse struct {
	Order   OrderDTO `json:"order"`
	Message string   `json:"message"`
}

type AccountResponse struct {
	Username string     `json:"username"`
	Orders   []OrderDTO `json:"orders"`
}

func validAddress() AddressDTO {
	return AddressDTO{
		FullName: "Alice Smith",
		Email:    "alice@example.com",
		Address:  "1 Main St",
		City:     "Springfield",
		ZipCode:  "12345",
	}
}
