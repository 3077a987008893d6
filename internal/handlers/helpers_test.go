package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"seamerkado_buyer/internal/addresses"
	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/cart"
	"seamerkado_buyer/internal/catalog"
	"seamerkado_buyer/internal/checkout"
	"seamerkado_buyer/internal/clients"
	"seamerkado_buyer/internal/metrics"
	"seamerkado_buyer/internal/middleware"
	"seamerkado_buyer/internal/notifications"
	"seamerkado_buyer/internal/services"
	"seamerkado_buyer/internal/session"
)

const customer = "42"

func init() {
	gin.SetMode(gin.TestMode)
}

// remote simule les services vendeur et acheteur sur un seul serveur.
type remote struct {
	mu     sync.Mutex
	mux    *http.ServeMux
	orders  []map[string]any
	uploads int
	server *httptest.Server
}

func newRemote(t *testing.T) *remote {
	t.Helper()
	rm := &remote{mux: http.NewServeMux()}
	rm.server = httptest.NewServer(rm.mux)
	t.Cleanup(rm.server.Close)
	return rm
}

func (rm *remote) handle(pattern string, h http.HandlerFunc) {
	rm.mux.HandleFunc(pattern, h)
}

func (rm *remote) json(pattern string, status int, body any) {
	rm.handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

// acceptOrders installe l'upload de preuve et la création de commande.
func (rm *remote) acceptOrders(message string) {
	rm.handle("POST /api/upload-payment-proof", func(w http.ResponseWriter, _ *http.Request) {
		rm.mu.Lock()
		rm.uploads++
		rm.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"proof_path": "/uploads/proofs/p.png"})
	})
	rm.handle("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rm.mu.Lock()
		rm.orders = append(rm.orders, body)
		rm.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"message": message, "order_number": "SM-0001"})
	})
}

func (rm *remote) placedOrders() []map[string]any {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return append([]map[string]any(nil), rm.orders...)
}

func (rm *remote) proofUploads() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.uploads
}

type testEnv struct {
	router   *gin.Engine
	handler  *Handler
	store    *cache.MemoryStore
	remote   *remote
	sessions *session.Manager
}

func newTestEnv(t *testing.T, rm *remote) *testEnv {
	t.Helper()
	store := cache.NewMemoryStore()
	m := metrics.NewBuyerMetricsWithRegisterer(prometheus.NewRegistry())
	hc := rm.server.Client()
	seller := clients.NewSellerClient(rm.server.URL, hc)
	buyer := clients.NewBuyerClient(rm.server.URL, hc)

	cartStore := cart.NewStore(store, 0, m)
	selection := cart.NewSelection(store, 0)
	book := addresses.NewBook(store)
	notifSvc := notifications.NewService(buyer, m)
	sessions := session.NewManager(session.NewCookieStore("test-secret-test-secret-test-sec", false), "")

	h := New(Deps{
		Sessions:  sessions,
		Store:     store,
		Cart:      cartStore,
		Selection: selection,
		Addresses: book,
		Checkout: checkout.NewService(checkout.Deps{
			KV:        store,
			Cart:      cartStore,
			Selection: selection,
			Addresses: book,
			Orders:    seller,
			Metrics:   m,
		}),
		Notifications: notifSvc,
		Poller:        notifications.NewPoller(notifSvc, notifications.DefaultInterval),
		Seller:        seller,
		Buyer:         buyer,
		QR:            services.PaymentQR{Account: "09170000000"},
		Images:        catalog.NewImages(rm.server.URL),
	})

	r := gin.New()
	r.GET("/healthz", h.Health)
	r.POST("/api/session", h.EstablishSession)
	r.GET("/api/session", h.CurrentSession)
	r.DELETE("/api/session", h.Logout)

	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.CustomerIDKey, customer)
		c.Next()
	})
	api.GET("/dashboard", h.Dashboard)
	api.GET("/profile", h.Profile)
	api.GET("/shops", h.ListShops)
	api.GET("/shops/:id/products", h.ShopProducts)
	api.GET("/cart", h.GetCart)
	api.GET("/cart/count", h.CartCount)
	api.POST("/cart/refresh", h.RefreshCart)
	api.POST("/cart/items", h.AddToCart)
	api.PUT("/cart/items/:id", h.SetCartQuantity)
	api.POST("/cart/items/:id/increment", h.IncrementCartItem)
	api.POST("/cart/items/:id/decrement", h.DecrementCartItem)
	api.DELETE("/cart/items/:id", h.RemoveCartItem)
	api.POST("/cart/items/:id/toggle", h.ToggleCartItem)
	api.POST("/cart/toggle-all", h.ToggleAllCartItems)
	api.GET("/checkout", h.GetCheckout)
	api.GET("/checkout/qr", h.PaymentQR)
	api.POST("/checkout/open", h.OpenCheckout)
	api.POST("/checkout/close", h.CloseCheckout)
	api.PUT("/checkout/delivery", h.SetDelivery)
	api.POST("/checkout/addresses", h.SaveAddress)
	api.POST("/checkout/addresses/:id/use", h.UseSavedAddress)
	api.DELETE("/checkout/addresses/:id", h.DeleteAddress)
	api.POST("/checkout/proof", h.AttachProof)
	api.DELETE("/checkout/proof", h.RemoveProof)
	api.PUT("/checkout/confirm", h.ConfirmPayment)
	api.POST("/checkout/place", h.PlaceOrder)
	api.GET("/notifications", h.GetNotifications)
	api.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
	api.PUT("/notifications/:id/read", h.MarkNotificationRead)
	api.GET("/notifications/ws", h.NotificationsSocket)

	return &testEnv{router: r, handler: h, store: store, remote: rm, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) uploadProof(t *testing.T, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="proof"; filename="gcash.png"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/proof", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func tilapia() map[string]any {
	return map[string]any{"id": 1, "name": "Tilapia", "price": 120, "stock": 3, "unit": "kg"}
}

func bangus() map[string]any {
	return map[string]any{"id": 2, "name": "Bangus", "price": "180.50", "stock": 10, "unit": "kg"}
}
