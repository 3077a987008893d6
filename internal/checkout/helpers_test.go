package checkout

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"seamerkado_buyer/internal/addresses"
	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/cart"
	"seamerkado_buyer/internal/models"
)

const customer = "7"

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func proofFile(t *testing.T) models.ProofFile {
	return models.ProofFile{FileName: "gcash.png", ContentType: "image/png", Data: pngBytes(t)}
}

type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string         { return fmt.Sprintf("status %d", e.status) }
func (e *statusError) StatusCode() int       { return e.status }
func (e *statusError) ServerMessage() string { return e.message }

// ctxStore refuse les accès sur un contexte annulé, comme un vrai client réseau.
type ctxStore struct {
	*cache.MemoryStore
}

func (s ctxStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s ctxStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, key, value, ttl)
}

func (s ctxStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Delete(ctx, key)
}

type fakeOrders struct {
	uploadErr error
	orderErr  error
	response  models.OrderResponse
	// cancel, si défini, est appelé une fois la commande reçue.
	cancel context.CancelFunc

	uploads []models.ProofUpload
	orders  []models.OrderRequest
}

func (f *fakeOrders) UploadProof(_ context.Context, upload models.ProofUpload) (string, error) {
	f.uploads = append(f.uploads, upload)
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "uploads/proofs/" + upload.File.FileName, nil
}

func (f *fakeOrders) CreateOrder(_ context.Context, order models.OrderRequest) (models.OrderResponse, error) {
	f.orders = append(f.orders, order)
	if f.cancel != nil {
		f.cancel()
	}
	if f.orderErr != nil {
		return models.OrderResponse{}, f.orderErr
	}
	return f.response, nil
}

type fixture struct {
	svc       *Service
	kv        ctxStore
	cart      *cart.Store
	selection *cart.Selection
	book      *addresses.Book
	orders    *fakeOrders
}

func newFixture() *fixture {
	kv := ctxStore{cache.NewMemoryStore()}
	f := &fixture{
		kv:        kv,
		cart:      cart.NewStore(kv, time.Hour, nil),
		selection: cart.NewSelection(kv, time.Hour),
		book:      addresses.NewBook(kv),
		orders:    &fakeOrders{},
	}
	f.svc = NewService(Deps{
		KV:        kv,
		Cart:      f.cart,
		Selection: f.selection,
		Addresses: f.book,
		Orders:    f.orders,
	})
	return f
}

// seedCart met deux lignes dans le panier et sélectionne ids.
func (f *fixture) seedCart(t *testing.T, ids ...int64) {
	t.Helper()
	ctx := context.Background()
	items := []models.CartItem{
		{ID: 1, Name: "Bangus", Price: 180, Stock: 10, Unit: "kg", Quantity: 2},
		{ID: 2, Name: "Tilapia", Price: 120, Stock: 5, Unit: "kg", Quantity: 1},
	}
	require.NoError(t, f.cart.Save(ctx, customer, items))
	if ids == nil {
		_, err := f.selection.SelectAll(ctx, customer, items)
		require.NoError(t, err)
		return
	}
	for _, id := range ids {
		_, err := f.selection.Toggle(ctx, customer, items, id)
		require.NoError(t, err)
	}
}

// readyDraft ouvre un brouillon complet : livraison, preuve, confirmation.
func (f *fixture) readyDraft(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Open(ctx, customer)
	require.NoError(t, err)
	_, err = f.svc.SetDelivery(ctx, customer, models.DeliveryInfo{Name: "Ana", Address: "Roxas Blvd", Contact: "0917", Notes: "gate 2"})
	require.NoError(t, err)
	_, err = f.svc.AttachProof(ctx, customer, proofFile(t))
	require.NoError(t, err)
	_, err = f.svc.SetConfirmed(ctx, customer, true)
	require.NoError(t, err)
}
