package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/models"
)

func TestPlaceOrder_RequiresOpenDraft(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PlaceOrder(context.Background(), customer)
	assert.ErrorIs(t, err, ErrCheckoutClosed)
}

func TestPlaceOrder_ReportsFirstMissingPrecondition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedCart(t)
	_, err := f.svc.Open(ctx, customer)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, customer)
	assert.ErrorIs(t, err, ErrDeliveryIncomplete)

	_, err = f.svc.SetDelivery(ctx, customer, models.DeliveryInfo{Name: "Ana", Address: "Roxas Blvd", Contact: "0917"})
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(ctx, customer)
	assert.ErrorIs(t, err, ErrProofMissing)
	assert.Empty(t, f.orders.uploads)
}

func TestPlaceOrder_NothingSelected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedCart(t)
	require.NoError(t, f.selection.Clear(ctx, customer))
	f.readyDraft(t)

	_, err := f.svc.PlaceOrder(ctx, customer)
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestPlaceOrder_SubmitsSelectedItemsAndPrunesCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedCart(t, 1)
	f.readyDraft(t)
	f.orders.response = models.OrderResponse{Message: "Order #A12 created", OrderNumber: "A12"}

	res, err := f.svc.PlaceOrder(ctx, customer)
	require.NoError(t, err)

	require.Len(t, f.orders.uploads, 1)
	up := f.orders.uploads[0]
	assert.Equal(t, "Ana", up.CustomerName)
	assert.Equal(t, "0917", up.CustomerContact)
	assert.Equal(t, pngBytes(t), up.File.Data)

	require.Len(t, f.orders.orders, 1)
	order := f.orders.orders[0]
	require.Len(t, order.Cart, 1)
	assert.Equal(t, int64(1), order.Cart[0].ID)
	assert.Equal(t, 360.0, order.Total)
	assert.Equal(t, models.PaymentModeGcashQR, order.PaymentMode)
	assert.True(t, order.Paid)
	assert.Equal(t, "uploads/proofs/gcash.png", order.ProofOfPayment)
	assert.Equal(t, customer, order.BuyerID)
	assert.Equal(t, "gate 2", order.Customer.Notes)

	assert.Equal(t, "Order #A12 created", res.Message)
	require.Len(t, res.Cart, 1)
	assert.Equal(t, int64(2), res.Cart[0].ID)
	assert.Equal(t, 1, res.Count)

	d, err := f.svc.Draft(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, *NewDraft(), *d)
}

func TestPlaceOrder_DefaultSuccessMessage(t *testing.T) {
	f := newFixture()
	f.seedCart(t)
	f.readyDraft(t)

	res, err := f.svc.PlaceOrder(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, MsgOrderPlaced, res.Message)
	assert.Empty(t, res.Cart)
}

func TestPlaceOrder_FailureKeepsDraftAndCart(t *testing.T) {
	tests := []struct {
		name      string
		uploadErr error
		orderErr  error
		want      string
	}{
		{"server message verbatim", nil, &statusError{status: 400, message: "Insufficient stock for Bangus"}, "Insufficient stock for Bangus"},
		{"rejected without message", nil, &statusError{status: 500}, MsgOrderRejected},
		{"network failure on order", nil, errors.New("connection refused"), MsgOrderNetworkErr},
		{"upload failure", errors.New("connection reset"), nil, MsgOrderNetworkErr},
		{"upload rejected hides server message", &statusError{status: 413, message: "File too large"}, nil, MsgOrderNetworkErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			f.seedCart(t)
			f.readyDraft(t)
			f.orders.uploadErr = tt.uploadErr
			f.orders.orderErr = tt.orderErr

			_, err := f.svc.PlaceOrder(ctx, customer)
			require.Error(t, err)
			msg, ok := models.UserMessage(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, msg)

			d, err := f.svc.Draft(ctx, customer)
			require.NoError(t, err)
			assert.Equal(t, StageOpen, d.Stage)
			assert.Equal(t, tt.want, d.LastError)
			assert.True(t, d.HasProof())
			assert.True(t, d.Confirmed)

			items, err := f.cart.Get(ctx, customer)
			require.NoError(t, err)
			assert.Len(t, items, 2)
		})
	}
}

func TestPlaceOrder_RejectsConcurrentSubmission(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedCart(t)
	f.readyDraft(t)

	d, err := f.svc.Draft(ctx, customer)
	require.NoError(t, err)
	d.Stage = StageSubmitting
	require.NoError(t, f.svc.save(ctx, customer, d))

	_, err = f.svc.PlaceOrder(ctx, customer)
	assert.ErrorIs(t, err, ErrOrderInProgress)
	_, err = f.svc.SetConfirmed(ctx, customer, false)
	assert.ErrorIs(t, err, ErrOrderInProgress)

	closed, err := f.svc.Close(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, StageClosed, closed.Stage)
}

func TestPlaceOrder_CompletesWhenClientDisconnects(t *testing.T) {
	f := newFixture()
	f.seedCart(t, 1)
	f.readyDraft(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.orders.cancel = cancel

	res, err := f.svc.PlaceOrder(ctx, customer)
	require.NoError(t, err)
	require.Len(t, res.Cart, 1)

	bg := context.Background()
	items, err := f.cart.Get(bg, customer)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)

	d, err := f.svc.Draft(bg, customer)
	require.NoError(t, err)
	assert.Equal(t, StageClosed, d.Stage)
	assert.False(t, d.HasProof())

	_, err = f.kv.Get(bg, lockKey(customer))
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestPlaceOrder_FailureRestoresDraftWhenClientDisconnects(t *testing.T) {
	f := newFixture()
	f.seedCart(t)
	f.readyDraft(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.orders.cancel = cancel
	f.orders.orderErr = &statusError{status: 409, message: "Insufficient stock for Bangus"}

	_, err := f.svc.PlaceOrder(ctx, customer)
	require.Error(t, err)

	d, err := f.svc.Draft(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, StageOpen, d.Stage)
	assert.Equal(t, "Insufficient stock for Bangus", d.LastError)

	// Le brouillon rouvert accepte une nouvelle tentative.
	f.orders.cancel = nil
	f.orders.orderErr = nil
	_, err = f.svc.PlaceOrder(context.Background(), customer)
	require.NoError(t, err)
}

func TestPlaceOrder_HeldLockRejectsSecondSubmission(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedCart(t)
	f.readyDraft(t)

	ok, err := f.kv.SetNX(ctx, lockKey(customer), []byte("1"), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.PlaceOrder(ctx, customer)
	assert.ErrorIs(t, err, ErrOrderInProgress)
	assert.Empty(t, f.orders.uploads)

	d, err := f.svc.Draft(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, StageOpen, d.Stage, "le brouillon n'est pas touché")

	require.NoError(t, f.kv.Delete(ctx, lockKey(customer)))
	_, err = f.svc.PlaceOrder(ctx, customer)
	require.NoError(t, err)
}

func TestPlaceOrder_ReleasesLockAfterValidationFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedCart(t)
	_, err := f.svc.Open(ctx, customer)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, customer)
	assert.ErrorIs(t, err, ErrDeliveryIncomplete)

	_, err = f.kv.Get(ctx, lockKey(customer))
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestAttachProof_RejectsNonImage(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AttachProof(context.Background(), customer, models.ProofFile{ContentType: "text/plain", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrProofNotImage)
}

func TestUseAndDeleteSavedAddress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.SetDelivery(ctx, customer, models.DeliveryInfo{Name: "Ana", Address: "Roxas Blvd", Contact: "0917", Notes: "gate 2"})
	require.NoError(t, err)

	saved, list, err := f.svc.SaveAddress(ctx, customer)
	require.NoError(t, err)
	require.Len(t, list, 1)

	d, err := f.svc.UseSavedAddress(ctx, customer, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, d.SelectedAddressID)

	list, err = f.svc.DeleteAddress(ctx, customer, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	d, err = f.svc.Draft(ctx, customer)
	require.NoError(t, err)
	assert.False(t, d.AddressChosen())
	assert.Equal(t, "Roxas Blvd", d.Delivery.Address)
}

func TestSellerQR(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ref, err := f.svc.SellerQR(ctx)
	require.NoError(t, err)
	assert.Empty(t, ref)

	require.NoError(t, f.svc.SetSellerQR(ctx, "/uploads/qr/seller.png"))
	ref, err = f.svc.SellerQR(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/qr/seller.png", ref)
}
