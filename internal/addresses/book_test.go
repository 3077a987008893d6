package addresses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/models"
)

func fixedBook(at time.Time) *Book {
	b := NewBook(cache.NewMemoryStore())
	b.now = func() time.Time { return at }
	return b
}

var delivery = models.DeliveryInfo{Name: "Maria Santos", Address: "12 Pier Rd, Navotas", Contact: "09171234567", Notes: "gate 3"}

func TestSave_RequiresAllFields(t *testing.T) {
	b := fixedBook(time.Now())
	for _, info := range []models.DeliveryInfo{
		{Address: "x", Contact: "y"},
		{Name: "x", Contact: "y"},
		{Name: "x", Address: "y"},
	} {
		_, _, err := b.Save(context.Background(), "7", info)
		assert.ErrorIs(t, err, ErrIncomplete)
	}
}

func TestSave_GeneratesUniqueTimestampIDs(t *testing.T) {
	at := time.UnixMilli(1735689600000)
	b := fixedBook(at)
	ctx := context.Background()

	first, _, err := b.Save(ctx, "7", delivery)
	require.NoError(t, err)
	second, list, err := b.Save(ctx, "7", delivery)
	require.NoError(t, err)

	assert.Equal(t, "1735689600000", first.ID)
	assert.Equal(t, "1735689600001", second.ID)
	assert.Len(t, list, 2)
	assert.Equal(t, at.UTC(), first.CreatedAt)
}

func TestAddressesAreScopedPerCustomer(t *testing.T) {
	b := fixedBook(time.Now())
	ctx := context.Background()

	_, _, err := b.Save(ctx, "7", delivery)
	require.NoError(t, err)

	other, err := b.List(ctx, "8")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestDelete(t *testing.T) {
	b := fixedBook(time.UnixMilli(1000))
	ctx := context.Background()
	saved, _, err := b.Save(ctx, "7", delivery)
	require.NoError(t, err)

	list, err := b.Delete(ctx, "7", saved.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = b.Get(ctx, "7", saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = b.Delete(ctx, "7", saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
