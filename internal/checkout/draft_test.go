package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seamerkado_buyer/internal/models"
)

func TestDraft_ValidateOrder(t *testing.T) {
	selected := []models.CartItem{{ID: 1, Quantity: 1}}
	full := models.DeliveryInfo{Name: "Ana", Address: "Roxas Blvd", Contact: "0917"}

	tests := []struct {
		name     string
		draft    Draft
		selected []models.CartItem
		want     error
	}{
		{"empty draft reports delivery first", Draft{}, nil, ErrDeliveryIncomplete},
		{"blank name", Draft{Delivery: models.DeliveryInfo{Name: " ", Address: "x", Contact: "0917"}, Proof: &models.Proof{}, Confirmed: true}, selected, ErrDeliveryIncomplete},
		{"blank address", Draft{Delivery: models.DeliveryInfo{Name: "Ana", Address: "\t", Contact: "0917"}, Proof: &models.Proof{}, Confirmed: true}, selected, ErrDeliveryIncomplete},
		{"blank contact", Draft{Delivery: models.DeliveryInfo{Name: "Ana", Address: "x", Contact: "  "}, Proof: &models.Proof{}, Confirmed: true}, selected, ErrDeliveryIncomplete},
		{"missing proof before confirmation", Draft{Delivery: full}, nil, ErrProofMissing},
		{"not confirmed", Draft{Delivery: full, Proof: &models.Proof{}}, nil, ErrNotConfirmed},
		{"nothing selected", Draft{Delivery: full, Proof: &models.Proof{}, Confirmed: true}, nil, ErrNothingSelected},
		{"ready", Draft{Delivery: full, Proof: &models.Proof{}, Confirmed: true}, selected, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate(tt.selected)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDraft_UseAddressKeepsNotes(t *testing.T) {
	d := NewDraft()
	d.SetDelivery(models.DeliveryInfo{Name: "old", Notes: "leave at door"})

	d.UseAddress(models.SavedAddress{ID: "17", Name: "Ana", Address: "Roxas Blvd", Contact: "0917"})

	assert.Equal(t, models.DeliveryInfo{Name: "Ana", Address: "Roxas Blvd", Contact: "0917", Notes: "leave at door"}, d.Delivery)
	assert.True(t, d.AddressChosen())
}

func TestDraft_ClearAddressOnlyMatchingID(t *testing.T) {
	d := NewDraft()
	d.UseAddress(models.SavedAddress{ID: "17", Name: "Ana"})

	assert.False(t, d.ClearAddress("18"))
	assert.True(t, d.ClearAddress("17"))
	assert.False(t, d.AddressChosen())
	assert.Equal(t, "Ana", d.Delivery.Name)
}

func TestDraft_RemoveProofClearsConfirmation(t *testing.T) {
	d := NewDraft()
	assert.Nil(t, d.AttachProof(models.Proof{FileName: "a.png"}))
	prev := d.AttachProof(models.Proof{FileName: "b.png"})
	d.SetConfirmed(true)

	assert.Equal(t, "a.png", prev.FileName)
	removed := d.RemoveProof()
	assert.Equal(t, "b.png", removed.FileName)
	assert.False(t, d.HasProof())
	assert.False(t, d.Confirmed)
}

func TestDraft_OpenCloseKeepsInput(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, StageClosed, d.Stage)

	d.Open()
	d.SetDelivery(models.DeliveryInfo{Name: "Ana"})
	d.Close()
	d.Open()

	assert.Equal(t, StageOpen, d.Stage)
	assert.Equal(t, "Ana", d.Delivery.Name)

	d.Reset()
	assert.Equal(t, *NewDraft(), *d)
}
