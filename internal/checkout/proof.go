package checkout

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"seamerkado_buyer/internal/models"
)

// MaxProofSize est la taille maximale d'une preuve de paiement (5 Mo).
const MaxProofSize = 5 * 1024 * 1024

var (
	ErrProofNotImage = models.NewUserError("Please upload an image file (JPG, PNG, etc.)")
	ErrProofTooLarge = models.NewUserError("Image size must be less than 5MB")
)

// ProofStore conserve la preuve entre l'upload de l'acheteur et la soumission de la commande.
type ProofStore interface {
	Stage(ctx context.Context, customerID string, file models.ProofFile) (models.Proof, error)
	Load(ctx context.Context, proof models.Proof) ([]byte, error)
	Discard(ctx context.Context, proof models.Proof) error
}

// ValidateProof accepte uniquement des images de 5 Mo au plus. Le type déclaré
// et le contenu réel doivent tous deux être image/*.
func ValidateProof(file models.ProofFile) error {
	declared, _, err := mime.ParseMediaType(file.ContentType)
	if err != nil || !strings.HasPrefix(declared, "image/") {
		return ErrProofNotImage
	}
	if len(file.Data) > MaxProofSize {
		return ErrProofTooLarge
	}
	if detected := mimetype.Detect(file.Data); !strings.HasPrefix(detected.String(), "image/") {
		return ErrProofNotImage
	}
	return nil
}

// InlineProofStore garde la preuve dans le brouillon sous forme de data URL,
// qui sert aussi d'aperçu.
type InlineProofStore struct{}

func (InlineProofStore) Stage(_ context.Context, _ string, file models.ProofFile) (models.Proof, error) {
	return models.Proof{
		FileName:    file.FileName,
		ContentType: file.ContentType,
		Size:        int64(len(file.Data)),
		Preview:     DataURL(file.ContentType, file.Data),
	}, nil
}

func (InlineProofStore) Load(_ context.Context, proof models.Proof) ([]byte, error) {
	return decodeDataURL(proof.Preview)
}

func (InlineProofStore) Discard(context.Context, models.Proof) error { return nil }

// DataURL encode data en "data:<type>;base64,...".
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeDataURL(u string) ([]byte, error) {
	if !strings.HasPrefix(u, "data:") {
		return nil, errors.New("checkout: aperçu sans data URL")
	}
	_, payload, ok := strings.Cut(u, ";base64,")
	if !ok {
		return nil, errors.New("checkout: data URL non base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("checkout: data URL invalide: %w", err)
	}
	return data, nil
}
