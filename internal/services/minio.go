package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/checkout"
	"seamerkado_buyer/internal/models"
)

const proofPreviewTTL = 30 * time.Minute

// MinioProofStore garde les preuves en attente dans un bucket MinIO ; l'aperçu
// est une URL présignée de courte durée.
type MinioProofStore struct {
	client     *minio.Client
	bucket     string
	previewTTL time.Duration
}

func NewMinioProofStore(client *minio.Client, bucket string) *MinioProofStore {
	return &MinioProofStore{client: client, bucket: bucket, previewTTL: proofPreviewTTL}
}

// ProofObjectKey range les preuves par client : proofs/<client>/<uuid><ext>.
func ProofObjectKey(customerID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("proofs/%s/%s%s", customerID, uuid.NewString(), ext)
}

func (s *MinioProofStore) Stage(ctx context.Context, customerID string, file models.ProofFile) (models.Proof, error) {
	if s.client == nil {
		return models.Proof{}, errors.New("MinIO non initialisé")
	}
	key := ProofObjectKey(customerID, file.FileName)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(file.Data), int64(len(file.Data)),
		minio.PutObjectOptions{ContentType: file.ContentType})
	if err != nil {
		return models.Proof{}, fmt.Errorf("upload MinIO: %w", err)
	}

	preview, err := s.SignedURL(ctx, key, s.previewTTL)
	if err != nil {
		return models.Proof{}, err
	}
	log.WithFields(log.Fields{"customer_id": customerID, "key": key}).Info("🪣 Preuve de paiement mise en attente")
	return models.Proof{
		FileName:    file.FileName,
		ContentType: file.ContentType,
		Size:        int64(len(file.Data)),
		Preview:     preview,
		ObjectKey:   key,
	}, nil
}

// SignedURL génère une URL de lecture présignée pour key.
func (s *MinioProofStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("URL signée MinIO: %w", err)
	}
	return u.String(), nil
}

func (s *MinioProofStore) Load(ctx context.Context, proof models.Proof) ([]byte, error) {
	if proof.ObjectKey == "" {
		return nil, errors.New("preuve sans objet MinIO")
	}
	obj, err := s.client.GetObject(ctx, s.bucket, proof.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("lecture MinIO: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, checkout.MaxProofSize+1))
	if err != nil {
		return nil, fmt.Errorf("lecture MinIO: %w", err)
	}
	return data, nil
}

func (s *MinioProofStore) Discard(ctx context.Context, proof models.Proof) error {
	if proof.ObjectKey == "" {
		return nil
	}
	return s.client.RemoveObject(ctx, s.bucket, proof.ObjectKey, minio.RemoveObjectOptions{})
}

var _ checkout.ProofStore = (*MinioProofStore)(nil)
