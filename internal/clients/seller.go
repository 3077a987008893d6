package clients

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"seamerkado_buyer/internal/models"
)

// SellerClient parle au service vendeur : catalogue, upload de preuve et commandes.
type SellerClient struct {
	base
}

func NewSellerClient(baseURL string, hc *http.Client) *SellerClient {
	return &SellerClient{base: newBase(baseURL, hc)}
}

// Products liste tout le catalogue.
func (c *SellerClient) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/seller/fish", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Product{}
	}
	return out, nil
}

// UploadProof envoie la preuve en multipart et renvoie son chemin côté vendeur.
func (c *SellerClient) UploadProof(ctx context.Context, upload models.ProofUpload) (string, error) {
	const path = "/api/upload-payment-proof"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="proof"; filename=%q`, escapeQuotes(upload.File.FileName)))
	header.Set("Content-Type", upload.File.ContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(upload.File.Data); err != nil {
		return "", err
	}
	if err := w.WriteField("customer_name", upload.CustomerName); err != nil {
		return "", err
	}
	if err := w.WriteField("customer_contact", upload.CustomerContact); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out struct {
		ProofPath string `json:"proof_path"`
	}
	if err := c.do(req, path, &out); err != nil {
		return "", err
	}
	if out.ProofPath == "" {
		return "", fmt.Errorf("%s: proof_path absent de la réponse", path)
	}
	return out.ProofPath, nil
}

// CreateOrder crée la commande ; une réponse non-2xx renvoie *HTTPError avec le message du serveur.
func (c *SellerClient) CreateOrder(ctx context.Context, order models.OrderRequest) (models.OrderResponse, error) {
	var out models.OrderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/orders", order, &out); err != nil {
		return models.OrderResponse{}, err
	}
	return out, nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
