// Package session garde l'identité de l'acheteur dans un cookie signé.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"

	"seamerkado_buyer/internal/models"
)

const (
	SessionName = "sea_merkado_buyer"

	KeyCustomerID = "customer_id"
	KeyBuyerName  = "buyerName"
	KeyBuyerEmail = "buyerEmail"

	maxAge = 86400 * 30
)

var (
	ErrNoSession      = models.NewUserError("Buyer ID not found. Please log in.")
	ErrInvalidHandoff = errors.New("session: jeton de connexion invalide")
)

// Buyer est l'identité stockée en session.
type Buyer struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"buyerName,omitempty"`
	Email      string `json:"buyerEmail,omitempty"`
}

// NewCookieStore configure le store de cookies (30 jours, HttpOnly, SameSite Lax).
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(maxAge)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Manager lit et écrit la session acheteur.
type Manager struct {
	store     sessions.Store
	jwtSecret []byte
}

func NewManager(store sessions.Store, jwtSecret string) *Manager {
	return &Manager{store: store, jwtSecret: []byte(jwtSecret)}
}

// Load renvoie l'acheteur connecté, ou ErrNoSession.
func (m *Manager) Load(r *http.Request) (Buyer, error) {
	sess, err := m.store.Get(r, SessionName)
	if err != nil && sess == nil {
		return Buyer{}, ErrNoSession
	}
	id, _ := sess.Values[KeyCustomerID].(string)
	if id == "" {
		return Buyer{}, ErrNoSession
	}
	name, _ := sess.Values[KeyBuyerName].(string)
	email, _ := sess.Values[KeyBuyerEmail].(string)
	return Buyer{CustomerID: id, Name: name, Email: email}, nil
}

// Establish ouvre la session de b.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, b Buyer) error {
	if strings.TrimSpace(b.CustomerID) == "" {
		return ErrNoSession
	}
	sess, _ := m.store.Get(r, SessionName)
	sess.Values[KeyCustomerID] = b.CustomerID
	sess.Values[KeyBuyerName] = b.Name
	sess.Values[KeyBuyerEmail] = b.Email
	return sess.Save(r, w)
}

// Clear retire customer_id, buyerName et buyerEmail puis expire le cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, SessionName)
	delete(sess.Values, KeyCustomerID)
	delete(sess.Values, KeyBuyerName)
	delete(sess.Values, KeyBuyerEmail)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// HandoffEnabled indique si la connexion passe par un JWT signé du service de login.
func (m *Manager) HandoffEnabled() bool { return len(m.jwtSecret) > 0 }

// ParseHandoff valide un JWT HS256 et en extrait l'acheteur.
// customer_id peut être une chaîne ou un nombre ; "sub" sert de repli.
func (m *Manager) ParseHandoff(token string) (Buyer, error) {
	if !m.HandoffEnabled() {
		return Buyer{}, fmt.Errorf("%w: aucun secret configuré", ErrInvalidHandoff)
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Buyer{}, fmt.Errorf("%w: %v", ErrInvalidHandoff, err)
	}

	id := claimString(claims, KeyCustomerID)
	if id == "" {
		id = claimString(claims, "sub")
	}
	if id == "" {
		return Buyer{}, fmt.Errorf("%w: customer_id manquant", ErrInvalidHandoff)
	}
	return Buyer{
		CustomerID: id,
		Name:       claimString(claims, "name"),
		Email:      claimString(claims, "email"),
	}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}
