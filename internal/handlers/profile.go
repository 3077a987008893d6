package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/models"
)

const (
	notProvided       = "Not provided"
	msgProfileFailure = "Failed to load profile."
)

// ProfileView est la fiche acheteur affichée.
type ProfileView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Contact     string `json:"contact"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	MemberSince string `json:"member_since"`
}

func NewProfileView(p models.BuyerProfile) ProfileView {
	return ProfileView{
		ID:          strconv.FormatInt(p.ID, 10),
		Username:    p.Username,
		Email:       p.Email,
		Contact:     orNotProvided(p.Contact),
		FirstName:   orNotProvided(p.FirstName),
		MiddleName:  orNotProvided(p.MiddleName),
		LastName:    orNotProvided(p.LastName),
		MemberSince: memberSince(p.CreatedAt),
	}
}

func orNotProvided(s string) string {
	if s == "" {
		return notProvided
	}
	return s
}

func memberSince(createdAt string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, createdAt); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return createdAt
}

// 🟢 GET /api/profile
func (h *Handler) Profile(c *gin.Context) {
	id := customerID(c)
	profile, err := h.buyer.Profile(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).WithField("customer_id", id).Error("❌ Erreur récupération profil")
		msg := models.ServerMessage(err)
		if msg == "" {
			msg = msgProfileFailure
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, NewProfileView(profile))
}
