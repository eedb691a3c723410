package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/wallet-service/internal/domain"
	"github.com/tazhibayda/wallet-service/internal/gateway"
	"github.com/tazhibayda/wallet-service/internal/identity"
	"github.com/tazhibayda/wallet-service/internal/repo"
)

// SessionService is the slice of the identity service the HTTP layer calls
// directly — token lifecycle the gateway does not mediate.
type SessionService interface {
	Refresh(ctx context.Context, refresh string) (string, error)
	SignOut(ctx context.Context, refresh string) error
	Verify(ctx context.Context, token string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Gateway         *gateway.Gateway
	Identity        SessionService
	Health          Pinger
	Redis           *repo.Redis
	JWTSecret       string
	RateLimitPerMin int
}

func NewHandler(gw *gateway.Gateway, ids SessionService, health Pinger, rds *repo.Redis, jwtSecret string, rlPerMin int) *Handler {
	return &Handler{
		Gateway:         gw,
		Identity:        ids,
		Health:          health,
		Redis:           rds,
		JWTSecret:       jwtSecret,
		RateLimitPerMin: rlPerMin,
	}
}

// statusFor maps classified gateway failures onto HTTP codes; identity
// sentinels get their conventional ones.
func statusFor(err error) int {
	switch {
	case errors.Is(err, identity.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, identity.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrBadCredentials):
		return http.StatusUnauthorized
	}
	switch gateway.KindOf(err) {
	case gateway.KindValidation:
		return http.StatusBadRequest
	case gateway.KindNotFound:
		return http.StatusNotFound
	case gateway.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

type cardPayload struct {
	Type      string `json:"type"` // "qr" | "code128"
	IsClicked bool   `json:"isClicked"`
	Name      string `json:"name"`
	Code      string `json:"code"`
}

func (p cardPayload) toDomain() (domain.Card, bool) {
	var t domain.CardType
	switch p.Type {
	case "qr":
		t = domain.CardQR
	case "code128":
		t = domain.CardCode128
	default:
		return domain.Card{}, false
	}
	return domain.Card{Type: t, IsClicked: p.IsClicked, Name: p.Name, Code: p.Code}, true
}

func fromDomain(c domain.Card) cardPayload {
	return cardPayload{Type: c.Type.String(), IsClicked: c.IsClicked, Name: c.Name, Code: c.Code}
}

type registerReq struct {
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Sex       int           `json:"sex"`
	Password  string        `json:"password"`
	Cards     []cardPayload `json:"cards"`
}

// Register godoc
// @Summary Create account and its card document
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	cards := make([]domain.Card, 0, len(in.Cards))
	for _, p := range in.Cards {
		card, ok := p.toDomain()
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown card type"})
			return
		}
		cards = append(cards, card)
	}
	u := domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Sex:       in.Sex,
		Cards:     cards,
	}
	id, err := h.Gateway.CreateAccount(c.Request.Context(), u, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginResp struct {
	ID      string `json:"id"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} loginResp
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !h.Redis.Allow(c.Request.Context(), "rl:login:"+in.Email, h.RateLimitPerMin, time.Minute) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
		return
	}
	s, err := h.Gateway.SignIn(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResp{ID: s.AccountID, Access: s.Access, Refresh: s.Refresh})
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) Refresh(c *gin.Context) {
	var in refreshReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	access, err := h.Identity.Refresh(c.Request.Context(), in.Refresh)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (h *Handler) Logout(c *gin.Context) {
	var in refreshReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Identity.SignOut(c.Request.Context(), in.Refresh); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	if err := h.Identity.Verify(c.Request.Context(), token); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}

// GetUser godoc
// @Summary Fetch user profile with cards
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /api/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.Gateway.FetchUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	cards := make([]cardPayload, 0, len(u.Cards))
	for _, card := range u.Cards {
		cards = append(cards, fromDomain(card))
	}
	c.JSON(http.StatusOK, gin.H{
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"sex":       u.Sex,
		"cards":     cards,
	})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.Gateway.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCards(c *gin.Context) {
	cards, err := h.Gateway.FetchCards(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]cardPayload, 0, len(cards))
	for _, card := range cards {
		out = append(out, fromDomain(card))
	}
	c.JSON(http.StatusOK, gin.H{"cards": out})
}

// AddCard godoc
// @Summary Add a card (set semantics, duplicates ignored)
// @Tags cards
// @Security BearerAuth
// @Accept json
// @Success 204
// @Failure 400 {object} map[string]string
// @Router /api/users/{id}/cards [post]
func (h *Handler) AddCard(c *gin.Context) {
	var in cardPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	card, ok := in.toDomain()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown card type"})
		return
	}
	if err := h.Gateway.AddCard(c.Request.Context(), c.Param("id"), card); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RemoveCard(c *gin.Context) {
	var in cardPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	card, ok := in.toDomain()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown card type"})
		return
	}
	if err := h.Gateway.RemoveCard(c.Request.Context(), c.Param("id"), card); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Health.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
