// Package identity implements the gateway's IdentityService over the Mongo
// account store: bcrypt credentials, HS256 access tokens, hashed refresh
// tokens and one-time verification tokens delivered through the event queue.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/wallet-service/internal/gateway"
	"github.com/tazhibayda/wallet-service/internal/queue"
	"github.com/tazhibayda/wallet-service/internal/repo"
	"github.com/tazhibayda/wallet-service/internal/security"
)

const (
	accessTTL = 15 * time.Minute
	verifyTTL = 48 * time.Hour
)

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrEmailTaken     = errors.New("email already registered")
	ErrWeakPassword   = errors.New("invalid email or weak password")
)

type Service struct {
	Store      *repo.Store
	JWTSecret  string
	RefreshTTL time.Duration
	Events     queue.Publisher
	Exchange   string
	Log        *zap.Logger
}

func New(store *repo.Store, jwtSecret string, refreshDays int, pub queue.Publisher, exchange string, l *zap.Logger) *Service {
	if pub == nil {
		pub = queue.NewNoop()
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		Store:      store,
		JWTSecret:  jwtSecret,
		RefreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
		Events:     pub,
		Exchange:   exchange,
		Log:        l,
	}
}

// CreateAccount enforces the credential policy the hosted backend used to:
// a syntactically plausible email and a minimum-length password.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") || len(password) < 8 {
		return "", ErrWeakPassword
	}
	if a, _ := s.Store.FindAccountByEmail(ctx, email); a != nil {
		return "", ErrEmailTaken
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return "", err
	}
	a := &repo.Account{Email: email, PasswordHash: hash}
	if err := s.Store.CreateAccount(ctx, a); err != nil {
		// unique index catches the register race; second writer loses
		return "", ErrEmailTaken
	}
	return a.ID.Hex(), nil
}

// SendVerification stores a one-time token and publishes the event the
// notifier worker turns into a verification mail.
func (s *Service) SendVerification(ctx context.Context, accountID string) error {
	oid, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return err
	}
	a, err := s.Store.FindAccountByID(ctx, oid)
	if err != nil {
		return err
	}
	if a == nil {
		return errors.New("account not found")
	}
	tok, err := security.NewEmailToken()
	if err != nil {
		return err
	}
	et := repo.EmailToken{
		AccountID: oid,
		Token:     tok,
		Purpose:   "verify",
		ExpiresAt: time.Now().Add(verifyTTL).UTC(),
	}
	if err := s.Store.CreateEmailToken(ctx, et); err != nil {
		return err
	}
	reqID, _ := ctx.Value(queue.RequestIDKey).(string)
	return s.Events.Publish(ctx, s.Exchange, "user.registered",
		queue.UserRegistered{UserID: accountID, Email: a.Email, Token: tok}, reqID)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*gateway.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := s.Store.FindAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil || !security.CheckPassword(a.PasswordHash, password) {
		return nil, ErrBadCredentials
	}

	access, err := security.MakeAccess(s.JWTSecret, a.ID.Hex(), a.Email, accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := security.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.Store.SaveRefresh(ctx, a.ID, refresh, s.RefreshTTL); err != nil {
		return nil, err
	}

	reqID, _ := ctx.Value(queue.RequestIDKey).(string)
	go s.Events.Publish(ctx, s.Exchange, "user.signedin",
		queue.UserSignedIn{UserID: a.ID.Hex(), Email: a.Email}, reqID)

	return &gateway.Session{AccountID: a.ID.Hex(), Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refresh string) (string, error) {
	rt, err := s.Store.FindValidRefresh(ctx, refresh)
	if err != nil {
		return "", err
	}
	if rt == nil {
		return "", ErrBadCredentials
	}
	a, err := s.Store.FindAccountByID(ctx, rt.AccountID)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", ErrBadCredentials
	}
	return security.MakeAccess(s.JWTSecret, a.ID.Hex(), a.Email, accessTTL)
}

func (s *Service) SignOut(ctx context.Context, refresh string) error {
	return s.Store.RevokeRefresh(ctx, refresh)
}

// Verify consumes a one-time email token and marks the account verified.
func (s *Service) Verify(ctx context.Context, token string) error {
	et, err := s.Store.UseEmailToken(ctx, token, "verify")
	if err != nil {
		return ErrBadCredentials
	}
	return s.Store.MarkAccountVerified(ctx, et.AccountID)
}
