// Package gateway is the single data-access component of the service: it
// translates between domain values and the schemaless records of a document
// store, and forwards account operations to an identity service. Failures
// come back classified, and a notifier reproduces the user-facing alerts the
// mobile client shows by default.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tazhibayda/wallet-service/internal/domain"
	"github.com/tazhibayda/wallet-service/internal/notify"
)

// Session is what a successful sign-in yields.
type Session struct {
	AccountID string
	Access    string
	Refresh   string
}

// IdentityService issues and authenticates accounts. The account id it
// returns keys the user document in the store.
type IdentityService interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	SendVerification(ctx context.Context, accountID string) error
	SignIn(ctx context.Context, email, password string) (*Session, error)
}

// DocumentStore is a per-key schemaless record store with set-semantics
// updates on the embedded card collection: AddCard does not re-add an entry
// equal in all fields, RemoveCard removes every equal entry.
type DocumentStore interface {
	Get(ctx context.Context, key string) (Record, error)
	Set(ctx context.Context, key string, rec Record) error
	Delete(ctx context.Context, key string) error
	AddCard(ctx context.Context, key string, card Record) error
	RemoveCard(ctx context.Context, key string, card Record) error
}

// ErrNotFound is returned by DocumentStore.Get when no record exists under
// the key. Implementations must map their driver's sentinel onto it.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "record not found" }

type Gateway struct {
	identity IdentityService
	docs     DocumentStore
	notifier notify.Notifier
	log      *zap.Logger
}

func New(identity IdentityService, docs DocumentStore, n notify.Notifier, l *zap.Logger) *Gateway {
	if n == nil {
		n = notify.Noop{}
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Gateway{identity: identity, docs: docs, notifier: n, log: l}
}

// report logs the failure and fires the default user-facing notification,
// then hands the classified error back so the caller can still do better
// than a popup.
func (g *Gateway) report(ctx context.Context, msg string, err *Error) *Error {
	g.log.Error(msg, zap.String("op", err.Op), zap.String("kind", err.Kind.String()), zap.Error(err.Err))
	if err.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err.Err)
	}
	_ = g.notifier.Notify(ctx, "Error", msg)
	return err
}

// CreateAccount registers the identity record, sends the verification
// message and writes the user document under the new account id. The two
// writes are not atomic: if the document write fails the identity record
// stays behind until a cleanup job exists.
func (g *Gateway) CreateAccount(ctx context.Context, user domain.User, password string) (string, error) {
	const op = "gateway.CreateAccount"

	id, err := g.identity.CreateAccount(ctx, user.Email, password)
	if err != nil {
		return "", g.report(ctx, "Error creating user with authentication", classifyRemote(op, err))
	}
	if err := g.identity.SendVerification(ctx, id); err != nil {
		return "", g.report(ctx, "Error creating user with authentication", classifyRemote(op, err))
	}
	if err := g.docs.Set(ctx, id, EncodeUser(user)); err != nil {
		return "", g.report(ctx, "Error creating user with authentication", classifyRemote(op, err))
	}
	g.log.Info("user created", zap.String("id", id))
	return id, nil
}

// SignIn authenticates against the identity service. Empty email or
// password short-circuits locally: no remote call happens, the "empty
// field" notification fires immediately.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "gateway.SignIn"

	if email == "" || password == "" {
		return nil, g.report(ctx, "Found empty field", errf(KindValidation, op, nil))
	}
	s, err := g.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, g.report(ctx, "Error signing in user", classifyRemote(op, err))
	}
	g.log.Info("user signed in", zap.String("email", email))
	return s, nil
}

// FetchUser reads and decodes the user document. All five fields must be
// present and well-shaped; a malformed document is a decode failure, not a
// missing one.
func (g *Gateway) FetchUser(ctx context.Context, id string) (*domain.User, error) {
	const op = "gateway.FetchUser"

	rec, err := g.docs.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errf(KindNotFound, op, nil)
	}
	if err != nil {
		return nil, g.report(ctx, "Error fetching user", classifyRemote(op, err))
	}
	u, err := DecodeUser(rec)
	if err != nil {
		return nil, g.report(ctx, "Error fetching user", errf(KindDecode, op, err))
	}
	return u, nil
}

// DeleteAccount removes the user document only. The paired identity record
// is deliberately left in place: the mobile client never deleted it, and
// whether that is soft-delete intent or an oversight is unresolved, so the
// asymmetry is preserved.
func (g *Gateway) DeleteAccount(ctx context.Context, id string) error {
	const op = "gateway.DeleteAccount"

	if err := g.docs.Delete(ctx, id); err != nil {
		return g.report(ctx, "Error deleting user", classifyRemote(op, err))
	}
	g.log.Info("user deleted", zap.String("id", id))
	return nil
}

// AddCard appends the card to the document's collection with set-union
// semantics: an entry equal in all four fields is not re-added.
func (g *Gateway) AddCard(ctx context.Context, userID string, card domain.Card) error {
	const op = "gateway.AddCard"

	if card.Code == "" {
		return g.report(ctx, "Card code is empty", errf(KindValidation, op, nil))
	}
	if err := g.docs.AddCard(ctx, userID, EncodeCard(card)); err != nil {
		return g.report(ctx, "Error adding card to user", classifyRemote(op, err))
	}
	return nil
}

// RemoveCard removes every collection entry equal to the card in all four
// fields. Removing an absent card is a no-op.
func (g *Gateway) RemoveCard(ctx context.Context, userID string, card domain.Card) error {
	const op = "gateway.RemoveCard"

	if err := g.docs.RemoveCard(ctx, userID, EncodeCard(card)); err != nil {
		return g.report(ctx, "Error removing card from user", classifyRemote(op, err))
	}
	return nil
}

// FetchCards returns the document's cards in storage order. Malformed
// entries are skipped, decoding continues for the rest.
func (g *Gateway) FetchCards(ctx context.Context, userID string) ([]domain.Card, error) {
	const op = "gateway.FetchCards"

	rec, err := g.docs.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, errf(KindNotFound, op, nil)
	}
	if err != nil {
		return nil, g.report(ctx, "Error fetching cards for user", classifyRemote(op, err))
	}
	raw, ok := rec[fieldCards].([]any)
	if !ok {
		return nil, g.report(ctx, "Error fetching cards for user", errf(KindDecode, op, fmt.Errorf("missing or non-array %q", fieldCards)))
	}
	return DecodeCards(raw), nil
}

// UpdateUser is deliberately absent: the design question of who holds the
// account id during a profile rewrite (client storage vs server session) is
// not settled, so whole-document updates stay off the surface for now.
