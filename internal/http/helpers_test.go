package http_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/wallet-service/internal/gateway"
	apihttp "github.com/tazhibayda/wallet-service/internal/http"
	"github.com/tazhibayda/wallet-service/internal/identity"
	"github.com/tazhibayda/wallet-service/internal/notify"
	"github.com/tazhibayda/wallet-service/internal/security"
)

const testSecret = "test_secret"

type fakeAccount struct {
	id       string
	password string
}

// fakeIdentity backs both the gateway's IdentityService and the HTTP
// layer's SessionService, with the real credential policy so the status
// mapping can be tested end to end.
type fakeIdentity struct {
	accounts map[string]*fakeAccount // email -> account
	refresh  map[string]string       // refresh -> account id
	next     int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]*fakeAccount{}, refresh: map[string]string{}}
}

func (f *fakeIdentity) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") || len(password) < 8 {
		return "", identity.ErrWeakPassword
	}
	if _, ok := f.accounts[email]; ok {
		return "", identity.ErrEmailTaken
	}
	f.next++
	id := fmt.Sprintf("acc-%d", f.next)
	f.accounts[email] = &fakeAccount{id: id, password: password}
	return id, nil
}

func (f *fakeIdentity) SendVerification(ctx context.Context, accountID string) error { return nil }

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*gateway.Session, error) {
	a, ok := f.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || a.password != password {
		return nil, identity.ErrBadCredentials
	}
	access, err := security.MakeAccess(testSecret, a.id, email, 15*time.Minute)
	if err != nil {
		return nil, err
	}
	ref, err := security.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	f.refresh[ref] = a.id
	return &gateway.Session{AccountID: a.id, Access: access, Refresh: ref}, nil
}

func (f *fakeIdentity) Refresh(ctx context.Context, refresh string) (string, error) {
	id, ok := f.refresh[refresh]
	if !ok {
		return "", identity.ErrBadCredentials
	}
	return security.MakeAccess(testSecret, id, "", 15*time.Minute)
}

func (f *fakeIdentity) SignOut(ctx context.Context, refresh string) error {
	delete(f.refresh, refresh)
	return nil
}

func (f *fakeIdentity) Verify(ctx context.Context, token string) error {
	if token != "good-token" {
		return identity.ErrBadCredentials
	}
	return nil
}

type fakeDocs struct {
	docs map[string]gateway.Record
}

func newFakeDocs() *fakeDocs { return &fakeDocs{docs: map[string]gateway.Record{}} }

func (f *fakeDocs) Get(ctx context.Context, key string) (gateway.Record, error) {
	rec, ok := f.docs[key]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return rec, nil
}

func (f *fakeDocs) Set(ctx context.Context, key string, rec gateway.Record) error {
	f.docs[key] = rec
	return nil
}

func (f *fakeDocs) Delete(ctx context.Context, key string) error {
	delete(f.docs, key)
	return nil
}

func (f *fakeDocs) rawCards(key string) []any {
	rec, ok := f.docs[key]
	if !ok {
		return nil
	}
	raw, _ := rec["cards"].([]any)
	return raw
}

func (f *fakeDocs) AddCard(ctx context.Context, key string, card gateway.Record) error {
	rec, ok := f.docs[key]
	if !ok {
		return errors.New("no such document")
	}
	raw, _ := rec["cards"].([]any)
	for _, item := range raw {
		if reflect.DeepEqual(item, map[string]any(card)) {
			return nil
		}
	}
	rec["cards"] = append(raw, map[string]any(card))
	return nil
}

func (f *fakeDocs) RemoveCard(ctx context.Context, key string, card gateway.Record) error {
	rec, ok := f.docs[key]
	if !ok {
		return errors.New("no such document")
	}
	raw, _ := rec["cards"].([]any)
	kept := make([]any, 0, len(raw))
	for _, item := range raw {
		if !reflect.DeepEqual(item, map[string]any(card)) {
			kept = append(kept, item)
		}
	}
	rec["cards"] = kept
	return nil
}

type pingOK struct{}

func (pingOK) Ping(ctx context.Context) error { return nil }

type testEnv struct {
	Router   *gin.Engine
	Identity *fakeIdentity
	Docs     *fakeDocs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ids := newFakeIdentity()
	docs := newFakeDocs()
	gw := gateway.New(ids, docs, notify.Noop{}, nil)

	h := apihttp.NewHandler(gw, ids, pingOK{}, nil, testSecret, 0)
	return &testEnv{Router: apihttp.NewRouter(h), Identity: ids, Docs: docs}
}
