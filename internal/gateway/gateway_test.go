package gateway

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/tazhibayda/wallet-service/internal/domain"
)

// fakeIdentity counts calls so tests can assert that validation failures
// never reach the remote side.
type fakeIdentity struct {
	calls   int
	nextID  int
	failOn  string
	signIns []string
}

func (f *fakeIdentity) CreateAccount(ctx context.Context, email, password string) (string, error) {
	f.calls++
	if f.failOn == "create" {
		return "", errors.New("remote says no")
	}
	f.nextID++
	return fmt.Sprintf("acc-%d", f.nextID), nil
}

func (f *fakeIdentity) SendVerification(ctx context.Context, accountID string) error {
	f.calls++
	if f.failOn == "verify" {
		return errors.New("mail service down")
	}
	return nil
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*Session, error) {
	f.calls++
	f.signIns = append(f.signIns, email)
	if f.failOn == "signin" {
		return nil, errors.New("invalid credentials")
	}
	return &Session{AccountID: "acc-1", Access: "a", Refresh: "r"}, nil
}

// fakeDocs is an in-memory DocumentStore with the same set semantics on the
// cards array as the real one.
type fakeDocs struct {
	docs   map[string]Record
	failOn string
}

func newFakeDocs() *fakeDocs { return &fakeDocs{docs: map[string]Record{}} }

func (f *fakeDocs) Get(ctx context.Context, key string) (Record, error) {
	if f.failOn == "get" {
		return nil, errors.New("boom")
	}
	rec, ok := f.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (f *fakeDocs) Set(ctx context.Context, key string, rec Record) error {
	if f.failOn == "set" {
		return errors.New("boom")
	}
	f.docs[key] = rec
	return nil
}

func (f *fakeDocs) Delete(ctx context.Context, key string) error {
	if f.failOn == "delete" {
		return errors.New("boom")
	}
	delete(f.docs, key)
	return nil
}

func (f *fakeDocs) cards(key string) []any {
	rec, ok := f.docs[key]
	if !ok {
		rec = Record{"cards": []any{}}
		f.docs[key] = rec
	}
	raw, _ := rec["cards"].([]any)
	return raw
}

func (f *fakeDocs) AddCard(ctx context.Context, key string, card Record) error {
	raw := f.cards(key)
	for _, item := range raw {
		if reflect.DeepEqual(item, map[string]any(card)) {
			return nil // set union: equal entry not re-added
		}
	}
	f.docs[key]["cards"] = append(raw, map[string]any(card))
	return nil
}

func (f *fakeDocs) RemoveCard(ctx context.Context, key string, card Record) error {
	raw := f.cards(key)
	kept := make([]any, 0, len(raw))
	for _, item := range raw {
		if !reflect.DeepEqual(item, map[string]any(card)) {
			kept = append(kept, item)
		}
	}
	f.docs[key]["cards"] = kept
	return nil
}

type fakeNotifier struct {
	titles   []string
	messages []string
}

func (f *fakeNotifier) Notify(ctx context.Context, title, message string) error {
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
	return nil
}

func newTestGateway() (*Gateway, *fakeIdentity, *fakeDocs, *fakeNotifier) {
	ids := &fakeIdentity{}
	docs := newFakeDocs()
	n := &fakeNotifier{}
	return New(ids, docs, n, nil), ids, docs, n
}

func Test_SignIn_EmptyField_NoRemoteCall(t *testing.T) {
	gw, ids, _, n := newTestGateway()

	for _, in := range [][2]string{{"", "pw"}, {"a@b.com", ""}, {"", ""}} {
		_, err := gw.SignIn(context.Background(), in[0], in[1])
		if err == nil {
			t.Fatalf("empty field %v must fail", in)
		}
		if KindOf(err) != KindValidation {
			t.Fatalf("want validation, got %v", KindOf(err))
		}
	}
	if ids.calls != 0 {
		t.Fatalf("no remote call expected, got %d", ids.calls)
	}
	if len(n.messages) != 3 || !strings.Contains(n.messages[0], "empty field") {
		t.Fatalf("empty field notification expected, got %v", n.messages)
	}
}

func Test_SignIn_RemoteFailure_Notifies(t *testing.T) {
	gw, ids, _, n := newTestGateway()
	ids.failOn = "signin"

	_, err := gw.SignIn(context.Background(), "a@b.com", "pw")
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindPermanent {
		t.Fatalf("want permanent, got %v", KindOf(err))
	}
	if len(ids.signIns) != 1 || ids.signIns[0] != "a@b.com" {
		t.Fatalf("remote sign-in calls: %v", ids.signIns)
	}
	if len(n.titles) != 1 || n.titles[0] != "Error" {
		t.Fatalf("want one Error notification, got %v", n.titles)
	}
	if !strings.Contains(n.messages[0], "Error signing in user") {
		t.Fatalf("message text: %q", n.messages[0])
	}
}

func Test_CreateAccount_WritesDocumentUnderNewID(t *testing.T) {
	gw, _, docs, _ := newTestGateway()

	u := domain.User{FirstName: "A", LastName: "B", Email: "a@b.com", Sex: 1,
		Cards: []domain.Card{{Type: domain.CardQR, Name: "Coffee", Code: "12345"}}}
	id, err := gw.CreateAccount(context.Background(), u, "StrongP@ss1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, ok := docs.docs[id]
	if !ok {
		t.Fatalf("no document under %q", id)
	}
	back, err := DecodeUser(rec)
	if err != nil {
		t.Fatalf("stored document does not decode: %v", err)
	}
	if back.Email != "a@b.com" || len(back.Cards) != 1 {
		t.Fatalf("stored user mangled: %+v", back)
	}
}

func Test_CreateAccount_DocWriteFails_IdentityOrphanStays(t *testing.T) {
	gw, ids, docs, n := newTestGateway()
	docs.failOn = "set"

	_, err := gw.CreateAccount(context.Background(), domain.User{Email: "a@b.com"}, "pw1234567")
	if err == nil {
		t.Fatal("expected error")
	}
	// identity create + verification already happened, nothing rolls back
	if ids.calls != 2 {
		t.Fatalf("want 2 identity calls before the doc write, got %d", ids.calls)
	}
	if len(n.messages) != 1 || !strings.Contains(n.messages[0], "Error creating user with authentication") {
		t.Fatalf("notification: %v", n.messages)
	}
}

func Test_AddCard_SetUnion(t *testing.T) {
	gw, _, docs, _ := newTestGateway()
	card := domain.Card{Type: domain.CardQR, Name: "Coffee", Code: "12345"}

	for i := 0; i < 3; i++ {
		if err := gw.AddCard(context.Background(), "acc-1", card); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if got := len(docs.cards("acc-1")); got != 1 {
		t.Fatalf("duplicate entries stored: %d", got)
	}

	// differing in one field is a different set member
	other := card
	other.IsClicked = true
	if err := gw.AddCard(context.Background(), "acc-1", other); err != nil {
		t.Fatal(err)
	}
	if got := len(docs.cards("acc-1")); got != 2 {
		t.Fatalf("want 2 distinct cards, got %d", got)
	}
}

func Test_AddCard_EmptyCode_Rejected(t *testing.T) {
	gw, _, docs, _ := newTestGateway()
	err := gw.AddCard(context.Background(), "acc-1", domain.Card{Name: "x"})
	if err == nil || KindOf(err) != KindValidation {
		t.Fatalf("empty code must be a validation failure, got %v", err)
	}
	if len(docs.cards("acc-1")) != 0 {
		t.Fatal("nothing should be stored")
	}
}

func Test_RemoveCard_RemovesAllEqual_IdempotentWhenAbsent(t *testing.T) {
	gw, _, docs, _ := newTestGateway()
	card := domain.Card{Type: domain.CardCode128, Name: "Gym", Code: "999"}

	// seed two equal entries directly, bypassing set semantics
	docs.docs["acc-1"] = Record{"cards": []any{
		map[string]any(EncodeCard(card)),
		map[string]any(EncodeCard(card)),
	}}

	if err := gw.RemoveCard(context.Background(), "acc-1", card); err != nil {
		t.Fatal(err)
	}
	if got := len(docs.cards("acc-1")); got != 0 {
		t.Fatalf("all equal entries must go, %d left", got)
	}
	// removing again is a no-op
	if err := gw.RemoveCard(context.Background(), "acc-1", card); err != nil {
		t.Fatalf("remove of absent card must not fail: %v", err)
	}
}

func Test_FetchUser_NotFound_NoNotification(t *testing.T) {
	gw, _, _, n := newTestGateway()

	_, err := gw.FetchUser(context.Background(), "nope")
	if KindOf(err) != KindNotFound {
		t.Fatalf("want not_found, got %v", err)
	}
	// absence is not an alert, only real failures notify
	if len(n.messages) != 0 {
		t.Fatalf("unexpected notifications: %v", n.messages)
	}
}

func Test_FetchUser_MalformedDocument_IsDecodeFailure(t *testing.T) {
	gw, _, docs, n := newTestGateway()
	docs.docs["acc-1"] = Record{"firstName": "A", "lastName": "B", "email": "a@b.com", "cards": []any{}} // no sex

	_, err := gw.FetchUser(context.Background(), "acc-1")
	if KindOf(err) != KindDecode {
		t.Fatalf("want decode, got %v", err)
	}
	if len(n.messages) != 1 {
		t.Fatalf("decode failure must notify: %v", n.messages)
	}
}

func Test_FetchCards_SkipsMalformed(t *testing.T) {
	gw, _, docs, _ := newTestGateway()
	docs.docs["acc-1"] = Record{"cards": []any{
		map[string]any{"type": true, "isClicked": false, "name": "Coffee", "code": "12345"},
		map[string]any{"type": true, "name": "broken"}, // missing fields
		map[string]any{"type": false, "isClicked": true, "name": "Gym", "code": "999"},
	}}

	cards, err := gw.FetchCards(context.Background(), "acc-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 2 || cards[0].Name != "Coffee" || cards[1].Name != "Gym" {
		t.Fatalf("got %v", cards)
	}
}

func Test_DeleteAccount_DocumentOnly(t *testing.T) {
	gw, ids, docs, _ := newTestGateway()
	docs.docs["acc-1"] = Record{"cards": []any{}}

	if err := gw.DeleteAccount(context.Background(), "acc-1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := docs.docs["acc-1"]; ok {
		t.Fatal("document must be gone")
	}
	// the identity record is intentionally untouched
	if ids.calls != 0 {
		t.Fatalf("delete must not touch the identity service, got %d calls", ids.calls)
	}
}
