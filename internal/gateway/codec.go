package gateway

import (
	"errors"
	"fmt"

	"github.com/tazhibayda/wallet-service/internal/domain"
)

// Record is the schemaless field-to-value mapping the document store speaks.
type Record = map[string]any

// Card records carry exactly these four fields. The symbology is stored as a
// boolean: true = qr, false = code128. Only two symbologies are
// representable in this format; widening it is a format change, not a codec
// fix.
const (
	fieldType      = "type"
	fieldIsClicked = "isClicked"
	fieldName      = "name"
	fieldCode      = "code"

	fieldFirstName = "firstName"
	fieldLastName  = "lastName"
	fieldEmail     = "email"
	fieldSex       = "sex"
	fieldCards     = "cards"
)

func EncodeCard(c domain.Card) Record {
	return Record{
		fieldType:      c.Type == domain.CardQR,
		fieldIsClicked: c.IsClicked,
		fieldName:      c.Name,
		fieldCode:      c.Code,
	}
}

// DecodeCard returns ok=false when any of the four required fields is
// missing or has the wrong shape.
func DecodeCard(rec Record) (domain.Card, bool) {
	typ, ok := rec[fieldType].(bool)
	if !ok {
		return domain.Card{}, false
	}
	clicked, ok := rec[fieldIsClicked].(bool)
	if !ok {
		return domain.Card{}, false
	}
	name, ok := rec[fieldName].(string)
	if !ok {
		return domain.Card{}, false
	}
	code, ok := rec[fieldCode].(string)
	if !ok {
		return domain.Card{}, false
	}
	kind := domain.CardCode128
	if typ {
		kind = domain.CardQR
	}
	return domain.Card{Type: kind, IsClicked: clicked, Name: name, Code: code}, true
}

// DecodeCards skips malformed entries and keeps going; a bad record in the
// collection must not hide its siblings.
func DecodeCards(raw []any) []domain.Card {
	out := make([]domain.Card, 0, len(raw))
	for _, item := range raw {
		rec, ok := asRecord(item)
		if !ok {
			continue
		}
		c, ok := DecodeCard(rec)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func EncodeUser(u domain.User) Record {
	cards := make([]any, 0, len(u.Cards))
	for _, c := range u.Cards {
		cards = append(cards, EncodeCard(c))
	}
	return Record{
		fieldFirstName: u.FirstName,
		fieldLastName:  u.LastName,
		fieldEmail:     u.Email,
		fieldSex:       u.Sex,
		fieldCards:     cards,
	}
}

// DecodeUser requires all five fields. Unlike card collections there is no
// partial success: a user record that does not parse is an error, and the
// caller gets to know that it was a decode problem rather than an absent
// document.
func DecodeUser(rec Record) (*domain.User, error) {
	firstName, ok := rec[fieldFirstName].(string)
	if !ok {
		return nil, fmt.Errorf("missing or non-string %q", fieldFirstName)
	}
	lastName, ok := rec[fieldLastName].(string)
	if !ok {
		return nil, fmt.Errorf("missing or non-string %q", fieldLastName)
	}
	email, ok := rec[fieldEmail].(string)
	if !ok {
		return nil, fmt.Errorf("missing or non-string %q", fieldEmail)
	}
	sex, ok := asInt(rec[fieldSex])
	if !ok {
		return nil, fmt.Errorf("missing or non-integer %q", fieldSex)
	}
	raw, ok := rec[fieldCards].([]any)
	if !ok {
		return nil, errors.New(`missing or non-array "cards"`)
	}
	return &domain.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Sex:       sex,
		Cards:     DecodeCards(raw),
	}, nil
}

// asRecord expects store implementations to normalize embedded documents to
// plain maps before handing them over (repo.normalizeValue does this for
// BSON).
func asRecord(v any) (Record, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// asInt tolerates the integer widths a BSON round-trip can produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
