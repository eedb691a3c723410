package domain

// CardType is the barcode symbology a stored card renders as.
type CardType int

const (
	CardQR CardType = iota
	CardCode128
)

func (t CardType) String() string {
	if t == CardQR {
		return "qr"
	}
	return "code128"
}

// Card is one stored loyalty/discount card. Code carries the raw scanned
// payload and must be non-empty for the card to be worth storing.
type Card struct {
	Type      CardType `json:"type"`
	IsClicked bool     `json:"isClicked"`
	Name      string   `json:"name"`
	Code      string   `json:"code"`
}

// User is an account profile with its owned cards embedded by value.
// Cards keep insertion order; duplicates are allowed in memory — the
// document store enforces set semantics on write, not the model.
type User struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Sex       int    `json:"sex"`
	Cards     []Card `json:"cards"`
}
