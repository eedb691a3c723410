package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind classifies a gateway failure so callers can react instead of
// treating every outcome as a popup.
type Kind int

const (
	KindValidation Kind = iota // bad input, no remote call was made
	KindNotFound               // no record under the given key
	KindDecode                 // record present but malformed
	KindTransient              // remote failure worth retrying
	KindPermanent              // remote failure that will not heal itself
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDecode:
		return "decode"
	case KindTransient:
		return "transient"
	default:
		return "permanent"
	}
}

// Error is the classified outcome of a gateway operation.
type Error struct {
	Kind Kind
	Op   string // "gateway.FetchUser" etc.
	Err  error  // underlying cause, may be nil for validation
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func errf(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the classification; anything unclassified counts as
// permanent.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindPermanent
}

// classifyRemote maps a raw remote error onto the transient/permanent split.
// Network-level and timeout failures may heal on retry; everything else
// (auth rejection, duplicate key, permission) will not.
func classifyRemote(op string, err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errf(KindTransient, op, err)
	case errors.As(err, &netErr):
		return errf(KindTransient, op, err)
	case mongo.IsTimeout(err) || mongo.IsNetworkError(err):
		return errf(KindTransient, op, err)
	default:
		return errf(KindPermanent, op, err)
	}
}
