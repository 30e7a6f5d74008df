package trader

import "errors"

var (
	// ErrValidation marks bad caller input: side, qty, price, tif, order id
	// or an unknown symbol.
	ErrValidation = errors.New("validation error")
	// ErrLookup means no price or data could be derived from any source.
	ErrLookup = errors.New("lookup error")
	// ErrNotSupported marks a capability the venue connector does not offer.
	ErrNotSupported = errors.New("not supported")
	// ErrUpstream wraps any other failure raised by the venue connector.
	ErrUpstream = errors.New("upstream error")
)

// Error carries a kind sentinel and the caller-facing message. Error()
// returns only the message so tool results stay readable.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func validationError(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

func lookupError(msg string) error {
	return &Error{Kind: ErrLookup, Msg: msg}
}

func notSupportedError(msg string) error {
	return &Error{Kind: ErrNotSupported, Msg: msg}
}

// upstreamError classifies a connector failure. Errors that already carry a
// kind pass through unchanged.
func upstreamError(err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{Kind: ErrUpstream, Msg: err.Error(), Cause: err}
}
