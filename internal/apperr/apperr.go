package apperr

import "errors"

// Kind classifies a business error so the API layer can map it to an
// HTTP status without inspecting message strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindDuplicate
	KindAuth
	KindNotFound
)

// Error carries a classification plus the client-facing message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func Duplicate(msg string) error  { return &Error{Kind: KindDuplicate, Msg: msg} }
func Auth(msg string) error       { return &Error{Kind: KindAuth, Msg: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }

// KindOf extracts the classification, or KindUnknown for unexpected
// errors (database failures, external services, ...).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
