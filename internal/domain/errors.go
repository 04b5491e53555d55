package domain

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindUnauthorized
	KindNotFound
	KindPayloadTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindPayloadTooLarge:
		return "payload_too_large"
	}
	return "internal"
}

// Error 业务错误；Msg 原样返回给调用方，Err 只进日志
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error      { return &Error{Kind: KindValidation, Msg: msg} }
func Duplicate(msg string) error       { return &Error{Kind: KindDuplicate, Msg: msg} }
func Unauthorized(msg string) error    { return &Error{Kind: KindUnauthorized, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func PayloadTooLarge(msg string) error { return &Error{Kind: KindPayloadTooLarge, Msg: msg} }

// KindOf 非 *Error 一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

const (
	MsgInvalidCredentials = "invalid credentials"
	MsgUserExists         = "email or phone already registered"
	MsgUserNotFound       = "user not found"
	MsgProductNotFound    = "product not found"
	MsgFileRequired       = "file is required"
	MsgFileTooLarge       = "file too large"
)
