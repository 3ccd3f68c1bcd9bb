package avro

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which branch of the error taxonomy an error belongs
// to, so callers can errors.Is/errors.As against a stable category instead
// of matching message text.
type ErrorKind int

const (
	// ErrSchemaParse is returned for malformed or semantically invalid
	// schema input. See its subcategories below.
	ErrSchemaParse ErrorKind = iota
	ErrInvalidValue
	ErrMissingField
	ErrUnknownField
	ErrDispatchAmbiguous
	ErrDispatchNoMatch
	ErrRecordNotAdaptable
	ErrTruncatedInput
	ErrIntegerOverflow
	ErrInvalidUtf8
	ErrCorruptSync
	ErrTruncatedBlock
	ErrResolution
	ErrIo
	ErrUnsupportedCodec
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSchemaParse:
		return "SchemaParseError"
	case ErrInvalidValue:
		return "InvalidValue"
	case ErrMissingField:
		return "MissingField"
	case ErrUnknownField:
		return "UnknownField"
	case ErrDispatchAmbiguous:
		return "DispatchAmbiguous"
	case ErrDispatchNoMatch:
		return "DispatchNoMatch"
	case ErrRecordNotAdaptable:
		return "RecordNotAdaptable"
	case ErrTruncatedInput:
		return "TruncatedInput"
	case ErrIntegerOverflow:
		return "IntegerOverflow"
	case ErrInvalidUtf8:
		return "InvalidUtf8"
	case ErrCorruptSync:
		return "CorruptSync"
	case ErrTruncatedBlock:
		return "TruncatedBlock"
	case ErrResolution:
		return "ResolutionError"
	case ErrIo:
		return "IoError"
	case ErrUnsupportedCodec:
		return "UnsupportedCodec"
	default:
		return "UnknownError"
	}
}

// SchemaParseSubcategory further classifies an ErrSchemaParse error.
type SchemaParseSubcategory int

const (
	SubUnknownType SchemaParseSubcategory = iota
	SubDuplicateName
	SubInvalidName
	SubInvalidDefault
	SubInvalidUnion
	SubInvalidLogicalParams
)

func (s SchemaParseSubcategory) String() string {
	switch s {
	case SubUnknownType:
		return "UnknownType"
	case SubDuplicateName:
		return "DuplicateName"
	case SubInvalidName:
		return "InvalidName"
	case SubInvalidDefault:
		return "InvalidDefault"
	case SubInvalidUnion:
		return "InvalidUnion"
	case SubInvalidLogicalParams:
		return "InvalidLogicalParams"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every package function.
// Path, when non-empty, is a dotted field / union-branch / array-index
// locator for InvalidValue errors, per spec.md's error-handling design.
type Error struct {
	Kind    ErrorKind
	Sub     SchemaParseSubcategory
	HasSub  bool
	Path    string
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.HasSub {
		prefix = fmt.Sprintf("%s(%s)", prefix, e.Sub)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

func newErr(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func newSchemaParseErr(sub SchemaParseSubcategory, format string, args ...interface{}) *Error {
	return &Error{Kind: ErrSchemaParse, Sub: sub, HasSub: true, Message: fmt.Sprintf(format, args...)}
}

func newValueErr(path, format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidValue, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Is supports errors.Is(err, SomeKindSentinel) style matching via the kind
// sentinels declared below.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		if other.Kind != e.Kind {
			return false
		}
		if other.HasSub && (!e.HasSub || other.Sub != e.Sub) {
			return false
		}
		return true
	}
	return false
}

// Sentinel errors usable with errors.Is(err, avro.ErrXxx).
var (
	ErrSentinelSchemaParse      = &Error{Kind: ErrSchemaParse}
	ErrSentinelInvalidValue     = &Error{Kind: ErrInvalidValue}
	ErrSentinelMissingField     = &Error{Kind: ErrMissingField}
	ErrSentinelUnknownField     = &Error{Kind: ErrUnknownField}
	ErrSentinelDispatchAmbig    = &Error{Kind: ErrDispatchAmbiguous}
	ErrSentinelDispatchNoMatch  = &Error{Kind: ErrDispatchNoMatch}
	ErrSentinelRecordNotAdapt   = &Error{Kind: ErrRecordNotAdaptable}
	ErrSentinelTruncatedInput   = &Error{Kind: ErrTruncatedInput}
	ErrSentinelIntegerOverflow  = &Error{Kind: ErrIntegerOverflow}
	ErrSentinelInvalidUtf8      = &Error{Kind: ErrInvalidUtf8}
	ErrSentinelCorruptSync      = &Error{Kind: ErrCorruptSync}
	ErrSentinelTruncatedBlock   = &Error{Kind: ErrTruncatedBlock}
	ErrSentinelResolution       = &Error{Kind: ErrResolution}
	ErrSentinelIo               = &Error{Kind: ErrIo}
	ErrSentinelUnsupportedCodec = &Error{Kind: ErrUnsupportedCodec}
)
