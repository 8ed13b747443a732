package idlparser

import (
	"fmt"
	"strings"
)

// ErrorKind classifies parse failures. It implements error so that callers
// can match a kind with errors.Is(err, KindDuplicateTag).
type ErrorKind int

// The kinds of errors reported by the parser.
const (
	KindIoError ErrorKind = iota + 1
	KindEmptyInput
	KindMalformedImport
	KindCyclicImport
	KindAliasConflict
	KindInvalidName
	KindUnterminatedBlock
	KindInvalidTag
	KindDuplicateTag
	KindDuplicateField
	KindInvalidMapField
	KindDuplicateEnumName
	KindDuplicateEnumValue
	KindUnknownType
	KindInvalidMapKey
	KindUnexpectedToken
	KindDuplicateName
	KindInvalidEnumValue
	KindDuplicateMethod
	KindInvalidMethodType
)

var errorKindNames = [...]string{
	KindIoError:            "IoError",
	KindEmptyInput:         "EmptyInput",
	KindMalformedImport:    "MalformedImport",
	KindCyclicImport:       "CyclicImport",
	KindAliasConflict:      "AliasConflict",
	KindInvalidName:        "InvalidName",
	KindUnterminatedBlock:  "UnterminatedBlock",
	KindInvalidTag:         "InvalidTag",
	KindDuplicateTag:       "DuplicateTag",
	KindDuplicateField:     "DuplicateField",
	KindInvalidMapField:    "InvalidMapField",
	KindDuplicateEnumName:  "DuplicateEnumName",
	KindDuplicateEnumValue: "DuplicateEnumValue",
	KindUnknownType:        "UnknownType",
	KindInvalidMapKey:      "InvalidMapKey",
	KindUnexpectedToken:    "UnexpectedToken",
	KindDuplicateName:      "DuplicateName",
	KindInvalidEnumValue:   "InvalidEnumValue",
	KindDuplicateMethod:    "DuplicateMethod",
	KindInvalidMethodType:  "InvalidMethodType",
}

func (k ErrorKind) String() string {
	if k <= 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

func (k ErrorKind) Error() string {
	return k.String()
}

// Error is the structured error returned for every parse failure. It
// carries the file, the offending line and, for cyclic imports, the chain of
// files that form the cycle.
type Error struct {
	Kind    ErrorKind
	Path    string
	Line    int
	Text    string
	Chain   []string
	Message string
	Err     error
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	var b strings.Builder
	b.WriteString(err.Kind.String())
	if err.Path != "" {
		b.WriteString(": ")
		b.WriteString(err.Path)
		if err.Line > 0 {
			fmt.Fprintf(&b, ":%d", err.Line)
		}
	}
	b.WriteString(": ")
	b.WriteString(err.Message)
	if err.Text != "" {
		fmt.Fprintf(&b, " (%q)", err.Text)
	}
	return b.String()
}

// Is matches an ErrorKind target against the error's kind.
func (err *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == err.Kind
}

func (err *Error) Unwrap() error {
	return err.Err
}

// where identifies the statement an error is reported against.
type where struct {
	path string
	line int
	text string
}

func newError(kind ErrorKind, at where, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Path:    at.path,
		Line:    at.line,
		Text:    at.text,
		Message: fmt.Sprintf(format, args...),
	}
}

func errIo(path string, err error) error {
	e := newError(KindIoError, where{path: path}, "%v", err)
	e.Err = err
	return e
}

func errResolveImport(at where, target string, err error) error {
	e := newError(KindIoError, at, "cannot resolve import %q: %v", target, err)
	e.Err = err
	return e
}

func errEmptyInput(path string) error {
	return newError(KindEmptyInput, where{path: path}, "file has no content")
}

func errMalformedImport(at where, reason string) error {
	return newError(KindMalformedImport, at, "%s", reason)
}

func errCyclicImport(at where, chain []string) error {
	e := newError(KindCyclicImport, at, "import cycle %s", strings.Join(chain, " -> "))
	e.Chain = chain
	return e
}

func errAliasConflict(at where, alias, prevPath, path string) error {
	return newError(KindAliasConflict, at,
		"alias '%s' for %q conflicts with earlier alias '%s' for %q", alias, path, alias, prevPath)
}

func errInvalidName(at where, what, name string) error {
	return newError(KindInvalidName, at, "invalid %s name '%s'", what, name)
}

func errUnterminatedBlock(at where, what, name string) error {
	return newError(KindUnterminatedBlock, at, "%s '%s' is missing its closing '}'", what, name)
}

func errInvalidTag(at where, tag string) error {
	return newError(KindInvalidTag, at, "field tag '%s' must be an integer between 1 and %d", tag, maxTag)
}

func errDuplicateTag(at where, msg string, tag int, prev string) error {
	return newError(KindDuplicateTag, at, "tag %d in message '%s' is already used by field '%s'", tag, msg, prev)
}

func errDuplicateField(at where, msg, name string) error {
	return newError(KindDuplicateField, at, "field '%s' is declared twice in message '%s'", name, msg)
}

func errInvalidMapField(at where, name string) error {
	return newError(KindInvalidMapField, at, "map field '%s' cannot be repeated", name)
}

func errDuplicateEnumName(at where, enum, name string) error {
	return newError(KindDuplicateEnumName, at, "element '%s' is declared twice in enum '%s'", name, enum)
}

func errDuplicateEnumValue(at where, enum string, value int32, prev string) error {
	return newError(KindDuplicateEnumValue, at, "value %d in enum '%s' is already used by '%s'", value, enum, prev)
}

func errInvalidEnumValue(at where, value string) error {
	return newError(KindInvalidEnumValue, at, "enum value '%s' is not a 32-bit integer", value)
}

func errUnknownType(at where, name string) error {
	return newError(KindUnknownType, at, "type '%s' is not defined", name)
}

func errInvalidMapKey(at where, key string) error {
	return newError(KindInvalidMapKey, at, "'%s' cannot be used as a map key", key)
}

func errUnexpectedToken(at where, ctx parseCtx) error {
	return newError(KindUnexpectedToken, at, "unexpected statement in %v", ctx)
}

func errDuplicateName(at where, kind, name, scope string) error {
	return newError(KindDuplicateName, at, "%s '%s' conflicts with an earlier declaration in %s", kind, name, scope)
}

func errDuplicateMethod(at where, service, name string) error {
	return newError(KindDuplicateMethod, at, "rpc '%s' is declared twice in service '%s'", name, service)
}

func errInvalidMethodType(at where, name string) error {
	return newError(KindInvalidMethodType, at, "rpc type '%s' is not a message", name)
}
