package lerr

import "fmt"

// Code classifies an Error by failure category (§7 of the specification).
type Code int

const (
	// CodeUnknown is the zero value; never produced by the engine itself.
	CodeUnknown Code = iota
	CodeAllocation
	CodeIO
	CodeOptions
	CodeJSON
	CodeSyntax
	CodeType
	CodeValue
	CodeName
	CodeInclude
)

// String returns the lower-case taxonomy name used in error messages.
func (c Code) String() string {
	switch c {
	case CodeAllocation:
		return "allocation"
	case CodeIO:
		return "io"
	case CodeOptions:
		return "options"
	case CodeJSON:
		return "json"
	case CodeSyntax:
		return "syntax"
	case CodeType:
		return "type"
	case CodeValue:
		return "value"
	case CodeName:
		return "name"
	case CodeInclude:
		return "include"
	default:
		return "unknown"
	}
}

// Error is the engine's single structured error type: a code, the source
// line of the offending directive or expression, an optional included-file
// tag, and a human-readable message. It unifies what the teacher repo split
// across ParseError/SemanticError/CodegenError — lattice has one pipeline,
// not three, so one error type covers parsing, evaluation and rendering.
type Error struct {
	Code    Code
	Line    int
	File    string // included-file identifier, or "" for the top-level template
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.String()
}

// String returns a human-readable representation, e.g. "12: type: ..." or
// "included.tmpl:12: type: ...".
func (e *Error) String() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s: %s", e.Line, e.Code, e.Message)
}

// WithFile returns a copy of e tagged with the given included-file
// identifier, unless it already carries one (the innermost include tags
// first and outer resolvers must not overwrite it).
func (e *Error) WithFile(file string) *Error {
	if e == nil || e.File != "" {
		return e
	}
	cp := *e
	cp.File = file
	return &cp
}

func newErr(code Code, line int, format string, args ...any) *Error {
	return &Error{Code: code, Line: line, Message: fmt.Sprintf(format, args...)}
}

// SyntaxErrorf builds a syntax-class Error.
func SyntaxErrorf(line int, format string, args ...any) *Error {
	return newErr(CodeSyntax, line, format, args...)
}

// TypeErrorf builds a type-class Error.
func TypeErrorf(line int, format string, args ...any) *Error {
	return newErr(CodeType, line, format, args...)
}

// ValueErrorf builds a value-class Error.
func ValueErrorf(line int, format string, args ...any) *Error {
	return newErr(CodeValue, line, format, args...)
}

// NameErrorf builds a name-class Error.
func NameErrorf(line int, format string, args ...any) *Error {
	return newErr(CodeName, line, format, args...)
}

// IncludeErrorf builds an include-class Error.
func IncludeErrorf(line int, format string, args ...any) *Error {
	return newErr(CodeInclude, line, format, args...)
}

// IOErrorf builds an IO-class Error.
func IOErrorf(line int, format string, args ...any) *Error {
	return newErr(CodeIO, line, format, args...)
}

// JSONErrorf builds a JSON-class Error.
func JSONErrorf(line int, format string, args ...any) *Error {
	return newErr(CodeJSON, line, format, args...)
}

// OptionsErrorf builds an options-class Error.
func OptionsErrorf(format string, args ...any) *Error {
	return newErr(CodeOptions, 0, format, args...)
}
