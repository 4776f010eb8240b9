package lattice

import "github.com/keurnel/lattice/pkg/lerr"

// Error, Code and the taxonomy constructors live in the leaf package lerr so
// that every internal package (eval, directive, block, include, render) can
// depend on the shared error type without importing this facade package and
// creating an import cycle. They are re-exported here under their
// spec-facing names for API ergonomics.
type (
	Error = lerr.Error
	Code  = lerr.Code
)

const (
	CodeUnknown    = lerr.CodeUnknown
	CodeAllocation = lerr.CodeAllocation
	CodeIO         = lerr.CodeIO
	CodeOptions    = lerr.CodeOptions
	CodeJSON       = lerr.CodeJSON
	CodeSyntax     = lerr.CodeSyntax
	CodeType       = lerr.CodeType
	CodeValue      = lerr.CodeValue
	CodeName       = lerr.CodeName
	CodeInclude    = lerr.CodeInclude
)

var (
	SyntaxErrorf  = lerr.SyntaxErrorf
	TypeErrorf    = lerr.TypeErrorf
	ValueErrorf   = lerr.ValueErrorf
	NameErrorf    = lerr.NameErrorf
	IncludeErrorf = lerr.IncludeErrorf
	IOErrorf      = lerr.IOErrorf
	JSONErrorf    = lerr.JSONErrorf
	OptionsErrorf = lerr.OptionsErrorf
)
