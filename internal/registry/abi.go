// Package registry implements the extension registry: a per-key
// Unknown->Loading->Loaded state machine for native extensions loaded via
// Go's plugin package, plus bootstrap JavaScript installers. It has no
// dependency on the JS engine in use; internal/bindings adapts its Entry
// values onto a goja.Runtime.
//
// The ABI types themselves live in jhp/jhpext so that native extensions
// built as their own Go module can implement them without reaching into
// this package's internal/ boundary.
package registry

import "jhp/jhpext"

type (
	Buf          = jhpext.Buf
	CallResult   = jhpext.CallResult
	FunctionDesc = jhpext.FunctionDesc
	RegisterV1   = jhpext.RegisterV1
	RegisterFunc = jhpext.RegisterFunc
)

const (
	AbiVersion1        = jhpext.AbiVersion1
	RegisterFuncSymbol = jhpext.RegisterFuncSymbol
)
