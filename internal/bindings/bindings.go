// Package bindings installs the functions and objects every JHP script
// runs against: the global alias, echo, native extension objects, and
// include(). It is the boundary where internal/registry's JS-agnostic
// Entry values become goja.Runtime state.
package bindings

import (
	"strings"

	"github.com/dop251/goja"
)

// Installer attaches one binding to a freshly created runtime. The render
// pipeline runs a request's installer chain in order against a fresh
// *goja.Runtime before executing any document blocks.
type Installer func(rt *goja.Runtime) error

// Global sets `global` as an alias for the runtime's global object, for
// scripts that expect a Node-like global reference.
func Global() Installer {
	return func(rt *goja.Runtime) error {
		return rt.Set("global", rt.GlobalObject())
	}
}

// Echo installs the echo(value) function that every Html/Expression block
// compiles to a call of. Values are coerced to string with goja's normal
// ToString semantics and appended to buf, which the render pipeline reads
// back once the document finishes executing.
func Echo(buf *strings.Builder) Installer {
	return func(rt *goja.Runtime) error {
		return rt.Set("echo", func(call goja.FunctionCall) goja.Value {
			for _, arg := range call.Arguments {
				buf.WriteString(arg.String())
			}
			return goja.Undefined()
		})
	}
}
