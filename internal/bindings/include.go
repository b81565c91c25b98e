package bindings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"jhp/internal/logging"
	"jhp/internal/parser"
	"jhp/internal/registry"
)

// Include installs include(path): extensionless names resolve against the
// native extension registry first and fall back to file lookup under
// documentRoot and extensionsDir; .jhp files are parsed and compiled to JS
// before running, .js files run directly.
func Include(documentRoot, extensionsDir string, reg *registry.Registry) Installer {
	return func(rt *goja.Runtime) error {
		return rt.Set("include", func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				panic(rt.NewTypeError("include: expected a path argument"))
			}
			path := call.Arguments[0].String()

			v, err := include(rt, documentRoot, extensionsDir, reg, path)
			if err != nil {
				panic(rt.ToValue(err.Error()))
			}
			return v
		})
	}
}

func include(rt *goja.Runtime, documentRoot, extensionsDir string, reg *registry.Registry, path string) (goja.Value, error) {
	log := logging.Get(logging.CategoryRender)

	if filepath.Ext(path) == "" {
		if entry, err := reg.EnsureLoaded(path); err == nil {
			log.Debugf("include %q resolved to extension %s", path, entry.ObjectName)
			if err := InstallEntry(rt, entry); err != nil {
				return nil, err
			}
			if v := rt.Get(entry.ObjectName); v != nil {
				return v, nil
			}
			return goja.Undefined(), nil
		}

		for _, candidate := range []string{
			filepath.Join(documentRoot, path+".js"),
			filepath.Join(extensionsDir, path, path+".js"),
			filepath.Join(extensionsDir, path+".js"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				return runFile(rt, candidate)
			}
		}
		return nil, fmt.Errorf("include: cannot resolve %q as an extension or file", path)
	}

	// Resolution order: path as given (CWD-relative or absolute), then
	// under documentRoot.
	candidate := path
	if _, err := os.Stat(candidate); err != nil {
		candidate = filepath.Join(documentRoot, path)
	}
	return runFile(rt, candidate)
}

func runFile(rt *goja.Runtime, path string) (goja.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("include: read %s: %w", path, err)
	}

	var source string
	jhp := strings.HasSuffix(path, ".jhp")
	if jhp {
		doc := parser.New(string(src)).Parse()
		source = parser.ToJS(doc.Blocks)
	} else {
		source = string(src)
	}

	v, err := rt.RunScript(path, source)
	if err != nil {
		return nil, fmt.Errorf("include: run %s: %w", path, err)
	}
	if jhp {
		return goja.Undefined(), nil
	}
	return v, nil
}
