package bindings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dop251/goja"

	"jhp/internal/registry"
)

// LoadedModules applies every module already loaded in reg to the context,
// so a module pulled in by one request's include() is present in every
// later context without re-including it. Safe on repeated application.
func LoadedModules(reg *registry.Registry) Installer {
	return func(rt *goja.Runtime) error {
		for _, entry := range reg.Entries() {
			if err := InstallEntry(rt, entry); err != nil {
				return err
			}
		}
		return nil
	}
}

// InstallEntry binds one loaded registry.Entry into rt: a global object
// named entry.ObjectName exposing each native function as a JSON-in/JSON-out
// method, followed by running entry.Bootstrap scripts in order. A native
// call that returns CallResult.OK == false throws a JS exception carrying
// the extension's error payload as message/code, mirroring the ABI's error
// signaling.
func InstallEntry(rt *goja.Runtime, entry *registry.Entry) error {
	if len(entry.Funcs) > 0 {
		obj := rt.NewObject()
		for _, fn := range entry.Funcs {
			fn := fn
			if err := obj.Set(fn.Name, nativeCall(rt, fn)); err != nil {
				return fmt.Errorf("bind %s.%s: %w", entry.ObjectName, fn.Name, err)
			}
		}
		if err := rt.Set(entry.ObjectName, obj); err != nil {
			return fmt.Errorf("bind %s: %w", entry.ObjectName, err)
		}
	}

	for _, path := range entry.Bootstrap {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read bootstrap %s: %w", path, err)
		}
		if _, err := rt.RunScript(path, string(src)); err != nil {
			return fmt.Errorf("run bootstrap %s: %w", path, err)
		}
	}
	return nil
}

// nativeCall wraps one native FunctionDesc as a goja-callable function: JS
// arguments are JSON-encoded as a single array, passed to fn.Call, and the
// JSON result is decoded back to a JS value. The returned buffer's Free
// hook (result.Data.Free), when set, is invoked exactly once after the
// result has been read.
func nativeCall(rt *goja.Runtime, fn registry.FunctionDesc) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		args := make([]interface{}, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.Export()
		}
		payload, err := json.Marshal(args)
		if err != nil {
			panic(rt.NewTypeError("jhp: marshal arguments for %s: %v", fn.Name, err))
		}

		result := fn.Call(registry.Buf{Data: payload})
		if result.Data.Free != nil {
			defer result.Data.Free()
		}

		if !result.OK {
			panic(extensionCallError(rt, fn.Name, result.Data.Data))
		}

		var decoded interface{}
		if len(result.Data.Data) > 0 {
			if err := json.Unmarshal(result.Data.Data, &decoded); err != nil {
				panic(rt.NewTypeError("jhp: unmarshal result of %s: %v", fn.Name, err))
			}
		}
		return rt.ToValue(decoded)
	}
}

// extensionCallError builds the value thrown for a CallResult.OK == false.
// By convention the payload is JSON carrying an "error" string and a "code"
// number; when it matches that shape, the thrown object's .message and
// .code mirror it so script code can inspect both. A payload that doesn't
// match the convention is thrown as a plain object whose message is the
// function name followed by the raw payload.
func extensionCallError(rt *goja.Runtime, fnName string, data []byte) goja.Value {
	var payload struct {
		Error string      `json:"error"`
		Code  json.Number `json:"code"`
	}
	obj := rt.NewObject()
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		_ = obj.Set("message", payload.Error)
		if payload.Code != "" {
			if n, err := payload.Code.Float64(); err == nil {
				_ = obj.Set("code", n)
			}
		}
		return obj
	}
	_ = obj.Set("message", fmt.Sprintf("%s: %s", fnName, string(data)))
	return obj
}
