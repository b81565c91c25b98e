// Command get_quote is an example native extension plugin: built with
// `go build -buildmode=plugin`, it exports two functions: quote(), which
// returns a deterministic line from a small fixed set given an index, and
// count(), which returns the size of that set.
package main

import (
	"encoding/json"
	"fmt"

	"jhp/jhpext"
)

var quotes = []string{
	"Talk is cheap. Show me the code.",
	"Premature optimization is the root of all evil.",
	"Make it work, make it right, make it fast.",
	"Simplicity is prerequisite for reliability.",
}

// fail builds a CallResult carrying the ABI's conventional error payload:
// a JSON object with "error" (message) and "code" (caller-defined status).
func fail(code int, format string, args ...interface{}) jhpext.CallResult {
	out, _ := json.Marshal(map[string]interface{}{
		"error": fmt.Sprintf(format, args...),
		"code":  code,
	})
	return jhpext.CallResult{OK: false, Data: jhpext.Buf{Data: out}}
}

func quote(args jhpext.Buf) jhpext.CallResult {
	var params []int
	if len(args.Data) > 0 {
		if err := json.Unmarshal(args.Data, &params); err != nil {
			return fail(1, "get_quote: %v", err)
		}
	}

	idx := 0
	if len(params) > 0 {
		idx = params[0]
	}
	if idx < 0 || idx >= len(quotes) {
		return fail(2, "get_quote: index %d out of range [0,%d)", idx, len(quotes))
	}

	out, err := json.Marshal(quotes[idx])
	if err != nil {
		return fail(1, "get_quote: %v", err)
	}
	return jhpext.CallResult{OK: true, Data: jhpext.Buf{Data: out}}
}

func count(args jhpext.Buf) jhpext.CallResult {
	out, _ := json.Marshal(len(quotes))
	return jhpext.CallResult{OK: true, Data: jhpext.Buf{Data: out}}
}

// JhpRegisterV1 is the symbol the registry looks up via plugin.Lookup.
func JhpRegisterV1() jhpext.RegisterV1 {
	return jhpext.RegisterV1{
		ABIVersion: jhpext.AbiVersion1,
		Funcs: []jhpext.FunctionDesc{
			{Name: "quote", Call: quote},
			{Name: "count", Call: count},
		},
	}
}
