// Command sqlite3 is an example native extension plugin exposing a tiny
// SQLite query/exec surface to JHP documents via include("sqlite3"),
// backed by github.com/mattn/go-sqlite3.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"jhp/jhpext"
)

var (
	mu  sync.Mutex
	dbs = map[string]*sql.DB{}
)

func open(path string) (*sql.DB, error) {
	mu.Lock()
	defer mu.Unlock()
	if db, ok := dbs[path]; ok {
		return db, nil
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	dbs[path] = db
	return db, nil
}

// fail builds a CallResult carrying the ABI's conventional error payload:
// a JSON object with "error" (message) and "code" (caller-defined status,
// here always 1 since sqlite's own error codes aren't surfaced distinctly).
func fail(err error) jhpext.CallResult {
	out, _ := json.Marshal(map[string]interface{}{"error": err.Error(), "code": 1})
	return jhpext.CallResult{OK: false, Data: jhpext.Buf{Data: out}}
}

func ok(v interface{}) jhpext.CallResult {
	out, err := json.Marshal(v)
	if err != nil {
		return fail(err)
	}
	return jhpext.CallResult{OK: true, Data: jhpext.Buf{Data: out}}
}

func decodeCall(args jhpext.Buf) (string, string, []interface{}, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(args.Data, &raw); err != nil {
		return "", "", nil, err
	}
	if len(raw) < 2 {
		return "", "", nil, fmt.Errorf("expected (path, sql[, args]) arguments")
	}
	var path, query string
	if err := json.Unmarshal(raw[0], &path); err != nil {
		return "", "", nil, err
	}
	if err := json.Unmarshal(raw[1], &query); err != nil {
		return "", "", nil, err
	}
	var bindArgs []interface{}
	if len(raw) > 2 {
		if err := json.Unmarshal(raw[2], &bindArgs); err != nil {
			return "", "", nil, err
		}
	}
	return path, query, bindArgs, nil
}

func query(args jhpext.Buf) jhpext.CallResult {
	path, q, bindArgs, err := decodeCall(args)
	if err != nil {
		return fail(err)
	}
	db, err := open(path)
	if err != nil {
		return fail(err)
	}

	rows, err := db.Query(q, bindArgs...)
	if err != nil {
		return fail(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fail(err)
	}

	var result []map[string]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fail(err)
		}
		row := map[string]interface{}{}
		for i, c := range cols {
			row[c] = vals[i]
		}
		result = append(result, row)
	}
	return ok(result)
}

func exec(args jhpext.Buf) jhpext.CallResult {
	path, q, bindArgs, err := decodeCall(args)
	if err != nil {
		return fail(err)
	}
	db, err := open(path)
	if err != nil {
		return fail(err)
	}

	res, err := db.Exec(q, bindArgs...)
	if err != nil {
		return fail(err)
	}
	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()
	return ok(map[string]int64{"rowsAffected": affected, "lastInsertId": lastID})
}

// JhpRegisterV1 is the symbol the registry looks up via plugin.Lookup.
func JhpRegisterV1() jhpext.RegisterV1 {
	return jhpext.RegisterV1{
		ABIVersion: jhpext.AbiVersion1,
		Funcs: []jhpext.FunctionDesc{
			{Name: "query", Call: query},
			{Name: "exec", Call: exec},
		},
	}
}
