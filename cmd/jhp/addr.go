package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseHostPort splits a "-S" argument of the form HOST:PORT into its host
// and port parts, accepting a bracketed IPv6 literal such as "[::1]:3000".
func parseHostPort(s string) (host string, port uint16, err error) {
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return "", 0, fmt.Errorf("invalid bind address %q: unterminated [", s)
		}
		host = s[1:end]
		rest := s[end+1:]
		if !strings.HasPrefix(rest, ":") {
			return "", 0, fmt.Errorf("invalid bind address %q: expected ':PORT' after ']'", s)
		}
		p, err := strconv.ParseUint(rest[1:], 10, 16)
		if err != nil {
			return "", 0, fmt.Errorf("invalid bind address %q: %w", s, err)
		}
		return host, uint16(p), nil
	}

	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("invalid bind address %q: expected HOST:PORT", s)
	}
	host = s[:idx]
	p, err := strconv.ParseUint(s[idx+1:], 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid bind address %q: %w", s, err)
	}
	return host, uint16(p), nil
}
