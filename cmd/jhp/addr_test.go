package main

import "testing"

func TestParseHostPortIPv4(t *testing.T) {
	host, port, err := parseHostPort("127.0.0.1:8080")
	if err != nil {
		t.Fatalf("parseHostPort: %v", err)
	}
	if host != "127.0.0.1" || port != 8080 {
		t.Fatalf("got %q %d", host, port)
	}
}

func TestParseHostPortBracketedIPv6(t *testing.T) {
	host, port, err := parseHostPort("[::1]:3000")
	if err != nil {
		t.Fatalf("parseHostPort: %v", err)
	}
	if host != "::1" || port != 3000 {
		t.Fatalf("got %q %d", host, port)
	}
}

func TestParseHostPortRejectsGarbage(t *testing.T) {
	for _, in := range []string{"nohost", "[::1]", "host:notaport", "[::1:3000"} {
		if _, _, err := parseHostPort(in); err == nil {
			t.Errorf("expected an error for %q", in)
		}
	}
}
