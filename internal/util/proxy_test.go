package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewProxyFuncSelection(t *testing.T) {
	proxy := NewProxyFunc("http://plain:3128", "http://secure:3128", "internal.example.com, localhost")

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"https uses https proxy", "https://api.example.com/v1", "http://secure:3128"},
		{"http uses http proxy", "http://api.example.com/v1", "http://plain:3128"},
		{"no-proxy exact host", "https://internal.example.com/x", ""},
		{"no-proxy subdomain", "https://ocr.internal.example.com/x", ""},
		{"localhost bypass", "http://localhost:8080/x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			u, err := proxy(req)
			if err != nil {
				t.Fatal(err)
			}
			got := ""
			if u != nil {
				got = u.String()
			}
			if got != tt.want {
				t.Errorf("proxy = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewProxyFuncHTTPSFallsBackToHTTPProxy(t *testing.T) {
	proxy := NewProxyFunc("http://plain:3128", "", "")

	req := httptest.NewRequest(http.MethodGet, "https://api.example.com/v1", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.String() != "http://plain:3128" {
		t.Errorf("proxy = %v, want the http proxy", u)
	}
}
