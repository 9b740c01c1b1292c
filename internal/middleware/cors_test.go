package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h := CORS("http://localhost:3000/")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/modules", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin: %q", got)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestCORSIgnoresOtherOrigins(t *testing.T) {
	h := CORS("http://localhost:3000")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/modules", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS("http://localhost:3000")(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Fatalf("unexpected allow headers: %q", got)
	}
}

func TestCORSWildcardOmitsCredentials(t *testing.T) {
	for _, allowed := range []string{"", "*"} {
		h := CORS(allowed)(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/modules", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)

		if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("allowed %q: expected wildcard origin, got %q", allowed, got)
		}
		if got := resp.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Fatalf("allowed %q: expected no credentials header, got %q", allowed, got)
		}
	}
}

func TestOriginAllowed(t *testing.T) {
	cases := []struct {
		allowed string
		origin  string
		want    bool
	}{
		{allowed: "http://localhost:3000", origin: "http://localhost:3000", want: true},
		{allowed: "http://localhost:3000/", origin: "http://LOCALHOST:3000", want: true},
		{allowed: "http://localhost:3000", origin: "http://evil.example", want: false},
		{allowed: "*", origin: "http://evil.example", want: true},
	}

	for _, tc := range cases {
		if got := OriginAllowed(tc.allowed, tc.origin); got != tc.want {
			t.Fatalf("OriginAllowed(%q, %q) = %v, want %v", tc.allowed, tc.origin, got, tc.want)
		}
	}
}
