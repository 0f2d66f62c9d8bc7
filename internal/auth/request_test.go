// request_test.go -- unit tests for the HTTP-to-carrier adapter.
package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStrategyRequest(t *testing.T) {
	t.Run("json body becomes the body carrier", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/login/discord",
			strings.NewReader(`{"access_token":"tok","count":3,"nested":{"a":1}}`))

		req := StrategyRequest(r)

		if req.Body == nil {
			t.Fatal("expected body carrier to be present")
		}
		if req.Body["access_token"] != "tok" {
			t.Errorf("access_token: got %q", req.Body["access_token"])
		}
		// Non-string values do not participate in credential lookup.
		if _, ok := req.Body["count"]; ok {
			t.Error("expected numeric field to be dropped")
		}
		if _, ok := req.Body["nested"]; ok {
			t.Error("expected object field to be dropped")
		}
	})

	t.Run("malformed body yields an absent carrier", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/login/discord", strings.NewReader("{oops"))

		req := StrategyRequest(r)

		if req.Body != nil {
			t.Errorf("expected nil body carrier for malformed JSON, got %v", req.Body)
		}
	})

	t.Run("empty body yields an absent carrier", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/login/discord", nil)

		req := StrategyRequest(r)

		if req.Body != nil {
			t.Errorf("expected nil body carrier, got %v", req.Body)
		}
	})

	t.Run("query first values", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/login/discord?access_token=first&access_token=second&x=1", nil)

		req := StrategyRequest(r)

		if req.Query == nil {
			t.Fatal("expected query carrier to be present")
		}
		if req.Query["access_token"] != "first" {
			t.Errorf("expected first query value, got %q", req.Query["access_token"])
		}
	})

	t.Run("no query yields an absent carrier", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/login/discord", nil)

		if req := StrategyRequest(r); req.Query != nil {
			t.Errorf("expected nil query carrier, got %v", req.Query)
		}
	})

	t.Run("headers first values with canonical keys", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/login/discord", nil)
		r.Header.Set("Authorization", "Bearer tok")
		r.Header.Add("X-Multi", "one")
		r.Header.Add("X-Multi", "two")

		req := StrategyRequest(r)

		if req.Header == nil {
			t.Fatal("expected header carrier to be present")
		}
		if req.Header["Authorization"] != "Bearer tok" {
			t.Errorf("Authorization: got %q", req.Header["Authorization"])
		}
		if req.Header["X-Multi"] != "one" {
			t.Errorf("expected first header value, got %q", req.Header["X-Multi"])
		}
	})
}
