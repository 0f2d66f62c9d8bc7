// csrf_test.go -- unit tests for CSRF token helpers and middleware.
package auth

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid/v5"
)

// --- Token helpers ---

// TestGenerateCSRFToken verifies tokens are non-zero and unique per call.
func TestGenerateCSRFToken(t *testing.T) {
	a, err := GenerateCSRFToken()
	if err != nil {
		t.Fatalf("GenerateCSRFToken: %v", err)
	}
	b, err := GenerateCSRFToken()
	if err != nil {
		t.Fatalf("GenerateCSRFToken: %v", err)
	}
	if *a == [32]byte{} {
		t.Error("expected non-zero token")
	}
	if *a == *b {
		t.Error("expected two generated tokens to differ")
	}
}

// TestValidateCSRFToken covers match, mismatch, and length mismatch.
func TestValidateCSRFToken(t *testing.T) {
	stored := []byte("0123456789abcdef0123456789abcdef")

	if !ValidateCSRFToken(stored, stored) {
		t.Error("expected matching tokens to validate")
	}
	if ValidateCSRFToken([]byte("0123456789abcdef0123456789abcdeX"), stored) {
		t.Error("expected mismatched tokens to fail")
	}
	if ValidateCSRFToken([]byte("short"), stored) {
		t.Error("expected length mismatch to fail")
	}
	if ValidateCSRFToken(nil, stored) {
		t.Error("expected nil provided token to fail")
	}
}

// --- CSRFMiddleware ---

// csrfRequest builds a request carrying session context and, when token is
// non-empty, an X-CSRF-Token header.
func csrfRequest(method, token string, stored []byte) *http.Request {
	r := httptest.NewRequest(method, "/", nil)
	if token != "" {
		r.Header.Set("X-CSRF-Token", token)
	}
	userID, _ := uuid.NewV7()
	return withSessionContext(r, userID, []byte("hash"), stored)
}

func TestCSRFMiddleware(t *testing.T) {
	stored := []byte("csrf-token-stored-value")
	encoded := base64.RawURLEncoding.EncodeToString(stored)

	next := func(called *bool) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*called = true
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("GET passes without token", func(t *testing.T) {
		h := &AuthHandler{}
		var called bool
		w := httptest.NewRecorder()

		h.CSRFMiddleware(next(&called)).ServeHTTP(w, csrfRequest(http.MethodGet, "", stored))

		if !called || w.Code != http.StatusOK {
			t.Errorf("expected GET to bypass CSRF, got called=%v code=%d", called, w.Code)
		}
	})

	t.Run("POST with valid token passes", func(t *testing.T) {
		h := &AuthHandler{}
		var called bool
		w := httptest.NewRecorder()

		h.CSRFMiddleware(next(&called)).ServeHTTP(w, csrfRequest(http.MethodPost, encoded, stored))

		if !called || w.Code != http.StatusOK {
			t.Errorf("expected valid token to pass, got called=%v code=%d", called, w.Code)
		}
	})

	t.Run("POST with wrong token returns Forbidden", func(t *testing.T) {
		h := &AuthHandler{}
		var called bool
		w := httptest.NewRecorder()
		wrong := base64.RawURLEncoding.EncodeToString([]byte("some-other-token-value"))

		h.CSRFMiddleware(next(&called)).ServeHTTP(w, csrfRequest(http.MethodPost, wrong, stored))

		if called {
			t.Error("next handler should not have been called")
		}
		if w.Code != http.StatusForbidden {
			t.Errorf("status: expected 403, got %d", w.Code)
		}
	})

	t.Run("POST with missing token returns Forbidden", func(t *testing.T) {
		h := &AuthHandler{}
		var called bool
		w := httptest.NewRecorder()

		h.CSRFMiddleware(next(&called)).ServeHTTP(w, csrfRequest(http.MethodPost, "", stored))

		if called {
			t.Error("next handler should not have been called")
		}
		if w.Code != http.StatusForbidden {
			t.Errorf("status: expected 403, got %d", w.Code)
		}
	})

	t.Run("POST with invalid base64 returns Forbidden", func(t *testing.T) {
		h := &AuthHandler{}
		var called bool
		w := httptest.NewRecorder()

		h.CSRFMiddleware(next(&called)).ServeHTTP(w, csrfRequest(http.MethodPost, "!!!not-base64!!!", stored))

		if called {
			t.Error("next handler should not have been called")
		}
		if w.Code != http.StatusForbidden {
			t.Errorf("status: expected 403, got %d", w.Code)
		}
	})

	t.Run("POST without session context returns Forbidden", func(t *testing.T) {
		h := &AuthHandler{}
		var called bool
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("X-CSRF-Token", encoded)

		h.CSRFMiddleware(next(&called)).ServeHTTP(w, r)

		if called {
			t.Error("next handler should not have been called")
		}
		if w.Code != http.StatusForbidden {
			t.Errorf("status: expected 403, got %d", w.Code)
		}
	})
}
