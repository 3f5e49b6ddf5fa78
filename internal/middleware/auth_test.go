package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// SetLoginCookie + WithAuth кладут user_id в контекст
func TestWithAuth_ValidCookieSetsUserID(t *testing.T) {
	const secret = "test-secret"

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := GetUserIDFromContext(r.Context())
		role, _ := GetRoleFromContext(r.Context())
		if ok && uid == 77 && role == "psychologist" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	h := WithAuth(secret)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rrCookie := httptest.NewRecorder()
	if _, err := SetLoginCookie(rrCookie, 77, "psychologist", secret); err != nil {
		t.Fatalf("SetLoginCookie: %v", err)
	}
	for _, c := range rrCookie.Result().Cookies() {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid cookie, got %d", rr.Code)
	}
}

// Тест: Bearer-токен в заголовке имеет приоритет над cookie
func TestWithAuth_BearerHeader(t *testing.T) {
	const secret = "test-secret"
	token, err := BuildJWT(5, "patient", secret)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}

	var got int64
	h := WithAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rrCookie := httptest.NewRecorder()
	_, _ = SetLoginCookie(rrCookie, 9, "patient", secret)
	for _, c := range rrCookie.Result().Cookies() {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != 5 {
		t.Fatalf("user id from bearer token expected 5, got %d", got)
	}
}

// Без токена user_id не устанавливается
func TestWithAuth_NoCookieLeavesAnonymous(t *testing.T) {
	h := WithAuth("any-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); ok {
			t.Fatalf("user id must not be set without cookie")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

// С невалидным токеном user_id не устанавливается
func TestWithAuth_InvalidToken(t *testing.T) {
	// Сгенерируем cookie с секретом A, а проверять будем секретом B
	rrCookie := httptest.NewRecorder()
	_, _ = SetLoginCookie(rrCookie, 5, "patient", "secret-A")

	h := WithAuth("secret-B")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); ok {
			t.Fatalf("user id must not be set with invalid token")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rrCookie.Result().Cookies() {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

// Тест: RequireAuth отвечает 401 JSON для анонимного запроса
func TestRequireAuth(t *testing.T) {
	h := WithAuth("s")(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr.Body.String() != "{\"message\":\"No autenticado\"}\n" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}

	token, _ := BuildJWT(3, "patient", "s")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with token, got %d", rr.Code)
	}
}
