package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/transport/http/handler"
	"github.com/ErlanBelekov/companydesk/internal/validation"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	login        func(ctx context.Context, email string) (*domain.Credentials, error)
	authenticate func(ctx context.Context, bearer, shadow string) (string, error)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email string) (*domain.Credentials, error) {
	return f.login(ctx, email)
}

func (f *fakeAuthUsecase) Authenticate(ctx context.Context, bearer, shadow string) (string, error) {
	return f.authenticate(ctx, bearer, shadow)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	h := handler.NewAuthHandler(uc, validation.New(), testLogger())

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/check", h.Check)
	r.POST("/auth/logout", h.Logout)
	return r
}

func postJSON(r http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ---- Login ----

func TestLogin_InvalidEmail_Returns400WithField(t *testing.T) {
	uc := &fakeAuthUsecase{}
	w := postJSON(newAuthEngine(uc), "/auth/login", `{"email":"nope"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decodeBody(t, w)
	if body["field"] != "email" || body["error"] != "Invalid email" {
		t.Errorf("body = %v", body)
	}
}

func TestLogin_MissingEmail_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{}
	w := postJSON(newAuthEngine(uc), "/auth/login", `{bad json}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "Invalid email" {
		t.Errorf("body = %v", body)
	}
}

func TestLogin_UnknownUser_Returns200False(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _ string) (*domain.Credentials, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login", `{"email":"a@x.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["authenticated"] != false {
		t.Errorf("body = %v", body)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("unknown user got cookies")
	}
}

func TestLogin_StoreDown_Returns503(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _ string) (*domain.Credentials, error) {
			return nil, domain.ErrUpstreamUnavailable
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login", `{"email":"a@x.com"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestLogin_Success_SetsCookiePair(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	var gotEmail string
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, email string) (*domain.Credentials, error) {
			gotEmail = email
			return &domain.Credentials{Bearer: "b.e.arer", Shadow: "shadow", ExpiresAt: expires}, nil
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login", `{"email":"a@x.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotEmail != "a@x.com" {
		t.Errorf("usecase email = %q", gotEmail)
	}
	if body := decodeBody(t, w); body["authenticated"] != true {
		t.Errorf("body = %v", body)
	}

	for name, want := range map[string]string{"bearer": "b.e.arer", "auth": "shadow"} {
		c := cookieByName(w, name)
		if c == nil {
			t.Fatalf("cookie %q not set", name)
		}
		if c.Value != want {
			t.Errorf("%s value = %q, want %q", name, c.Value, want)
		}
		if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode || c.Path != "/" {
			t.Errorf("%s attributes = %+v", name, c)
		}
		if !c.Expires.Equal(expires) {
			t.Errorf("%s expires = %v, want %v", name, c.Expires, expires)
		}
	}
}

// ---- Check ----

func TestCheck_NoCookies_ReturnsFalse(t *testing.T) {
	uc := &fakeAuthUsecase{}
	w := postJSON(newAuthEngine(uc), "/auth/check", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["authenticated"] != false {
		t.Errorf("body = %v", body)
	}
}

func TestCheck_Rejected_HidesReason(t *testing.T) {
	for _, reason := range []error{domain.ErrMalformedCredential, domain.ErrCrossCheckMismatch, domain.ErrSecretRevoked, domain.ErrTokenInvalid} {
		uc := &fakeAuthUsecase{
			authenticate: func(_ context.Context, _, _ string) (string, error) { return "", reason },
		}
		w := postJSON(newAuthEngine(uc), "/auth/check", "",
			&http.Cookie{Name: "bearer", Value: "b"}, &http.Cookie{Name: "auth", Value: "s"})

		if w.Code != http.StatusOK {
			t.Errorf("%v: status = %d, want 200", reason, w.Code)
		}
		if got := strings.TrimSpace(w.Body.String()); got != `{"authenticated":false}` {
			t.Errorf("%v: body = %s", reason, got)
		}
	}
}

func TestCheck_Upstream_Returns503(t *testing.T) {
	uc := &fakeAuthUsecase{
		authenticate: func(_ context.Context, _, _ string) (string, error) {
			return "", errors.Join(domain.ErrUpstreamUnavailable, errors.New("db down"))
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/check", "",
		&http.Cookie{Name: "bearer", Value: "b"}, &http.Cookie{Name: "auth", Value: "s"})

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestCheck_Valid_ReturnsEmail(t *testing.T) {
	uc := &fakeAuthUsecase{
		authenticate: func(_ context.Context, bearer, shadow string) (string, error) {
			if bearer != "b" || shadow != "s" {
				return "", domain.ErrMalformedCredential
			}
			return "a@x.com", nil
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/check", "",
		&http.Cookie{Name: "bearer", Value: "b"}, &http.Cookie{Name: "auth", Value: "s"})

	body := decodeBody(t, w)
	if body["authenticated"] != true || body["email"] != "a@x.com" {
		t.Errorf("body = %v", body)
	}
}

// ---- Logout ----

func TestLogout_ExpiresEveryCookie(t *testing.T) {
	uc := &fakeAuthUsecase{}
	w := postJSON(newAuthEngine(uc), "/auth/logout", "",
		&http.Cookie{Name: "bearer", Value: "b"},
		&http.Cookie{Name: "auth", Value: "s"},
		&http.Cookie{Name: "theme", Value: "dark"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	for _, name := range []string{"bearer", "auth", "theme"} {
		c := cookieByName(w, name)
		if c == nil {
			t.Errorf("cookie %q not cleared", name)
			continue
		}
		if c.Value != "" || c.MaxAge >= 0 {
			t.Errorf("%s = %+v, want empty and expired", name, c)
		}
	}
	if body := decodeBody(t, w); body["authenticated"] != false {
		t.Errorf("body = %v", body)
	}
}
