package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ykarataev/accountd/internal/middleware"
	"github.com/ykarataev/accountd/internal/models"
)

// fakeAccountService implements AccountService for testing.
type fakeAccountService struct {
	registerUser models.User
	registerErr  error
	authUser     models.User
	authErr      error
	renameErr    error
}

func (f *fakeAccountService) Register(ctx context.Context, username, email, rawPassword string) (models.User, error) {
	return f.registerUser, f.registerErr
}

func (f *fakeAccountService) Authenticate(ctx context.Context, username, rawPassword string) (models.User, error) {
	return f.authUser, f.authErr
}

func (f *fakeAccountService) Rename(ctx context.Context, userID, username string) error {
	return f.renameErr
}

// fakeSessionService implements SessionService for testing.
type fakeSessionService struct {
	session   models.Session
	loginErr  error
	logoutErr error
}

func (f *fakeSessionService) Login(ctx context.Context, user models.User, rememberMe bool) (models.Session, error) {
	return f.session, f.loginErr
}

func (f *fakeSessionService) Logout(ctx context.Context, token string) error {
	return f.logoutErr
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		accounts       *fakeAccountService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			accounts:       &fakeAccountService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "missing fields",
			body:           `{"username":"alice"}`,
			accounts:       &fakeAccountService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "bad email",
			body:           `{"username":"alice","email":"not-an-email","password":"secret123"}`,
			accounts:       &fakeAccountService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "short password",
			body:           `{"username":"alice","email":"a@example.com","password":"short"}`,
			accounts:       &fakeAccountService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "duplicate username",
			body:           `{"username":"alice","email":"b@example.com","password":"secret123"}`,
			accounts:       &fakeAccountService{registerErr: models.ErrDuplicateUsername},
			expectedCode:   http.StatusConflict,
			expectedSubstr: `"field":"username"`,
		},
		{
			name:           "duplicate email",
			body:           `{"username":"bob","email":"a@example.com","password":"secret123"}`,
			accounts:       &fakeAccountService{registerErr: models.ErrDuplicateEmail},
			expectedCode:   http.StatusConflict,
			expectedSubstr: `"field":"email"`,
		},
		{
			name:           "storage failure",
			body:           `{"username":"alice","email":"a@example.com","password":"secret123"}`,
			accounts:       &fakeAccountService{registerErr: errors.New("db down")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name: "success",
			body: `{"username":"alice","email":"a@example.com","password":"secret123"}`,
			accounts: &fakeAccountService{
				registerUser: models.User{ID: "u1", Username: "alice", Email: "a@example.com"},
			},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"username":"alice"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{Accounts: tt.accounts, Sessions: &fakeSessionService{}}
			h.Register(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}

			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
			}
		})
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := &AuthHandler{
		Accounts: &fakeAccountService{authErr: models.ErrInvalidCredentials},
		Sessions: &fakeSessionService{},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(`{"username":"alice","password":"wrong"}`))
	h.Login(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, res.StatusCode)
	}
	// The same body regardless of whether the username or the password
	// was wrong.
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(res.Body)
	if !bytes.Contains(buf.Bytes(), []byte("invalid username or password")) {
		t.Errorf("unexpected body %q", buf.String())
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	session := models.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	h := &AuthHandler{
		Accounts: &fakeAccountService{authUser: models.User{ID: "u1", Username: "alice"}},
		Sessions: &fakeSessionService{session: session},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login?next=/profile", bytes.NewBufferString(`{"username":"alice","password":"secret123"}`))
	h.Login(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, res.StatusCode)
	}

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}
	if cookie.Value != "tok" || !cookie.HttpOnly {
		t.Errorf("unexpected cookie %+v", cookie)
	}

	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["redirect"] != "/profile" {
		t.Errorf("redirect = %q; want /profile", body["redirect"])
	}
}

func TestAuthHandler_Login_ExternalNextFallsBack(t *testing.T) {
	session := models.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	h := &AuthHandler{
		Accounts: &fakeAccountService{authUser: models.User{ID: "u1"}},
		Sessions: &fakeSessionService{session: session},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login?next=http://evil.example/", bytes.NewBufferString(`{"username":"alice","password":"secret123"}`))
	h.Login(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["redirect"] != "/" {
		t.Errorf("redirect = %q; want the landing page, not the external host", body["redirect"])
	}
}

func TestAuthHandler_Login_AlreadyAuthenticated(t *testing.T) {
	h := &AuthHandler{Accounts: &fakeAccountService{}, Sessions: &fakeSessionService{}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(`{"username":"alice","password":"secret123"}`))
	req = req.WithContext(middleware.WithUser(req.Context(), models.User{ID: "u1"}))
	h.Login(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, res.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["redirect"] != "/" {
		t.Errorf("redirect = %q; want /", body["redirect"])
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h := &AuthHandler{Accounts: &fakeAccountService{}, Sessions: &fakeSessionService{}}

	// Twice in a row, with and without a cookie; both succeed.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/logout", nil)
		if i == 0 {
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "tok"})
		}
		h.Logout(rec, req)
		res := rec.Result()
		res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Fatalf("logout %d: expected status %d, got %d", i, http.StatusOK, res.StatusCode)
		}

		var cleared *http.Cookie
		for _, c := range res.Cookies() {
			if c.Name == middleware.SessionCookie {
				cleared = c
			}
		}
		if cleared == nil || cleared.MaxAge != -1 {
			t.Errorf("logout %d: expected the session cookie to be cleared", i)
		}
	}
}
