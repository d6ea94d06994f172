package accounts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"vet-appointments/internal/ports/auth"
)

// ----- Fakes -----

type fakeAuthn struct {
	loginErr    error
	registerErr error
	lastReg     auth.Registration
}

func (f *fakeAuthn) Login(ctx context.Context, in auth.Credentials) (auth.Session, error) {
	if f.loginErr != nil {
		return auth.Session{}, f.loginErr
	}
	return auth.Session{User: auth.User{ID: "7", Name: "Ana", Username: in.Username}, Token: "tok-7"}, nil
}

func (f *fakeAuthn) Register(ctx context.Context, in auth.Registration) (auth.Session, error) {
	f.lastReg = in
	if f.registerErr != nil {
		return auth.Session{}, f.registerErr
	}
	return auth.Session{User: auth.User{ID: "8", Name: in.Name, Email: in.Email, Username: in.Username}, Token: "tok-8"}, nil
}

type fakeSessions struct{ dropped []string }

func (f *fakeSessions) Drop(userID string) { f.dropped = append(f.dropped, userID) }

func serve(authn auth.Authenticator, sessions Sessions, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	RegisterRoutes(r, authn, sessions)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLogin_DropsSession(t *testing.T) {
	sessions := &fakeSessions{}
	rec := serve(&fakeAuthn{}, sessions, "POST", "/auth/login", `{"username":"ana","password":"pw"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok-7"`) || !strings.Contains(rec.Body.String(), `"username":"ana"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(sessions.dropped) != 1 || sessions.dropped[0] != "7" {
		t.Fatalf("expected session 7 dropped, got %v", sessions.dropped)
	}
}

func TestLogin_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{auth.ErrUnauthorized, http.StatusUnauthorized},
		{auth.ErrRejected, http.StatusUnprocessableEntity},
		{auth.ErrUpstream, http.StatusBadGateway},
		{errors.New("dial tcp: refused"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		sessions := &fakeSessions{}
		rec := serve(&fakeAuthn{loginErr: tc.err}, sessions, "POST", "/auth/login", `{"username":"ana","password":"pw"}`)
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
		if len(sessions.dropped) != 0 {
			t.Fatalf("failed login must not drop sessions")
		}
	}
}

func TestLogin_NotConfiguredAndBadJSON(t *testing.T) {
	if rec := serve(nil, nil, "POST", "/auth/login", `{}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec := serve(nil, nil, "POST", "/auth/register", `{}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec := serve(&fakeAuthn{}, nil, "POST", "/auth/login", `{`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	f := &fakeAuthn{}

	rec := serve(f, nil, "POST", "/auth/register", `{"name":"Luis","email":"","username":"luis","password":"pw"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without email, got %d", rec.Code)
	}

	rec = serve(f, nil, "POST", "/auth/register",
		`{"name":"Luis","phone":"555","email":"luis@example.com","username":"luis","password":"pw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if f.lastReg.Phone != "555" || f.lastReg.Email != "luis@example.com" {
		t.Fatalf("registration not forwarded: %+v", f.lastReg)
	}

	f.registerErr = auth.ErrRejected
	rec = serve(f, nil, "POST", "/auth/register",
		`{"name":"Luis","email":"luis@example.com","username":"luis","password":"pw"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
