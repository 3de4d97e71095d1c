package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskpad-cli/internal/api"
	"taskpad-cli/internal/model"
	"taskpad-cli/internal/store"
)

// authServer fakes the auth/user endpoints. profileFails turns the
// enrichment fetch into a 500 so login must survive without it.
type authServer struct {
	token        string
	profileFails bool
}

func (a *authServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			r.ParseForm()
			if r.PostForm.Get("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": a.token, "token_type": "bearer"})
		case "/auth/new-user":
			w.WriteHeader(http.StatusCreated)
		case "/users/user-info":
			if a.profileFails {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"ID": 7, "Username": "alice", "Email": "alice@example.com",
				"First Name": "Alice", "Last Name": "Smith",
				"Status": true, "Role": "user", "Phone Number": "555-0100",
			})
		case "/users/change-phone-number":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestManager(t *testing.T, srv *authServer) (*Manager, *api.Client, store.Credentials) {
	t.Helper()
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	creds := store.Credentials{Dir: t.TempDir()}
	client := api.New(ts.URL)
	return NewManager(creds, client, nil), client, creds
}

func TestLoginStoresTokenAndEnrichedProfile(t *testing.T) {
	t.Parallel()

	m, _, creds := newTestManager(t, &authServer{token: "tok-1"})
	ctx := context.Background()

	if err := m.Login(ctx, "alice", "secret"); err != nil {
		t.Fatal(err)
	}
	if !m.Authenticated() {
		t.Fatal("manager is not authenticated after login")
	}
	if m.Token() != "tok-1" {
		t.Fatalf("Token = %q", m.Token())
	}

	user, ok := m.User()
	if !ok {
		t.Fatal("no user after login")
	}
	if user.Username != "alice" || user.Email != "alice@example.com" || user.PhoneNumber != "555-0100" {
		t.Fatalf("profile not enriched: %+v", user)
	}

	// Persisted too.
	tok, okT, err := creds.Get(ctx, store.KeyToken)
	if err != nil || !okT || tok != "tok-1" {
		t.Fatalf("stored token = %q ok=%v err=%v", tok, okT, err)
	}
	userJSON, okU, err := creds.Get(ctx, store.KeyUser)
	if err != nil || !okU {
		t.Fatalf("stored user missing: ok=%v err=%v", okU, err)
	}
	stored, err := model.DecodeProfileJSON(userJSON)
	if err != nil || stored.Email != "alice@example.com" {
		t.Fatalf("stored profile = %+v err=%v", stored, err)
	}
}

func TestLoginSurvivesEnrichmentFailure(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t, &authServer{token: "tok-1", profileFails: true})

	if err := m.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatal(err)
	}
	if !m.Authenticated() {
		t.Fatal("enrichment failure must not revert authentication")
	}
	user, _ := m.User()
	if user.Username != "alice" || user.Email != "" {
		t.Fatalf("want minimal profile, got %+v", user)
	}
}

func TestLoginFailure(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t, &authServer{token: "tok-1"})

	err := m.Login(context.Background(), "alice", "wrong")
	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *api.AuthError", err)
	}
	if m.Authenticated() {
		t.Fatal("failed login left the manager authenticated")
	}
}

func TestRestoreFromStoredCredentials(t *testing.T) {
	t.Parallel()

	creds := store.Credentials{Dir: t.TempDir()}
	ctx := context.Background()
	if err := creds.Set(ctx, store.KeyToken, "tok-9"); err != nil {
		t.Fatal(err)
	}
	userJSON, _ := model.UserProfile{Username: "bob"}.EncodeJSON()
	if err := creds.Set(ctx, store.KeyUser, userJSON); err != nil {
		t.Fatal(err)
	}

	m := NewManager(creds, api.New("http://unused.invalid"), nil)
	if err := m.Restore(ctx); err != nil {
		t.Fatal(err)
	}
	if !m.Authenticated() || m.Token() != "tok-9" {
		t.Fatal("restore did not enter the authenticated state")
	}
	user, _ := m.User()
	if user.Username != "bob" {
		t.Fatalf("user = %+v", user)
	}
}

func TestRestoreRequiresBothKeys(t *testing.T) {
	t.Parallel()

	creds := store.Credentials{Dir: t.TempDir()}
	ctx := context.Background()
	if err := creds.Set(ctx, store.KeyToken, "tok-9"); err != nil {
		t.Fatal(err)
	}

	m := NewManager(creds, api.New("http://unused.invalid"), nil)
	if err := m.Restore(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Authenticated() {
		t.Fatal("token without user must stay anonymous")
	}
}

func TestRestoreClearsCorruptProfile(t *testing.T) {
	t.Parallel()

	creds := store.Credentials{Dir: t.TempDir()}
	ctx := context.Background()
	creds.Set(ctx, store.KeyToken, "tok-9")
	creds.Set(ctx, store.KeyUser, "{not json")

	m := NewManager(creds, api.New("http://unused.invalid"), nil)
	if err := m.Restore(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Authenticated() {
		t.Fatal("corrupt profile must not authenticate")
	}
	if _, ok, _ := creds.Get(ctx, store.KeyToken); ok {
		t.Fatal("corrupt half-session was not cleared")
	}
}

// A 401 from any authenticated endpoint forces Anonymous, clears the
// credential store, and notifies subscribers with the expiry reason.
func TestUnauthorizedForcesInvalidation(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "could not validate user"})
	}))
	t.Cleanup(ts.Close)

	creds := store.Credentials{Dir: t.TempDir()}
	client := api.New(ts.URL)
	m := NewManager(creds, client, nil)

	ctx := context.Background()
	creds.Set(ctx, store.KeyToken, "stale-token")
	userJSON, _ := model.UserProfile{Username: "alice"}.EncodeJSON()
	creds.Set(ctx, store.KeyUser, userJSON)
	if err := m.Restore(ctx); err != nil {
		t.Fatal(err)
	}

	var gotReason InvalidateReason
	notifications := 0
	m.OnInvalidated(func(reason InvalidateReason) {
		gotReason = reason
		notifications++
	})

	_, err := client.Todos(ctx)
	if !errors.Is(err, api.ErrSessionExpired) {
		t.Fatalf("err = %v, want api.ErrSessionExpired", err)
	}

	if m.Authenticated() {
		t.Fatal("session still authenticated after 401")
	}
	if notifications != 1 || gotReason != ReasonExpired {
		t.Fatalf("notifications=%d reason=%q", notifications, gotReason)
	}
	if _, ok, _ := creds.Get(ctx, store.KeyToken); ok {
		t.Fatal("token still in credential store after 401")
	}
	if _, ok, _ := creds.Get(ctx, store.KeyUser); ok {
		t.Fatal("user still in credential store after 401")
	}

	// Follow-up calls are refused locally, without a network round-trip.
	if _, err := client.Todos(ctx); !errors.Is(err, api.ErrNoSession) {
		t.Fatalf("follow-up err = %v, want api.ErrNoSession", err)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()

	m, _, creds := newTestManager(t, &authServer{token: "tok-1"})
	ctx := context.Background()
	if err := m.Login(ctx, "alice", "secret"); err != nil {
		t.Fatal(err)
	}

	var gotReason InvalidateReason
	m.OnInvalidated(func(reason InvalidateReason) { gotReason = reason })

	if err := m.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Authenticated() {
		t.Fatal("still authenticated after logout")
	}
	if gotReason != ReasonLogout {
		t.Fatalf("reason = %q, want %q", gotReason, ReasonLogout)
	}
	if _, ok, _ := creds.Get(ctx, store.KeyToken); ok {
		t.Fatal("token survived logout")
	}
}

func TestInvalidateWhenAnonymousIsNoop(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t, &authServer{token: "tok-1"})
	notifications := 0
	m.OnInvalidated(func(InvalidateReason) { notifications++ })

	m.Invalidate(ReasonExpired)
	if notifications != 0 {
		t.Fatal("anonymous invalidation must not notify")
	}
}

func TestChangePhonePatchesProfile(t *testing.T) {
	t.Parallel()

	m, _, creds := newTestManager(t, &authServer{token: "tok-1"})
	ctx := context.Background()
	if err := m.Login(ctx, "alice", "secret"); err != nil {
		t.Fatal(err)
	}

	if err := m.ChangePhone(ctx, "555-0199"); err != nil {
		t.Fatal(err)
	}
	user, _ := m.User()
	if user.PhoneNumber != "555-0199" {
		t.Fatalf("PhoneNumber = %q", user.PhoneNumber)
	}

	userJSON, _, _ := creds.Get(ctx, store.KeyUser)
	stored, _ := model.DecodeProfileJSON(userJSON)
	if stored.PhoneNumber != "555-0199" {
		t.Fatalf("persisted PhoneNumber = %q", stored.PhoneNumber)
	}
}

func TestRegisterValidatesDraft(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t, &authServer{token: "tok-1"})
	ctx := context.Background()

	tests := []struct {
		name  string
		draft model.RegisterDraft
	}{
		{name: "missing username", draft: model.RegisterDraft{Email: "a@b.c", FirstName: "A", LastName: "B", PhoneNumber: "1", Password: "p"}},
		{name: "bad email", draft: model.RegisterDraft{Username: "a", Email: "nope", FirstName: "A", LastName: "B", PhoneNumber: "1", Password: "p"}},
		{name: "missing password", draft: model.RegisterDraft{Username: "a", Email: "a@b.c", FirstName: "A", LastName: "B", PhoneNumber: "1"}},
	}
	for _, tt := range tests {
		if err := m.Register(ctx, tt.draft); err == nil {
			t.Errorf("%s: want validation error, got nil", tt.name)
		}
	}

	ok := model.RegisterDraft{
		Username: "alice", Email: "a@b.c", FirstName: "A", LastName: "B",
		PhoneNumber: "555", Password: "secret",
	}
	if err := m.Register(ctx, ok); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}
	if m.Authenticated() {
		t.Fatal("register must not authenticate")
	}
}
