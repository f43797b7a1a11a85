package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sibubur/terminal/internal/api"
	"sibubur/terminal/internal/session"
)

// Wires the real HTTP client against the manager the way main does, so the
// login flow's profile fetch is exercised over the wire with the token the
// login response just delivered.
func TestLoginProfileFetchCarriesFreshToken(t *testing.T) {
	token := makeToken(t, map[string]any{
		"sub": 12, "username": "budi", "name": "Budi", "roleId": 3,
	})

	var profileAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	})
	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		profileAuth = r.Header.Get("Authorization")
		if profileAuth != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name": "Budi Santoso", "roleId": 5, "roleName": "Supervisor",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := session.NewMemoryStore()
	var manager *Manager
	client := api.New(server.URL, 5*time.Second, func(ctx context.Context) (string, bool) {
		return manager.Token(ctx)
	}, nil)
	manager = NewManager(store, client.Auth, nil)
	client.SetOnUnauthorized(manager.HandleUnauthorized)

	forcedLogouts := 0
	manager.SetOnUnauthorized(func() { forcedLogouts++ })

	manager.Restore(context.Background())
	if manager.State() != StateAnonymous {
		t.Fatalf("empty store must restore to anonymous, got %v", manager.State())
	}

	user, err := manager.Login(context.Background(), "budi", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if profileAuth != "Bearer "+token {
		t.Fatalf("profile request must carry the fresh token, got %q", profileAuth)
	}
	if user.Name != "Budi Santoso" || user.RoleName() != "Supervisor" {
		t.Fatalf("profile overlay did not apply, got %+v", user)
	}
	if forcedLogouts != 0 {
		t.Fatalf("successful login must not signal a forced logout, fired %d times", forcedLogouts)
	}
	if manager.State() != StateAuthenticated {
		t.Fatalf("expected authenticated state, got %v", manager.State())
	}
	if sess, err := store.LoadSession(context.Background()); err != nil || sess.Token != token {
		t.Fatalf("session not persisted: %v", err)
	}
}
