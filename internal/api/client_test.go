package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sibubur/terminal/internal/domain"
)

func staticToken(token string) TokenFunc {
	return func(context.Context) (string, bool) {
		return token, token != ""
	}
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"total":0,"page":1,"limit":50}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, staticToken("tok-abc"), nil)
	if _, err := client.Orders.List(context.Background(), OrdersListParams{}); err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestClientOmitsBearerWhenAnonymous(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, staticToken(""), nil)
	if _, err := client.Auth.Login(context.Background(), "budi", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestUnauthorizedHookFiresOn401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, staticToken("stale"), nil)
	var fired atomic.Int32
	client.SetOnUnauthorized(func() { fired.Add(1) })

	_, err := client.Orders.List(context.Background(), OrdersListParams{})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 api error, got %v", err)
	}
	if fired.Load() != 1 {
		t.Fatalf("expected unauthorized hook to fire once, fired %d times", fired.Load())
	}
}

func TestUnauthorizedHookFiresOnProfile404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, time.Second, staticToken("tok"), nil)
	var fired atomic.Int32
	client.SetOnUnauthorized(func() { fired.Add(1) })

	if _, err := client.Auth.Profile(context.Background()); err == nil {
		t.Fatalf("expected profile fetch to fail")
	}
	if fired.Load() != 1 {
		t.Fatalf("expected unauthorized hook on profile 404, fired %d times", fired.Load())
	}
}

func TestUnauthorizedHookDoesNotFireOnOther404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, time.Second, staticToken("tok"), nil)
	var fired atomic.Int32
	client.SetOnUnauthorized(func() { fired.Add(1) })

	if _, err := client.Orders.Get(context.Background(), 42); err == nil {
		t.Fatalf("expected 404 error")
	}
	if fired.Load() != 0 {
		t.Fatalf("404 outside /auth/profile must not force logout")
	}
}

func TestConnectionErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := New(server.URL, time.Second, nil, nil)
	_, err := client.Stores.List(context.Background())
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if UserMessage(err) != "Tidak dapat terhubung ke server. Periksa koneksi internet." {
		t.Fatalf("unexpected user message %q", UserMessage(err))
	}
}

func TestTimeoutClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := New(server.URL, 20*time.Millisecond, nil, nil)
	_, err := client.Stores.List(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if UserMessage(err) != "Koneksi timeout. Periksa jaringan dan coba lagi." {
		t.Fatalf("unexpected user message %q", UserMessage(err))
	}
}

func TestBackendErrorMessageSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"stok tidak cukup"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil, nil)
	_, err := client.Orders.Create(context.Background(), domain.CreateOrderRequest{StoreID: 1})
	if UserMessage(err) != "stok tidak cukup" {
		t.Fatalf("expected backend message, got %q", UserMessage(err))
	}
}

func TestIsSuperAdminRoleNames(t *testing.T) {
	role := "SuperAdmin"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"roleName":"` + role + `"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, staticToken("tok"), nil)

	for _, tc := range []struct {
		role string
		want bool
	}{
		{"SuperAdmin", true},
		{"Owner", true},
		{"Kasir", false},
	} {
		role = tc.role
		got, err := client.Auth.IsSuperAdmin(context.Background())
		if err != nil {
			t.Fatalf("is super admin (%s): %v", tc.role, err)
		}
		if got != tc.want {
			t.Fatalf("role %s: expected %v, got %v", tc.role, tc.want, got)
		}
	}
}
