package catalog

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/productpraat/catalog-importer/pkg/httpclient"
)

func TestTokenSourceFetchesAndCaches(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("id:secret"))
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Fatalf("Authorization = %s", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Fatalf("grant_type = %s", got)
		}
		w.Write([]byte(`{"access_token": "tok-1", "expires_in": 300}`))
	}))
	defer srv.Close()

	ts := newTokenSource(httpclient.NewRestyClient(time.Second), srv.URL, "id", "secret")

	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if token != "tok-1" {
			t.Fatalf("token = %s", token)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("auth endpoint called %d times, want 1", calls.Load())
	}
}

func TestTokenSourceRefreshesNearExpiry(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"access_token": "tok", "expires_in": 300}`))
	}))
	defer srv.Close()

	ts := newTokenSource(httpclient.NewRestyClient(time.Second), srv.URL, "id", "secret")
	current := time.Now()
	ts.now = func() time.Time { return current }

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}

	// Inside the early-refresh window the cached token no longer qualifies.
	current = current.Add(300*time.Second - tokenEarlyRefresh)
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token after expiry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("auth endpoint called %d times, want 2", calls.Load())
	}
}

func TestTokenSourceRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_client", http.StatusUnauthorized)
	}))
	defer srv.Close()

	ts := newTokenSource(httpclient.NewRestyClient(time.Second), srv.URL, "id", "wrong")
	if _, err := ts.Token(context.Background()); err == nil {
		t.Fatal("expected error for rejected credentials")
	}
}
