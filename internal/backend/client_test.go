package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func staticToken(token string) TokenSource {
	return func() string { return token }
}

func TestFetchOrders_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/kitchen/orders" {
			t.Fatalf("path = %s, want /kitchen/orders", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer token-1" {
			t.Fatalf("authorization = %q, want bearer token", auth)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kitchen_order":[{"id":"1","type":"dine_in","status":"preparing","order":[{"name":"Pizza","count":"2","price_after_tax":"10.00"}]}]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, staticToken("token-1"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	raw, err := client.FetchOrders(ctx)
	if err != nil {
		t.Fatalf("FetchOrders error: %v", err)
	}
	if len(raw) != 1 || raw[0].ID.String() != "1" || raw[0].Type != "dine_in" {
		t.Fatalf("unexpected batch: %+v", raw)
	}
	if len(raw[0].Order) != 1 || raw[0].Order[0].Count.Int() != 2 {
		t.Fatalf("unexpected items: %+v", raw[0].Order)
	}
}

func TestFetchNotifications_NoToken(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	client := NewClient(ts.URL, staticToken(""))

	_, err := client.FetchNotifications(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if called {
		t.Fatalf("request must not reach the network without a token")
	}
}

func TestFetchOrders_Unauthenticated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, staticToken("stale"))

	_, err := client.FetchOrders(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestFetchOrders_Plain401IsNotUnauthenticated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, staticToken("stale"))

	_, err := client.FetchOrders(context.Background())
	if err == nil {
		t.Fatalf("expected error for 401")
	}
	if errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("401 without the backend message must stay a generic failure, got %v", err)
	}
}

func TestChangeDoneStatus_SendsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/kitchen/orders/done_status/42" {
			t.Fatalf("path = %s", r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if payload["status"] != "done" {
			t.Fatalf("status = %q, want done", payload["status"])
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, staticToken("token-1"))

	if err := client.ChangeDoneStatus(context.Background(), "42", "done"); err != nil {
		t.Fatalf("ChangeDoneStatus error: %v", err)
	}
}

func TestMarkRead_Failure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, staticToken("token-1"))

	if err := client.MarkRead(context.Background(), "42"); err == nil {
		t.Fatalf("expected error for 500")
	}
}

func TestLogin_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/kitchen/auth/login" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Fatalf("login must not carry a token, got %q", auth)
		}

		body, _ := io.ReadAll(r.Body)
		var creds map[string]string
		if err := json.Unmarshal(body, &creds); err != nil {
			t.Fatalf("unmarshal credentials: %v", err)
		}
		if creds["name"] != "chef" || creds["password"] != "secret" {
			t.Fatalf("unexpected credentials: %v", creds)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"token-1","kitchen":{"name":"Main","branch":{"name":"Downtown"}}}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, staticToken(""))

	res, err := client.Login(context.Background(), "chef", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Token != "token-1" || res.Kitchen.Name != "Main" || res.Kitchen.Branch.Name != "Downtown" {
		t.Fatalf("unexpected login response: %+v", res)
	}
}

func TestClient_SchemeDefaulting(t *testing.T) {
	client := NewClient("localhost:8080/", staticToken("t"))

	if got := client.url("/kitchen/orders"); got != "http://localhost:8080/kitchen/orders" {
		t.Fatalf("url = %q", got)
	}
}
