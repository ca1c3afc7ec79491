//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type todoResponse struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completed_at"`
	OwnerID     string `json:"owner_id"`
}

type todoEnvelope struct {
	Todo todoResponse `json:"todo"`
}

type todoList struct {
	Todos []todoResponse `json:"todos"`
}

// TestE2ESmoke walks the main flow against a running server.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("TICKBOX_BASE_URL", "http://localhost:8080")

	email := uniqueEmail("who1")
	user, _ := register(t, baseURL, email, "userOnePass")

	var loggedIn userResponse
	status, header := doJSON(t, http.MethodPost, baseURL+"/users/login", "", map[string]string{"email": email, "password": "userOnePass"}, &loggedIn)
	if status != http.StatusOK {
		t.Fatalf("login status %d", status)
	}
	token := header.Get("X-Auth")
	if token == "" || loggedIn.ID != user.ID {
		t.Fatalf("login returned %+v with token %q", loggedIn, token)
	}

	var created todoResponse
	if status, _ := doJSON(t, http.MethodPost, baseURL+"/todos", token, map[string]string{"text": "First test todo"}, &created); status != http.StatusOK {
		t.Fatalf("create todo status %d", status)
	}

	var list todoList
	if status, _ := doJSON(t, http.MethodGet, baseURL+"/todos", token, nil, &list); status != http.StatusOK {
		t.Fatalf("list todos status %d", status)
	}
	if len(list.Todos) != 1 || list.Todos[0].ID != created.ID || list.Todos[0].OwnerID != user.ID {
		t.Fatalf("unexpected todo list: %+v", list.Todos)
	}

	var done todoEnvelope
	doJSON(t, http.MethodPatch, baseURL+"/todos/"+created.ID, token, map[string]bool{"completed": true}, &done)
	if !done.Todo.Completed || done.Todo.CompletedAt == nil {
		t.Fatalf("todo not completed: %+v", done.Todo)
	}
}

// TestE2EOwnerIsolation checks that another user's todo looks absent.
func TestE2EOwnerIsolation(t *testing.T) {
	baseURL := envOrDefault("TICKBOX_BASE_URL", "http://localhost:8080")

	_, tokenA := register(t, baseURL, uniqueEmail("owner"), "userOnePass")
	_, tokenB := register(t, baseURL, uniqueEmail("other"), "userTwoPass")

	var todo todoResponse
	doJSON(t, http.MethodPost, baseURL+"/todos", tokenA, map[string]string{"text": "First test todo"}, &todo)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		if status, _ := doJSON(t, method, baseURL+"/todos/"+todo.ID, tokenB, nil, nil); status != http.StatusNotFound {
			t.Errorf("%s on foreign todo: status %d, want 404", method, status)
		}
	}
	if status, _ := doJSON(t, http.MethodGet, baseURL+"/todos/"+todo.ID, tokenA, nil, nil); status != http.StatusOK {
		t.Errorf("owner lost access: status %d", status)
	}
}

// TestE2ELogoutRevokesOnlyThatToken covers the database and, when enabled,
// the Redis session cache.
func TestE2ELogoutRevokesOnlyThatToken(t *testing.T) {
	baseURL := envOrDefault("TICKBOX_BASE_URL", "http://localhost:8080")

	email := uniqueEmail("logout")
	_, first := register(t, baseURL, email, "userOnePass")
	_, header := doJSON(t, http.MethodPost, baseURL+"/users/login", "", map[string]string{"email": email, "password": "userOnePass"}, nil)
	second := header.Get("X-Auth")

	// warm the cache
	doJSON(t, http.MethodGet, baseURL+"/users/me", first, nil, nil)

	if status, _ := doJSON(t, http.MethodDelete, baseURL+"/users/me/token", first, nil, nil); status != http.StatusOK {
		t.Fatalf("logout status %d", status)
	}
	if status, _ := doJSON(t, http.MethodGet, baseURL+"/users/me", first, nil, nil); status != http.StatusUnauthorized {
		t.Errorf("revoked token: status %d, want 401", status)
	}
	if status, _ := doJSON(t, http.MethodGet, baseURL+"/users/me", second, nil, nil); status != http.StatusOK {
		t.Errorf("other session: status %d, want 200", status)
	}
}

// TestE2ENoSecretsInResponses validates that tokens and digests are never echoed.
func TestE2ENoSecretsInResponses(t *testing.T) {
	baseURL := envOrDefault("TICKBOX_BASE_URL", "http://localhost:8080")

	client := &http.Client{Timeout: 10 * time.Second}
	fake := "eyJhbGciOiJIUzI1NiJ9." + strings.Repeat("x", 32) + ".sig"

	req, err := http.NewRequest(http.MethodGet, baseURL+"/todos", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("X-Auth", fake)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if strings.Contains(string(body), fake) {
		t.Error("SECURITY: error response echoed the presented token")
	}

	_, token := register(t, baseURL, uniqueEmail("secrets"), "userOnePass")
	req, _ = http.NewRequest(http.MethodGet, baseURL+"/users/me", nil)
	req.Header.Set("X-Auth", token)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()

	for _, secret := range []string{token, "argon2id", "userOnePass"} {
		if strings.Contains(string(body), secret) {
			t.Errorf("SECURITY: /users/me leaked %q", secret)
		}
	}
}

func register(t *testing.T, baseURL, email, password string) (userResponse, string) {
	t.Helper()

	var user userResponse
	status, header := doJSON(t, http.MethodPost, baseURL+"/users", "", map[string]string{"email": email, "password": password}, &user)
	if status != http.StatusOK {
		t.Fatalf("register %s: status %d", email, status)
	}
	token := header.Get("X-Auth")
	if token == "" {
		t.Fatalf("register %s: no X-Auth header", email)
	}
	return user, token
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func uniqueEmail(prefix string) string {
	return strings.ToLower(prefix + "-" + ulid.Make().String() + "@e2e.test")
}

func doJSON(t *testing.T, method, url, token string, body any, out any) (int, http.Header) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("X-Auth", token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode, resp.Header
}
