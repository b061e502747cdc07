// ABOUTME: Tests for the fake catalog service endpoints
// ABOUTME: Checks auth enforcement, CRUD, error bodies, and fault injection

package fakeserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func register(t *testing.T, base, username, password string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/auth/register", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var tok tokenResponse
	require.NoError(t, json.Unmarshal(body, &tok))
	assert.Equal(t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func TestRegisterAndLogin(t *testing.T) {
	_, ts := newTestServer(t)

	register(t, ts.URL, "alice", "secret")

	// Duplicate username
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]string{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"Username already registered"}`, string(body))

	// Good login
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{"username": "alice", "password": "secret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "access_token")

	// Bad password
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"Invalid Credentials"}`, string(body))
}

func TestItems_AuthRequired(t *testing.T) {
	_, ts := newTestServer(t)

	// Listing is anonymous
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/1", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, string(body))
}

func TestItems_CRUD(t *testing.T) {
	s, ts := newTestServer(t)
	token := register(t, ts.URL, "bob", "pw")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/", token, map[string]any{"name": "Lamp", "description": "desk", "price": 12.5})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"id":1,"name":"Lamp","description":"desk","price":12.5}`, string(body))

	resp, body = doJSON(t, http.MethodPut, ts.URL+"/api/1", token, map[string]any{"name": "Lamp 2", "description": nil, "price": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":1,"name":"Lamp 2","description":null,"price":3}`, string(body))

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Lamp 2")

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/1", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, s.Items())

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/1", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"Item not found"}`, string(body))
}

func TestItems_PriceValidation(t *testing.T) {
	_, ts := newTestServer(t)
	token := register(t, ts.URL, "carol", "pw")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/", token, map[string]any{"name": "Lamp", "description": "", "price": nil})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "valid number")

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/", token, map[string]any{"name": "Lamp", "price": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestFaultInjection_OneShot(t *testing.T) {
	s, ts := newTestServer(t)
	s.SetFault(http.MethodGet, "/api/", http.StatusInternalServerError, "boom")

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/", "", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"boom"}`, string(body))

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdmin_SeedStateReset(t *testing.T) {
	s, ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/admin/items", "", []Item{{Name: "a", Price: 1}, {ID: 10, Name: "b", Price: 2}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s.Seed(Item{Name: "c"})

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 10, items[1].ID)
	assert.Equal(t, 11, items[2].ID)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/admin/state", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"items"`)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/admin/reset", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, s.Items())
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Minute)

	tok, err := issuer.Generate("dave")
	require.NoError(t, err)

	sub, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "dave", sub)

	_, err = NewTokenIssuer([]byte("other"), time.Minute).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer([]byte("secret"), time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Generate("dave")
	require.NoError(t, err)
	_, err = issuer.Verify(old)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
