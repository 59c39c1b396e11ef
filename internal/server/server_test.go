package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadrizvi64/agentic-voice/internal/extract"
	"github.com/asadrizvi64/agentic-voice/internal/registration"
	"github.com/asadrizvi64/agentic-voice/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := registration.NewEngine(store.NewMemory(), extract.New(), registration.NewRenderer(nil))
	srv := httptest.NewServer(NewHandler(engine).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateSessionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/sessions", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["session_id"])
	assert.Contains(t, body["message"], "help you with your registration")
}

func TestConversationOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	_, created := postJSON(t, srv.URL+"/sessions", "")
	sessionID := created["session_id"].(string)
	messagesURL := srv.URL + "/sessions/" + sessionID + "/messages"

	resp, body := postJSON(t, messagesURL,
		`{"message":"My name is Jane Doe, email jane@x.com, phone 555-123-4567, address 12 Elm St"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "password_needed", body["status"])
	assert.NotContains(t, body, "user_id")
	assert.NotContains(t, body, "missing_fields")

	_, body = postJSON(t, messagesURL, `{"message":"password Secret123!"}`)
	assert.Equal(t, "confirming", body["status"])

	_, body = postJSON(t, messagesURL, `{"message":"yes"}`)
	assert.Equal(t, "completed", body["status"])
	userID, _ := body["user_id"].(string)
	assert.NotEmpty(t, userID)
	assert.Contains(t, body["message"], userID)

	// The session view reflects the final state and never carries a
	// password.
	resp, snap := getJSON(t, srv.URL+"/sessions/"+sessionID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", snap["status"])
	assert.Equal(t, userID, snap["user_id"])
	profile, ok := snap["profile"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, profile, "password")
}

func TestMissingFieldsInResponse(t *testing.T) {
	srv := newTestServer(t)

	_, created := postJSON(t, srv.URL+"/sessions", "")
	sessionID := created["session_id"].(string)

	_, body := postJSON(t, srv.URL+"/sessions/"+sessionID+"/messages",
		`{"message":"my name is Jane Doe"}`)
	assert.Equal(t, "gathering_info", body["status"])
	assert.Equal(t, []any{"email", "phone", "address"}, body["missing_fields"])
}

func TestGetSessionNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/sessions/session_missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "session not found", body["error"])
}

func TestProcessMessageValidation(t *testing.T) {
	srv := newTestServer(t)

	_, created := postJSON(t, srv.URL+"/sessions", "")
	sessionID := created["session_id"].(string)
	messagesURL := srv.URL + "/sessions/" + sessionID + "/messages"

	resp, body := postJSON(t, messagesURL, `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "message is required", body["error"])

	resp, _ = postJSON(t, messagesURL, `{"message":"hi","extra":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, messagesURL, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
