package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	client := New()
	require.NotNil(t, client, "New() should not return nil")
	assert.Equal(t, "", client.BaseURL(), "Expected empty base URL")
}

func TestWithBaseURL(t *testing.T) {
	baseURL := "https://keycloak.pharmachain.example"
	client := New(WithBaseURL(baseURL))

	assert.Equal(t, baseURL, client.BaseURL(), "Expected correct base URL")
}

func TestWithHeaders_NilMap(t *testing.T) {
	client := New(WithHeaders(nil))
	require.NotNil(t, client, "Client should not be nil")
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method, "Expected GET method")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	resp, err := client.Get(context.Background(), "/", nil)
	require.NoError(t, err, "Get() should not fail")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status 200")
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method, "Expected POST method")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"), "Expected Content-Type application/json")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err, "Reading request body should not fail")
		assert.JSONEq(t, `{"username":"driver_DRV-1"}`, string(body), "Expected JSON-encoded payload")

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	resp, err := client.Post(context.Background(), "/users", map[string]string{"username": "driver_DRV-1"}, nil)
	require.NoError(t, err, "Post() should not fail")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode, "Expected status 201")
}

func TestClient_Put(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method, "Expected PUT method")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	resp, err := client.Put(context.Background(), "/users/abc", map[string]bool{"enabled": false}, nil)
	require.NoError(t, err, "Put() should not fail")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "Expected status 204")
}

func TestClient_Delete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method, "Expected DELETE method")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	resp, err := client.Delete(context.Background(), "/users/abc", nil)
	require.NoError(t, err, "Delete() should not fail")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "Expected status 204")
}

func TestClient_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer default-token", r.Header.Get("Authorization"), "Expected default header")
		assert.Equal(t, "fr", r.Header.Get("Accept-Language"), "Expected per-request header")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(
		WithBaseURL(server.URL),
		WithHeaders(map[string]string{"Authorization": "Bearer default-token"}),
	)

	resp, err := client.Get(context.Background(), "/", map[string]string{"Accept-Language": "fr"})
	require.NoError(t, err, "Get() should not fail")
	defer resp.Body.Close()
}

func TestClient_HeaderOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"), "Per-request header should override the default")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(
		WithBaseURL(server.URL),
		WithHeaders(map[string]string{"Authorization": "Bearer stale-token"}),
	)

	resp, err := client.Get(context.Background(), "/", map[string]string{"Authorization": "Bearer fresh-token"})
	require.NoError(t, err, "Get() should not fail")
	defer resp.Body.Close()
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "abc-123", "username": "driver_DRV-1"})
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))

	var result struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	err := client.GetJSON(context.Background(), "/users/abc-123", &result, nil)
	require.NoError(t, err, "GetJSON() should not fail")

	assert.Equal(t, "abc-123", result.ID, "Expected id from response")
	assert.Equal(t, "driver_DRV-1", result.Username, "Expected username from response")
}

func TestClient_GetJSON_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"User not found"}`))
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))

	var result map[string]string
	err := client.GetJSON(context.Background(), "/users/missing", &result, nil)
	require.Error(t, err, "GetJSON() should fail on non-2xx status")
	assert.Contains(t, err.Error(), "404", "Error should include the status code")
	assert.Contains(t, err.Error(), "User not found", "Error should include the response body")
}

func TestClient_GetJSON_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))

	var result map[string]string
	err := client.GetJSON(context.Background(), "/", &result, nil)
	require.Error(t, err, "GetJSON() should fail on malformed JSON")
	assert.Contains(t, err.Error(), "failed to unmarshal response", "Error should mention unmarshal failure")
}

func TestClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method, "Expected PATCH method")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	resp, err := client.Do(context.Background(), http.MethodPatch, "/items/1", strings.NewReader(`{"status":"DELIVERED"}`), nil)
	require.NoError(t, err, "Do() should not fail")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status 200")
}

func TestClient_TransportError(t *testing.T) {
	// Point at a server that is already closed so every attempt fails
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(WithBaseURL(server.URL), WithTimeout(time.Second))

	_, err := client.Get(context.Background(), "/", nil)
	require.Error(t, err, "Get() should fail when the server is unreachable")
	assert.Contains(t, err.Error(), "request failed after 0 retries", "Error should report the retry count")
}

func TestWithHTTPClient(t *testing.T) {
	var usedCustomTransport bool
	custom := &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			usedCustomTransport = true
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("{}")),
				Header:     make(http.Header),
			}, nil
		}),
	}

	client := New(WithBaseURL("http://example.invalid"), WithHTTPClient(custom))

	resp, err := client.Get(context.Background(), "/", nil)
	require.NoError(t, err, "Get() should use the injected http.Client")
	defer resp.Body.Close()

	assert.True(t, usedCustomTransport, "Custom transport should be used")
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
