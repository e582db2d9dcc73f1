package keycloak

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKeycloak stands in for the master realm's token and admin endpoints,
// recording what the client sends. Each token request mints a distinct
// token so tests can tell exchanges apart.
type fakeKeycloak struct {
	*httptest.Server
	tokenRequests []url.Values
	userPaths     []string
	authHeaders   []string
}

func newFakeKeycloak(t *testing.T, users map[string]Profile) *fakeKeycloak {
	f := &fakeKeycloak{}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/realms/master/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.tokenRequests = append(f.tokenRequests, r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("admin-token-%d", len(f.tokenRequests)),
			"token_type":   "Bearer",
		})
	})
	mux.HandleFunc("/auth/admin/realms/master/users/", func(w http.ResponseWriter, r *http.Request) {
		f.userPaths = append(f.userPaths, r.URL.Path)
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		id := strings.TrimPrefix(r.URL.Path, "/auth/admin/realms/master/users/")
		if id == "" {
			// the trailing-slash URL is Keycloak's list endpoint
			json.NewEncoder(w).Encode([]Profile{})
			return
		}
		profile, ok := users[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "User not found"})
			return
		}
		json.NewEncoder(w).Encode(profile)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func TestFetchAdminToken(t *testing.T) {
	t.Run("sends a password grant with the admin credentials", func(t *testing.T) {
		f := newFakeKeycloak(t, nil)
		c := NewClient(f.URL, "admin", "hunter2", 0)

		token, err := c.FetchAdminToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "admin-token-1", token)

		require.Len(t, f.tokenRequests, 1)
		form := f.tokenRequests[0]
		assert.Equal(t, "password", form.Get("grant_type"))
		assert.Equal(t, "admin-cli", form.Get("client_id"))
		assert.Equal(t, "admin", form.Get("username"))
		assert.Equal(t, "hunter2", form.Get("password"))
	})

	t.Run("fails when the provider rejects the credentials", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		}))
		t.Cleanup(ts.Close)

		c := NewClient(ts.URL, "admin", "wrong", 0)
		_, err := c.FetchAdminToken(context.Background())
		require.Error(t, err)
	})

	t.Run("fails when the response has no access_token", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"token_type": "Bearer"}`))
		}))
		t.Cleanup(ts.Close)

		c := NewClient(ts.URL, "admin", "admin", 0)
		_, err := c.FetchAdminToken(context.Background())
		require.Error(t, err)
	})

	t.Run("fails when the provider is unreachable", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		ts.Close()

		c := NewClient(ts.URL, "admin", "admin", 0)
		_, err := c.FetchAdminToken(context.Background())
		require.Error(t, err)
	})
}

func TestFetchProfile(t *testing.T) {
	users := map[string]Profile{
		"c0a8": {
			Id:       "c0a8",
			Username: "jdoe",
			Email:    "jdoe@example.com",
			Enabled:  true,
		},
	}

	t.Run("returns the provider's user record", func(t *testing.T) {
		f := newFakeKeycloak(t, users)
		c := NewClient(f.URL, "admin", "admin", 0)

		profile, err := c.FetchProfile(context.Background(), "c0a8")
		require.NoError(t, err)
		assert.Equal(t, "jdoe", profile.Username)
		assert.Equal(t, "jdoe@example.com", profile.Email)
		assert.Equal(t, "c0a8", profile.Id)
	})

	t.Run("authorizes the lookup with a fresh token per call", func(t *testing.T) {
		f := newFakeKeycloak(t, users)
		c := NewClient(f.URL, "admin", "admin", 0)

		_, err := c.FetchProfile(context.Background(), "c0a8")
		require.NoError(t, err)
		_, err = c.FetchProfile(context.Background(), "c0a8")
		require.NoError(t, err)

		assert.Len(t, f.tokenRequests, 2)
		require.Len(t, f.authHeaders, 2)
		assert.Equal(t, "Bearer admin-token-1", f.authHeaders[0])
		assert.Equal(t, "Bearer admin-token-2", f.authHeaders[1])
	})

	t.Run("fails for an unknown user", func(t *testing.T) {
		f := newFakeKeycloak(t, users)
		c := NewClient(f.URL, "admin", "admin", 0)

		_, err := c.FetchProfile(context.Background(), "nope")
		require.Error(t, err)
	})

	t.Run("still issues the request for an empty user id", func(t *testing.T) {
		f := newFakeKeycloak(t, users)
		c := NewClient(f.URL, "admin", "admin", 0)

		_, err := c.FetchProfile(context.Background(), "")
		require.Error(t, err)
		require.Len(t, f.userPaths, 1)
		assert.Equal(t, "/auth/admin/realms/master/users/", f.userPaths[0])
	})

	t.Run("fails on a non-JSON profile body", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/realms/master/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token": "tok"}`))
		})
		mux.HandleFunc("/auth/admin/realms/master/users/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		})
		ts := httptest.NewServer(mux)
		t.Cleanup(ts.Close)

		c := NewClient(ts.URL, "admin", "admin", 0)
		_, err := c.FetchProfile(context.Background(), "c0a8")
		require.Error(t, err)
	})
}
