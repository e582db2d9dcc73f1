// Package keycloak talks to a Keycloak instance's token and admin
// endpoints on behalf of the bridge services. Every call authenticates
// with the service's own admin credentials, never the end user's.
package keycloak

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// adminClientId is the public CLI client every Keycloak master realm ships with.
	adminClientId = "admin-cli"

	tokenEndpoint      = "/auth/realms/master/protocol/openid-connect/token"
	adminUsersEndpoint = "/auth/admin/realms/master/users/"
)

// Profile is the admin API's user record. Keycloak returns more fields
// than these; anything unknown is ignored.
type Profile struct {
	Id               string `json:"id"`
	CreatedTimestamp int64  `json:"createdTimestamp"`
	Username         string `json:"username"`
	Enabled          bool   `json:"enabled"`
	EmailVerified    bool   `json:"emailVerified"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
}

type Client struct {
	host     string
	username string
	password string
	http     *http.Client
}

// NewClient builds a client for the Keycloak at host using the given admin
// credentials. A timeout of 0 leaves upstream calls unbounded.
func NewClient(host string, username string, password string, timeout time.Duration) *Client {
	return &Client{
		host:     host,
		username: username,
		password: password,
		http:     &http.Client{Timeout: timeout},
	}
}

// FetchAdminToken exchanges the admin credentials for an access token using
// a password grant against the master realm. The token is returned verbatim
// and never cached; callers get a fresh one per request.
func (c *Client) FetchAdminToken(ctx context.Context) (string, error) {
	conf := &oauth2.Config{
		ClientID: adminClientId,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.host + tokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	token, err := conf.PasswordCredentialsToken(ctx, c.username, c.password)
	if err != nil {
		return "", fmt.Errorf("failed to fetch admin token: %v", err)
	}
	return token.AccessToken, nil
}

// FetchProfile looks up a user record through the admin API. An empty
// userId is not rejected here; the request is still issued and the
// provider's response decides the outcome.
func (c *Client) FetchProfile(ctx context.Context, userId string) (*Profile, error) {
	token, err := c.FetchAdminToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+adminUsersEndpoint+userId, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create a new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status code: %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	var profile Profile
	err = json.Unmarshal(body, &profile)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %v", err)
	}
	return &profile, nil
}
