// Package remoteschema serves the GraphQL remote schema Hasura stitches
// in: a single keycloak query resolving the caller's profile.
//
// The caller's id is read from the bearer token's sub claim WITHOUT
// verifying the signature or expiry. That mirrors the deployment this was
// written for, where Hasura sits in front and the token was already
// checked upstream. Do not expose this service directly.
package remoteschema

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"kcbridge/internal/keycloak"
	"kcbridge/internal/server"

	"github.com/go-chi/chi/v5"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type contextKey string

// authHeaderKey carries the raw Authorization header into resolvers.
const authHeaderKey contextKey = "authorization"

// NewSchema builds the remote schema:
//
//	type keycloak_profile { name: String, email: String }
//	type Query { keycloak: keycloak_profile }
func NewSchema(kc *keycloak.Client) (graphql.Schema, error) {
	profileType := graphql.NewObject(graphql.ObjectConfig{
		Name: "keycloak_profile",
		Fields: graphql.Fields{
			"name":  &graphql.Field{Type: graphql.String},
			"email": &graphql.Field{Type: graphql.String},
		},
	})
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"keycloak": &graphql.Field{
				Type: profileType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return resolveProfile(p, kc)
				},
			},
		},
	})
	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

// resolveProfile decodes the request's bearer token and looks the subject
// up in Keycloak. A missing token is the only client-visible error; decode
// and upstream failures just null the field.
func resolveProfile(p graphql.ResolveParams, kc *keycloak.Client) (any, error) {
	header, _ := p.Context.Value(authHeaderKey).(string)
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return nil, errors.New("Authorization token is missing!")
	}

	decoded, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		slog.Error("failed to decode bearer token", "error", err)
		return nil, nil
	}

	profile, err := kc.FetchProfile(p.Context, decoded.Subject())
	if err != nil {
		slog.Error("failed to fetch profile", "error", err)
		return nil, nil
	}

	return map[string]any{
		"name":  profile.Username,
		"email": profile.Email,
	}, nil
}

// NewRouter builds the remote-schema service router around the given
// Keycloak client.
func NewRouter(kc *keycloak.Client) (*chi.Mux, error) {
	schema, err := NewSchema(kc)
	if err != nil {
		return nil, err
	}
	h := handler.New(&handler.Config{
		Schema: &schema,
		Pretty: true,
	})

	r := server.NewRouter("remote schema")
	r.Handle("/graphql", withAuthHeader(h))
	return r, nil
}

// withAuthHeader copies the Authorization header into the request context
// so resolvers can reach it through ResolveParams.
func withAuthHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), authHeaderKey, r.Header.Get("Authorization"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
