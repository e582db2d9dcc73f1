// Package action implements the Hasura action endpoint: it resolves the
// calling user's Keycloak profile from the session variables Hasura
// forwards with the action payload.
package action

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"kcbridge/internal/keycloak"
	"kcbridge/internal/server"

	"github.com/go-chi/chi/v5"
)

// userIdVariable is the session variable Hasura sets to the requesting
// user's id.
const userIdVariable = "x-hasura-user-id"

// Payload is the request body Hasura POSTs to an action handler. Only the
// session variables matter here; the rest of the envelope is ignored.
type Payload struct {
	SessionVariables map[string]string `json:"session_variables"`
}

type ProfileResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

// NewRouter builds the action service router around the given Keycloak
// client.
func NewRouter(kc *keycloak.Client) *chi.Mux {
	r := server.NewRouter("action endpoint")
	r.Post("/keycloak", func(w http.ResponseWriter, r *http.Request) {
		var payload Payload
		err := json.NewDecoder(r.Body).Decode(&payload)
		if err != nil {
			slog.Error("failed to decode action payload", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "error happened"})
			return
		}

		// an absent session variable still triggers a lookup; the
		// provider rejects the empty id and we land on the error path
		userId := payload.SessionVariables[userIdVariable]
		profile, err := kc.FetchProfile(r.Context(), userId)
		if err != nil {
			slog.Error("failed to fetch profile", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "error happened"})
			return
		}

		writeJSON(w, http.StatusOK, ProfileResponse{
			Name:  profile.Username,
			Email: profile.Email,
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON", "error", err)
	}
}
