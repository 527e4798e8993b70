package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omarsldn/taskhub/internal/api/shared"
	"github.com/omarsldn/taskhub/internal/domain"
)

// respondWithJSON writes a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	shared.RespondWithJSON(w, status, payload)
}

// respondWithError writes the standard error envelope.
func respondWithError(w http.ResponseWriter, status int, message string) {
	shared.RespondWithError(w, status, message)
}

// userFromRequest extracts the authenticated user placed in the request
// context by the auth middleware. A missing user means the route was
// registered outside the authenticated group, which is a programming error;
// the caller should respond 401 and bail.
func userFromRequest(r *http.Request) (*domain.User, bool) {
	return shared.UserFromContext(r.Context())
}

// pathUUID extracts and parses a UUID path parameter.
func pathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}
