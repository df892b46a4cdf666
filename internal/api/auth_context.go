package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/http/response"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// identityKey is the context key for the caller's identity.
const identityKey ctxKey = "identity"

// identityFrom returns the caller's identity, Anonymous if none was resolved.
func identityFrom(ctx context.Context) domain.Identity {
	if identity, ok := ctx.Value(identityKey).(domain.Identity); ok {
		return identity
	}
	return domain.Anonymous()
}

// requireIdentity returns the caller's identity or a 401 for anonymous callers.
func requireIdentity(ctx context.Context) (domain.Identity, error) {
	identity := identityFrom(ctx)
	if !identity.IsAuthenticated() {
		return identity, domainerrors.Unauthorized("authentication required")
	}
	return identity, nil
}

// Authenticator resolves a bearer token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

// authMiddleware resolves a Bearer token into an Identity stored in the
// request context. Missing or invalid tokens continue as Anonymous; handlers
// that need a user reject them. Any other failure while resolving the token
// ends the request with its error envelope.
func (s *Server) authMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if domainerrors.Is(err, domainerrors.ErrUnauthorized) {
					s.logger.Debug("ignoring invalid bearer token", "path", r.URL.Path, "error", err)
					next.ServeHTTP(w, r)
					return
				}
				s.writeAuthError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) && domainErr.Code != domainerrors.CodeInternal {
		s.logger.Warn("bearer token lookup failed", "path", r.URL.Path, "error", err)
		response.Error(w, domainErr.HTTPStatus(), string(domainErr.Code), domainErr.Message, s.logger)
		return
	}
	s.logger.Error("bearer token lookup failed", "path", r.URL.Path, "error", err)
	response.InternalError(w, "internal server error", s.logger)
}
