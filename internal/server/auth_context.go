package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"itrack/internal/models"
	"itrack/internal/store"
)

type authContextKey struct{}

func contextWithActingUser(ctx context.Context, user *store.UserRecord) context.Context {
	return context.WithValue(ctx, authContextKey{}, user)
}

func actingUserFromContext(ctx context.Context) *store.UserRecord {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(authContextKey{}).(*store.UserRecord)
	return user
}

// withAuth resolves the bearer token into the acting user. Login and health
// are the only anonymous routes.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || (r.Method == http.MethodPost && r.URL.Path == "/user/login") {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			s.writeError(w, r, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		user, err := s.authService.Authenticate(r.Context(), token, time.Now().UTC())
		if err != nil {
			s.handleError(w, r, storeFailure(err))
			return
		}
		if user == nil {
			s.writeError(w, r, http.StatusUnauthorized, errors.New("session expired or revoked"))
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithActingUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) requireRole(r *http.Request, roles ...models.Role) (*store.UserRecord, error) {
	user := actingUserFromContext(r.Context())
	if user == nil {
		return nil, makeAPIError(http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
	}
	for _, role := range roles {
		if user.Role == role {
			return user, nil
		}
	}
	return nil, forbidden(errors.New("insufficient role"))
}

// requireProjectAccess resolves the acting user and checks project
// membership. Admins see every project.
func (s *Server) requireProjectAccess(r *http.Request, projectID string) (*store.UserRecord, error) {
	user := actingUserFromContext(r.Context())
	if user == nil {
		return nil, makeAPIError(http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
	}
	if user.Role == models.RoleAdmin {
		return user, nil
	}
	ok, err := s.store.IsParticipant(r.Context(), projectID, user.ID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if !ok {
		return nil, forbidden(errors.New("not a project participant"))
	}
	return user, nil
}
