package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/athujoshi24/legendary-panel/internal/metrics"
	"github.com/athujoshi24/legendary-panel/internal/models"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
	"github.com/athujoshi24/legendary-panel/pkg/logger"
	"github.com/athujoshi24/legendary-panel/pkg/utils"
)

type userKeyType string

const UserKey userKeyType = "user"

// Authenticator resolves request credentials into an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// Auth accepts "Bearer <jwt>", "Token <jwt>" or HTTP Basic credentials and
// puts the resolved user in the request context. Anything else is a 401.
func Auth(authn Authenticator, rec metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, cred, _ := strings.Cut(r.Header.Get("Authorization"), " ")
			scheme = strings.ToLower(scheme)
			cred = strings.TrimSpace(cred)

			var (
				user   *models.User
				err    error
				fields = []zap.Field{zap.String("id", GetRequestID(r.Context())), zap.String("scheme", scheme)}
			)
			switch {
			case cred == "":
				unauthorized(w, r, "authentication credentials were not provided")
				return
			case scheme == "bearer" || scheme == "token":
				user, err = authn.ResolveToken(r.Context(), cred)
				fields = append(fields, zap.String("credential_fp", utils.Fingerprint(cred)))
			case scheme == "basic":
				email, password, ok := r.BasicAuth()
				if !ok {
					err = appErr.New(appErr.CodeUnauthorized, "invalid basic header")
					break
				}
				// basic credentials embed the password; never digest them
				fields = append(fields, zap.String("email", email))
				user, err = authn.Authenticate(r.Context(), email, password)
			default:
				unauthorized(w, r, "unsupported authorization scheme")
				return
			}

			if err != nil {
				if !appErr.IsCode(err, appErr.CodeUnauthorized) {
					logger.L().Error("authentication failed", zap.String("id", GetRequestID(r.Context())), zap.Error(err))
					writeError(w, r, http.StatusInternalServerError, appErr.CodeInternal, "internal server error")
					return
				}
				rec.RecordAuthFailure(scheme)
				logger.L().Info("credentials rejected", fields...)
				unauthorized(w, r, "invalid credentials")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="recipes"`)
	writeError(w, r, http.StatusUnauthorized, appErr.CodeUnauthorized, msg)
}

// GetUser returns the authenticated user, or nil outside Auth.
func GetUser(ctx context.Context) *models.User {
	if u, ok := ctx.Value(UserKey).(*models.User); ok {
		return u
	}
	return nil
}

// GetUserID returns the authenticated user's id, or 0.
func GetUserID(ctx context.Context) uint {
	if u := GetUser(ctx); u != nil {
		return u.ID
	}
	return 0
}
