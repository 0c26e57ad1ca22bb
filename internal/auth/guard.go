package auth

import (
	"net/http"

	"github.com/aanand-mishra/college-api/internal/errs"
	"github.com/aanand-mishra/college-api/internal/utils/response"
)

// Guard rejects requests without an identity with errs.Unauthorized (401).
// A disabled guard lets everything through.
func Guard(enabled bool) response.Middleware {
	return func(next response.HandlerFunc) response.HandlerFunc {
		if !enabled {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) error {
			if !Authenticated(r.Context()) {
				return errs.NewUnauthorized()
			}
			return next(w, r)
		}
	}
}
