package authorize

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"classroom/lib/api/cont"
	"classroom/lib/api/response"
	"classroom/lib/sl"
)

// Require rejects requests whose authenticated session does not carry the
// given user type. It must run after the authenticate middleware.
func Require(log *slog.Logger, userType string) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authorize")

	return func(next http.Handler) http.Handler {

		fn := func(w http.ResponseWriter, r *http.Request) {
			session := cont.GetSession(r.Context())
			if session.UserType != userType {
				log.With(
					mod,
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("path", r.URL.Path),
					slog.String("user_type", session.UserType),
					slog.String("required", userType),
				).Warn("access denied")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}
