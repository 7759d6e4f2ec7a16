package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/freshcart/storefront/api/responses"
	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"github.com/freshcart/storefront/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope and logs it with the
// request it came from. It sits outside Profile, so the profile id is taken
// from the header when it is well formed.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					fields := map[string]any{
						"panic":  fmt.Sprint(rec),
						"method": r.Method,
						"path":   r.URL.Path,
					}
					if profileID := panicProfileID(r); profileID != "" {
						fields["profile_id"] = profileID
					}
					ctx = logg.WithFields(ctx, fields)
					logg.Error(ctx, "panic.recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func panicProfileID(r *http.Request) string {
	if id := ProfileIDFromContext(r.Context()); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.Header.Get(ProfileHeader)); profileIDRe.MatchString(id) {
		return id
	}
	return ""
}
