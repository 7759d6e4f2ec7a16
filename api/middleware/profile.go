package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/freshcart/storefront/api/responses"
	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"github.com/freshcart/storefront/pkg/logger"
)

// ProfileHeader carries the shopper profile that owns a cart and wishlist.
const ProfileHeader = "X-Profile-Id"

var profileIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Profile requires a well-formed profile id and binds it to the request
// context and log fields.
func Profile(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			profileID := strings.TrimSpace(r.Header.Get(ProfileHeader))
			if profileID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "profile id header is required").
					WithDetails(map[string]string{"header": ProfileHeader}))
				return
			}
			if !profileIDRe.MatchString(profileID) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "profile id is malformed").
					WithDetails(map[string]string{"header": ProfileHeader}))
				return
			}

			ctx = WithProfileID(ctx, profileID)
			if logg != nil {
				ctx = logg.WithProfileID(ctx, profileID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
