package httpapi

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/livingstonekit-alt/feather-front/internal/conf"
)

// publicPaths are never gated behind Basic Auth even when it's
// enabled: the dashboard needs its own status before a user logs in,
// and static/icon assets aren't sensitive.
var publicPaths = map[string]bool{
	"/api/status": true,
}

func isPublic(path string) bool {
	if publicPaths[path] {
		return true
	}
	return len(path) >= 6 && path[:6] == "/icons"
}

// basicAuthMiddleware builds the echo middleware enforcing HTTP Basic
// auth against the Configuration Store's configured user/hash, when a
// password hash is configured; with none set, auth is a no-op.
func basicAuthMiddleware(store *conf.Store) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Skipper: func(c echo.Context) bool {
			settings := store.Get()
			if settings.AuthPasswordHash == "" {
				return true
			}
			return isPublic(c.Path())
		},
		Validator: func(username, password string, c echo.Context) (bool, error) {
			settings := store.Get()
			userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(settings.AuthUser)) == 1
			passMatch := conf.VerifyPassword(password, settings.AuthPasswordHash)
			return userMatch && passMatch, nil
		},
		Realm: "feather-front",
	})
}

// noStoreMiddleware adds Cache-Control: no-store to every response,
// matching the requirement that API responses never get cached.
func noStoreMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-store")
		return next(c)
	}
}
