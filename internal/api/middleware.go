// Package api implements the folio preview HTTP API using chi.
package api

import (
	"context"
	"net/http"

	"github.com/starford/folio/internal/view"
)

// ModeCookie stores the reader's preferred view mode.
const ModeCookie = "folio_mode"

type modeKey struct{}

// ModeMiddleware resolves the view mode from the "mode" query parameter,
// then the preference cookie, then def. An explicit, valid, persistent
// query choice is written back to the cookie.
func ModeMiddleware(def view.Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested := r.URL.Query().Get("mode")
			stored := ""
			if c, err := r.Cookie(ModeCookie); err == nil {
				stored = c.Value
			}
			if _, err := view.ParseMode(stored); err != nil {
				stored = string(def)
			}
			mode := view.Resolve(requested, stored)

			if m, err := view.ParseMode(requested); err == nil && m.Persistent() {
				http.SetCookie(w, &http.Cookie{
					Name:     ModeCookie,
					Value:    string(m),
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), modeKey{}, mode)))
		})
	}
}

// ModeFrom returns the mode resolved by ModeMiddleware.
func ModeFrom(ctx context.Context) view.Mode {
	if m, ok := ctx.Value(modeKey{}).(view.Mode); ok {
		return m
	}
	return view.DefaultMode
}
