package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/northwind/salesportal/internal/render"
)

// AllowMethods answers OPTIONS with 200 and any method not listed with 405,
// before the wrapped handler (and its authentication) runs.
func AllowMethods(methods ...string) func(http.HandlerFunc) http.HandlerFunc {
	allow := strings.Join(append([]string{http.MethodOptions}, methods...), ", ")

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.Header().Set("Allow", allow)
				w.WriteHeader(http.StatusOK)
				return
			}

			if !slices.Contains(methods, r.Method) {
				w.Header().Set("Allow", allow)
				render.Error(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}

			next(w, r)
		}
	}
}
