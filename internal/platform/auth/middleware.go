package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// Guard authenticates requests and checks role capabilities.
type Guard struct {
	verifier *Verifier
	logger   *slog.Logger
}

func NewGuard(verifier *Verifier, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{verifier: verifier, logger: logger}
}

// Require wraps next so it only runs for callers whose role grants c. The
// principal is available to next through PrincipalFromContext.
func (g *Guard) Require(c Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := g.verifier.Verify(r.Context(), tokenFromRequest(r))
		if err != nil {
			g.reject(w, r, err)
			return
		}
		if !p.Role.Can(c) {
			g.reject(w, r, types.ErrForbidden)
			return
		}
		next(w, r.WithContext(WithPrincipal(r.Context(), p)))
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func (g *Guard) reject(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusUnauthorized
	switch types.KindOf(err) {
	case types.KindForbidden:
		status = http.StatusForbidden
	case types.KindUpstreamUnavailable:
		status = http.StatusServiceUnavailable
		g.logger.Error("token verification failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   types.Code(err),
		"message": types.PublicMessage(err),
	})
}
