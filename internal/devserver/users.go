package devserver

import (
	"net/http"
)

// currentUser returns the identity the presented token belongs to. A user
// removed since the token was issued is indistinguishable from a bad token.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	s.mu.Lock()
	user, ok := s.usersByPhone[claims.Phone]
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
