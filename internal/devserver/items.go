package devserver

import (
	"net/http"

	"github.com/washlink/app/internal/api"
)

// listItems serves the public catalog, optionally filtered by category.
// Inactive entries are never exposed.
func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.Item, 0, len(s.items))
	for _, item := range s.items {
		if !item.IsActive {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		out = append(out, item)
	}

	writeJSON(w, http.StatusOK, out)
}
