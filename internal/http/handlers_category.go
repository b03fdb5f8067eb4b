package http

import (
	"net/http"

	"kakeibo/internal/core"
	"kakeibo/internal/middleware/owner"
	"kakeibo/internal/services"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tree, err := s.svc.Categories.List(r.Context(), owner.UserID(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, struct {
			Categories services.CategoryTree `json:"categories"`
		}{Categories: tree})
	case http.MethodPost:
		var body struct {
			Type          string   `json:"type"`
			Name          string   `json:"name"`
			Subcategories []string `json:"subcategories"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(w, "malformed JSON body")
			return
		}
		created, err := s.svc.Categories.Create(r.Context(), core.Category{
			UserID:        owner.UserID(r.Context()),
			Type:          core.TransactionType(body.Type),
			Name:          body.Name,
			Subcategories: body.Subcategories,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}
