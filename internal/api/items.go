package api

import (
	"net/http"

	"shareit/internal/models"
)

type commentRequest struct {
	Text string `json:"text" validate:"notblank"`
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var body models.Item
	if err := decodeJSON(r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	body.ID = 0

	item, err := s.services.Items.CreateItem(r.Context(), userID, &body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var body models.ItemUpdate
	if err := decodeJSON(r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	item, err := s.services.Items.UpdateItem(r.Context(), userID, itemID, body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.services.Items.DeleteItem(r.Context(), userID, itemID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	item, err := s.services.Items.GetItem(r.Context(), userID, itemID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleGetOwnerItems(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	from, size, err := paging(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	items, err := s.services.Items.GetOwnerItems(r.Context(), userID, from, size)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	from, size, err := paging(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	items, err := s.services.Items.Search(r.Context(), userID, r.URL.Query().Get("text"), from, size)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var body commentRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	comment, err := s.services.Items.AddComment(r.Context(), userID, itemID, body.Text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
