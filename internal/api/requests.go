package api

import (
	"net/http"
)

type itemRequestBody struct {
	Description string `json:"description" validate:"notblank"`
}

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var body itemRequestBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	request, err := s.services.Requests.CreateRequest(r.Context(), userID, body.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	request, err := s.services.Requests.GetRequest(r.Context(), userID, requestID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleGetOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	requests, err := s.services.Requests.GetOwnRequests(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleGetOtherRequests(w http.ResponseWriter, r *http.Request) {
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

	requests, err := s.services.Requests.GetOtherRequests(r.Context(), userID, from, size)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
