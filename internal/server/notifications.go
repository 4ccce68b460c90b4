package server

import (
	"errors"
	"net/http"
	"strings"

	"hookScope/internal/alerts"
)

type createSubscriptionRequest struct {
	Owner   string            `json:"owner"`
	Channel string            `json:"channel"`
	Config  map[string]string `json:"config"`
	Filters alerts.Filters    `json:"filters"`
}

type toggleSubscriptionRequest struct {
	Active *bool `json:"active"`
}

type subscriptionsResponse struct {
	Subscriptions []alerts.Subscription `json:"subscriptions"`
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	channel, err := alerts.ParseChannel(req.Channel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := s.pipeline.Dispatcher.CreateSubscription(req.Owner, channel, req.Config, req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	if owner == "" {
		writeError(w, http.StatusBadRequest, alerts.ErrOwnerRequired.Error())
		return
	}
	writeJSON(w, http.StatusOK, subscriptionsResponse{Subscriptions: s.pipeline.Dispatcher.ListByOwner(owner)})
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Dispatcher.Delete(r.PathValue("id")); err != nil {
		writeSubscriptionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	var req toggleSubscriptionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "active is required")
		return
	}

	sub, err := s.pipeline.Dispatcher.Toggle(r.PathValue("id"), *req.Active)
	if err != nil {
		writeSubscriptionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func writeSubscriptionError(w http.ResponseWriter, err error) {
	if errors.Is(err, alerts.ErrSubscriptionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
