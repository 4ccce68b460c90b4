package server

import (
	"net/http"
	"strings"
	"time"

	"hookScope/internal/analytics"
	"hookScope/internal/model"
)

type historyResponse struct {
	Items  []model.Event `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Events  int    `json:"events"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Analytics.Stats())
}

func (s *Server) handleSwaps(w http.ResponseWriter, r *http.Request) {
	s.serveHistory(w, r, model.KindSwap)
}

func (s *Server) handleLiquidity(w http.ResponseWriter, r *http.Request) {
	s.serveHistory(w, r, model.KindLiquidity)
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	s.serveHistory(w, r, model.KindTransfer)
}

func (s *Server) serveHistory(w http.ResponseWriter, r *http.Request, kind model.EventKind) {
	limit, err := queryLimit(r, defaultHistoryLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total := s.pipeline.Analytics.History(kind, filter, analytics.Page{Offset: offset, Limit: limit})
	writeJSON(w, http.StatusOK, historyResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func parseFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()
	minUSD, err := queryFloat(r, "minUsd")
	if err != nil {
		return analytics.Filter{}, err
	}
	whaleOnly, err := queryBool(r, "whaleOnly")
	if err != nil {
		return analytics.Filter{}, err
	}

	filter := analytics.Filter{
		Exchange:  strings.TrimSpace(q.Get("exchange")),
		Token:     strings.TrimSpace(q.Get("token")),
		MinUSD:    minUSD,
		Address:   strings.TrimSpace(q.Get("address")),
		Pool:      strings.TrimSpace(q.Get("pool")),
		WhaleOnly: whaleOnly,
	}
	switch action := model.LiquidityAction(strings.ToLower(strings.TrimSpace(q.Get("type")))); action {
	case "":
	case model.LiquidityAdd, model.LiquidityRemove:
		filter.Action = action
	default:
		return analytics.Filter{}, errInvalidParam("type", string(action))
	}
	return filter, nil
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultTopLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.Analytics.TopPools(limit))
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultTopLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.Analytics.TopTokens(limit))
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultAlertLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.Feed.Recent(limit))
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	hours, err := queryInt(r, "hours", 1)
	if err != nil || hours == 0 {
		writeError(w, http.StatusBadRequest, "invalid hours")
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.Analytics.VolumeByPeriod(hours))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Clients: s.pipeline.Hub.ClientCount(),
		Events:  s.pipeline.Analytics.Len(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}
