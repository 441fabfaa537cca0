package opsapi

import (
	"encoding/json"
	"net/http"

	zlog "github.com/rs/zerolog/log"
)

type statusHandler struct {
	status StatusProvider
}

func newStatusHandler(status StatusProvider) *statusHandler {
	return &statusHandler{status: status}
}

func (h *statusHandler) handle(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(h.status.LastStatus())
	if err != nil {
		zlog.Error().Err(err).Msg("status encoding failed")
	}
}
