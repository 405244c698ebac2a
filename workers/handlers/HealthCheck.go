package handlers

import (
	"net/http"
)

// HealthCheck fails when the journal store is configured but unreachable.
func (a *API) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if p, ok := a.Journal.(Pinger); ok {
		if err := p.Ping(); err != nil {
			a.Log.Errorf("Error pinging Redis: %s", err.Error())
			responseJSON(w, &APIResponse{Status: "error", Message: "redis unavailable"}, http.StatusServiceUnavailable)
			return
		}
	}
	responseJSON(w, &APIResponse{
		Status: "ok",
	}, http.StatusOK)
}
