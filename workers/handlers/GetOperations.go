package handlers

import (
	"net/http"

	"btsbridge/config"

	"github.com/go-chi/chi"
)

// GetOperations lists journaled operator commands by status ("succeeded" or "failed").
func (a *API) GetOperations(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")
	if _, ok := config.RedisStatusSets[status]; !ok {
		responseError(w, "status", "unknown status", http.StatusBadRequest)
		return
	}
	if a.Journal == nil {
		responseError(w, "", "operation journal is not configured", http.StatusServiceUnavailable)
		return
	}

	ops, err := a.Journal.FindAllOperationsByStatus(status)
	if err != nil {
		a.Log.Errorf("Error getting %s operations: %s", status, err.Error())
		responseJSON(w, nil, http.StatusInternalServerError)
		return
	}

	responseJSON(w, ops, http.StatusOK)
}
