package handlers

import (
	"net/http"
)

func (a *API) State(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, &APIStateResponse{
		Status:  "ok",
		Network: a.Network,
	}, http.StatusOK)
}
