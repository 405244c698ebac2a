package handlers

import (
	"net/http"
)

// Deployment returns the address table in use, plus the stored deployment record when there is one.
func (a *API) Deployment(w http.ResponseWriter, r *http.Request) {
	resp := &APIDeploymentResponse{
		Network:   a.Network,
		Contracts: map[string]string{},
	}
	if a.Registry != nil {
		resp.Contracts = a.Registry.Entries()
	}

	if a.Deployments != nil {
		rec, err := a.Deployments.GetDeployment(a.Network)
		if err != nil {
			a.Log.Errorf("Error getting deployment record: %s", err.Error())
			responseError(w, "", "cannot read deployment record", http.StatusInternalServerError)
			return
		}
		resp.Record = rec
	}

	if resp.Record == nil && len(resp.Contracts) == 0 {
		responseError(w, "network", "no deployment for "+a.Network, http.StatusNotFound)
		return
	}
	responseJSON(w, resp, http.StatusOK)
}
