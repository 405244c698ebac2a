package handlers

import "btsbridge/types"

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

type APIStateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Network string `json:"network"`
}

type APIDeploymentResponse struct {
	Network   string                  `json:"network"`
	Contracts map[string]string       `json:"contracts"`
	Record    *types.DeploymentRecord `json:"record,omitempty"`
}

type APIFeeResponse struct {
	Amount string `json:"amount"`
	Value  string `json:"value"`
	Fee    string `json:"fee"`
}
