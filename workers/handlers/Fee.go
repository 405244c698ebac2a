package handlers

import (
	"net/http"

	"btsbridge/units"
)

func (a *API) TransferFee(w http.ResponseWriter, r *http.Request) {
	amount, err := units.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		responseError(w, "amount", err.Error(), http.StatusBadRequest)
		return
	}

	fee, err := a.Reader.TransferFee(r.Context(), amount)
	if err != nil {
		a.Log.Errorf("Error calculating transfer fee for %s: %s", amount, err.Error())
		responseError(w, "", "cannot calculate transfer fee", http.StatusInternalServerError)
		return
	}

	responseJSON(w, &APIFeeResponse{
		Amount: amount.String(),
		Value:  fee.Value.String(),
		Fee:    fee.Fee.String(),
	}, http.StatusOK)
}
