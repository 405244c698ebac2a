package handlers

import (
	"net/http"
	"strings"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi"
)

// Balance writes the reference token balance of an address as a plain decimal.
func (a *API) Balance(w http.ResponseWriter, r *http.Request) {
	addr := strings.TrimSpace(chi.URLParam(r, "addr"))
	if !common.IsHexAddress(addr) {
		responseError(w, "addr", "invalid address", http.StatusBadRequest)
		return
	}
	if err := ethav.Validate(common.HexToAddress(addr).Hex()); err != nil {
		responseError(w, "addr", err.Error(), http.StatusBadRequest)
		return
	}

	balance, err := a.Reader.Balance(r.Context(), common.HexToAddress(addr))
	if err != nil {
		a.Log.Errorf("Error getting balance of %s: %s", addr, err.Error())
		responsePlain(w, []byte("error"), http.StatusInternalServerError)
		return
	}

	responsePlain(w, []byte(balance.String()), http.StatusOK)
}
