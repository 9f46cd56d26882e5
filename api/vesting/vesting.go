// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/runtime"
)

type Vesting struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Vesting {
	return &Vesting{rt}
}

func (v *Vesting) handleGetSchedule(w http.ResponseWriter, r *http.Request) error {
	beneficiary, err := utils.AddressVar(r, "address")
	if err != nil {
		return err
	}
	status, err := v.rt.GetVesting(beneficiary)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertSchedule(status))
}

// anyone may trigger the release, funds always go to the beneficiary
func (v *Vesting) handleUnlock(w http.ResponseWriter, r *http.Request) error {
	beneficiary, err := utils.AddressVar(r, "address")
	if err != nil {
		return err
	}
	var req UnlockRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := v.rt.UnlockVesting(req.Caller, beneficiary)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"amount": utils.Amount(amount)})
}

func (v *Vesting) handleWithdraw(w http.ResponseWriter, r *http.Request) error {
	var req WithdrawRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	receipt, err := v.rt.WithdrawERC20(req.Caller, req.To, req.Token, amount)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (v *Vesting) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/withdraw").Methods(http.MethodPost).Name("POST /vesting/withdraw").HandlerFunc(utils.WrapHandlerFunc(v.handleWithdraw))
	sub.Path("/{address}").Methods(http.MethodGet).Name("GET /vesting/{address}").HandlerFunc(utils.WrapHandlerFunc(v.handleGetSchedule))
	sub.Path("/{address}/unlock").Methods(http.MethodPost).Name("POST /vesting/{address}/unlock").HandlerFunc(utils.WrapHandlerFunc(v.handleUnlock))
}
