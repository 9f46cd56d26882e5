// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/runtime"
)

type Tokens struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Tokens {
	return &Tokens{rt}
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, r *http.Request) error {
	tok, err := utils.AddressVar(r, "token")
	if err != nil {
		return err
	}
	supply, err := t.rt.TotalSupply(tok)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Token{Address: tok, TotalSupply: utils.Amount(supply)})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, r *http.Request) error {
	tok, err := utils.AddressVar(r, "token")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(r, "address")
	if err != nil {
		return err
	}
	bal, err := t.rt.BalanceOf(tok, account)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{utils.Amount(bal)})
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, r *http.Request) error {
	tok, err := utils.AddressVar(r, "token")
	if err != nil {
		return err
	}
	owner, err := utils.AddressVar(r, "owner")
	if err != nil {
		return err
	}
	spender, err := utils.AddressVar(r, "spender")
	if err != nil {
		return err
	}
	amount, err := t.rt.Allowance(tok, owner, spender)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Allowance{utils.Amount(amount)})
}

type transferFunc func(caller, tok, to farm.Address, amount *big.Int) (*runtime.Receipt, error)

func (t *Tokens) transferHandler(f transferFunc) utils.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		tok, err := utils.AddressVar(r, "token")
		if err != nil {
			return err
		}
		var req TransferRequest
		if err := utils.ParseJSON(r.Body, &req); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		amount, err := utils.ParseAmount(req.Amount)
		if err != nil {
			return err
		}
		receipt, err := f(req.Caller, tok, req.To, amount)
		if err != nil {
			return err
		}
		return utils.WriteJSON(w, receipt)
	}
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{token}").Methods(http.MethodGet).Name("GET /tokens/{token}").HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/{token}/balances/{address}").Methods(http.MethodGet).Name("GET /tokens/{token}/balances/{address}").HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{token}/allowances/{owner}/{spender}").Methods(http.MethodGet).Name("GET /tokens/{token}/allowances/{owner}/{spender}").HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path("/{token}/transfer").Methods(http.MethodPost).Name("POST /tokens/{token}/transfer").HandlerFunc(utils.WrapHandlerFunc(t.transferHandler(t.rt.Transfer)))
	sub.Path("/{token}/approve").Methods(http.MethodPost).Name("POST /tokens/{token}/approve").HandlerFunc(utils.WrapHandlerFunc(t.transferHandler(t.rt.Approve)))
	sub.Path("/{token}/mint").Methods(http.MethodPost).Name("POST /tokens/{token}/mint").HandlerFunc(utils.WrapHandlerFunc(t.transferHandler(t.rt.Mint)))
}
