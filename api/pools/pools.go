// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/runtime"
)

type Pools struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Pools {
	return &Pools{rt}
}

func parseBody[T any](r *http.Request) (*T, error) {
	var req T
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return &req, nil
}

func (p *Pools) handleGetPools(w http.ResponseWriter, _ *http.Request) error {
	pools, err := p.rt.Pools()
	if err != nil {
		return err
	}
	resp := make([]*Pool, 0, len(pools))
	for i, pool := range pools {
		resp = append(resp, convertPool(uint64(i), pool))
	}
	return utils.WriteJSON(w, resp)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, r *http.Request) error {
	pid, err := utils.Uint64Var(r, "pid")
	if err != nil {
		return err
	}
	pool, err := p.rt.GetPool(pid)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertPool(pid, pool))
}

func (p *Pools) handleAddPool(w http.ResponseWriter, r *http.Request) error {
	req, err := parseBody[AddPoolRequest](r)
	if err != nil {
		return err
	}
	pid, err := p.rt.AddPool(req.Caller, req.AllocPoint, req.StakeToken, req.WithUpdate)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"id": pid})
}

func (p *Pools) handleSetAlloc(w http.ResponseWriter, r *http.Request) error {
	pid, err := utils.Uint64Var(r, "pid")
	if err != nil {
		return err
	}
	req, err := parseBody[AllocRequest](r)
	if err != nil {
		return err
	}
	receipt, err := p.rt.SetAllocPoint(req.Caller, pid, req.AllocPoint, req.WithUpdate)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (p *Pools) handleSetEmergency(w http.ResponseWriter, r *http.Request) error {
	pid, err := utils.Uint64Var(r, "pid")
	if err != nil {
		return err
	}
	req, err := parseBody[EmergencyRequest](r)
	if err != nil {
		return err
	}
	receipt, err := p.rt.SetEmergency(req.Caller, pid, req.Emergency)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (p *Pools) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	pid, err := utils.Uint64Var(r, "pid")
	if err != nil {
		return err
	}
	req, err := parseBody[CallerRequest](r)
	if err != nil {
		return err
	}
	receipt, err := p.rt.UpdatePool(req.Caller, pid)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (p *Pools) handleMassUpdate(w http.ResponseWriter, r *http.Request) error {
	req, err := parseBody[CallerRequest](r)
	if err != nil {
		return err
	}
	receipt, err := p.rt.MassUpdatePools(req.Caller)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (p *Pools) handleDeposit(w http.ResponseWriter, r *http.Request) error {
	pid, err := utils.Uint64Var(r, "pid")
	if err != nil {
		return err
	}
	req, err := parseBody[AmountRequest](r)
	if err != nil {
		return err
	}
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	receipt, err := p.rt.Deposit(req.Caller, pid, amount)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (p *Pools) handleWithdraw(w http.ResponseWriter, r *http.Request) error {
	pid, err := utils.Uint64Var(r, "pid")
	if err != nil {
		return err
	}
	req, err := parseBody[AmountRequest](r)
	if err != nil {
		return err
	}
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	receipt, err := p.rt.Withdraw(req.Caller, pid, amount)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (p *Pools) handleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) error {
	pid, err := utils.Uint64Var(r, "pid")
	if err != nil {
		return err
	}
	req, err := parseBody[CallerRequest](r)
	if err != nil {
		return err
	}
	amount, err := p.rt.EmergencyWithdraw(req.Caller, pid)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"amount": utils.Amount(amount)})
}

func (p *Pools) handleGetUser(w http.ResponseWriter, r *http.Request) error {
	pid, err := utils.Uint64Var(r, "pid")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(r, "address")
	if err != nil {
		return err
	}
	u, err := p.rt.GetUserInfo(pid, account)
	if err != nil {
		return err
	}
	pending, err := p.rt.PendingFiro(pid, account)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &User{
		Amount:     utils.Amount(u.Amount),
		RewardDebt: utils.Amount(u.RewardDebt),
		Pending:    utils.Amount(pending),
	})
}

func (p *Pools) handleGetPending(w http.ResponseWriter, r *http.Request) error {
	pid, err := utils.Uint64Var(r, "pid")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(r, "address")
	if err != nil {
		return err
	}
	pending, err := p.rt.PendingFiro(pid, account)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"pending": utils.Amount(pending)})
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).Name("GET /pools").HandlerFunc(utils.WrapHandlerFunc(p.handleGetPools))
	sub.Path("").Methods(http.MethodPost).Name("POST /pools").HandlerFunc(utils.WrapHandlerFunc(p.handleAddPool))
	sub.Path("/mass-update").Methods(http.MethodPost).Name("POST /pools/mass-update").HandlerFunc(utils.WrapHandlerFunc(p.handleMassUpdate))
	sub.Path("/{pid:[0-9]+}").Methods(http.MethodGet).Name("GET /pools/{pid}").HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{pid:[0-9]+}/alloc").Methods(http.MethodPost).Name("POST /pools/{pid}/alloc").HandlerFunc(utils.WrapHandlerFunc(p.handleSetAlloc))
	sub.Path("/{pid:[0-9]+}/emergency").Methods(http.MethodPost).Name("POST /pools/{pid}/emergency").HandlerFunc(utils.WrapHandlerFunc(p.handleSetEmergency))
	sub.Path("/{pid:[0-9]+}/update").Methods(http.MethodPost).Name("POST /pools/{pid}/update").HandlerFunc(utils.WrapHandlerFunc(p.handleUpdate))
	sub.Path("/{pid:[0-9]+}/deposit").Methods(http.MethodPost).Name("POST /pools/{pid}/deposit").HandlerFunc(utils.WrapHandlerFunc(p.handleDeposit))
	sub.Path("/{pid:[0-9]+}/withdraw").Methods(http.MethodPost).Name("POST /pools/{pid}/withdraw").HandlerFunc(utils.WrapHandlerFunc(p.handleWithdraw))
	sub.Path("/{pid:[0-9]+}/emergency-withdraw").Methods(http.MethodPost).Name("POST /pools/{pid}/emergency-withdraw").HandlerFunc(utils.WrapHandlerFunc(p.handleEmergencyWithdraw))
	sub.Path("/{pid:[0-9]+}/users/{address}").Methods(http.MethodGet).Name("GET /pools/{pid}/users/{address}").HandlerFunc(utils.WrapHandlerFunc(p.handleGetUser))
	sub.Path("/{pid:[0-9]+}/pending/{address}").Methods(http.MethodGet).Name("GET /pools/{pid}/pending/{address}").HandlerFunc(utils.WrapHandlerFunc(p.handleGetPending))
}
