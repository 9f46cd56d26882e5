// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package locks

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/runtime"
)

type Locks struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Locks {
	return &Locks{rt}
}

func (l *Locks) handleGetLocks(w http.ResponseWriter, r *http.Request) error {
	beneficiary, err := utils.AddressVar(r, "address")
	if err != nil {
		return err
	}
	info, err := l.rt.GetLockInfo(beneficiary)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertInfo(info, l.rt.BlockContext().Time))
}

func (l *Locks) handleUnlock(w http.ResponseWriter, r *http.Request) error {
	beneficiary, err := utils.AddressVar(r, "address")
	if err != nil {
		return err
	}
	index, err := utils.Uint64Var(r, "index")
	if err != nil {
		return err
	}
	var req UnlockRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	entry, err := l.rt.Unlock(req.Caller, beneficiary, index)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Entry{
		Index:        index,
		Token:        entry.Token,
		Amount:       utils.Amount(entry.Amount),
		UnlockableAt: entry.UnlockableAt,
		Withdrawn:    entry.Withdrawn,
	})
}

func (l *Locks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).Name("GET /locks/{address}").HandlerFunc(utils.WrapHandlerFunc(l.handleGetLocks))
	sub.Path("/{address}/{index:[0-9]+}/unlock").Methods(http.MethodPost).Name("POST /locks/{address}/{index}/unlock").HandlerFunc(utils.WrapHandlerFunc(l.handleUnlock))
}
