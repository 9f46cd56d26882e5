// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settings

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/runtime"
)

type Settings struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Settings {
	return &Settings{rt}
}

func (s *Settings) handleGetSettings(w http.ResponseWriter, _ *http.Request) error {
	settings, err := s.rt.Settings()
	if err != nil {
		return err
	}
	ctx := s.rt.BlockContext()
	return utils.WriteJSON(w, convertStatus(settings, ctx.Number, ctx.Time))
}

func (s *Settings) handleSetStart(w http.ResponseWriter, r *http.Request) error {
	var req TickRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.rt.SetStartTick(req.Caller, req.Tick)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (s *Settings) handleSetEnd(w http.ResponseWriter, r *http.Request) error {
	var req TickRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.rt.SetEndTick(req.Caller, req.Tick)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (s *Settings) handleSetRewardPerTick(w http.ResponseWriter, r *http.Request) error {
	var req RewardPerTickRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	receipt, err := s.rt.SetRewardPerTick(req.Caller, amount)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (s *Settings) handleSetDevCut(w http.ResponseWriter, r *http.Request) error {
	var req DevCutRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.rt.SetDevCut(req.Caller, req.Numerator, req.Denominator)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (s *Settings) handleSetDevAddr(w http.ResponseWriter, r *http.Request) error {
	var req AddressRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.rt.SetDevAddr(req.Caller, req.Address)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (s *Settings) handleTransferOwnership(w http.ResponseWriter, r *http.Request) error {
	var req AddressRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.rt.TransferOwnership(req.Caller, req.Address)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (s *Settings) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).Name("GET /settings").HandlerFunc(utils.WrapHandlerFunc(s.handleGetSettings))
	sub.Path("/start").Methods(http.MethodPost).Name("POST /settings/start").HandlerFunc(utils.WrapHandlerFunc(s.handleSetStart))
	sub.Path("/end").Methods(http.MethodPost).Name("POST /settings/end").HandlerFunc(utils.WrapHandlerFunc(s.handleSetEnd))
	sub.Path("/reward-per-tick").Methods(http.MethodPost).Name("POST /settings/reward-per-tick").HandlerFunc(utils.WrapHandlerFunc(s.handleSetRewardPerTick))
	sub.Path("/dev-cut").Methods(http.MethodPost).Name("POST /settings/dev-cut").HandlerFunc(utils.WrapHandlerFunc(s.handleSetDevCut))
	sub.Path("/dev-addr").Methods(http.MethodPost).Name("POST /settings/dev-addr").HandlerFunc(utils.WrapHandlerFunc(s.handleSetDevAddr))
	sub.Path("/owner").Methods(http.MethodPost).Name("POST /settings/owner").HandlerFunc(utils.WrapHandlerFunc(s.handleTransferOwnership))
}
