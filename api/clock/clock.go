// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock exposes the farm ticks and, on devnets, lets an operator move them.
package clock

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/clock"
	"github.com/firofarm/chef/runtime"
)

type Status struct {
	Number           uint64 `json:"number"`
	Time             uint64 `json:"time"`
	RewardSettable   bool   `json:"rewardSettable"`
	ScheduleSettable bool   `json:"scheduleSettable"`
}

// MoveRequest advances a clock by Advance, or sets it to To when non zero.
type MoveRequest struct {
	Advance uint64 `json:"advance"`
	To      uint64 `json:"to"`
}

type Clock struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Clock {
	return &Clock{rt}
}

func (c *Clock) status() *Status {
	ctx := c.rt.BlockContext()
	_, rs := c.rt.RewardClock().(clock.Settable)
	_, ss := c.rt.ScheduleClock().(clock.Settable)
	return &Status{
		Number:           ctx.Number,
		Time:             ctx.Time,
		RewardSettable:   rs,
		ScheduleSettable: ss,
	}
}

func (c *Clock) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, c.status())
}

func (c *Clock) moveHandler(name string, get func() clock.Clock) utils.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		settable, ok := get().(clock.Settable)
		if !ok {
			return utils.Forbidden(fmt.Errorf("%s clock is not settable", name))
		}
		var req MoveRequest
		if err := utils.ParseJSON(r.Body, &req); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		if req.To != 0 {
			if err := settable.Set(req.To); err != nil {
				return utils.BadRequest(err)
			}
		} else {
			settable.Advance(req.Advance)
		}
		return utils.WriteJSON(w, c.status())
	}
}

func (c *Clock) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).Name("GET /clock").HandlerFunc(utils.WrapHandlerFunc(c.handleGetStatus))
	sub.Path("/reward").Methods(http.MethodPost).Name("POST /clock/reward").HandlerFunc(utils.WrapHandlerFunc(c.moveHandler("reward", c.rt.RewardClock)))
	sub.Path("/schedule").Methods(http.MethodPost).Name("POST /clock/schedule").HandlerFunc(utils.WrapHandlerFunc(c.moveHandler("schedule", c.rt.ScheduleClock)))
}
