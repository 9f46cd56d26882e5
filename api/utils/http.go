// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/farm"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusForbidden,
	}
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusNotFound,
	}
}

// RevertStatus returns the status a contract revert is answered with.
func RevertStatus(err error) int {
	switch reverts.Code(err) {
	case "":
		return http.StatusInternalServerError
	case reverts.CodeUnauthorized:
		return http.StatusForbidden
	case reverts.CodePoolNotFound, reverts.CodeLockNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// If the returned error is httpError type, httpError.status will be responded,
// a contract revert is mapped by RevertStatus,
// otherwise http.StatusInternalServerError responded.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) {
			writeError(w, he.cause, he.status)
			return
		}
		writeError(w, err, RevertStatus(err))
	}
}

func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", JSONContentType)
	w.WriteHeader(status)
	resp := ErrorResponse{}
	if err != nil {
		resp.Error = err.Error()
		resp.Code = reverts.Code(err)
	}
	json.NewEncoder(w).Encode(resp)
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any

// AddressVar parses the address path variable name.
func AddressVar(r *http.Request, name string) (farm.Address, error) {
	addr, err := farm.ParseAddress(mux.Vars(r)[name])
	if err != nil {
		return farm.Address{}, BadRequest(pkgerrors.WithMessage(err, name))
	}
	return addr, nil
}

// Uint64Var parses the integer path variable name.
func Uint64Var(r *http.Request, name string) (uint64, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, BadRequest(pkgerrors.WithMessage(err, name))
	}
	return v, nil
}
