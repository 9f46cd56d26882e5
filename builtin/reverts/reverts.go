// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the failures a native contract call can end with.
// Any revert aborts the whole call and rolls its state changes back.
package reverts

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Codes of the failure taxonomy.
const (
	CodeUnauthorized          = "Unauthorized"
	CodeInsufficientBalance   = "InsufficientBalance"
	CodeInsufficientAllowance = "InsufficientAllowance"
	CodeNotYetUnlockable      = "NotYetUnlockable"
	CodeEmergencyNotEnabled   = "EmergencyNotEnabled"
	CodeInvalidWindow         = "InvalidWindow"
	CodeDuplicatePool         = "DuplicatePool"
	CodePoolNotFound          = "PoolNotFound"
	CodeLockNotFound          = "LockNotFound"
	CodeInvalidAmount         = "InvalidAmount"
	CodeAlreadyInitialized    = "AlreadyInitialized"
	CodeNotInitialized        = "NotInitialized"
	CodeOverflow              = "Overflow"
)

// Sentinels, compare with errors.Is. Two reverts match when their codes match.
var (
	ErrUnauthorized          = New(CodeUnauthorized, "caller is not authorized")
	ErrInsufficientBalance   = New(CodeInsufficientBalance, "insufficient balance")
	ErrInsufficientAllowance = New(CodeInsufficientAllowance, "insufficient allowance")
	ErrNotYetUnlockable      = New(CodeNotYetUnlockable, "already withdrawn or not unlockable yet")
	ErrEmergencyNotEnabled   = New(CodeEmergencyNotEnabled, "!isEmergency")
	ErrInvalidWindow         = New(CodeInvalidWindow, "start must be before end")
	ErrDuplicatePool         = New(CodeDuplicatePool, "stake token already registered")
	ErrPoolNotFound          = New(CodePoolNotFound, "pool not found")
	ErrLockNotFound          = New(CodeLockNotFound, "lock entry not found")
	ErrInvalidAmount         = New(CodeInvalidAmount, "invalid amount")
	ErrAlreadyInitialized    = New(CodeAlreadyInitialized, "already initialized")
	ErrNotInitialized        = New(CodeNotInitialized, "not initialized")
	ErrOverflow              = New(CodeOverflow, "amount exceeds 256 bits")
)

type ErrRevert struct {
	code    string
	message string
}

func New(code, message string) *ErrRevert {
	return &ErrRevert{
		code:    code,
		message: message,
	}
}

// With returns a revert of the same code carrying a more specific message.
func (e *ErrRevert) With(format string, args ...any) *ErrRevert {
	return &ErrRevert{code: e.code, message: fmt.Sprintf(format, args...)}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Code() string {
	return e.code
}

// Is matches reverts by code.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && t.code == e.code
}

// Bytes returns the message abi encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}
	msg := []byte(e.message)
	padded := (len(msg) + 31) / 32 * 32

	encoded := make([]byte, 4+32+32+padded)
	copy(encoded, []byte{0x08, 0xc3, 0x79, 0xa0}) // selector of Error(string)
	binary.BigEndian.PutUint64(encoded[4+24:], 32)
	binary.BigEndian.PutUint64(encoded[4+32+24:], uint64(len(msg)))
	copy(encoded[4+64:], msg)
	return encoded
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Code returns the revert code carried by err, or empty string.
func Code(err error) string {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.code
	}
	return ""
}
