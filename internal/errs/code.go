/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package errs carries the small package-scoped error-code registry used
// across ptywrap, in the same shape as github.com/nabbar/golib/errors: a
// uint16 CodeError per failure kind, a message table filled at init time,
// and a wrapping Error that keeps the parent OS error around.
package errs

import (
	"fmt"
)

// CodeError is a small, package-scoped failure kind. Unlike golib/errors
// this module only ever raises a handful of fatal conditions, so a single
// flat block is enough; there is no cross-package code range to reserve.
type CodeError uint16

const (
	UnknownError CodeError = iota
	ErrPTYAlloc
	ErrForkExec
	ErrFIFOCreate
	ErrLogWrite
	ErrLogOpen
	ErrTermAttr
	ErrWaitStatus
	ErrSelectFatal
)

var messages = map[CodeError]string{
	UnknownError:   "unknown error",
	ErrPTYAlloc:    "failed to allocate pseudo-terminal",
	ErrForkExec:    "failed to start child process",
	ErrFIFOCreate:  "failed to create input FIFO",
	ErrLogWrite:    "failed to write to log file",
	ErrLogOpen:     "failed to open log file",
	ErrTermAttr:    "failed to read or write terminal attributes",
	ErrWaitStatus:  "failed to wait for child process",
	ErrSelectFatal: "fatal error multiplexing descriptors",
}

// Message returns the human-readable description registered for c, or the
// generic unknown-error message if c was never registered.
func (c CodeError) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[UnknownError]
}

// Error wraps an OS-level cause with a CodeError so callers can branch on
// the failure kind without parsing strings, while %v still prints a useful
// message.
type Error struct {
	Code   CodeError
	Cause  error
	Detail string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Code.Message()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New wraps cause under code, with an optional free-form detail string.
func New(code CodeError, cause error, detail string) *Error {
	return &Error{Code: code, Cause: cause, Detail: detail}
}
