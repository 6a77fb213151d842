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

// Package tty is the terminal-state guard of spec.md §4.1: it snapshots the
// attributes of a controlling terminal on entry and guarantees their
// restoration on every exit path of the supervisor, whether that path is a
// normal return, a propagated error, or a signal the process chooses to
// handle. Failure to find a terminal is deliberately not an error: a
// wrapper run with its input redirected simply gets a no-op guard.
package tty

import (
	"errors"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// ErrorNotTTY is returned by operations that require an actual terminal
// (such as MakeRaw) when the guard was built over a non-terminal input.
var ErrorNotTTY = errors.New("not a terminal")

// ErrorTTYFailed is returned by MakeRaw and WinSize when the guarded
// terminal's attributes or size cannot be changed or read. New never
// returns it: a terminal whose attributes cannot be read yields a no-op guard.
var ErrorTTYFailed = errors.New("failed to get terminal state")

// ErrorDevTTYFail is returned by OpenControllingTTY when /dev/tty cannot be
// opened as a fallback controlling-terminal handle.
var ErrorDevTTYFail = errors.New("failed to open /dev/tty")

// TTYSaver is the contract the supervisor depends on: restore pre-run
// attributes, participate in termination-signal handling, and report
// whether the underlying descriptor is actually a terminal.
type TTYSaver interface {
	// Restore reinstates the snapshot taken at New. It is always safe to
	// call, including on a non-terminal guard, where it is a no-op.
	Restore() error

	// Signal blocks until the process receives an interrupt or terminate
	// signal, restores the terminal, then re-raises that signal with its
	// default disposition. If the guard was built with signal handling
	// disabled, it returns immediately.
	Signal() error

	// IsTerminal reports whether the descriptor the guard was built over
	// is a real terminal.
	IsTerminal() bool
}

type guard struct {
	mu       sync.Mutex
	fd       int
	isTerm   bool
	signal   bool
	snapshot *term.State
}

// New captures the terminal attributes of r (os.Stdin if r is nil) if r is
// a terminal. It never fails solely because r is not a terminal or has no
// file descriptor: the returned TTYSaver is simply a no-op in that case,
// matching spec.md §4.1 ("failure ... is not an error").
func New(r io.Reader, enableSignal bool) (TTYSaver, error) {
	if r == nil {
		r = os.Stdin
	}

	g := &guard{signal: enableSignal}

	fder, ok := r.(interface{ Fd() uintptr })
	if !ok {
		return g, nil
	}

	g.fd = int(fder.Fd())
	if !term.IsTerminal(g.fd) {
		return g, nil
	}
	g.isTerm = true

	st, err := term.GetState(g.fd)
	if err != nil {
		// The descriptor claims to be a terminal but attributes could not
		// be read; treat the guard as a no-op rather than failing New, the
		// caller still gets a usable (if inert) TTYSaver.
		g.isTerm = false
		return g, nil
	}
	g.snapshot = st

	return g, nil
}

func (g *guard) IsTerminal() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isTerm
}

func (g *guard) Restore() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.restoreLocked()
}

func (g *guard) restoreLocked() error {
	if !g.isTerm || g.snapshot == nil {
		return nil
	}
	return term.Restore(g.fd, g.snapshot)
}

// Fd exposes the underlying file descriptor for callers that need it
// directly. It returns -1 when the guard holds descriptor 0 without a
// terminal behind it, which covers a guard not built over a real file and
// also a redirected, non-terminal os.Stdin.
func (g *guard) Fd() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fd == 0 && !g.isTerm {
		return -1
	}
	return g.fd
}

// OpenControllingTTY opens /dev/tty directly, giving a handle on the
// controlling terminal even when the wrapper's own stdin has been
// redirected (e.g. `ptywrap < pipe` under an interactive SSH session). The
// supervisor's window-size bridge does not use it; it reads the size from
// os.Stdin only.
func OpenControllingTTY() (*os.File, error) {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, ErrorDevTTYFail
	}
	return f, nil
}
