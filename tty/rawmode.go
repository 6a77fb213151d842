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

package tty

import "golang.org/x/term"

// RawCapable is satisfied by any TTYSaver that can also transition its
// terminal into raw mode and report its window size. The supervisor type-
// asserts for it rather than requiring every TTYSaver (including test
// mocks standing in for a non-terminal run) to implement these.
type RawCapable interface {
	TTYSaver
	MakeRaw() error
	WinSize() (rows, cols int, err error)
}

// MakeRaw performs the transition described in spec.md §4.3: input is made
// available byte-by-byte with no line editing or signal generation, output
// post-processing is disabled, and local echo is turned off. The snapshot
// taken at New is left untouched, so Restore still reinstates the terminal
// exactly as the wrapper found it.
//
// Calling MakeRaw on a guard that was not built over a real terminal is not
// fatal; it reports ErrorNotTTY so callers can decide whether that matters.
func (g *guard) MakeRaw() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isTerm {
		return ErrorNotTTY
	}

	if _, err := term.MakeRaw(g.fd); err != nil {
		return ErrorTTYFailed
	}
	return nil
}

// WinSize reports the current window size of the guarded terminal as
// (rows, cols). It returns ErrorNotTTY when the guard has no real terminal
// to query.
func (g *guard) WinSize() (rows, cols int, err error) {
	g.mu.Lock()
	fd := g.fd
	isTerm := g.isTerm
	g.mu.Unlock()

	if !isTerm {
		return 0, 0, ErrorNotTTY
	}

	w, h, err := term.GetSize(fd)
	if err != nil {
		return 0, 0, ErrorTTYFailed
	}
	return h, w, nil
}
