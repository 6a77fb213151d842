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

// Package supervisor is the PTY supervisor itself: it owns the terminal
// guard, the PTY pair(s), the child process, the I/O multiplexer and the
// reaper, and it is the only package that wires all of them together.
package supervisor

import "os"

// SpawnOptions is the immutable input to Run, matching spec.md §3.
type SpawnOptions struct {
	// Command is the child's argv; Command[0] is the executable. Must be
	// non-empty.
	Command []string

	// StdinSource, if set, is an additional opened file the multiplexer
	// polls and forwards to the child's stdin (typically a FIFO).
	StdinSource *os.File

	// StdoutSink, if set, receives a tee of everything the multiplexer
	// forwards to the real stdout/stderr.
	StdoutSink *os.File

	// ScriptMode splits the child's stderr onto a second PTY and disables
	// OPOST, trading a faithful terminal replay for clean, separable
	// streams.
	ScriptMode bool

	// Flush syncs StdoutSink after every tee'd write. Defaults to true.
	Flush bool

	// Echo keeps ECHO enabled on the primary PTY's line discipline.
	// Defaults to true; ignored (effectively off) when the wrapper's own
	// stdin is not a TTY in script mode.
	Echo bool

	// Pager leaves the child's PAGER environment variable alone when true
	// (the default). When false, PAGER is forced to "cat".
	Pager bool

	// Raw puts the wrapper's controlling terminal into raw mode. Defaults
	// to true; forced off whenever ScriptMode is set.
	Raw bool
}

// DefaultOptions returns a SpawnOptions with every boolean at its spec.md
// §3 default.
func DefaultOptions(command []string) SpawnOptions {
	return SpawnOptions{
		Command: command,
		Flush:   true,
		Echo:    true,
		Pager:   true,
		Raw:     true,
	}
}
