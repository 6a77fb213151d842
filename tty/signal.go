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

import (
	"os"
	"os/signal"
	"syscall"
)

// Signal blocks until SIGINT or SIGTERM arrives, restores the terminal, then
// lets the signal finish the job: it resets the signal's disposition to the
// kernel default and re-raises it against this process, so the wrapper dies
// the way it would have if Go had never intercepted the signal in the first
// place. A guard built with signal handling disabled returns immediately
// without waiting on anything.
func (g *guard) Signal() error {
	if !g.signal {
		return nil
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	sig := <-ch
	signal.Stop(ch)

	g.mu.Lock()
	err := g.restoreLocked()
	g.mu.Unlock()

	signal.Reset(sig)
	_ = syscall.Kill(os.Getpid(), sig.(syscall.Signal))

	return err
}

// Restore is a defer-friendly helper over TTYSaver.Restore that swallows the
// error: by the time a caller reaches for it (process teardown, a deferred
// cleanup after a panic recovery) there is rarely anything useful left to do
// with a restore failure beyond logging it, which callers can still do by
// calling Restore() on the saver directly instead.
func Restore(s TTYSaver) {
	if s == nil {
		return
	}
	_ = s.Restore()
}

// SignalHandler starts s.Signal() in its own goroutine and returns
// immediately; it exists so callers can arm signal-triggered restoration
// without blocking their own control flow.
func SignalHandler(s TTYSaver) {
	if s == nil {
		return
	}
	go func() {
		_ = s.Signal()
	}()
}
