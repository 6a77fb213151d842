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

package supervisor

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	ptylib "github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github/sabouaram/ptywrap/pty"
)

// winchBridge is the window-size bridge of spec.md §4.5: it observes
// SIGWINCH on the wrapper's own process and posts a pending flag the
// multiplexer drains at the top of each iteration.
type winchBridge struct {
	pending atomic.Bool
	ch      chan os.Signal
}

func newWinchBridge() *winchBridge {
	return &winchBridge{ch: make(chan os.Signal, 1)}
}

// arm starts observing SIGWINCH. The observing goroutine's only duty is to
// set the pending flag; the main loop does the actual work, matching the
// signal-to-main-loop handoff design note of spec.md §9.
func (w *winchBridge) arm() {
	signal.Notify(w.ch, unix.SIGWINCH)
	go func() {
		for range w.ch {
			w.pending.Store(true)
		}
	}()
}

func (w *winchBridge) disarm() {
	signal.Stop(w.ch)
	close(w.ch)
}

// resolve applies a pending resize to primary (and secondary, if present),
// then signals the primary's foreground process group. Failures reading
// the wrapper's own window size are ignored, matching spec.md §4.5
// ("screen resize while disconnected is benign").
func (w *winchBridge) resolve(primary, secondary *pty.Pair) {
	if !w.pending.Load() {
		return
	}
	w.pending.Store(false)

	ws, err := ptylib.GetsizeFull(os.Stdin)
	if err != nil {
		return
	}

	_ = primary.SetSize(ws)
	if secondary != nil {
		_ = secondary.SetSize(ws)
	}

	pgid, err := unix.IoctlGetInt(int(primary.Master.Fd()), unix.TIOCGPGRP)
	if err != nil {
		return
	}
	_ = syscall.Kill(-pgid, syscall.SIGWINCH)
}
