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
	"errors"
	"os"
	"os/exec"
	"sync/atomic"

	"golang.org/x/term"

	"github/sabouaram/ptywrap/pty"
	"github/sabouaram/ptywrap/tty"
)

// runner holds everything a single Run invocation needs to thread through
// the PTY factory, the child bootstrap, the multiplexer and the reaper.
type runner struct {
	opts SpawnOptions

	guard     tty.TTYSaver
	primary   *pty.Pair
	secondary *pty.Pair
	wb        *winchBridge

	readStdin    atomic.Bool
	wrapperIsTTY bool
}

// Run spawns opts.Command under a PTY and supervises it until it exits,
// returning the exit code spec.md §4.7/§6 prescribes. A non-nil error
// means a fatal supervisor error occurred before or during the run; per
// spec.md §7 the caller should report it and exit 1.
func Run(opts SpawnOptions) (int, error) {
	if len(opts.Command) == 0 {
		return 1, errors.New("supervisor: empty command")
	}

	r := &runner{opts: opts}

	guard, err := tty.New(os.Stdin, true)
	if err != nil {
		return 1, err
	}
	r.guard = guard
	defer tty.Restore(r.guard)
	tty.SignalHandler(r.guard)

	r.wrapperIsTTY = r.guard.IsTerminal()
	r.readStdin.Store(!r.wrapperIsTTY)

	if err := r.setupPTYs(); err != nil {
		return 1, err
	}
	defer r.secondary.Close()
	defer r.primary.Close()

	if err := r.applyLineDiscipline(); err != nil {
		return 1, err
	}

	if !opts.ScriptMode && opts.Raw {
		if rc, ok := r.guard.(tty.RawCapable); ok && rc.IsTerminal() {
			if err := rc.MakeRaw(); err != nil && !errors.Is(err, tty.ErrorNotTTY) {
				return 1, err
			}
		}
	}

	cmd, err := r.bootstrapChild()
	if err != nil {
		return 1, err
	}

	if r.wrapperIsTTY {
		r.wb = newWinchBridge()
		r.wb.arm()
		defer r.wb.disarm()
	}

	if err := r.multiplex(); err != nil {
		_ = cmd.Process.Kill()
		_, _ = reap(cmd)
		return 1, err
	}

	code, err := reap(cmd)
	r.primary.Close()
	if err != nil {
		return 1, err
	}
	return code, nil
}

func (r *runner) setupPTYs() error {
	primary, err := pty.Open()
	if err != nil {
		return err
	}
	r.primary = primary

	if r.wrapperIsTTY {
		_ = primary.InheritSize(os.Stdin)
	}

	if r.opts.ScriptMode {
		secondary, err := pty.Open()
		if err != nil {
			return err
		}
		r.secondary = secondary
		if term.IsTerminal(int(os.Stderr.Fd())) {
			_ = secondary.InheritSize(os.Stderr)
		}
	}
	return nil
}

func (r *runner) applyLineDiscipline() error {
	if r.opts.ScriptMode {
		if err := pty.ClearOPOST(r.primary.Slave); err != nil {
			return err
		}
		if err := pty.ClearOPOST(r.secondary.Slave); err != nil {
			return err
		}
	}

	echoOff := !r.opts.Echo || (r.opts.ScriptMode && !term.IsTerminal(int(os.Stdin.Fd())))
	if echoOff {
		if err := pty.ClearEcho(r.primary.Slave); err != nil {
			return err
		}
		if r.secondary != nil {
			if err := pty.ClearEcho(r.secondary.Slave); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *runner) bootstrapChild() (*exec.Cmd, error) {
	cmd := exec.Command(r.opts.Command[0], r.opts.Command[1:]...)
	cmd.Env = childEnv(r.opts)

	if err := pty.Spawn(cmd, r.primary, r.secondary); err != nil {
		return nil, err
	}
	return cmd, nil
}

// childEnv implements spec.md §4.4 step 1 and §6: PAGER is forced to "cat"
// when the caller asked to leave it alone is false, or in script mode; no
// other variable is mutated.
func childEnv(opts SpawnOptions) []string {
	env := os.Environ()
	if opts.Pager && !opts.ScriptMode {
		return env
	}
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if len(kv) >= 6 && kv[:6] == "PAGER=" {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "PAGER=cat")
}
