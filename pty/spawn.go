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

package pty

import (
	"os/exec"
	"syscall"

	"github/sabouaram/ptywrap/internal/errs"
)

// Spawn starts cmd with its stdin/stdout attached to primary's slave and,
// when secondary is non-nil (script mode), its stderr attached to
// secondary's slave instead of primary's. Both slaves are closed in the
// parent once the child has them, matching the fork/exec bootstrap of
// spec.md §4.4: the child becomes a session leader and acquires the
// primary pty as its controlling terminal.
func Spawn(cmd *exec.Cmd, primary, secondary *Pair) error {
	cmd.Stdin = primary.Slave
	cmd.Stdout = primary.Slave
	if secondary != nil {
		cmd.Stderr = secondary.Slave
	} else {
		cmd.Stderr = primary.Slave
	}

	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true
	cmd.SysProcAttr.Ctty = 0

	if err := cmd.Start(); err != nil {
		return errs.New(errs.ErrForkExec, err, cmd.Path)
	}

	if err := primary.Slave.Close(); err != nil {
		return errs.New(errs.ErrForkExec, err, "close primary slave in parent")
	}
	primary.Slave = nil

	if secondary != nil {
		if err := secondary.Slave.Close(); err != nil {
			return errs.New(errs.ErrForkExec, err, "close secondary slave in parent")
		}
		secondary.Slave = nil
	}

	return nil
}
