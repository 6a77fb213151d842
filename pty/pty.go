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

// Package pty is the PTY factory of spec.md §4.2: it allocates master/slave
// pairs for the child's primary terminal and, in script mode, a second pair
// dedicated to the child's stderr, and it adjusts the line discipline of the
// slave side the way the primary controlling terminal would be adjusted.
package pty

import (
	"errors"
	"os"

	ptylib "github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github/sabouaram/ptywrap/internal/errs"
)

// Winsize is a thin alias over the library's window-size struct so callers
// outside this package never need to import creack/pty directly.
type Winsize = ptylib.Winsize

// Pair holds both ends of an allocated pseudo-terminal: Master is kept open by
// the supervisor for the life of the child, Slave is handed to the child
// process and closed in the parent once the child has it.
type Pair struct {
	Master *os.File
	Slave  *os.File
}

// Open allocates a fresh master/slave pair.
func Open() (*Pair, error) {
	m, s, err := ptylib.Open()
	if err != nil {
		return nil, errs.New(errs.ErrPTYAlloc, err, "")
	}
	return &Pair{Master: m, Slave: s}, nil
}

// Close releases both ends of the pair. It tolerates either end already
// being closed, which happens routinely: the parent closes Slave right
// after the child inherits it.
func (p *Pair) Close() error {
	if p == nil {
		return nil
	}
	var first error
	if p.Slave != nil {
		if err := p.Slave.Close(); err != nil && !errors.Is(err, os.ErrClosed) && first == nil {
			first = err
		}
	}
	if p.Master != nil {
		if err := p.Master.Close(); err != nil && !errors.Is(err, os.ErrClosed) && first == nil {
			first = err
		}
	}
	return first
}

// SetSize installs ws on the pair's master, which propagates it to the
// slave's line discipline and raises SIGWINCH in the child's process group.
func (p *Pair) SetSize(ws *Winsize) error {
	if err := ptylib.Setsize(p.Master, ws); err != nil {
		return errs.New(errs.ErrTermAttr, err, "resize pty")
	}
	return nil
}

// InheritSize copies local's current window size onto the pair's master,
// matching spec.md §4.2's "inherit the invoking terminal's size at startup".
func (p *Pair) InheritSize(local *os.File) error {
	if err := ptylib.InheritSize(local, p.Master); err != nil {
		return errs.New(errs.ErrTermAttr, err, "inherit pty size")
	}
	return nil
}

// ClearOPOST removes OPOST from the slave's termios, so the log receives
// raw LF rather than CRLF-translated output; spec.md §4.2 applies this only
// in script mode.
func ClearOPOST(slave *os.File) error {
	return mutateTermios(slave, func(t *unix.Termios) {
		t.Oflag &^= unix.OPOST
	})
}

// ClearEcho removes ECHO (and the related echo-rendering flags) from the
// slave's termios; spec.md §4.2 applies this when the echo option is off,
// or when script mode is on and the wrapper's own stdin is not a TTY.
func ClearEcho(slave *os.File) error {
	return mutateTermios(slave, func(t *unix.Termios) {
		t.Lflag &^= unix.ECHO | unix.ECHOCTL | unix.ECHOKE | unix.ECHOE | unix.ECHOK
	})
}

func mutateTermios(slave *os.File, mutate func(*unix.Termios)) error {
	fd := int(slave.Fd())
	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return errs.New(errs.ErrTermAttr, err, "get slave termios")
	}
	mutate(t)
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, t); err != nil {
		return errs.New(errs.ErrTermAttr, err, "set slave termios")
	}
	return nil
}

// Attr reads the pair's current line-discipline attributes via the master
// end, which on Linux and the BSDs reflects the slave's termios even after
// the slave itself has been closed in the parent.
func (p *Pair) Attr() (*unix.Termios, error) {
	t, err := unix.IoctlGetTermios(int(p.Master.Fd()), ioctlGetTermios)
	if err != nil {
		return nil, errs.New(errs.ErrTermAttr, err, "get master termios")
	}
	return t, nil
}
