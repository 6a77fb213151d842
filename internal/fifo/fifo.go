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

// Package fifo is the path-creation convenience spec.md §1 scopes out of the
// supervisor: given a path, it ensures a FIFO exists there, creating one
// with mode 0600 if nothing does, and reusing it in place if it is already
// a FIFO. It never opens the path; the caller decides how and when to open
// it (non-blocking, per spec.md §9).
package fifo

import (
	"fmt"
	"os"
	"syscall"

	"github/sabouaram/ptywrap/internal/errs"
)

const mode = 0600

// EnsureExists makes sure path names a FIFO, creating one if nothing exists
// there yet. Any other filesystem error, or an existing non-FIFO entry, is
// fatal and returned wrapped.
func EnsureExists(path string) error {
	fi, err := os.Stat(path)
	switch {
	case err == nil:
		if fi.Mode()&os.ModeNamedPipe == 0 {
			return errs.New(errs.ErrFIFOCreate, nil, fmt.Sprintf("%s exists and is not a FIFO", path))
		}
		return nil
	case os.IsNotExist(err):
		if mkErr := syscall.Mkfifo(path, mode); mkErr != nil {
			return errs.New(errs.ErrFIFOCreate, mkErr, path)
		}
		return nil
	default:
		return errs.New(errs.ErrFIFOCreate, err, path)
	}
}
