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

// Package console prints the wrapper's own diagnostic lines, as distinct
// from anything flowing through the child's stdout/stderr. It carries a
// single color, used only for the fatal-error line, and never touches the
// streams the supervisor forwards.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var fatalColor = color.New(color.FgRed, color.Bold)

// Fatal writes a red "ptywrap: <err>" line to w (typically os.Stderr).
// Color is skipped when w is an *os.File that is not a terminal; for any
// other writer, fatih/color's own NoColor auto-detection decides.
func Fatal(w io.Writer, err error) {
	if f, ok := w.(*os.File); ok && !isTerminal(f) {
		fmt.Fprintf(w, "ptywrap: %v\n", err)
		return
	}
	_, _ = fatalColor.Fprintf(w, "ptywrap: %v\n", err)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
