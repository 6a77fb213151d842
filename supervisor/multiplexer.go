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

// The multiplexer translates spec.md §4.6's select(2)-over-fixed-descriptor-set
// loop into the idiomatic Go shape: one reader goroutine per source funnels
// chunks into a channel, and a single central goroutine drains them with a
// select statement. The funnel buys two things a literal select(2) loop
// would need a mutex for: every tee'd write to the log file happens from
// the same goroutine (so no chunk from one stream can interleave with a
// chunk from another mid-write), and winch handling, EOF bookkeeping and
// the 1-second idle tick all stay in one place.
package supervisor

import (
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const bufSize = 4096

type sourceMsg struct {
	data []byte
	eof  bool  // benign end of this source (EOF or EIO); keep going, or finish cleanly
	err  error // unrecoverable read error; must propagate out of multiplex unchanged
}

func isEIO(err error) bool {
	return errors.Is(err, syscall.EIO)
}

// primaryReader feeds the primary PTY master. EOF and EIO both mean the
// child went away and are reported as a benign done (spec.md §4.6: "EOF or
// EIO sets done"). Any other read error is an unrecoverable supervisor
// error per spec.md §7 and is reported with its underlying cause intact.
func primaryReader(f *os.File, out chan<- sourceMsg) {
	buf := make([]byte, bufSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			out <- sourceMsg{data: append([]byte(nil), buf[:n]...)}
		}
		if err != nil {
			if err == io.EOF || isEIO(err) {
				out <- sourceMsg{eof: true}
			} else {
				out <- sourceMsg{err: err}
			}
			return
		}
	}
}

// stdinReader feeds the wrapper's real stdin. EOF and EIO both disarm
// polling of this source without being fatal to the run (spec.md §4.6).
// Any other read error is an unrecoverable supervisor error per spec.md §7
// and is reported with its underlying cause intact.
func stdinReader(f *os.File, out chan<- sourceMsg) {
	buf := make([]byte, bufSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			out <- sourceMsg{data: append([]byte(nil), buf[:n]...)}
		}
		if err != nil {
			if err == io.EOF || isEIO(err) {
				out <- sourceMsg{eof: true}
			} else {
				out <- sourceMsg{err: err}
			}
			return
		}
	}
}

// silentReader feeds the optional input file and the secondary stderr
// master. Both sources treat EOF and any read error as a silent no-op per
// spec.md §4.6; a short backoff keeps an idle FIFO or a closed PTY from
// turning into a busy loop.
func silentReader(f *os.File, out chan<- sourceMsg) {
	buf := make([]byte, bufSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			out <- sourceMsg{data: append([]byte(nil), buf[:n]...)}
		}
		if err != nil {
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// multiplex runs the loop until the primary master signals done (EOF or
// EIO), then returns. EOF or EIO on real stdin does not end the loop: it
// only injects the EOF sequence and stops polling stdin.
func (r *runner) multiplex() error {
	primaryCh := make(chan sourceMsg)
	go primaryReader(r.primary.Master, primaryCh)

	var stdinCh chan sourceMsg
	var inputCh chan sourceMsg
	if r.opts.StdinSource != nil {
		inputCh = make(chan sourceMsg)
		go silentReader(r.opts.StdinSource, inputCh)
	}

	var stderrCh chan sourceMsg
	if r.secondary != nil {
		stderrCh = make(chan sourceMsg)
		go silentReader(r.secondary.Master, stderrCh)
	}

	timer := time.NewTimer(time.Second)
	defer timer.Stop()

	for {
		if r.wb != nil {
			r.wb.resolve(r.primary, r.secondary)
		}

		if stdinCh == nil && (r.readStdin.Load() || r.wrapperIsTTY) {
			stdinCh = make(chan sourceMsg)
			r.readStdin.Store(true)
			go stdinReader(os.Stdin, stdinCh)
		}

		drainTimer(timer)
		timer.Reset(time.Second)

		select {
		case msg, ok := <-stdinCh:
			if !ok {
				stdinCh = nil
				continue
			}
			if msg.err != nil {
				return msg.err
			}
			if msg.eof {
				r.injectEOFSequence()
				r.readStdin.Store(false)
				stdinCh = nil
				continue
			}
			if err := writeAll(r.primary.Master, msg.data); err != nil {
				return err
			}

		case msg, ok := <-inputCh:
			if !ok {
				inputCh = nil
				continue
			}
			if len(msg.data) > 0 {
				if err := writeAll(r.primary.Master, msg.data); err != nil {
					return err
				}
			}

		case msg, ok := <-stderrCh:
			if !ok {
				stderrCh = nil
				continue
			}
			if len(msg.data) > 0 {
				if err := r.forwardStderr(msg.data); err != nil {
					return err
				}
			}

		case msg, ok := <-primaryCh:
			if !ok {
				return nil
			}
			if msg.err != nil {
				return msg.err
			}
			if msg.eof {
				return nil
			}
			if len(msg.data) > 0 {
				if err := r.forwardStdout(msg.data); err != nil {
					return err
				}
			}

		case <-timer.C:
			continue
		}
	}
}

func drainTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// injectEOFSequence implements spec.md §4.6's "EOF-sequence injection":
// when real stdin hits EOF and the pty is still in canonical mode, write
// its configured VEOF character to the master so the child's own read
// returns zero, mirroring interactive Ctrl-D.
func (r *runner) injectEOFSequence() {
	t, err := r.primary.Attr()
	if err != nil {
		return
	}
	if t.Lflag&unix.ICANON == 0 {
		return
	}
	veof := t.Cc[unix.VEOF]
	if veof == 0 {
		return
	}
	_ = writeAll(r.primary.Master, []byte{veof})
}

func (r *runner) forwardStdout(data []byte) error {
	return forwardAndLog(os.Stdout, r.logSink(), r.flushSink(), data)
}

func (r *runner) forwardStderr(data []byte) error {
	return forwardAndLog(os.Stderr, r.logSink(), r.flushSink(), data)
}

func (r *runner) logSink() io.Writer {
	if r.opts.StdoutSink == nil {
		return nil
	}
	return r.opts.StdoutSink
}

func (r *runner) flushSink() func() error {
	if r.opts.StdoutSink == nil || !r.opts.Flush {
		return nil
	}
	return r.opts.StdoutSink.Sync
}
