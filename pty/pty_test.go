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

package pty_test

import (
	"io"
	"os/exec"
	"time"

	"github/sabouaram/ptywrap/pty"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Open", func() {
	It("allocates a usable master/slave pair", func() {
		p, err := pty.Open()
		Expect(err).ToNot(HaveOccurred())
		defer p.Close()

		Expect(p.Master).ToNot(BeNil())
		Expect(p.Slave).ToNot(BeNil())
	})
})

var _ = Describe("Close", func() {
	It("tolerates being called twice", func() {
		p, err := pty.Open()
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Close()).To(Succeed())
		Expect(p.Close()).To(Succeed())
	})

	It("is safe on a nil pair", func() {
		var p *pty.Pair
		Expect(p.Close()).To(Succeed())
	})
})

var _ = Describe("SetSize", func() {
	It("installs a window size without error", func() {
		p, err := pty.Open()
		Expect(err).ToNot(HaveOccurred())
		defer p.Close()

		Expect(p.SetSize(&pty.Winsize{Rows: 40, Cols: 100})).To(Succeed())
	})
})

var _ = Describe("ClearOPOST and ClearEcho", func() {
	It("clears OPOST on the slave's termios", func() {
		p, err := pty.Open()
		Expect(err).ToNot(HaveOccurred())
		defer p.Close()

		Expect(pty.ClearOPOST(p.Slave)).To(Succeed())

		t, err := p.Attr()
		Expect(err).ToNot(HaveOccurred())
		Expect(t.Oflag & unixOPOST()).To(BeZero())
	})

	It("clears ECHO on the slave's termios", func() {
		p, err := pty.Open()
		Expect(err).ToNot(HaveOccurred())
		defer p.Close()

		Expect(pty.ClearEcho(p.Slave)).To(Succeed())

		t, err := p.Attr()
		Expect(err).ToNot(HaveOccurred())
		Expect(t.Lflag & unixECHO()).To(BeZero())
	})
})

var _ = Describe("Spawn", func() {
	It("starts the child with the primary slave as its controlling terminal", func() {
		primary, err := pty.Open()
		Expect(err).ToNot(HaveOccurred())
		defer primary.Close()

		cmd := exec.Command("/bin/echo", "hello")
		Expect(pty.Spawn(cmd, primary, nil)).To(Succeed())

		buf := make([]byte, 64)
		_ = primary.Master.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _ := primary.Master.Read(buf)
		Expect(string(buf[:n])).To(ContainSubstring("hello"))

		_ = cmd.Wait()
	})

	It("routes stderr to the secondary pty in script mode", func() {
		primary, err := pty.Open()
		Expect(err).ToNot(HaveOccurred())
		defer primary.Close()

		secondary, err := pty.Open()
		Expect(err).ToNot(HaveOccurred())
		defer secondary.Close()

		cmd := exec.Command("/bin/sh", "-c", "echo out; echo err 1>&2")
		Expect(pty.Spawn(cmd, primary, secondary)).To(Succeed())

		errBuf := make([]byte, 64)
		_ = secondary.Master.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, rerr := secondary.Master.Read(errBuf)
		if rerr != io.EOF {
			Expect(string(errBuf[:n])).To(ContainSubstring("err"))
		}

		_ = cmd.Wait()
	})
})
