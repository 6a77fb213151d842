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

package tty_test

import (
	"bytes"
	"strings"

	"github/sabouaram/ptywrap/tty"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("New", func() {
	It("defaults to os.Stdin when given a nil reader", func() {
		state, err := tty.New(nil, false)
		Expect(err).ToNot(HaveOccurred())
		Expect(state).ToNot(BeNil())
	})

	It("treats a bytes.Buffer as a non-terminal, not an error", func() {
		state, err := tty.New(bytes.NewBufferString("hello"), false)
		Expect(err).ToNot(HaveOccurred())
		Expect(state.IsTerminal()).To(BeFalse())
	})

	It("treats a strings.Reader as a non-terminal, not an error", func() {
		state, err := tty.New(strings.NewReader("hello"), false)
		Expect(err).ToNot(HaveOccurred())
		Expect(state.IsTerminal()).To(BeFalse())
	})
})

var _ = Describe("Restore", func() {
	It("is a no-op on a non-terminal guard", func() {
		state, err := tty.New(bytes.NewBufferString(""), false)
		Expect(err).ToNot(HaveOccurred())
		Expect(state.Restore()).ToNot(HaveOccurred())
	})

	It("tolerates being called on a descriptor that has since been closed", func() {
		f, err := newTempFile()
		Expect(err).ToNot(HaveOccurred())
		defer f.Close()

		state, err := tty.New(f, false)
		Expect(err).ToNot(HaveOccurred())

		Expect(f.Close()).To(Succeed())
		Expect(state.Restore()).ToNot(HaveOccurred())
	})

	It("is safe to call through the package-level helper", func() {
		state, err := tty.New(bytes.NewBufferString(""), false)
		Expect(err).ToNot(HaveOccurred())
		Expect(func() { tty.Restore(state) }).ToNot(Panic())
	})

	It("does nothing when passed a nil TTYSaver", func() {
		Expect(func() { tty.Restore(nil) }).ToNot(Panic())
	})
})

var _ = Describe("Signal", func() {
	It("returns immediately when signal handling is disabled", func() {
		state, err := tty.New(bytes.NewBufferString(""), false)
		Expect(err).ToNot(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- state.Signal() }()

		Eventually(done).Should(Receive(BeNil()))
	})
})

var _ = Describe("SignalHandler", func() {
	It("does not block the caller", func() {
		state, err := tty.New(bytes.NewBufferString(""), true)
		Expect(err).ToNot(HaveOccurred())

		done := make(chan struct{})
		go func() {
			tty.SignalHandler(state)
			close(done)
		}()
		Eventually(done).Should(BeClosed())
	})

	It("does nothing when passed a nil TTYSaver", func() {
		Expect(func() { tty.SignalHandler(nil) }).ToNot(Panic())
	})
})

var _ = Describe("MakeRaw", func() {
	It("reports ErrorNotTTY on a non-terminal guard", func() {
		state, err := tty.New(bytes.NewBufferString(""), false)
		Expect(err).ToNot(HaveOccurred())

		rc, ok := state.(tty.RawCapable)
		Expect(ok).To(BeTrue())
		Expect(rc.MakeRaw()).To(MatchError(tty.ErrorNotTTY))
	})
})

var _ = Describe("WinSize", func() {
	It("reports ErrorNotTTY on a non-terminal guard", func() {
		state, err := tty.New(bytes.NewBufferString(""), false)
		Expect(err).ToNot(HaveOccurred())

		rc, ok := state.(tty.RawCapable)
		Expect(ok).To(BeTrue())
		_, _, err = rc.WinSize()
		Expect(err).To(MatchError(tty.ErrorNotTTY))
	})
})

var _ = Describe("sentinel errors", func() {
	It("are distinct and carry a useful message", func() {
		Expect(tty.ErrorNotTTY.Error()).To(ContainSubstring("terminal"))
		Expect(tty.ErrorTTYFailed.Error()).To(ContainSubstring("state"))
		Expect(tty.ErrorDevTTYFail.Error()).To(ContainSubstring("/dev/tty"))
	})
})
