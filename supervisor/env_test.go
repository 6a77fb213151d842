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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("childEnv", func() {
	BeforeEach(func() {
		Expect(os.Setenv("PAGER", "less")).To(Succeed())
	})

	AfterEach(func() {
		_ = os.Unsetenv("PAGER")
	})

	It("leaves PAGER untouched when Pager is true and not in script mode", func() {
		env := childEnv(SpawnOptions{Pager: true})
		Expect(env).To(ContainElement("PAGER=less"))
	})

	It("forces PAGER=cat when Pager is false", func() {
		env := childEnv(SpawnOptions{Pager: false})
		Expect(env).To(ContainElement("PAGER=cat"))
		Expect(env).ToNot(ContainElement("PAGER=less"))
	})

	It("forces PAGER=cat in script mode even when Pager is true", func() {
		env := childEnv(SpawnOptions{Pager: true, ScriptMode: true})
		Expect(env).To(ContainElement("PAGER=cat"))
	})

	It("never duplicates the PAGER variable", func() {
		env := childEnv(SpawnOptions{Pager: false})
		count := 0
		for _, kv := range env {
			if len(kv) >= 6 && kv[:6] == "PAGER=" {
				count++
			}
		}
		Expect(count).To(Equal(1))
	})
})
