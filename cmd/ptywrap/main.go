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

package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github/sabouaram/ptywrap/console"
	"github/sabouaram/ptywrap/internal/fifo"
	"github/sabouaram/ptywrap/supervisor"
)

const envPrefix = "PTYWRAP"

// nonblockFlag mirrors spec.md §9's non-blocking-open requirement for the
// input file: a FIFO with no current writer would otherwise block the
// wrapper in open(2) before the supervisor starts, rather than leaving the
// waiting to the retry-safe read loop the multiplexer expects.
const nonblockFlag = syscall.O_NONBLOCK

var log = logrus.New()

func main() {
	os.Exit(run())
}

func run() int {
	var (
		outPath  string
		truncate bool
		script   bool
		noEcho   bool
		noPager  bool
		noRaw    bool
		inPath   string
		quiet    bool
	)

	root := &cobra.Command{
		Use:     "ptywrap -- COMMAND [ARG...]",
		Short:   "run a command under a pseudo-terminal, with optional logging and remote input",
		Version: "0.1.0",
		Args:    cobra.ArbitraryArgs,
	}

	flags := root.Flags()
	flags.StringVar(&outPath, "out", "", "tee the child's terminal output to this file")
	flags.BoolVar(&truncate, "truncate", false, "truncate --out instead of appending to it")
	flags.BoolVar(&script, "script-mode", false, "split stderr onto a second pty and disable OPOST")
	flags.BoolVar(&noEcho, "no-echo", false, "disable ECHO on the primary pty's line discipline")
	flags.BoolVar(&noPager, "no-pager", false, "force PAGER=cat in the child's environment")
	flags.BoolVar(&noRaw, "no-raw", false, "leave the wrapper's controlling terminal alone")
	flags.StringVarP(&inPath, "in", "i", "", "feed the child's stdin from this FIFO or file")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress the wrapper's own warnings; fatal errors are still logged")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for _, name := range []string{"out", "truncate", "script-mode", "no-echo", "no-pager", "no-raw", "in", "quiet"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	var exitCode int
	root.RunE = func(cmd *cobra.Command, args []string) error {
		childArgv := childCommand(cmd, args)
		if len(childArgv) == 0 {
			return fmt.Errorf("ptywrap: no command given after --")
		}

		if v.GetBool("quiet") {
			log.SetLevel(logrus.ErrorLevel)
		}

		opts := supervisor.SpawnOptions{
			Command:    childArgv,
			ScriptMode: v.GetBool("script-mode"),
			Flush:      true,
			Echo:       !v.GetBool("no-echo"),
			Pager:      !v.GetBool("no-pager"),
			Raw:        !v.GetBool("no-raw"),
		}

		if out := v.GetString("out"); out != "" {
			f, err := openLog(out, v.GetBool("truncate"))
			if err != nil {
				return err
			}
			defer f.Close()
			opts.StdoutSink = f
		}

		if in := v.GetString("in"); in != "" {
			if err := fifo.EnsureExists(in); err != nil {
				return err
			}
			f, err := os.OpenFile(in, os.O_RDONLY|nonblockFlag, 0)
			if err != nil {
				return err
			}
			defer f.Close()
			opts.StdinSource = f
		}

		code, err := supervisor.Run(opts)
		if err != nil {
			log.WithError(err).Error("supervisor exited with a fatal error")
			exitCode = 1
			return nil
		}
		if code >= 128 {
			log.WithField("code", code).Warn("child terminated by signal")
		}
		exitCode = code
		return nil
	}

	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		console.Fatal(os.Stderr, err)
		return 1
	}
	return exitCode
}

// childCommand splits cobra's parsed args on "--": anything after it is the
// child program's own argv, untouched by pflag parsing.
func childCommand(cmd *cobra.Command, args []string) []string {
	if d := cmd.ArgsLenAtDash(); d >= 0 {
		return args[d:]
	}
	return args
}

func openLog(path string, truncate bool) (*os.File, error) {
	flag := os.O_WRONLY | os.O_CREATE
	if truncate {
		flag |= os.O_TRUNC
	} else {
		flag |= os.O_APPEND
	}
	return os.OpenFile(path, flag, 0644)
}
