// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, s *streams, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
	args    cobra.PositionalArgs
}

type streams struct {
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx := context.Background()
	os.Exit(execute(ctx, &streams{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}, os.Args[1:]))
}

// execute runs the command line and returns the process exit status.
// Without a subcommand, "ucommc FILE" behaves like "ucommc generate FILE".
func execute(ctx context.Context, s *streams, args []string) int {
	rc := 0

	defaultCmd := &cmdGenerate{}
	ucommcCmd := &cobra.Command{
		Use:   "ucommc [options] FILE | COMMAND",
		Short: "Compile libucomm message definitions into C++",
		Args:  cobra.ArbitraryArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	// cobra reads os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	ucommcCmd.SetArgs(args)
	ucommcCmd.SetOut(s.stdout)
	ucommcCmd.SetErr(s.stderr)
	ucommcCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			fmt.Fprint(s.stderr, ucommcCmd.UsageString())
			rc = 1
			return nil
		}
		rc = defaultCmd.run(ctx, s, args)
		return nil
	}
	defaultCmd.flags(ucommcCmd.Flags())

	commands := []command{
		&cmdGenerate{},
		&cmdCheck{},
		&cmdLayout{},
		&cmdPlugin{},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			Args:  help.args,
			RunE: func(_ *cobra.Command, args []string) error {
				rc = cmd.run(ctx, s, args)
				return nil
			},
		}
		ucommcCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	if _, err := ucommcCmd.ExecuteC(); err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	return rc
}
