package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

type cmdFormat struct {
	sorted bool
	write  bool
}

func (*cmdFormat) help() *commandHelp {
	return &commandHelp{
		usage:   "fmt FILE",
		summary: "Print a schema file in canonical form",
	}
}

func (cmd *cmdFormat) flags(flags *pflag.FlagSet) {
	flags.BoolVarP(&cmd.sorted, "sorted", "s", false, "order declarations alphabetically")
	flags.BoolVarP(&cmd.write, "write", "w", false, "write the result back to the file")
}

func (cmd *cmdFormat) run(_ context.Context, env *cmdEnv, argv []string) int {
	if len(argv) != 1 {
		fmt.Fprintln(env.stderr, "usage: idlparse fmt FILE")
		return 1
	}
	sess, _, err := env.newSession()
	if err != nil {
		printError(env.stderr, err)
		return 1
	}
	pf, err := sess.Parse(argv[0])
	if err != nil {
		printError(env.stderr, err)
		return 1
	}

	var buf bytes.Buffer
	if cmd.sorted {
		err = pf.GenerateSorted(&buf)
	} else {
		err = pf.Generate(&buf)
	}
	if err != nil {
		printError(env.stderr, err)
		return 1
	}

	if cmd.write {
		if err := afero.WriteFile(env.fs, pf.Path, buf.Bytes(), 0o644); err != nil {
			printError(env.stderr, err)
			return 1
		}
		return 0
	}
	if _, err := env.stdout.Write(buf.Bytes()); err != nil {
		printError(env.stderr, err)
		return 1
	}
	return 0
}
