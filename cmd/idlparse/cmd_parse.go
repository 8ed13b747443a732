package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/tallstoat/idlparser"
)

type cmdParse struct {
	all bool
}

func (*cmdParse) help() *commandHelp {
	return &commandHelp{
		usage:   "parse FILE...",
		summary: "Parse schema files and print the resolved model as YAML",
	}
}

func (cmd *cmdParse) flags(flags *pflag.FlagSet) {
	flags.BoolVarP(&cmd.all, "all", "a", false, "also print every imported file")
}

func (cmd *cmdParse) run(ctx context.Context, env *cmdEnv, argv []string) int {
	if len(argv) < 1 {
		fmt.Fprintln(env.stderr, "usage: idlparse parse FILE...")
		return 1
	}
	sess, logger, err := env.newSession()
	if err != nil {
		printError(env.stderr, err)
		return 1
	}

	var files []*idlparser.SchemaFile
	for _, path := range argv {
		if ctx.Err() != nil {
			return 1
		}
		pf, err := sess.Parse(path)
		if err != nil {
			printError(env.stderr, err)
			return 1
		}
		logger.WithField("file", pf.Path).Info("Parsed")
		files = append(files, pf)
	}
	if cmd.all {
		files = sess.Files()
	}

	summaries := make([]idlparser.FileSummary, 0, len(files))
	for _, pf := range files {
		summaries = append(summaries, pf.Summary())
	}

	enc := yaml.NewEncoder(env.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(summaries); err != nil {
		printError(env.stderr, err)
		return 1
	}
	if err := enc.Close(); err != nil {
		printError(env.stderr, err)
		return 1
	}
	return 0
}
