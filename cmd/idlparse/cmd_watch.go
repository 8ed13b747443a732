package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"

	"github.com/tallstoat/idlparser"
)

type cmdWatch struct {
	settle time.Duration
}

func (*cmdWatch) help() *commandHelp {
	return &commandHelp{
		usage:   "watch FILE",
		summary: "Re-parse a schema file whenever it or one of its imports changes",
	}
}

func (cmd *cmdWatch) flags(flags *pflag.FlagSet) {
	flags.DurationVar(&cmd.settle, "settle", 100*time.Millisecond, "quiet period before re-parsing")
}

func (cmd *cmdWatch) run(ctx context.Context, env *cmdEnv, argv []string) int {
	if len(argv) != 1 {
		fmt.Fprintln(env.stderr, "usage: idlparse watch FILE")
		return 1
	}
	root, err := filepath.Abs(argv[0])
	if err != nil {
		printError(env.stderr, err)
		return 1
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		printError(env.stderr, fmt.Errorf("create watcher: %w", err))
		return 1
	}
	defer watcher.Close()

	// Directories are watched rather than files, which survives editors
	// that save by renaming.
	watched := make(map[string]bool)
	watchDirs := func(files []*idlparser.SchemaFile) {
		dirs := []string{filepath.Dir(root)}
		for _, f := range files {
			dirs = append(dirs, filepath.Dir(f.Path))
		}
		for _, dir := range dirs {
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				printError(env.stderr, fmt.Errorf("watch directory: %w", err))
				continue
			}
			watched[dir] = true
		}
	}

	watchDirs(cmd.reparse(env, root))

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return 0
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			timer = time.After(cmd.settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			printError(env.stderr, err)
		case <-timer:
			timer = nil
			watchDirs(cmd.reparse(env, root))
		}
	}
}

// reparse parses root in a fresh session, since parsed files are immutable,
// and reports the outcome. It returns the files that were parsed.
func (cmd *cmdWatch) reparse(env *cmdEnv, root string) []*idlparser.SchemaFile {
	sess, logger, err := env.newSession()
	if err != nil {
		printError(env.stderr, err)
		return nil
	}
	start := time.Now()
	if _, err := sess.Parse(root); err != nil {
		printError(env.stderr, err)
		return sess.Files()
	}
	files := sess.Files()
	logger.WithField("elapsed", time.Since(start)).Debug("Re-parsed")
	fmt.Fprintf(env.stdout, "%s %s (%d files)\n", okColor.Sprint("ok"), root, len(files))
	return files
}
