// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tfctl/snapdiff/internal/command"
	"github.com/tfctl/snapdiff/internal/config"
	"github.com/tfctl/snapdiff/internal/log"
	"github.com/tfctl/snapdiff/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs expands config sets and drops flags overridden later on
// the command line.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		return args
	}
	args = processSetOnly(args)
	log.Debugf("args after set processing: args=%v", args)
	return deduplicateFlags(args)
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2 //nolint:mnd
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}

// processSetOnly expands an explicit @set argument in place with the
// <command>.<set> config entries. Without one, <command>.defaults is inserted
// right after the command so that anything on the command line wins.
func processSetOnly(args []string) []string {
	if len(args) < 2 { //nolint:mnd
		return args
	}

	idx := 2
	for i, a := range args[idx:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			removeIdx := idx + i
			setArgs, _ := config.GetStringSlice(args[1] + "." + a[1:])
			args = append(args[:removeIdx], args[removeIdx+1:]...)
			return injectConfigSet(args, setArgs, removeIdx)
		}
	}

	defaults, _ := config.GetStringSlice(args[1] + ".defaults")
	return injectConfigSet(args, defaults, idx)
}

// injectConfigSet splits each entry on whitespace and inserts the fields at
// insertIdx.
func injectConfigSet(args []string, entries []string, insertIdx int) []string {
	if len(entries) == 0 {
		return args
	}

	var expanded []string
	for _, entry := range entries {
		expanded = append(expanded, strings.Fields(entry)...)
	}

	out := make([]string, 0, len(args)+len(expanded))
	out = append(out, args[:insertIdx]...)
	out = append(out, expanded...)
	return append(out, args[insertIdx:]...)
}

// deduplicateFlags keeps only the last occurrence of each flag after the
// command. A flag owns the following token when it has no "=" and that token
// is not itself a flag. Everything after "--" is left alone.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 { //nolint:mnd
		return args
	}

	type group struct {
		key    string
		tokens []string
	}

	var groups []group
	var tail []string
	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		if a == "--" {
			tail = rest[i:]
			break
		}
		if !isFlag(a) {
			groups = append(groups, group{tokens: []string{a}})
			continue
		}

		g := group{key: flagKey(a), tokens: []string{a}}
		if !strings.Contains(a, "=") && i+1 < len(rest) && !isFlag(rest[i+1]) && rest[i+1] != "--" {
			g.tokens = append(g.tokens, rest[i+1])
			i++
		}
		groups = append(groups, g)
	}

	last := map[string]int{}
	for i, g := range groups {
		if g.key != "" {
			last[g.key] = i
		}
	}

	out := append([]string{}, args[:2]...)
	for i, g := range groups {
		if g.key != "" && last[g.key] != i {
			continue
		}
		out = append(out, g.tokens...)
	}
	return append(out, tail...)
}

// isFlag reports whether a looks like a flag. A lone "-" is the stdin
// document, not a flag.
func isFlag(a string) bool {
	return len(a) > 1 && a[0] == '-'
}

func flagKey(a string) string {
	key := strings.TrimLeft(a, "-")
	if i := strings.Index(key, "="); i >= 0 {
		key = key[:i]
	}
	return key
}
