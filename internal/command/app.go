// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/snapdiff/internal/config"
	"github.com/tfctl/snapdiff/internal/log"
	"github.com/tfctl/snapdiff/internal/meta"
)

// InitApp builds the root command for args.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	m := meta.Meta{
		Args:        args,
		Context:     ctx,
		StartingDir: sd,
	}

	// The subcommand is also the namespace used for config lookups.
	ns := m.Namespace()
	config.Config.Namespace = ns
	if cfg, err := config.Load(); err == nil {
		m.Config = cfg
	} else {
		log.Debugf("no config loaded: err=%v", err)
		m.Config = config.Type{Namespace: ns}
	}

	app := &cli.Command{
		Name:  "snapdiff",
		Usage: "structural diffs of observable state",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "snapdiff version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		diffCommandBuilder(m),
		flattenCommandBuilder(m),
		replayCommandBuilder(m),
		journalCommandBuilder(m),
		completionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
