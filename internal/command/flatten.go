// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/snapdiff/internal/meta"
	"github.com/tfctl/snapdiff/internal/output"
	"github.com/tfctl/snapdiff/internal/snapshot"
)

// flattenCommandAction is the action handler for the "flatten" subcommand.
func flattenCommandAction(ctx context.Context, cmd *cli.Command) error {
	in := "-"
	if cmd.Args().Len() > 0 {
		in = cmd.Args().First()
	}

	doc, err := readDocument(in, stdin(cmd))
	if err != nil {
		return err
	}

	snap, err := flattenAt(doc, cmd.String("path"))
	if err != nil {
		return err
	}

	w := stdout(cmd)
	if cmd.String("output") == "raw" {
		b, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		fmt.Fprintln(w, string(b))
		return nil
	}

	if cmd.String("output") == "text" && cmd.Bool("titles") {
		cmd.Metadata["header"] = fmt.Sprintf("Snapshot: %d paths", len(snap))
	}
	return output.SliceDiceSpit(output.SnapshotRows(snap), output.SnapshotAttrs(), cmd, w)
}

// flattenAt flattens the part of doc found at path. Result paths are still
// rooted at the document.
func flattenAt(doc []byte, path string) (snapshot.Snapshot, error) {
	if path == "" {
		return snapshot.FlattenJSON(doc)
	}

	res := snapshot.Drill(doc, path)
	if !res.Exists() {
		return nil, fmt.Errorf("path not found: %s", path)
	}

	sub, err := snapshot.FlattenJSON([]byte(res.Raw))
	if err != nil {
		return nil, err
	}

	prefix := snapshot.NormalizePath(path)
	out := make(snapshot.Snapshot, len(sub))
	for p, v := range sub {
		if p == "" {
			out[prefix] = v
			continue
		}
		out[snapshot.JoinPath(prefix, p)] = v
	}
	return out, nil
}

// flattenCommandBuilder constructs the "flatten" subcommand.
func flattenCommandBuilder(meta meta.Meta) *cli.Command {
	ns := "flatten"
	return &cli.Command{
		Name:      ns,
		Usage:     "show the flattened snapshot of a JSON or YAML document",
		UsageText: "snapdiff flatten [options] [DOC]",
		Metadata:  map[string]any{"meta": meta},
		Flags: append(
			NewGlobalFlags(ns, meta.Config.Source, flattenOutputs),
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "only flatten the value at this path, e.g. array[0].label",
			},
		),
		Action: flattenCommandAction,
	}
}
