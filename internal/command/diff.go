// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/snapdiff/internal/differ"
	"github.com/tfctl/snapdiff/internal/dispatch"
	"github.com/tfctl/snapdiff/internal/log"
	"github.com/tfctl/snapdiff/internal/meta"
	"github.com/tfctl/snapdiff/internal/output"
	"github.com/tfctl/snapdiff/internal/store"
)

// diffCommandAction is the action handler for the "diff" subcommand. OLD
// seeds a store and NEW is dispatched as a single transaction, so the result
// is exactly what a store subscriber would see.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	log.Debugf("diff args: args=%v", args)
	if len(args) != 2 { //nolint:mnd
		return fmt.Errorf("diff requires OLD and NEW documents, got %d", len(args))
	}
	if args[0] == "-" && args[1] == "-" {
		return errors.New("only one document can be read from stdin")
	}

	oldDoc, err := readDocument(args[0], stdin(cmd))
	if err != nil {
		return err
	}
	newDoc, err := readDocument(args[1], stdin(cmd))
	if err != nil {
		return err
	}

	format := cmd.String("output")
	if format == "ascii" {
		return renderDelta(cmd, oldDoc, newDoc)
	}

	set, err := diffDocuments(oldDoc, newDoc, store.Transaction{
		ID:       cmd.String("tx"),
		ActionID: cmd.String("action"),
	})
	if err != nil {
		return err
	}

	w := stdout(cmd)
	switch format {
	case "raw":
		fmt.Fprintln(w, string(differ.EncodeJSON(set.Changes)))
		return nil
	case "log":
		fmt.Fprintln(w, set.LogLine())
		return nil
	}

	if format == "text" && cmd.Bool("titles") {
		added, changed, removed := set.Changes.Count()
		cmd.Metadata["header"] = fmt.Sprintf("Diff summary: %d added, %d changed, %d removed", added, changed, removed)
	}

	return output.SliceDiceSpit(output.DiffRows(set.Changes), output.DiffAttrs(), cmd, w)
}

// diffDocuments runs one transaction through a synchronous store and returns
// the published diff set.
func diffDocuments(oldDoc, newDoc []byte, tx store.Transaction) (store.DiffSet, error) {
	s := store.New(json.RawMessage(oldDoc), store.WithMode(dispatch.Sync))
	defer s.Close()

	s.Dispatch(&tx, func(json.RawMessage) json.RawMessage {
		return json.RawMessage(newDoc)
	})

	set, ok := s.DiffSets().Latest()
	if !ok {
		return store.DiffSet{}, errors.New("no diff was published")
	}
	return set, nil
}

// renderDelta prints the annotated document delta.
func renderDelta(cmd *cli.Command, oldDoc, newDoc []byte) error {
	out, modified, err := differ.RenderDelta(oldDoc, newDoc, cmd.Bool("color"))
	if err != nil {
		return err
	}
	if !modified {
		log.Debug("documents are identical")
		return nil
	}
	fmt.Fprint(stdout(cmd), out)
	return nil
}

// diffCommandBuilder constructs the "diff" subcommand.
func diffCommandBuilder(meta meta.Meta) *cli.Command {
	ns := "diff"
	return &cli.Command{
		Name:      ns,
		Usage:     "diff two JSON or YAML documents",
		UsageText: "snapdiff diff [options] OLD NEW",
		Metadata:  map[string]any{"meta": meta},
		Flags: append(
			NewGlobalFlags(ns, meta.Config.Source, diffOutputs),
			NewTransactionFlags()...,
		),
		Action: diffCommandAction,
	}
}
