// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/snapdiff/internal/attrs"
	"github.com/tfctl/snapdiff/internal/journal"
	"github.com/tfctl/snapdiff/internal/log"
	"github.com/tfctl/snapdiff/internal/meta"
	"github.com/tfctl/snapdiff/internal/output"
)

// ErrJournalDisabled is returned when SNAPDIFF_JOURNAL turns journaling off or
// no journal directory can be resolved.
var ErrJournalDisabled = errors.New("journal is disabled")

// journalCommandAction is the action handler for the "journal" subcommand.
func journalCommandAction(ctx context.Context, cmd *cli.Command) error {
	local, err := journal.NewLocal(cmd.String("dir"))
	if err != nil {
		return err
	}
	if local == nil {
		return ErrJournalDisabled
	}

	if cmd.IsSet("purge") {
		if err := local.Purge(cmd.Int("purge")); err != nil {
			return err
		}
	}

	if cmd.IsSet("seq") {
		return showJournalEntry(cmd, local, uint64(cmd.Int("seq")))
	}

	entries, err := local.List()
	if err != nil {
		return err
	}
	log.Debugf("journal entries: dir=%s, count=%d", local.Base, len(entries))

	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]interface{}{
			"seq":     float64(e.Seq),
			"tx":      e.TransactionID,
			"action":  e.ActionID,
			"changes": len(payloadRows(e)),
		})
	}

	if cmd.String("output") == "text" && cmd.Bool("titles") {
		cmd.Metadata["header"] = fmt.Sprintf("Journal: %s", local.Base)
	}
	return output.SliceDiceSpit(rows, attrs.Defaults("seq", "tx", "action", "changes"), cmd, stdout(cmd))
}

// showJournalEntry prints one recorded diff.
func showJournalEntry(cmd *cli.Command, local *journal.Local, seq uint64) error {
	e, ok := local.Read(seq)
	if !ok {
		return fmt.Errorf("journal entry not found: %d", seq)
	}

	w := stdout(cmd)
	switch cmd.String("output") {
	case "raw":
		fmt.Fprintln(w, string(e.Payload))
		return nil
	case "log":
		fmt.Fprintln(w, journalLogLine(*e))
		return nil
	}

	if cmd.String("output") == "text" && cmd.Bool("titles") {
		cmd.Metadata["header"] = fmt.Sprintf("%s %s", e.TransactionID, e.ActionID)
	}
	return output.SliceDiceSpit(payloadRows(*e), output.DiffAttrs(), cmd, w)
}

// payloadRows turns a recorded payload back into diff rows. Recorded payloads
// do not distinguish added from changed, so both report as "set".
func payloadRows(e journal.Entry) []map[string]interface{} {
	rows := []map[string]interface{}{}
	gjson.ParseBytes(e.Payload).ForEach(func(k, v gjson.Result) bool {
		row := map[string]interface{}{
			output.KeyPath:  k.String(),
			output.KeyKind:  "set",
			output.KeyValue: v.Value(),
		}
		if v.Type == gjson.Null {
			row[output.KeyKind] = "removed"
		}
		rows = append(rows, row)
		return true
	})
	return rows
}

// journalLogLine renders an entry close to the store's log line.
func journalLogLine(e journal.Entry) string {
	var entries []string
	gjson.ParseBytes(e.Payload).ForEach(func(k, v gjson.Result) bool {
		kind := "set"
		if v.Type == gjson.Null {
			kind = "removed"
		}
		entries = append(entries, fmt.Sprintf("%s: %s ⇒ %s", k.String(), kind, v.Raw))
		return true
	})
	return fmt.Sprintf("%s %s {%s}", e.TransactionID, e.ActionID, strings.Join(entries, ", "))
}

// journalCommandBuilder constructs the "journal" subcommand.
func journalCommandBuilder(meta meta.Meta) *cli.Command {
	ns := "journal"
	cfg := meta.Config.Source

	dirFlag := &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "journal directory",
		Sources: cli.NewValueSourceChain(cli.EnvVar("SNAPDIFF_JOURNAL_DIR")),
	}
	ValueChainFromConfigKeys(cfg, &dirFlag.Sources, "journal.dir")

	flags := NewGlobalFlags(ns, cfg, replayOutputs)
	for _, f := range flags {
		if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "sort" {
			sf.Value = "seq"
		}
	}

	return &cli.Command{
		Name:      ns,
		Usage:     "list or show recorded diffs",
		UsageText: "snapdiff journal [options]",
		Metadata:  map[string]any{"meta": meta},
		Flags: append(flags,
			dirFlag,
			&cli.IntFlag{
				Name:  "seq",
				Usage: "show the entry with this sequence number",
			},
			&cli.IntFlag{
				Name:  "purge",
				Usage: "remove entries older than this many hours first",
			},
		),
		Action: journalCommandAction,
	}
}
