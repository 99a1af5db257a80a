// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/snapdiff/internal/attrs"
	"github.com/tfctl/snapdiff/internal/config"
	"github.com/tfctl/snapdiff/internal/differ"
	"github.com/tfctl/snapdiff/internal/dispatch"
	"github.com/tfctl/snapdiff/internal/journal"
	"github.com/tfctl/snapdiff/internal/log"
	"github.com/tfctl/snapdiff/internal/meta"
	"github.com/tfctl/snapdiff/internal/output"
	"github.com/tfctl/snapdiff/internal/snapshot"
	"github.com/tfctl/snapdiff/internal/store"
)

// Script is a recorded sequence of model states.
type Script struct {
	Mode    string          `json:"mode,omitempty"`
	Initial json.RawMessage `json:"initial"`
	Steps   []Step          `json:"steps"`
}

// Step replaces the model with State. Untracked steps mutate without a
// transaction and so publish nothing. A non-empty Mode switches the store
// before the step is dispatched.
type Step struct {
	Action    string          `json:"action"`
	ID        string          `json:"id,omitempty"`
	Mode      string          `json:"mode,omitempty"`
	Untracked bool            `json:"untracked,omitempty"`
	State     json.RawMessage `json:"state"`
}

// TransactionID is the step's id, or tx-<n> for the nth step.
func (s Step) TransactionID(n int) string {
	if s.ID != "" {
		return s.ID
	}
	return "tx-" + strconv.Itoa(n)
}

// loadScript reads and validates a replay script.
func loadScript(path string, in io.Reader) (*Script, error) {
	doc, err := readDocument(path, in)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := json.Unmarshal(doc, &script); err != nil {
		return nil, fmt.Errorf("invalid replay script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errNoSteps
	}
	if len(script.Initial) == 0 {
		script.Initial = json.RawMessage("null")
	}
	if script.Mode != "" {
		if _, err := dispatch.ParseMode(script.Mode); err != nil {
			return nil, fmt.Errorf("invalid replay script: %w", err)
		}
	}
	for i := range script.Steps {
		st := &script.Steps[i]
		if len(st.State) == 0 {
			st.State = json.RawMessage("null")
		}
		if st.Mode != "" {
			if _, err := dispatch.ParseMode(st.Mode); err != nil {
				return nil, fmt.Errorf("invalid replay step %d: %w", i+1, err)
			}
		}
	}
	return &script, nil
}

var errNoSteps = errors.New("replay script has no steps")

// replayResult summarizes a replay.
type replayResult struct {
	Steps    int
	Diffs    uint64
	Audited  int
	Journal  *journal.Stats
	Duration time.Duration
	Rows     []map[string]interface{}
}

// replay dispatches every step through a store in mode. Each published diff
// set goes to emit, which runs on the dispatching goroutine.
func replay(script *Script, mode dispatch.Mode, auditCapacity int, recorder *journal.Recorder, emit func(store.DiffSet)) replayResult {
	start := time.Now()

	s := store.New(script.Initial,
		store.WithMode(mode),
		store.WithAuditCapacity(auditCapacity),
	)

	if recorder != nil {
		defer recorder.Follow(s.DiffSets())()
	}
	if emit != nil {
		defer s.DiffSets().Subscribe(emit)()
	}

	for i, st := range script.Steps {
		if st.Mode != "" {
			m, _ := dispatch.ParseMode(st.Mode)
			s.SetMode(m)
		}

		var tx *store.Transaction
		if !st.Untracked {
			tx = &store.Transaction{ID: st.TransactionID(i + 1), ActionID: st.Action}
		}

		state := st.State
		s.Dispatch(tx, func(json.RawMessage) json.RawMessage { return state })
	}
	s.Close()

	res := replayResult{
		Steps:    len(script.Steps),
		Diffs:    s.DiffSets().Published(),
		Audited:  s.Audit().Len(),
		Duration: time.Since(start),
	}
	if recorder != nil {
		stats := recorder.Stats()
		res.Journal = &stats
	}
	return res
}

// replayCommandAction is the action handler for the "replay" subcommand.
func replayCommandAction(ctx context.Context, cmd *cli.Command) error {
	in := "-"
	if cmd.Args().Len() > 0 {
		in = cmd.Args().First()
	}

	script, err := loadScript(in, stdin(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("pick") {
		return pickAndDiff(cmd, script)
	}

	modeName := cmd.String("mode")
	if !cmd.IsSet("mode") && script.Mode != "" {
		modeName = script.Mode
	}
	mode, err := dispatch.ParseMode(modeName)
	if err != nil {
		return err
	}

	auditCapacity, _ := config.GetInt("audit.capacity", 0)
	log.Debugf("replay: steps=%d, mode=%s, auditCapacity=%d", len(script.Steps), mode, auditCapacity)

	recorder, err := newRecorder(ctx, cmd)
	if err != nil {
		return err
	}

	w := stdout(cmd)
	format := cmd.String("output")

	var mu sync.Mutex
	var rows []map[string]interface{}
	emit := func(set store.DiffSet) {
		mu.Lock()
		defer mu.Unlock()
		switch format {
		case "log":
			fmt.Fprintln(w, set.LogLine())
		case "raw":
			fmt.Fprintln(w, string(differ.EncodeJSON(set.Changes)))
		default:
			for _, row := range output.DiffRows(set.Changes) {
				row["tx"] = set.TransactionID
				row["action"] = set.ActionID
				rows = append(rows, row)
			}
		}
	}

	res := replay(script, mode, auditCapacity, recorder, emit)

	if format != "log" && format != "raw" {
		mu.Lock()
		res.Rows = rows
		mu.Unlock()
		if err := output.SliceDiceSpit(res.Rows, replayAttrs(), cmd, w); err != nil {
			return err
		}
	}

	if !cmd.Bool("quiet") {
		fmt.Fprintln(stderr(cmd), res.Summary(mode))
	}
	return nil
}

// Summary renders the result for humans.
func (r replayResult) Summary(mode dispatch.Mode) string {
	s := fmt.Sprintf("replayed %s %s (%s) in %s: %s published, %s audited",
		humanize.Comma(int64(r.Steps)), plural(r.Steps, "step", "steps"),
		mode,
		humanize.SIWithDigits(r.Duration.Seconds(), 2, "s"), //nolint:mnd
		humanize.Comma(int64(r.Diffs)),
		humanize.Comma(int64(r.Audited)))
	if r.Journal != nil {
		s += "; journal: " + r.Journal.String()
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// replayAttrs are the default replay columns; the transaction comes first so
// rows group by step when sorted.
func replayAttrs() attrs.AttrList {
	return attrs.Defaults("tx", "action", output.KeyPath, output.KeyKind, output.KeyValue)
}

// newRecorder builds a journal recorder from the journal flags. It returns nil
// when no sink is configured.
func newRecorder(ctx context.Context, cmd *cli.Command) (*journal.Recorder, error) {
	var sinks []journal.Sink

	if dir := cmd.String("journal"); dir != "" || cmd.Bool("record") {
		local, err := journal.NewLocal(dir)
		if err != nil {
			return nil, err
		}
		if local != nil {
			if err := local.Purge(cmd.Int("purge")); err != nil {
				log.WithError(err).Warn("journal purge failed")
			}
			sinks = append(sinks, local)
		}
	}

	if bucket := cmd.String("s3-bucket"); bucket != "" {
		var opts []journal.Option
		if p := cmd.String("s3-profile"); p != "" {
			opts = append(opts, journal.WithProfile(p))
		}
		if r := cmd.String("s3-region"); r != "" {
			opts = append(opts, journal.WithRegion(r))
		}
		cfg, err := journal.LoadAWSConfig(ctx, opts...)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, &journal.S3{
			Client: journal.NewS3(cfg),
			Bucket: bucket,
			Prefix: cmd.String("s3-prefix"),
		})
	}

	if len(sinks) == 0 {
		return nil, nil
	}
	return journal.NewRecorder(ctx, sinks...), nil
}

// pickAndDiff lets the user choose two states of the script and prints their
// diff.
func pickAndDiff(cmd *cli.Command, script *Script) error {
	states := []json.RawMessage{script.Initial}
	choices := []differ.Choice{{ID: "0", Label: "initial"}}
	for i, st := range script.Steps {
		states = append(states, st.State)
		choices = append(choices, differ.Choice{
			ID:    strconv.Itoa(i + 1),
			Label: fmt.Sprintf("%s (%s)", st.Action, st.TransactionID(i+1)),
		})
	}

	picked, err := differ.SelectPair(choices)
	if err != nil {
		return err
	}
	if len(picked) != 2 { //nolint:mnd
		log.Debug("picker cancelled")
		return nil
	}

	left, _ := strconv.Atoi(picked[0].ID)
	right, _ := strconv.Atoi(picked[1].ID)
	return printPairDiff(cmd, states[left], states[right])
}

func printPairDiff(cmd *cli.Command, left, right json.RawMessage) error {
	prev, err := snapshot.FlattenJSON(left)
	if err != nil {
		return err
	}
	next, err := snapshot.FlattenJSON(right)
	if err != nil {
		return err
	}
	changes := differ.Compute(prev, next)

	w := stdout(cmd)
	switch cmd.String("output") {
	case "log":
		fmt.Fprintln(w, differ.LogLine("pick", "pick", changes))
		return nil
	case "raw":
		fmt.Fprintln(w, string(differ.EncodeJSON(changes)))
		return nil
	}
	return output.SliceDiceSpit(output.DiffRows(changes), output.DiffAttrs(), cmd, w)
}

// replayCommandBuilder constructs the "replay" subcommand.
func replayCommandBuilder(meta meta.Meta) *cli.Command {
	ns := "replay"
	cfg := meta.Config.Source

	journalFlag := &cli.StringFlag{
		Name:  "journal",
		Usage: "record published diffs into this directory",
	}
	ValueChainFromConfigKeys(cfg, &journalFlag.Sources, "journal.dir")

	bucketFlag := &cli.StringFlag{
		Name:  "s3-bucket",
		Usage: "record published diffs into this S3 bucket",
	}
	ValueChainFromConfigKeys(cfg, &bucketFlag.Sources, "journal.s3.bucket")

	prefixFlag := &cli.StringFlag{
		Name:  "s3-prefix",
		Usage: "object key prefix for --s3-bucket",
	}
	ValueChainFromConfigKeys(cfg, &prefixFlag.Sources, "journal.s3.prefix")

	regionFlag := &cli.StringFlag{
		Name:  "s3-region",
		Usage: "AWS region for --s3-bucket",
	}
	ValueChainFromConfigKeys(cfg, &regionFlag.Sources, "journal.s3.region")

	profileFlag := &cli.StringFlag{
		Name:  "s3-profile",
		Usage: "AWS shared config profile for --s3-bucket",
	}
	ValueChainFromConfigKeys(cfg, &profileFlag.Sources, "journal.s3.profile")

	flags := NewGlobalFlags(ns, cfg, replayOutputs)
	for _, f := range flags {
		if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "output" {
			sf.Value = "log"
		}
		if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "sort" {
			sf.Value = ""
		}
	}

	return &cli.Command{
		Name:      ns,
		Usage:     "replay a scripted sequence of states through a store",
		UsageText: "snapdiff replay [options] [SCRIPT]",
		Metadata:  map[string]any{"meta": meta},
		Flags: append(flags,
			NewModeFlag(ns, cfg),
			journalFlag,
			bucketFlag,
			prefixFlag,
			regionFlag,
			profileFlag,
			&cli.BoolFlag{
				Name:  "record",
				Usage: "record published diffs into the default journal directory",
			},
			&cli.IntFlag{
				Name:  "purge",
				Usage: "remove journal entries older than this many hours first",
			},
			&cli.BoolFlag{
				Name:  "pick",
				Usage: "pick two states interactively and diff them",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not print the replay summary",
			},
		),
		Action: replayCommandAction,
	}
}
