// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// NewGlobalFlags returns the row shaping flags shared by the tabular commands.
// The output and sort flags also read ns.<flag> and <flag> from the config
// file at cfgPath.
func NewGlobalFlags(ns string, cfgPath string, outputs []string) (flags []cli.Flag) {
	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format",
		Value:   "text",
		Validator: func(value string) error {
			return FlagValidators(value, OutputValidator(outputs))
		},
	}
	sortFlag := &cli.StringFlag{
		Name:    "sort",
		Aliases: []string{"s"},
		Usage:   "comma-separated list of columns to sort the results by",
		Value:   "path",
	}

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of columns as key[:title[:transform]]",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		NameSpacedValueChainFlagFromConfigFile(ns, cfgPath, outputFlag),
		&cli.IntFlag{
			Name:  "padding",
			Usage: "padding between text columns",
			Value: 2, //nolint:mnd
		},
		NameSpacedValueChainFlagFromConfigFile(ns, cfgPath, sortFlag),
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewModeFlag constructs the dispatch --mode flag. Values come from the flag,
// SNAPDIFF_MODE, then ns.mode and mode in the config file.
func NewModeFlag(ns string, cfgPath string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "mode",
		Aliases: []string{"m"},
		Usage:   "diff dispatch mode: none, sync or async",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("SNAPDIFF_MODE"),
		),
		Value: "sync",
		Validator: func(value string) error {
			return FlagValidators(value, ModeValidator)
		},
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, cfgPath, flag)
}

// NewTransactionFlags constructs --tx and --action, which label a diff.
func NewTransactionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "tx",
			Usage: "transaction id reported with the diff",
			Value: "tx-1",
		},
		&cli.StringFlag{
			Name:  "action",
			Usage: "action id reported with the diff",
			Value: "diff",
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain. An empty path leaves the flag
// untouched.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	if path == "" {
		return flag
	}

	if ns != "" {
		flag.Sources.Chain = append(flag.Sources.Chain, yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path)))
	}
	flag.Sources.Chain = append(flag.Sources.Chain, yaml.YAML(flag.Name, altsrc.StringSourcer(path)))

	return flag
}

// ValueChainFromConfigKeys adds explicit config file keys to the flag's
// Sources chain, in order.
func ValueChainFromConfigKeys(path string, chain *cli.ValueSourceChain, keys ...string) {
	if path == "" {
		return
	}
	for _, k := range keys {
		chain.Chain = append(chain.Chain, yaml.YAML(k, altsrc.StringSourcer(path)))
	}
}
