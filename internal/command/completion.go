// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/snapdiff/internal/dispatch"
	"github.com/tfctl/snapdiff/internal/meta"
)

// Value choices offered for flags, by command then flag name.
var completionChoices = map[string]map[string][]string{
	"diff":    {"output": diffOutputs},
	"flatten": {"output": flattenOutputs},
	"replay":  {"output": replayOutputs, "mode": dispatch.ValidModes},
	"journal": {"output": replayOutputs},
}

// Flags completed with directory names.
var completionDirs = map[string]bool{"journal": true, "dir": true}

type compFlag struct {
	Names   []string
	Usage   string
	Value   bool
	Choices []string
	Dirs    bool
}

// Spellings is every command line form of the flag.
func (f compFlag) Spellings() []string {
	out := make([]string, len(f.Names))
	for i, n := range f.Names {
		if len(n) == 1 {
			out[i] = "-" + n
		} else {
			out[i] = "--" + n
		}
	}
	return out
}

// Zsh renders the flag as an _arguments spec.
func (f compFlag) Zsh() string {
	sp := f.Spellings()
	desc := "[" + zshEscape(f.Usage) + "]"

	var b strings.Builder
	if len(sp) > 1 {
		fmt.Fprintf(&b, "'(%s)'{%s}'%s", strings.Join(sp, " "), strings.Join(sp, ","), desc)
	} else {
		fmt.Fprintf(&b, "'%s%s", sp[0], desc)
	}
	if f.Value {
		b.WriteString(":" + f.Names[0] + ":")
		switch {
		case len(f.Choices) > 0:
			b.WriteString("(" + strings.Join(f.Choices, " ") + ")")
		case f.Dirs:
			b.WriteString("_directories")
		}
	}
	b.WriteString("'")
	return b.String()
}

type compCommand struct {
	Name  string
	Usage string
	Flags []compFlag
	Args  []string
	Words []string
}

// Options lists every flag spelling for bash.
func (c compCommand) Options() string {
	var out []string
	for _, f := range c.Flags {
		out = append(out, f.Spellings()...)
	}
	return strings.Join(out, " ")
}

// ZshSpecs is the _arguments list for the command.
func (c compCommand) ZshSpecs() string {
	specs := make([]string, 0, len(c.Flags)+len(c.Args)+1)
	for _, f := range c.Flags {
		specs = append(specs, f.Zsh())
	}
	if len(c.Words) > 0 {
		specs = append(specs, "'1: :("+strings.Join(c.Words, " ")+")'")
	}
	for i, a := range c.Args {
		specs = append(specs, fmt.Sprintf("'%d:%s:_files'", i+1, a))
	}
	return strings.Join(specs, " \\\n        ")
}

// collectCommands describes the visible subcommands of root.
func collectCommands(root *cli.Command) []compCommand {
	var out []compCommand
	for _, sub := range root.Commands {
		if sub.Hidden || sub.Name == "help" {
			continue
		}
		c := compCommand{Name: sub.Name, Usage: sub.Usage}
		c.Args, c.Words = positionals(sub)

		for _, fl := range sub.Flags {
			names := fl.Names()
			if names[0] == "help" {
				continue
			}
			f := compFlag{
				Names:   names,
				Choices: completionChoices[sub.Name][names[0]],
				Dirs:    completionDirs[names[0]],
			}
			if u, ok := fl.(interface{ GetUsage() string }); ok {
				f.Usage = u.GetUsage()
			}
			if v, ok := fl.(interface{ TakesValue() bool }); ok {
				f.Value = v.TakesValue()
			}
			c.Flags = append(c.Flags, f)
		}
		out = append(out, c)
	}
	return out
}

// positionals reads argument names from a UsageText such as
// "snapdiff diff [options] OLD NEW". A "[bash|zsh]" style argument is a
// fixed set of words.
func positionals(cmd *cli.Command) (args, words []string) {
	fields := strings.Fields(cmd.UsageText)
	if len(fields) < 2 {
		return nil, nil
	}
	for _, tok := range fields[2:] {
		if tok == "[options]" {
			continue
		}
		tok = strings.Trim(tok, "[]")
		if strings.Contains(tok, "|") {
			words = append(words, strings.Split(tok, "|")...)
			continue
		}
		args = append(args, tok)
	}
	return args, words
}

func zshEscape(s string) string {
	return strings.NewReplacer(`'`, `'\''`, "[", `\[`, "]", `\]`, ":", `\:`).Replace(s)
}

var completionFuncs = template.FuncMap{"join": strings.Join}

var bashCompletion = template.Must(template.New("bash").Funcs(completionFuncs).Parse(`# bash completion for snapdiff
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_snapdiff()
{
    local cur prev opts="" words=""
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "{{range .}}{{.Name}} {{end}}--help --version" -- "$cur") )
        return 0
    fi

    case "${COMP_WORDS[1]}" in
{{- range .}}
        {{.Name}})
            opts="{{.Options}}"
            words="{{join .Words " "}}"
            case "$prev" in
{{- range .Flags}}{{if .Choices}}
                {{join .Spellings "|"}})
                    COMPREPLY=( $(compgen -W "{{join .Choices " "}}" -- "$cur") )
                    return 0
                    ;;
{{- else if .Dirs}}
                {{join .Spellings "|"}})
                    COMPREPLY=( $(compgen -o dirnames -- "$cur") )
                    return 0
                    ;;
{{- end}}{{end}}
            esac
            ;;
{{- end}}
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts --help" -- "$cur") )
    elif [[ -n "$words" ]]; then
        COMPREPLY=( $(compgen -W "$words" -- "$cur") )
    else
        COMPREPLY=( $(compgen -f -- "$cur") )
    fi
    return 0
}

complete -F _snapdiff snapdiff
`))

var zshCompletion = template.Must(template.New("zsh").Funcs(completionFuncs).Parse(`#compdef snapdiff

_snapdiff() {
  local -a cmds
  cmds=(
{{- range .}}
    '{{.Name}}:{{.Usage}}'
{{- end}}
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'snapdiff commands' cmds
    return
  fi

  case $words[2] in
{{- range .}}
    {{.Name}})
      _arguments -C \
        {{.ZshSpecs}}
      ;;
{{- end}}
  esac
}

# Sourced directly rather than autoloaded from fpath.
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _snapdiff snapdiff
`))

// detectShell maps $SHELL to a supported completion dialect.
func detectShell() string {
	switch filepath.Base(os.Getenv("SHELL")) {
	case "zsh":
		return "zsh"
	case "bash":
		return "bash"
	}
	return ""
}

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := cmd.Args().First()
	if shell == "" {
		shell = detectShell()
	}

	tmpl := map[string]*template.Template{"bash": bashCompletion, "zsh": zshCompletion}[shell]
	if tmpl == nil {
		fmt.Fprintln(stderr(cmd), "usage: snapdiff completion [bash|zsh]")
		return nil
	}
	return tmpl.Execute(stdout(cmd), collectCommands(cmd.Root()))
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "snapdiff completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
