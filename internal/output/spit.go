// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"maps"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/snapdiff/internal/attrs"
	"github.com/tfctl/snapdiff/internal/config"
	"github.com/tfctl/snapdiff/internal/filters"
	"github.com/tfctl/snapdiff/internal/log"
)

// InterfaceToString renders a cell. emptyValue, when given, stands in for nil.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	switch v := value.(type) {
	case nil:
		if len(emptyValue) > 0 {
			return emptyValue[0]
		}
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(b)
}

// SliceDiceSpit runs rows through --attrs, --filter and --sort and writes
// them in the --output format. A nil w means stdout.
func SliceDiceSpit(rows []map[string]interface{}, columns attrs.AttrList, cmd *cli.Command, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	if spec := cmd.String("attrs"); spec != "" {
		if err := columns.Set(spec); err != nil {
			return err
		}
	}
	columns.SetGlobalTransformSpec()

	kept := filters.FilterDataset(rows, columns, cmd.String("filter"))
	log.Debugf("rows filtered: in=%d, out=%d", len(rows), len(kept))

	shaped := transform(kept, columns)
	SortDataset(shaped, cmd.String("sort"))

	var (
		b   []byte
		err error
	)
	switch format := cmd.String("output"); format {
	case "json":
		if b, err = json.Marshal(project(shaped, columns)); err == nil {
			b = append(b, '\n')
		}
	case "yaml":
		b, err = yaml.Marshal(project(shaped, columns))
	default:
		TableWriter(shaped, columns, cmd, w)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to marshal %s output: %w", cmd.String("output"), err)
	}
	_, err = w.Write(b)
	return err
}

// transform applies column transforms to copies of rows.
func transform(rows []map[string]interface{}, columns attrs.AttrList) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		c := maps.Clone(row)
		for i := range columns {
			if columns[i].TransformSpec != "" {
				c[columns[i].Key] = columns[i].Transform(c[columns[i].Key])
			}
		}
		out = append(out, c)
	}
	return out
}

// project keeps visible columns, keyed by their titles.
func project(rows []map[string]interface{}, columns attrs.AttrList) []map[string]interface{} {
	visible := columns.Visible()
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		p := make(map[string]interface{}, len(visible))
		for _, c := range visible {
			p[c.OutputKey] = row[c.Key]
		}
		out = append(out, p)
	}
	return out
}

// palette holds the table styles. Rows alternate even and odd.
type palette struct {
	header, even, odd lipgloss.Style
}

func plainPalette() palette {
	cell := lipgloss.NewStyle().Align(lipgloss.Left)
	return palette{
		header: lipgloss.NewStyle().Align(lipgloss.Left).Bold(true),
		even:   cell,
		odd:    cell,
	}
}

func (p palette) colored() palette {
	h, e, o := getColors("colors")
	p.header = p.header.Foreground(h)
	p.even = p.even.Foreground(e)
	p.odd = p.odd.Foreground(o)
	return p
}

// style is a table.StyleFunc. Every column after the first is left padded.
func (p palette) style(pad int) table.StyleFunc {
	return func(row, col int) lipgloss.Style {
		s := p.odd
		switch {
		case row == table.HeaderRow:
			s = p.header
		case row%2 == 0:
			s = p.even
		}
		if col > 0 {
			s = s.PaddingLeft(pad)
		}
		return s
	}
}

// TableWriter renders rows as a borderless table. --titles adds a header
// row, --padding spaces the columns and --color applies the palette when w
// is a terminal. Metadata "header" and "footer" strings frame the table.
func TableWriter(resultSet []map[string]interface{}, columns attrs.AttrList, cmd *cli.Command, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	if len(resultSet) == 0 {
		return
	}

	p := plainPalette()
	if cmd.Bool("color") && isTerminal(w) {
		p = p.colored()
	}

	visible := columns.Visible()
	cells := make([][]string, 0, len(resultSet))
	for _, r := range resultSet {
		line := make([]string, len(visible))
		for i, c := range visible {
			line[i] = InterfaceToString(r[c.Key], "-")
		}
		cells = append(cells, line)
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		StyleFunc(p.style(cmd.Int("padding"))).
		Rows(cells...)

	if cmd.Bool("titles") {
		titles := make([]string, len(visible))
		for i, c := range visible {
			titles[i] = c.OutputKey
		}
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(titles...).BorderHeader(false)
	}

	if s, ok := cmd.Metadata["header"].(string); ok {
		fmt.Fprintln(w, p.header.Render(s))
	}
	fmt.Fprintln(w, t)
	if s, ok := cmd.Metadata["footer"].(string); ok {
		fmt.Fprintln(w, p.header.Render(s))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// getColors reads <key>.title, <key>.even and <key>.odd from config, falling
// back to defaults chosen for the terminal background.
func getColors(key string) (header, even, odd color.Color) {
	dark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	pick := func(suffix, light, darkHex string) color.Color {
		if s, err := config.GetString(key + "." + suffix); err == nil {
			return lipgloss.Color(s)
		}
		if dark {
			return lipgloss.Color(darkHex)
		}
		return lipgloss.Color(light)
	}

	return pick("title", "#b08800", "#f6be00"),
		pick("even", "#333333", "#ffffff"),
		pick("odd", "#0088a0", "#00c8f0")
}
