// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/snapdiff/internal/log"
	"github.com/tfctl/snapdiff/internal/meta"
)

// ErrNoInput is returned when a document is read from an interactive stdin.
var ErrNoInput = errors.New("no input on stdin")

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// stdout is where a command writes its results.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// stderr is where a command writes summaries and warnings.
func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// stdin is the reader used for the "-" document.
func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

// readDocument loads a JSON or YAML document from path, or from in when path
// is "-", and returns it as JSON.
func readDocument(path string, in io.Reader) ([]byte, error) {
	var raw []byte
	var err error

	if path == "-" {
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return nil, ErrNoInput
		}
		if raw, err = io.ReadAll(in); err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("document does not exist: %s", path)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("document cannot be a directory: %s", path)
		}
		if raw, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("document is empty: %s", path)
	}
	if json.Valid(raw) {
		return raw, nil
	}

	doc, err := yamlToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("document %s is neither JSON nor YAML: %w", path, err)
	}
	log.Debugf("yaml document converted: path=%s, bytes=%d", path, len(doc))
	return doc, nil
}

// yamlToJSON re-encodes a YAML document as JSON.
func yamlToJSON(raw []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(jsonCompatible(v))
}

// jsonCompatible rewrites YAML maps with non-string keys into string-keyed
// maps.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = jsonCompatible(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprintf("%v", k)] = jsonCompatible(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = jsonCompatible(e)
		}
		return t
	default:
		return v
	}
}
