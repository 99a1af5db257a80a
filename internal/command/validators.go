// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"slices"

	"github.com/tfctl/snapdiff/internal/dispatch"
)

// Output formats. Not every command supports every format.
var (
	tabularOutputs = []string{"text", "json", "yaml"}
	flattenOutputs = append(slices.Clone(tabularOutputs), "raw")
	diffOutputs    = append(slices.Clone(flattenOutputs), "log", "ascii")
	replayOutputs  = append(slices.Clone(flattenOutputs), "log")
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// OutputValidator returns a validator accepting the given formats.
func OutputValidator(valid []string) FlagValidatorType {
	return func(value any) error {
		s, _ := value.(string)
		if !slices.Contains(valid, s) {
			return fmt.Errorf("must be one of %v", valid)
		}
		return nil
	}
}

// ModeValidator accepts dispatch mode names.
func ModeValidator(value any) error {
	s, _ := value.(string)
	if _, err := dispatch.ParseMode(s); err != nil {
		return fmt.Errorf("must be one of %v", dispatch.ValidModes)
	}
	return nil
}
