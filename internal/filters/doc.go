// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects rows of tabular output with --filter expressions.
//
// Filters are key-operator-target expressions joined by a delimiter (default
// comma, override with SNAPDIFF_FILTER_DELIM). Operators:
//
//   - = : exact match
//   - ~ : case-insensitive match
//   - ^ : prefix match
//   - < : less than (numeric when the value is a number)
//   - > : greater than (numeric when the value is a number)
//   - @ : contains (substring, array element or object key)
//   - / : regular expression match
//
// Any operator can be negated with a leading !. A bare key keeps rows where
// the value is present.
//
// Examples:
//
//   - "kind=removed" : removed paths only
//   - "path^nested." : paths beneath nested
//   - "value>3" : numeric values greater than 3
//   - "path!/^array\.[0-9]+$" : drop direct array elements
//
// Keys are matched against column titles first, then row keys. Unknown keys
// are reported on stderr and ignored.
package filters
