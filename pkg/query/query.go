// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-style command line and query string values.
package query

import (
	"strconv"
	"strings"
)

// StringSlice splits a comma-separated value into trimmed, non-empty parts.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(val, ",") {
		if clean := strings.TrimSpace(part); clean != "" {
			parts = append(parts, clean)
		}
	}
	return parts
}

// IDs parses a comma-separated list of positive resource ids such as "1, 4,7".
// Entries that are not positive integers are skipped.
func IDs(val string) []int64 {
	var ids []int64
	for _, part := range StringSlice(val) {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
