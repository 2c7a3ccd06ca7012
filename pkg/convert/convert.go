// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides fault-tolerant string conversions.

Malformed input never produces an error: it becomes zero or the given default.
Query parameters are parsed with it. Do not use it where a malformed value must
be told apart from the default.
*/
package convert

import "strconv"

// ToIntD parses str as an int, returning def when it is empty or malformed.
func ToIntD(str string, def int) int {
	if str == "" {
		return def
	}

	if v, err := strconv.Atoi(str); err == nil {
		return v
	}
	return def
}
