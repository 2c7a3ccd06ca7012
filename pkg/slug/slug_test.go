// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/edura/pkg/slug"
)

/*
TestFrom covers Vietnamese accents, đ and punctuation.
*/
func TestFrom(t *testing.T) {
	tests := map[string]string{
		"Lập trình":            "lap-trinh",
		"Đầu tư & Tài chính":   "dau-tu-tai-chinh",
		"  Go -- từ cơ bản!  ": "go-tu-co-ban",
		"Thiết kế UI/UX 2026":  "thiet-ke-ui-ux-2026",
		"":                     "",
	}

	for input, want := range tests {
		assert.Equal(t, want, slug.From(input), input)
	}
}
