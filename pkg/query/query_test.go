// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/edura/pkg/query"
)

/*
TestIDs keeps positive integers and skips everything else.
*/
func TestIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 4, 7}, query.IDs("1, 4,,7"))
	assert.Equal(t, []int64{2}, query.IDs("x,-3,0,2"))
	assert.Nil(t, query.IDs(""))
}

/*
TestStringSlice trims and drops empty parts.
*/
func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, query.StringSlice(" a , ,b c,"))
	assert.Nil(t, query.StringSlice(""))
}
