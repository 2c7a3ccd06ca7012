// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates time-ordered unique identifiers.

It wraps google/uuid to produce Version 7 values, which sort by creation time.
The sandbox uses them for gateway transaction ids and stored upload names, and
the client transport uses them as request ids.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}
