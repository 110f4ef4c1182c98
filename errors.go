// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package drc

import "github.com/pkg/errors"

// Errors returned by Net mutators. They are wrapped with context; use
// errors.Cause or errors.Is to test for them.
//
var (
	ErrWidthMismatch = errors.New("bit width mismatch")
	ErrWidthFixed    = errors.New("bit width already fixed")
	ErrNegativeWidth = errors.New("negative bit width")
	ErrForcedRoot    = errors.New("net is forced root")
	ErrNilParent     = errors.New("nil parent net")
	ErrParentSet     = errors.New("parent net already set")
	ErrParentCycle   = errors.New("parent net hierarchy cycle")
	ErrNegativeBit   = errors.New("negative bit index")
	ErrBitOverflow   = errors.New("bit index does not fit a byte")
	ErrRootNet       = errors.New("root net has no parent bits")
	ErrBitRange      = errors.New("bit index out of range")
	ErrNilConnection = errors.New("nil connection point")
)
