// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package drc

import "strconv"

// A Location is a point on the schematic grid.
//
type Location struct {
	X, Y int
}

// Loc returns the Location at x, y.
//
func Loc(x, y int) Location { return Location{x, y} }

func (l Location) less(o Location) bool {
	if l.X != o.X {
		return l.X < o.X
	}
	return l.Y < o.Y
}

func (l Location) String() string {
	return "(" + strconv.Itoa(l.X) + "," + strconv.Itoa(l.Y) + ")"
}

// A Wire is a wire segment between two grid locations. Its endpoints are
// stored in grid order so that two Wires covering the same segment compare
// equal regardless of the direction they were drawn in.
//
type Wire struct {
	e0, e1 Location
}

// NewWire returns the wire segment between a and b.
//
func NewWire(a, b Location) Wire {
	if b.less(a) {
		a, b = b, a
	}
	return Wire{a, b}
}

// End0 returns the first endpoint of w.
func (w Wire) End0() Location { return w.e0 }

// End1 returns the second endpoint of w.
func (w Wire) End1() Location { return w.e1 }

func (w Wire) less(o Wire) bool {
	if w.e0 != o.e0 {
		return w.e0.less(o.e0)
	}
	return w.e1.less(o.e1)
}

func (w Wire) String() string {
	return "wire" + w.e0.String() + "-" + w.e1.String()
}
