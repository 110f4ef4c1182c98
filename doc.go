// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package drc provides the net model used to run design rule checks on digital
circuit schematics.

A Net groups the wire segments and grid points that carry the same signal.
Nets are built incrementally by a connectivity pass: one net per wire
cluster, merged with Merge when clusters turn out to touch, then sized with
SetWidth. Once the width is final, InitSourceSinks allocates per-bit
registries that record which component pins drive (sources) and consume
(sinks) each bit, and which other nets drive or consume it when the net is a
slice of a wider bus.

Checks are then simple queries: HasShortCircuit reports bits driven by more
than one pin, HasSource and HasSinks report floating or unused nets.

Mutators never panic on bad input. They return an error wrapping one of the
Err* values and leave the net unchanged. Reads on out of range bits return
empty results.

*/
package drc
