// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package drc

import (
	"sort"

	"fortio.org/safecast"
	"github.com/pkg/errors"
)

// registries holds the per-bit connection sets of a net. All four slices have
// one slot per bit once initialized.
//
type registries struct {
	sources    []ConnectionSet
	sinks      []ConnectionSet
	sourceNets []ConnectionSet
	sinkNets   []ConnectionSet
}

func newRegistries(width int) registries {
	return registries{
		sources:    make([]ConnectionSet, width),
		sinks:      make([]ConnectionSet, width),
		sourceNets: make([]ConnectionSet, width),
		sinkNets:   make([]ConnectionSet, width),
	}
}

// slot returns the connection set for bit in r or nil if bit is out of range.
func slot(r []ConnectionSet, bit int) *ConnectionSet {
	if bit < 0 || bit >= len(r) {
		return nil
	}
	return &r[bit]
}

// A Net is a set of wire segments and grid points carrying the same signal,
// together with the pins driving and consuming each of its bits.
//
// A net that has no parent, or that has been forced to be a root, is a root
// net. Non-root nets are single bit slices of a parent bus; AddParentBit
// records which parent bit each local bit maps to.
//
// Mutators either apply fully or return an error and leave the net
// untouched. A Net is not safe for concurrent mutation.
//
type Net struct {
	points     map[Location]struct{}
	wires      map[Wire]struct{}
	tunnels    map[string]struct{}
	width      int
	parent     *Net
	forcedRoot bool
	inherited  []uint8 // local bit -> parent bit
	regs       registries
}

// New returns an empty net with no bit width.
//
func New() *Net {
	return &Net{
		points:  make(map[Location]struct{}),
		wires:   make(map[Wire]struct{}),
		tunnels: make(map[string]struct{}),
	}
}

// NewAt returns a net holding the single point loc.
//
func NewAt(loc Location) *Net {
	n := New()
	n.points[loc] = struct{}{}
	return n
}

// NewBus returns a net holding the single point loc with its bit width fixed
// to width. It panics if width is negative.
//
func NewBus(loc Location, width int) *Net {
	if width < 0 {
		panic("drc: negative net width")
	}
	n := NewAt(loc)
	n.width = width
	return n
}

// Add adds wire w and its two endpoints to the net. It does not check that w
// touches any point already in n.
//
func (n *Net) Add(w Wire) {
	n.points[w.e0] = struct{}{}
	n.points[w.e1] = struct{}{}
	n.wires[w] = struct{}{}
}

// Merge absorbs the points, wires and tunnel names of o into n. Both nets must
// have the same bit width. o is left unchanged.
//
func (n *Net) Merge(o *Net) error {
	if o.width != n.width {
		return errors.Wrapf(ErrWidthMismatch, "merge %d-bit net into %d-bit net", o.width, n.width)
	}
	for p := range o.points {
		n.points[p] = struct{}{}
	}
	for w := range o.wires {
		n.wires[w] = struct{}{}
	}
	for t := range o.tunnels {
		n.tunnels[t] = struct{}{}
	}
	return nil
}

// Contains returns true if loc is one of the net's points.
//
func (n *Net) Contains(loc Location) bool {
	_, ok := n.points[loc]
	return ok
}

// IsEmpty returns true if the net has no points.
//
func (n *Net) IsEmpty() bool { return len(n.points) == 0 }

// Points returns the net's points in grid order.
//
func (n *Net) Points() []Location {
	ps := make([]Location, 0, len(n.points))
	for p := range n.points {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].less(ps[j]) })
	return ps
}

// Wires returns the net's wire segments in grid order.
//
func (n *Net) Wires() []Wire {
	ws := make([]Wire, 0, len(n.wires))
	for w := range n.wires {
		ws = append(ws, w)
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].less(ws[j]) })
	return ws
}

// AddTunnel links the named tunnel to n.
//
func (n *Net) AddTunnel(name string) { n.tunnels[name] = struct{}{} }

// HasTunnel returns true if at least one tunnel is linked to n.
//
func (n *Net) HasTunnel() bool { return len(n.tunnels) != 0 }

// ContainsTunnel returns true if the named tunnel is linked to n.
//
func (n *Net) ContainsTunnel(name string) bool {
	_, ok := n.tunnels[name]
	return ok
}

// Tunnels returns the sorted tunnel names linked to n.
//
func (n *Net) Tunnels() []string {
	ts := make([]string, 0, len(n.tunnels))
	for t := range n.tunnels {
		ts = append(ts, t)
	}
	sort.Strings(ts)
	return ts
}

// BitWidth returns the bit width of the net, 0 if not yet known.
//
func (n *Net) BitWidth() int { return n.width }

// IsBus returns true for nets wider than one bit.
//
func (n *Net) IsBus() bool { return n.width > 1 }

// SetWidth sets the bit width of the net. Once set to a non-zero value, the
// width can only be set again to the same value.
//
func (n *Net) SetWidth(width int) error {
	if width < 0 {
		return errors.Wrapf(ErrNegativeWidth, "set width %d", width)
	}
	if n.width > 0 && width != n.width {
		return errors.Wrapf(ErrWidthFixed, "set width %d on %d-bit net", width, n.width)
	}
	n.width = width
	return nil
}

// SetParent sets the parent of n. The parent can be set only once and never
// on a forced root net. A parent that would make n its own ancestor is
// rejected.
//
func (n *Net) SetParent(parent *Net) error {
	switch {
	case n.forcedRoot:
		return errors.Wrap(ErrForcedRoot, "set parent")
	case parent == nil:
		return errors.Wrap(ErrNilParent, "set parent")
	case n.parent != nil:
		return errors.Wrap(ErrParentSet, "set parent")
	}
	for p := parent; p != nil; p = p.parent {
		if p == n {
			return errors.Wrap(ErrParentCycle, "set parent")
		}
	}
	n.parent = parent
	return nil
}

// Parent returns the parent net or nil.
//
func (n *Net) Parent() *Net { return n.parent }

// Root returns the top of the net's hierarchy: n itself for a root net.
//
func (n *Net) Root() *Net {
	r := n
	for !r.IsRoot() {
		r = r.parent
	}
	return r
}

// ForceRoot drops the parent and parent bit mapping of n and marks it as a
// root net for good.
//
func (n *Net) ForceRoot() {
	n.parent = nil
	n.forcedRoot = true
	n.inherited = nil
}

// IsRoot returns true if n has no parent or is a forced root.
//
func (n *Net) IsRoot() bool { return n.parent == nil || n.forcedRoot }

// IsForcedRoot returns true if ForceRoot has been called on n.
//
func (n *Net) IsForcedRoot() bool { return n.forcedRoot }

// AddParentBit maps the next local bit of n to bit in the parent net.
// The first call maps local bit 0, the second local bit 1, and so on.
//
func (n *Net) AddParentBit(bit int) error {
	if bit < 0 {
		return errors.Wrapf(ErrNegativeBit, "add parent bit %d", bit)
	}
	b, err := safecast.Conv[uint8](bit)
	if err != nil {
		return errors.Wrapf(ErrBitOverflow, "add parent bit %d", bit)
	}
	n.inherited = append(n.inherited, b)
	return nil
}

// Bit returns the parent bit that local bit maps to. It fails on root nets.
//
func (n *Net) Bit(local int) (int, error) {
	if n.IsRoot() {
		return -1, errors.Wrapf(ErrRootNet, "get bit %d", local)
	}
	if local < 0 || local >= len(n.inherited) {
		return -1, errors.Wrapf(ErrBitRange, "get bit %d of %d inherited", local, len(n.inherited))
	}
	return int(n.inherited[local]), nil
}

// InitSourceSinks discards all source and sink registrations and allocates
// one empty slot per bit. It must be called once the bit width is final and
// before registering sources or sinks.
//
func (n *Net) InitSourceSinks() {
	n.regs = newRegistries(n.width)
}

func addConnection(r []ConnectionSet, bit int, p *ConnectionPoint, what string) error {
	if p == nil {
		return errors.Wrap(ErrNilConnection, what)
	}
	s := slot(r, bit)
	if s == nil {
		return errors.Wrapf(ErrBitRange, "%s on bit %d of %d", what, bit, len(r))
	}
	s.Add(p)
	return nil
}

// AddSource registers pin p as a driver of bit.
//
func (n *Net) AddSource(bit int, p *ConnectionPoint) error {
	return addConnection(n.regs.sources, bit, p, "add source")
}

// AddSink registers pin p as a consumer of bit.
//
func (n *Net) AddSink(bit int, p *ConnectionPoint) error {
	return addConnection(n.regs.sinks, bit, p, "add sink")
}

// AddSourceNet registers net connection p as a driver of bit.
//
func (n *Net) AddSourceNet(bit int, p *ConnectionPoint) error {
	return addConnection(n.regs.sourceNets, bit, p, "add source net")
}

// AddSinkNet registers net connection p as a consumer of bit.
//
func (n *Net) AddSinkNet(bit int, p *ConnectionPoint) error {
	return addConnection(n.regs.sinkNets, bit, p, "add sink net")
}

func connections(r []ConnectionSet, bit int) []*ConnectionPoint {
	if s := slot(r, bit); s != nil {
		return s.Connections()
	}
	return nil
}

func count(r []ConnectionSet, bit int) int {
	if s := slot(r, bit); s != nil {
		return s.Len()
	}
	return 0
}

// SourceNets returns the nets driving bit. Out of range bits yield an empty
// result.
//
func (n *Net) SourceNets(bit int) []*ConnectionPoint { return connections(n.regs.sourceNets, bit) }

// SinkNets returns the nets consuming bit. Out of range bits yield an empty
// result.
//
func (n *Net) SinkNets(bit int) []*ConnectionPoint { return connections(n.regs.sinkNets, bit) }

// BitSources returns the pins driving bit.
//
func (n *Net) BitSources(bit int) []*ConnectionPoint { return connections(n.regs.sources, bit) }

// BitSinks returns the pins consuming bit.
//
func (n *Net) BitSinks(bit int) []*ConnectionPoint { return connections(n.regs.sinks, bit) }

// HasBitSource returns true if at least one pin drives bit.
//
func (n *Net) HasBitSource(bit int) bool { return count(n.regs.sources, bit) > 0 }

// HasBitSinks returns true if at least one pin consumes bit.
//
func (n *Net) HasBitSinks(bit int) bool { return count(n.regs.sinks, bit) > 0 }

// CleanupSourceNets keeps only the first net registered as a driver of bit.
//
func (n *Net) CleanupSourceNets(bit int) {
	s := slot(n.regs.sourceNets, bit)
	if s == nil || s.Len() <= 1 {
		return
	}
	first := s.First()
	s.Clear()
	s.Add(first)
}

// anySlot returns true if f holds for any initialized slot of r.
func anySlot(r []ConnectionSet, f func(*ConnectionSet) bool) bool {
	for i := range r {
		if f(&r[i]) {
			return true
		}
	}
	return false
}

// HasShortCircuit returns true if any bit is driven by more than one pin.
//
func (n *Net) HasShortCircuit() bool {
	return anySlot(n.regs.sources, func(s *ConnectionSet) bool { return s.Len() > 1 })
}

// HasSource returns true if any bit is driven by a pin.
//
func (n *Net) HasSource() bool {
	return anySlot(n.regs.sources, func(s *ConnectionSet) bool { return s.Len() > 0 })
}

// HasSinks returns true if any bit is consumed by a pin.
//
func (n *Net) HasSinks() bool {
	return anySlot(n.regs.sinks, func(s *ConnectionSet) bool { return s.Len() > 0 })
}

// Sinks returns every pin consuming any bit of n, each once, in bit then
// registration order.
//
func (n *Net) Sinks() []*ConnectionPoint {
	var all ConnectionSet
	for i := range n.regs.sinks {
		for _, p := range n.regs.sinks[i].list {
			all.Add(p)
		}
	}
	return all.list
}

// ShortCircuitBits returns the bits driven by more than one pin.
//
func (n *Net) ShortCircuitBits() []int {
	var bits []int
	for i := range n.regs.sources {
		if n.regs.sources[i].Len() > 1 {
			bits = append(bits, i)
		}
	}
	return bits
}

// UndrivenBits returns the bits that have sinks but no source, neither a pin
// nor a net.
//
func (n *Net) UndrivenBits() []int {
	var bits []int
	for i := range n.regs.sinks {
		if n.regs.sinks[i].Len() > 0 && count(n.regs.sources, i) == 0 && count(n.regs.sourceNets, i) == 0 {
			bits = append(bits, i)
		}
	}
	return bits
}
