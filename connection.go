// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package drc

import "strconv"

// A ConnectionPoint ties a component port to a bit of a net. Points
// registered as source or sink nets stand for a bit of another net; their
// parent net is that other net.
//
// ConnectionPoints are compared by identity. Callers that want two
// registrations of the same pin to collapse must reuse the same pointer.
//
type ConnectionPoint struct {
	component string
	port      int
	net       *Net
	bit       int
}

// NewConnectionPoint returns a new connection point belonging to the named
// component. Its child port and parent net bit are unset (-1).
//
func NewConnectionPoint(component string) *ConnectionPoint {
	return &ConnectionPoint{component: component, port: -1, bit: -1}
}

// Component returns the name of the component owning p.
//
func (p *ConnectionPoint) Component() string { return p.component }

// SetChildPort sets the index of the component port p is attached to.
//
func (p *ConnectionPoint) SetChildPort(port int) { p.port = port }

// ChildPort returns the component port index or -1.
//
func (p *ConnectionPoint) ChildPort() int { return p.port }

// SetParentNet attaches p to bit of net n.
//
func (p *ConnectionPoint) SetParentNet(n *Net, bit int) {
	p.net = n
	p.bit = bit
}

// ParentNet returns the net p is attached to, if any.
//
func (p *ConnectionPoint) ParentNet() *Net { return p.net }

// ParentNetBit returns the bit of ParentNet() p is attached to or -1.
//
func (p *ConnectionPoint) ParentNetBit() int { return p.bit }

func (p *ConnectionPoint) String() string {
	s := p.component
	if p.port >= 0 {
		s += "." + strconv.Itoa(p.port)
	}
	if p.net != nil {
		s += "[" + strconv.Itoa(p.bit) + "]"
	}
	return s
}

// A ConnectionSet is an insertion ordered set of connection points.
// The zero value is an empty set ready to use.
//
type ConnectionSet struct {
	list []*ConnectionPoint
	seen map[*ConnectionPoint]struct{}
}

// Add appends p to the set. It returns false if p is nil or already present.
//
func (s *ConnectionSet) Add(p *ConnectionPoint) bool {
	if p == nil {
		return false
	}
	if _, ok := s.seen[p]; ok {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[*ConnectionPoint]struct{})
	}
	s.seen[p] = struct{}{}
	s.list = append(s.list, p)
	return true
}

// Clear removes all connection points from s.
//
func (s *ConnectionSet) Clear() {
	s.list = nil
	s.seen = nil
}

// Len returns the number of connection points in s.
//
func (s *ConnectionSet) Len() int { return len(s.list) }

// First returns the earliest added connection point or nil.
//
func (s *ConnectionSet) First() *ConnectionPoint {
	if len(s.list) == 0 {
		return nil
	}
	return s.list[0]
}

// Connections returns a copy of the connection points in insertion order.
//
func (s *ConnectionSet) Connections() []*ConnectionPoint {
	if len(s.list) == 0 {
		return nil
	}
	return append([]*ConnectionPoint(nil), s.list...)
}
