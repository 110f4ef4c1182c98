// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package netfile loads net descriptions from TOML files.
//
// A file declares nets with their geometry, bit width, hierarchy and the pins
// connected to each bit:
//
//	[[net]]
//	name = "data"
//	width = 4
//	points = [[0, 0]]
//	wires = [[0, 0, 10, 0]]
//	tunnels = ["DATA"]
//	merge = ["data_b"]
//	parent = "bus"
//	parent_bits = [0, 1, 2, 3]
//	root = false
//	sources = ["0..3=alu.out[0..3]"]
//	sinks = ["0=reg.d[0]", "1..3=reg.d[1..3]"]
//	source_nets = ["0=bus[2]"]
//	sink_nets = []
//
// Connections read "bits=reference": the net bits on the left, a component
// port (component.port) or a declared net on the right, each with an optional
// [index] or [start..end] range.
//
package netfile

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/db47h/drc"
	"github.com/pkg/errors"
)

type file struct {
	Net []netDecl `toml:"net"`
}

type netDecl struct {
	Name       string   `toml:"name"`
	Width      int      `toml:"width"`
	Points     [][]int  `toml:"points"`
	Wires      [][]int  `toml:"wires"`
	Tunnels    []string `toml:"tunnels"`
	Merge      []string `toml:"merge"`
	Parent     string   `toml:"parent"`
	ParentBits []int    `toml:"parent_bits"`
	Root       bool     `toml:"root"`
	Sources    []string `toml:"sources"`
	Sinks      []string `toml:"sinks"`
	SourceNets []string `toml:"source_nets"`
	SinkNets   []string `toml:"sink_nets"`
}

// Design is a set of loaded nets.
//
type Design struct {
	// Nets lists the nets that survived merges, in declaration order.
	Nets []*drc.Net

	names  map[*drc.Net]string
	byName map[string]*drc.Net // includes merged away names
	pins   map[pinKey]*drc.ConnectionPoint
	ports  map[string]map[string]int
	links  map[netKey]*drc.ConnectionPoint
	labels map[*drc.ConnectionPoint]string
}

type pinKey struct {
	component, port string
	bit             int
}

type netKey struct {
	net *drc.Net
	bit int
}

// Name returns the declared name of n.
//
func (d *Design) Name(n *drc.Net) string { return d.names[n] }

// Label returns the reference p was declared with, like "alu.out[2]" for a
// port bit or "bus[2]" for a net bit.
//
func (d *Design) Label(p *drc.ConnectionPoint) string {
	if l, ok := d.labels[p]; ok {
		return l
	}
	return p.String()
}

// Net returns the net declared under name, or the net it was merged into.
//
func (d *Design) Net(name string) *drc.Net { return d.byName[name] }

// Load loads a design from the named file.
//
func Load(path string) (*Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return d, nil
}

// Parse reads a design from r.
//
func Parse(r io.Reader) (*Design, error) {
	var f file
	meta, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if u := meta.Undecoded(); len(u) > 0 {
		return nil, errors.Errorf("unknown key %q", u[0].String())
	}

	d := &Design{
		names:  make(map[*drc.Net]string),
		byName: make(map[string]*drc.Net),
		pins:   make(map[pinKey]*drc.ConnectionPoint),
		ports:  make(map[string]map[string]int),
		links:  make(map[netKey]*drc.ConnectionPoint),
		labels: make(map[*drc.ConnectionPoint]string),
	}
	for i := range f.Net {
		if err := d.declare(&f.Net[i]); err != nil {
			return nil, err
		}
	}
	for i := range f.Net {
		if err := d.merge(&f.Net[i]); err != nil {
			return nil, errors.Wrap(err, "net "+f.Net[i].Name)
		}
	}
	for i := range f.Net {
		if err := d.hierarchy(&f.Net[i]); err != nil {
			return nil, errors.Wrap(err, "net "+f.Net[i].Name)
		}
	}
	for _, n := range d.Nets {
		n.InitSourceSinks()
	}
	for i := range f.Net {
		if err := d.connect(&f.Net[i]); err != nil {
			return nil, errors.Wrap(err, "net "+f.Net[i].Name)
		}
	}
	return d, nil
}

func (d *Design) declare(nd *netDecl) error {
	if nd.Name == "" {
		return errors.New("net with no name")
	}
	if d.byName[nd.Name] != nil {
		return errors.New("duplicate net " + nd.Name)
	}
	if nd.Width < 0 {
		return errors.Wrapf(drc.ErrNegativeWidth, "net %s", nd.Name)
	}
	var n *drc.Net
	for _, p := range nd.Points {
		if len(p) != 2 {
			return errors.Errorf("net %s: point %v: expected [x, y]", nd.Name, p)
		}
		pn := drc.NewBus(drc.Loc(p[0], p[1]), nd.Width)
		if n == nil {
			n = pn
		} else if err := n.Merge(pn); err != nil {
			return errors.Wrapf(err, "net %s", nd.Name)
		}
	}
	if n == nil {
		n = drc.New()
		if err := n.SetWidth(nd.Width); err != nil {
			return errors.Wrapf(err, "net %s", nd.Name)
		}
	}
	for _, w := range nd.Wires {
		if len(w) != 4 {
			return errors.Errorf("net %s: wire %v: expected [x0, y0, x1, y1]", nd.Name, w)
		}
		n.Add(drc.NewWire(drc.Loc(w[0], w[1]), drc.Loc(w[2], w[3])))
	}
	for _, t := range nd.Tunnels {
		n.AddTunnel(t)
	}
	d.Nets = append(d.Nets, n)
	d.names[n] = nd.Name
	d.byName[nd.Name] = n
	return nil
}

func (d *Design) lookup(name string) (*drc.Net, error) {
	n := d.byName[name]
	if n == nil {
		return nil, errors.New("unknown net " + name)
	}
	return n, nil
}

func (d *Design) merge(nd *netDecl) error {
	for _, name := range nd.Merge {
		n := d.byName[nd.Name]
		o, err := d.lookup(name)
		if err != nil {
			return errors.Wrap(err, "merge")
		}
		if o == n {
			continue
		}
		if err := n.Merge(o); err != nil {
			return errors.Wrap(err, name)
		}
		for k, v := range d.byName {
			if v == o {
				d.byName[k] = n
			}
		}
		delete(d.names, o)
		for i, v := range d.Nets {
			if v == o {
				d.Nets = append(d.Nets[:i], d.Nets[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (d *Design) hierarchy(nd *netDecl) error {
	n := d.byName[nd.Name]
	if nd.Root {
		n.ForceRoot()
	}
	if nd.Parent != "" {
		p, err := d.lookup(nd.Parent)
		if err != nil {
			return err
		}
		if err := n.SetParent(p); err != nil {
			return errors.Wrap(err, nd.Parent)
		}
	}
	for _, b := range nd.ParentBits {
		if err := n.AddParentBit(b); err != nil {
			return err
		}
	}
	return nil
}

func label(name string, bit int) string {
	if bit < 0 {
		return name
	}
	return name + "[" + strconv.Itoa(bit) + "]"
}

type addFn func(bit int, p *drc.ConnectionPoint) error

func (d *Design) connect(nd *netDecl) error {
	n := d.byName[nd.Name]
	pins := []struct {
		conns []string
		add   addFn
	}{
		{nd.Sources, n.AddSource},
		{nd.Sinks, n.AddSink},
	}
	for _, g := range pins {
		for _, c := range g.conns {
			if err := d.connectPins(n, c, g.add); err != nil {
				return err
			}
		}
	}
	nets := []struct {
		conns []string
		add   addFn
	}{
		{nd.SourceNets, n.AddSourceNet},
		{nd.SinkNets, n.AddSinkNet},
	}
	for _, g := range nets {
		for _, c := range g.conns {
			if err := d.connectNets(c, g.add); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Design) connectPins(n *drc.Net, c string, add addFn) error {
	r, ls, err := parseConn(c)
	if err != nil {
		return err
	}
	i := strings.IndexRune(r.name, '.')
	if i <= 0 || i == len(r.name)-1 {
		return parseError(c, "expected component.port")
	}
	comp, port := r.name[:i], r.name[i+1:]
	for _, l := range ls {
		p, err := d.pin(comp, port, l.refBit, n, l.netBit)
		if err != nil {
			return errors.Wrap(err, c)
		}
		if err := add(l.netBit, p); err != nil {
			return errors.Wrap(err, c)
		}
	}
	return nil
}

// pin returns the connection point for bit of a component port, attached to
// bit netBit of n. The same port bit always yields the same point and cannot
// be attached to two different net bits.
//
func (d *Design) pin(comp, port string, bit int, n *drc.Net, netBit int) (*drc.ConnectionPoint, error) {
	k := pinKey{comp, port, bit}
	if p := d.pins[k]; p != nil {
		if p.ParentNet() != n || p.ParentNetBit() != netBit {
			return nil, errors.Errorf("pin already connected to net %s bit %d", d.names[p.ParentNet()], p.ParentNetBit())
		}
		return p, nil
	}
	ports := d.ports[comp]
	if ports == nil {
		ports = make(map[string]int)
		d.ports[comp] = ports
	}
	idx, ok := ports[port]
	if !ok {
		idx = len(ports)
		ports[port] = idx
	}
	p := drc.NewConnectionPoint(comp)
	p.SetChildPort(idx)
	p.SetParentNet(n, netBit)
	d.pins[k] = p
	d.labels[p] = label(comp+"."+port, bit)
	return p, nil
}

func (d *Design) connectNets(c string, add addFn) error {
	r, ls, err := parseConn(c)
	if err != nil {
		return err
	}
	o, err := d.lookup(r.name)
	if err != nil {
		return errors.Wrap(err, c)
	}
	for _, l := range ls {
		bit := l.refBit
		if bit < 0 {
			if o.BitWidth() > 1 {
				return parseError(c, "bit index required for multi-bit net")
			}
			bit = 0
		}
		if bit >= o.BitWidth() {
			return errors.Wrapf(drc.ErrBitRange, "%s: bit %d of %d-bit net %s", c, bit, o.BitWidth(), r.name)
		}
		k := netKey{o, bit}
		p := d.links[k]
		if p == nil {
			p = drc.NewConnectionPoint(d.names[o])
			p.SetParentNet(o, bit)
			d.links[k] = p
			d.labels[p] = label(d.names[o], bit)
		}
		if err := add(l.netBit, p); err != nil {
			return errors.Wrap(err, c)
		}
	}
	return nil
}
