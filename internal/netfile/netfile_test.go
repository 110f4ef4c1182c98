// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/db47h/drc"
	"github.com/db47h/drc/internal/netfile"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

const design = `
[[net]]
name = "bus"
width = 4
points = [[0, 0]]
wires = [[0, 0, 40, 0]]
sources = ["0..3=alu.out[0..3]"]

[[net]]
name = "bit2"
width = 1
wires = [[20, 0, 20, 10]]
parent = "bus"
parent_bits = [2]
source_nets = ["0=bus[2]"]
sinks = ["0=led.in"]

[[net]]
name = "clk"
width = 1
points = [[0, 50]]
tunnels = ["CLK"]
merge = ["clk_b"]
sources = ["0=osc.out", "0=osc2.out"]
sinks = ["0=reg.clk"]

[[net]]
name = "clk_b"
width = 1
wires = [[0, 50, 0, 60]]
tunnels = ["CLK2"]
sinks = ["0=ram.clk", "0=reg.clk"]

[[net]]
name = "orphan"
width = 1
root = true
sinks = ["0=ram.we"]
`

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func labels(d *netfile.Design, ps []*drc.ConnectionPoint) []string {
	var ls []string
	for _, p := range ps {
		ls = append(ls, d.Label(p))
	}
	return ls
}

func TestParse(t *testing.T) {
	d, err := netfile.Parse(strings.NewReader(design))
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	var names []string
	for _, n := range d.Nets {
		names = append(names, d.Name(n))
	}
	if diff := cmp.Diff([]string{"bus", "bit2", "clk", "orphan"}, names); diff != "" {
		t.Fatalf("nets mismatch (-want +got):\n%s", diff)
	}

	bus, bit2, clk, orphan := d.Net("bus"), d.Net("bit2"), d.Net("clk"), d.Net("orphan")
	if d.Net("clk_b") != clk {
		t.Error("clk_b not merged into clk")
	}
	if !bus.IsBus() || !bus.Contains(drc.Loc(40, 0)) || bus.HasShortCircuit() {
		t.Error("bad bus net")
	}
	for bit := 0; bit < 4; bit++ {
		got := labels(d, bus.BitSources(bit))
		want := []string{"alu.out[" + string(rune('0'+bit)) + "]"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("bus bit %d sources (-want +got):\n%s", bit, diff)
		}
	}

	if bit2.IsRoot() || bit2.Root() != bus {
		t.Error("bit2 not a child of bus")
	}
	if b, err := bit2.Bit(0); err != nil || b != 2 {
		t.Errorf("bit2.Bit(0) = %d, %v", b, err)
	}
	if diff := cmp.Diff([]string{"bus[2]"}, labels(d, bit2.SourceNets(0))); diff != "" {
		t.Errorf("bit2 source nets (-want +got):\n%s", diff)
	}
	if p := bit2.SourceNets(0)[0]; p.ParentNet() != bus || p.ParentNetBit() != 2 {
		t.Error("bit2 source net not attached to bus[2]")
	}

	if !clk.HasShortCircuit() {
		t.Error("clk short circuit not detected")
	}
	if diff := cmp.Diff([]string{"CLK", "CLK2"}, clk.Tunnels()); diff != "" {
		t.Errorf("clk tunnels (-want +got):\n%s", diff)
	}
	if !clk.Contains(drc.Loc(0, 60)) {
		t.Error("clk_b geometry not merged")
	}
	if diff := cmp.Diff([]string{"reg.clk", "ram.clk"}, labels(d, clk.Sinks())); diff != "" {
		t.Errorf("clk sinks (-want +got):\n%s", diff)
	}
	if p := clk.Sinks()[1]; p.Component() != "ram" || p.ChildPort() != 0 {
		t.Errorf("ram.clk: component %q port %d", p.Component(), p.ChildPort())
	}
	if p := orphan.Sinks()[0]; p.Component() != "ram" || p.ChildPort() != 1 {
		t.Errorf("ram.we: component %q port %d", p.Component(), p.ChildPort())
	}

	if !orphan.IsForcedRoot() || orphan.HasSource() {
		t.Error("bad orphan net")
	}
}

func TestParse_errors(t *testing.T) {
	data := []struct {
		name string
		in   string
		err  string
	}{
		{"unknown_key", `[[net]]
name = "a"
colour = "red"`, `unknown key "net.colour"`},
		{"no_name", `[[net]]
width = 1`, "net with no name"},
		{"duplicate", `[[net]]
name = "a"
[[net]]
name = "a"`, "duplicate net a"},
		{"negative_width", `[[net]]
name = "a"
width = -2`, "net a: negative bit width"},
		{"bad_point", `[[net]]
name = "a"
points = [[1]]`, "net a: point [1]: expected [x, y]"},
		{"bad_wire", `[[net]]
name = "a"
wires = [[1, 2, 3]]`, "net a: wire [1 2 3]: expected [x0, y0, x1, y1]"},
		{"merge_width", `[[net]]
name = "a"
width = 1
merge = ["b"]
[[net]]
name = "b"
width = 2`, "net a: b: merge 2-bit net into 1-bit net: bit width mismatch"},
		{"merge_unknown", `[[net]]
name = "a"
merge = ["b"]`, "net a: merge: unknown net b"},
		{"root_parent", `[[net]]
name = "a"
[[net]]
name = "b"
root = true
parent = "a"`, "net b: a: set parent: net is forced root"},
		{"parent_bit", `[[net]]
name = "a"
[[net]]
name = "b"
parent = "a"
parent_bits = [300]`, "net b: add parent bit 300: bit index does not fit a byte"},
		{"bit_range", `[[net]]
name = "a"
width = 1
sources = ["1=g.out"]`, `net a: 1=g.out: add source on bit 1 of 1: bit index out of range`},
		{"bad_pin", `[[net]]
name = "a"
width = 1
sinks = ["0=gate"]`, `net a: in "0=gate": expected component.port`},
		{"pin_twice", `[[net]]
name = "a"
width = 1
sinks = ["0=g.in"]
[[net]]
name = "b"
width = 1
sinks = ["0=g.in"]`, `net b: 0=g.in: pin already connected to net a bit 0`},
		{"net_bit_range", `[[net]]
name = "a"
width = 1
source_nets = ["0=b[1]"]
[[net]]
name = "b"
width = 1`, `net a: 0=b[1]: bit 1 of 1-bit net b: bit index out of range`},
		{"huge_range", `[[net]]
name = "a"
width = 1
sources = ["0..20000000=g.out[0..20000000]"]`, `net a: 0..20000000=g.out[0..20000000]: in "0..20000000": bit range too large`},
		{"max_range", `[[net]]
name = "a"
width = 1
sinks = ["0..9223372036854775807=g.in[0..1]"]`, `net a: 0..9223372036854775807=g.in[0..1]: in "0..9223372036854775807": bit range too large`},
		{"net_bit_required", `[[net]]
name = "a"
width = 1
source_nets = ["0=b"]
[[net]]
name = "b"
width = 4`, `net a: in "0=b": bit index required for multi-bit net`},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			_, err := netfile.Parse(strings.NewReader(d.in))
			if err == nil && d.err != "" || err != nil && err.Error() != d.err {
				t.Errorf("Got error %q, expected %q", err, d.err)
			}
		})
	}
}

const docExample = `
[[net]]
name = "data"
width = 4
points = [[0, 0]]
wires = [[0, 0, 10, 0]]
tunnels = ["DATA"]
merge = ["data_b"]
parent = "bus"
parent_bits = [0, 1, 2, 3]
root = false
sources = ["0..3=alu.out[0..3]"]
sinks = ["0=reg.d[0]", "1..3=reg.d[1..3]"]
source_nets = ["0=bus[2]"]
sink_nets = []

[[net]]
name = "data_b"
width = 4
wires = [[10, 0, 10, 10]]

[[net]]
name = "bus"
width = 8
`

func TestParse_docExample(t *testing.T) {
	d, err := netfile.Parse(strings.NewReader(docExample))
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	data, bus := d.Net("data"), d.Net("bus")
	if d.Net("data_b") != data || len(d.Nets) != 2 {
		t.Fatal("data_b not merged into data")
	}
	if data.Parent() != bus || !data.Contains(drc.Loc(10, 10)) || !data.ContainsTunnel("DATA") {
		t.Error("bad data net")
	}
	for local := 0; local < 4; local++ {
		if b, err := data.Bit(local); err != nil || b != local {
			t.Errorf("data.Bit(%d) = %d, %v", local, b, err)
		}
	}
	want := []string{"reg.d[0]", "reg.d[1]", "reg.d[2]", "reg.d[3]"}
	if diff := cmp.Diff(want, labels(d, data.Sinks())); diff != "" {
		t.Errorf("data sinks (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"alu.out[3]"}, labels(d, data.BitSources(3))); diff != "" {
		t.Errorf("data bit 3 sources (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bus[2]"}, labels(d, data.SourceNets(0))); diff != "" {
		t.Errorf("data source nets (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.toml")
	if err := os.WriteFile(path, []byte(design), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := netfile.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Nets) != 4 {
		t.Errorf("got %d nets, expected 4", len(d.Nets))
	}

	_, err = netfile.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("Load of a missing file: got error %v", err)
	}
}
