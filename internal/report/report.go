// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package report runs design rule checks over loaded nets and formats the
// findings.
//
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/db47h/drc"
	"github.com/db47h/drc/internal/netfile"
	"github.com/fatih/color"
)

// Severity of a finding.
//
type Severity int

// Severity values.
//
const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Kind identifies the rule a finding comes from.
//
type Kind int

// Finding kinds.
//
const (
	ShortCircuit Kind = iota
	MultipleNetDrivers
	Undriven
	NoSinks
	UnconnectedTunnel
)

var kindNames = [...]string{
	ShortCircuit:       "short circuit",
	MultipleNetDrivers: "multiple net drivers",
	Undriven:           "undriven",
	NoSinks:            "no sinks",
	UnconnectedTunnel:  "unconnected tunnel",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// A Finding is a rule violation on one net. Bit is -1 for findings about the
// net as a whole.
//
type Finding struct {
	Severity Severity
	Kind     Kind
	Net      string
	Bit      int
	Detail   string
}

func (f Finding) String() string {
	var b strings.Builder
	b.WriteString(f.Net)
	if f.Bit >= 0 {
		fmt.Fprintf(&b, "[%d]", f.Bit)
	}
	b.WriteString(": ")
	b.WriteString(f.Kind.String())
	if f.Detail != "" {
		b.WriteString(": ")
		b.WriteString(f.Detail)
	}
	return b.String()
}

func labels(d *netfile.Design, ps []*drc.ConnectionPoint) string {
	ls := make([]string, len(ps))
	for i, p := range ps {
		ls[i] = d.Label(p)
	}
	return strings.Join(ls, ", ")
}

// Check runs all checks on the nets of d, in net order.
//
// Bits driven by more than one net keep their first driver only; the others
// are dropped from the net and reported as warnings. Check therefore modifies
// d: running it again on the same design no longer reports these drivers.
//
func Check(d *netfile.Design) []Finding {
	var fs []Finding
	tunnels := make(map[string]int)
	for _, n := range d.Nets {
		for _, t := range n.Tunnels() {
			tunnels[t]++
		}
	}
	for _, n := range d.Nets {
		name := d.Name(n)
		for _, bit := range n.ShortCircuitBits() {
			fs = append(fs, Finding{Error, ShortCircuit, name, bit, "driven by " + labels(d, n.BitSources(bit))})
		}
		for bit := 0; bit < n.BitWidth(); bit++ {
			if drv := n.SourceNets(bit); len(drv) > 1 {
				n.CleanupSourceNets(bit)
				fs = append(fs, Finding{Warning, MultipleNetDrivers, name, bit,
					"keeping " + d.Label(drv[0]) + ", dropping " + labels(d, drv[1:])})
			}
		}
		for _, bit := range n.UndrivenBits() {
			fs = append(fs, Finding{Error, Undriven, name, bit, "read by " + labels(d, n.BitSinks(bit))})
		}
		if n.HasSource() && !n.HasSinks() && !hasSinkNets(n) {
			fs = append(fs, Finding{Warning, NoSinks, name, -1, ""})
		}
		for _, t := range n.Tunnels() {
			if tunnels[t] == 1 {
				fs = append(fs, Finding{Warning, UnconnectedTunnel, name, -1, t})
			}
		}
	}
	return fs
}

func hasSinkNets(n *drc.Net) bool {
	for bit := 0; bit < n.BitWidth(); bit++ {
		if len(n.SinkNets(bit)) > 0 {
			return true
		}
	}
	return false
}

// Summary counts errors and warnings in fs.
//
func Summary(fs []Finding) (errs, warns int) {
	for _, f := range fs {
		if f.Severity == Error {
			errs++
		} else {
			warns++
		}
	}
	return errs, warns
}

// Write prints one line per finding to w, colored if colorize is set.
//
func Write(w io.Writer, fs []Finding, colorize bool) error {
	sev := map[Severity]*color.Color{
		Error:   color.New(color.FgRed, color.Bold),
		Warning: color.New(color.FgYellow, color.Bold),
	}
	for _, c := range sev {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	for _, f := range fs {
		if _, err := fmt.Fprintf(w, "%s: %s\n", sev[f.Severity].Sprint(f.Severity), f); err != nil {
			return err
		}
	}
	return nil
}
