// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netfile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_parseConn(t *testing.T) {
	data := []struct {
		in    string
		name  string
		links []link
		err   string
	}{
		{"0=g.out", "g.out", []link{{0, -1}}, ""},
		{" 2 = g.out[1] ", "g.out", []link{{2, 1}}, ""},
		{"0..2=alu.out[4..6]", "alu.out", []link{{0, 4}, {1, 5}, {2, 6}}, ""},
		{"1..2=bus[0..1]", "bus", []link{{1, 0}, {2, 1}}, ""},
		{"g.out", "", nil, `in "g.out": expected bits=reference`},
		{"0..1=g.out", "", nil, `in "0..1=g.out": bit count mismatch`},
		{"0..1=g.out[3]", "", nil, `in "0..1=g.out[3]": bit count mismatch`},
		{"x=g.out", "", nil, `x=g.out: in "x": invalid bit index`},
		{"3..1=g.out[0..2]", "", nil, `3..1=g.out[0..2]: in "3..1": invalid range end`},
		{"0=", "", nil, `0=: in "": empty name`},
		{"0=[1]", "", nil, `0=[1]: in "[1]": empty name`},
		{"0=g.out[1", "", nil, `0=g.out[1: in "g.out[1": no terminating ] in bit range`},
		{"0..9223372036854775807=g.in[0..1]", "", nil, `0..9223372036854775807=g.in[0..1]: in "0..9223372036854775807": bit range too large`},
		{"0=g.out[0..65536]", "", nil, `0=g.out[0..65536]: g.out[0..65536]: in "0..65536": bit range too large`},
		{"0=g.out[-1]", "", nil, `0=g.out[-1]: g.out[-1]: in "-1": invalid bit index`},
	}
	for _, d := range data {
		t.Run(d.in, func(t *testing.T) {
			r, ls, err := parseConn(d.in)
			if err == nil && d.err != "" || err != nil && err.Error() != d.err {
				t.Fatalf("Got error %q, expected %q", err, d.err)
			}
			if err != nil {
				return
			}
			if r.name != d.name {
				t.Errorf("name = %q, expected %q", r.name, d.name)
			}
			if diff := cmp.Diff(d.links, ls, cmp.AllowUnexported(link{})); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_parseConn_maxBits(t *testing.T) {
	_, ls, err := parseConn("0..65535=g.out[0..65535]")
	if err != nil {
		t.Fatal(err)
	}
	if len(ls) != maxBits || ls[maxBits-1] != (link{maxBits - 1, maxBits - 1}) {
		t.Errorf("got %d links, expected %d", len(ls), maxBits)
	}
}
