// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netfile

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// a ref is a name with an optional bit index or range:
//
//	name
//	name[3]
//	name[0..3]
//
type ref struct {
	name string
	bits []int // nil if no index was given
}

// a link connects one net bit to one bit of ref (-1 if ref has no index).
type link struct {
	netBit int
	refBit int
}

// maxBits bounds the length of a bit range.
const maxBits = 1 << 16

func parseError(in string, msg string) error {
	return errors.Errorf("in %q: %s", in, msg)
}

// parseBits parses a bit index or an ascending bit range like 0..3.
//
func parseBits(s string) ([]int, error) {
	i := strings.Index(s, "..")
	if i < 0 {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 {
			return nil, parseError(s, "invalid bit index")
		}
		return []int{n}, nil
	}
	start, err := strconv.Atoi(strings.TrimSpace(s[:i]))
	if err != nil || start < 0 {
		return nil, parseError(s, "invalid range start")
	}
	end, err := strconv.Atoi(strings.TrimSpace(s[i+2:]))
	if err != nil || end < start {
		return nil, parseError(s, "invalid range end")
	}
	if end-start >= maxBits {
		return nil, parseError(s, "bit range too large")
	}
	r := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		r = append(r, i)
	}
	return r, nil
}

func parseRef(s string) (ref, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexRune(s, '[')
	if i < 0 {
		if s == "" {
			return ref{}, parseError(s, "empty name")
		}
		return ref{name: s}, nil
	}
	name := strings.TrimSpace(s[:i])
	if name == "" {
		return ref{}, parseError(s, "empty name")
	}
	if !strings.HasSuffix(s, "]") {
		return ref{}, parseError(s, "no terminating ] in bit range")
	}
	bits, err := parseBits(s[i+1 : len(s)-1])
	if err != nil {
		return ref{}, errors.Wrap(err, s)
	}
	return ref{name, bits}, nil
}

// parseConn parses a "bits=ref" connection and pairs net bits with ref bits.
// Both sides must have the same number of bits, unless ref has no index in
// which case the left hand side must be a single bit.
//
func parseConn(s string) (ref, []link, error) {
	i := strings.IndexRune(s, '=')
	if i < 0 {
		return ref{}, nil, parseError(s, "expected bits=reference")
	}
	bits, err := parseBits(s[:i])
	if err != nil {
		return ref{}, nil, errors.Wrap(err, s)
	}
	r, err := parseRef(s[i+1:])
	if err != nil {
		return ref{}, nil, errors.Wrap(err, s)
	}
	switch {
	case r.bits == nil && len(bits) == 1:
		return r, []link{{bits[0], -1}}, nil
	case len(bits) == len(r.bits):
		ls := make([]link, len(bits))
		for i := range bits {
			ls[i] = link{bits[i], r.bits[i]}
		}
		return r, ls, nil
	}
	return ref{}, nil, parseError(s, "bit count mismatch")
}
