// SPDX-License-Identifier: GPL-2.0-or-later

package dtype

import (
	"strconv"
	"strings"

	"godark/qerr"
)

// Segment is one step of a Path: a struct member name or an array index.
type Segment struct {
	name    string
	index   int
	isIndex bool
}

func Member(name string) Segment {
	return Segment{name: name}
}

func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

func (s Segment) IsIndex() bool { return s.isIndex }
func (s Segment) Name() string  { return s.name }
func (s Segment) Idx() int      { return s.index }

// Path addresses a leaf inside a composed type. Member names may contain
// '.' or '[' since the segments are kept apart.
type Path []Segment

// P builds a path of member names.
func P(names ...string) Path {
	p := make(Path, len(names))
	for i, n := range names {
		p[i] = Member(n)
	}
	return p
}

func (p Path) prefixed(s Segment) Path {
	r := make(Path, 0, len(p)+1)
	r = append(r, s)
	return append(r, p...)
}

// String returns the dotted form, e.g. "pos.lights[2].bright".
func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p {
		if s.isIndex {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(s.index))
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(s.name)
	}
	return sb.String()
}

// key is an unambiguous lookup key for the flattened field table.
func (p Path) key() string {
	var sb strings.Builder
	for _, s := range p {
		if s.isIndex {
			sb.WriteByte('i')
			sb.WriteString(strconv.Itoa(s.index))
			sb.WriteByte(';')
			continue
		}
		sb.WriteByte('m')
		sb.WriteString(strconv.Itoa(len(s.name)))
		sb.WriteByte(':')
		sb.WriteString(s.name)
	}
	return sb.String()
}

// ParsePath parses the dotted form produced by Path.String.
func ParsePath(s string) (Path, error) {
	var p Path
	for len(s) > 0 {
		switch s[0] {
		case '.':
			if len(p) == 0 {
				return nil, qerr.Format("path %q starts with '.'", s)
			}
			s = s[1:]
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return nil, qerr.Format("unterminated index in path %q", s)
			}
			i, err := strconv.Atoi(s[1:end])
			if err != nil || i < 0 {
				return nil, qerr.Format("bad index %q in path", s[1:end])
			}
			p = append(p, Index(i))
			s = s[end+1:]
			continue
		}
		end := strings.IndexAny(s, ".[")
		if end < 0 {
			end = len(s)
		}
		if end == 0 {
			return nil, qerr.Format("empty member name in path")
		}
		p = append(p, Member(s[:end]))
		s = s[end:]
	}
	return p, nil
}
