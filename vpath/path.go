// Package vpath converts between virtual tree paths and the flat on-disk names
// that encode them.
//
// A flat name is the path's segments joined by [Separator], with a leading
// separator marking an absolute path: "-home-alice-notes" is the absolute path
// home/alice/notes.
package vpath

import (
	"slices"
	"strings"

	"github.com/brettbedarf/ffs"
)

// Separator joins segments in a flat name. It can never appear inside a segment.
const Separator = "-"

const (
	parentSegment  = ".."
	currentSegment = "."
)

// Path is an ordered sequence of segments tagged absolute or relative.
// The zero value is the empty relative path.
type Path struct {
	Segments []string
	Absolute bool
}

// Root returns the empty absolute path
func Root() Path {
	return Path{Absolute: true}
}

// Abs returns an absolute path made of segs
func Abs(segs ...string) Path {
	return Path{Segments: segs, Absolute: true}
}

// Rel returns a relative path made of segs
func Rel(segs ...string) Path {
	return Path{Segments: segs}
}

// IsRoot reports whether p is the empty absolute path
func (p Path) IsRoot() bool {
	return p.Absolute && len(p.Segments) == 0
}

// Len returns the number of segments
func (p Path) Len() int {
	return len(p.Segments)
}

// Equal is structural: same segments, same tag
func (p Path) Equal(o Path) bool {
	return p.Absolute == o.Absolute && slices.Equal(p.Segments, o.Segments)
}

// Join returns a new path with segs appended. p is not modified.
func (p Path) Join(segs ...string) Path {
	out := make([]string, 0, len(p.Segments)+len(segs))
	out = append(out, p.Segments...)
	out = append(out, segs...)
	return Path{Segments: out, Absolute: p.Absolute}
}

// Split separates the final segment from its parent path.
// Fails with MalformedPath when there is no final segment to name a target.
func (p Path) Split() (dir Path, leaf string, err error) {
	if len(p.Segments) == 0 {
		return Path{}, "", ffs.ErrMalformedPath(Encode(p), "no target name")
	}
	n := len(p.Segments) - 1
	dir = Path{Segments: slices.Clone(p.Segments[:n]), Absolute: p.Absolute}
	return dir, p.Segments[n], nil
}

// String returns the encoded form; see [Encode]
func (p Path) String() string {
	return Encode(p)
}

// Encode joins the segments with the separator, prefixing one when p is absolute.
// The result is the physical filename for a File at p.
func Encode(p Path) string {
	joined := strings.Join(p.Segments, Separator)
	if p.Absolute {
		return Separator + joined
	}
	return joined
}

// EncodeDir is the display form of a directory path: the encoded path plus a
// trailing separator. The root is a single separator.
func EncodeDir(p Path) string {
	if len(p.Segments) == 0 {
		if p.Absolute {
			return Separator
		}
		return ""
	}
	return Encode(p) + Separator
}

// Decode splits a flat name into a path. A leading separator makes the path
// absolute and a single trailing separator is ignored. Empty interior segments
// ("a--b") are malformed.
func Decode(flat string) (Path, error) {
	var p Path
	if flat == "" {
		return p, nil
	}
	rest := flat
	if strings.HasPrefix(rest, Separator) {
		p.Absolute = true
		rest = rest[len(Separator):]
	}
	rest = strings.TrimSuffix(rest, Separator)
	if rest == "" {
		return p, nil
	}
	parts := strings.Split(rest, Separator)
	for _, seg := range parts {
		if seg == "" {
			return Path{}, ffs.ErrMalformedPath(flat, "empty segment")
		}
	}
	p.Segments = parts
	return p, nil
}

// Resolve interprets input against base the way a conventional shell does:
// input starting with the separator is resolved from the root, anything else
// relative to base. "." segments are dropped and ".." pops one segment,
// stopping at the root.
func Resolve(base Path, input string) (Path, error) {
	in, err := Decode(input)
	if err != nil {
		return Path{}, err
	}
	var out Path
	if in.Absolute {
		out = Path{Absolute: true}
	} else {
		out = Path{Segments: slices.Clone(base.Segments), Absolute: base.Absolute}
	}
	for _, seg := range in.Segments {
		switch seg {
		case currentSegment:
		case parentSegment:
			if len(out.Segments) > 0 {
				out.Segments = out.Segments[:len(out.Segments)-1]
			}
		default:
			out.Segments = append(out.Segments, seg)
		}
	}
	return out, nil
}

// ValidateSegment checks that name can be stored as a single segment: it must be
// non-empty, free of the separator, and not one of the navigation names "." or "..".
func ValidateSegment(name string) error {
	switch {
	case name == "":
		return ffs.ErrMalformedPath(name, "empty name")
	case strings.Contains(name, Separator):
		return ffs.ErrMalformedPath(name, "name contains the separator")
	case name == currentSegment || name == parentSegment:
		return ffs.ErrMalformedPath(name, "reserved name")
	}
	return nil
}
