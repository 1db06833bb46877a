package piece

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ipfs/go-cid"
)

// Piece is any value that can be stored in a catalog.
type Piece interface {
	Kind() Kind
	Validate() error
}

var ErrInvalid = errors.New("piece: invalid")

// Template is a reusable surface layout.
type Template struct {
	Name    string
	Surface string // serialized geometry, opaque here
}

func (Template) Kind() Kind { return KindTemplate }

func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: template name is required", ErrInvalid)
	}
	return nil
}

// SvgMarker is a vector graphic used as a placement marker.
type SvgMarker struct {
	Name  string
	Value string // serialized SVG, opaque here
}

func (SvgMarker) Kind() Kind { return KindSvgMarker }

func (m SvgMarker) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: svg marker name is required", ErrInvalid)
	}
	return nil
}

// EmojiGroup is an ordered set of emoji usable as markers.
type EmojiGroup struct {
	Name        string
	Description string
	Unicodes    []string // each entry is exactly one code point
}

func (EmojiGroup) Kind() Kind { return KindEmojiGroup }

func (g EmojiGroup) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("%w: emoji group name is required", ErrInvalid)
	}
	for i, u := range g.Unicodes {
		if !utf8.ValidString(u) || utf8.RuneCountInString(u) != 1 {
			return fmt.Errorf("%w: emoji group unicode[%d] %q is not a single code point", ErrInvalid, i, u)
		}
	}
	return nil
}

// MarkerPiece points at the marker of a Space: an SvgMarker or an EmojiGroup.
type MarkerPiece struct {
	Kind Kind
	ID   cid.Cid
}

// SvgRef returns a marker reference to an SvgMarker.
func SvgRef(id cid.Cid) *MarkerPiece { return &MarkerPiece{Kind: KindSvgMarker, ID: id} }

// EmojiGroupRef returns a marker reference to an EmojiGroup.
func EmojiGroupRef(id cid.Cid) *MarkerPiece { return &MarkerPiece{Kind: KindEmojiGroup, ID: id} }

func (m MarkerPiece) Validate() error {
	if m.Kind != KindSvgMarker && m.Kind != KindEmojiGroup {
		return fmt.Errorf("%w: marker kind %s", ErrInvalid, m.Kind)
	}
	if !m.ID.Defined() {
		return fmt.Errorf("%w: marker hash is undefined", ErrInvalid)
	}
	return nil
}

// Space is a playing surface built on a Template, optionally with a marker.
type Space struct {
	Name     string
	Origin   cid.Cid // Template
	Surface  string
	Marker   *MarkerPiece
	Metadata map[string]string
}

func (Space) Kind() Kind { return KindSpace }

func (s Space) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: space name is required", ErrInvalid)
	}
	if !s.Origin.Defined() {
		return fmt.Errorf("%w: space origin is undefined", ErrInvalid)
	}
	if s.Marker != nil {
		return s.Marker.Validate()
	}
	return nil
}

// Dependencies returns the pieces s refers to, origin first.
func (s Space) Dependencies() []Ref {
	deps := []Ref{{Kind: KindTemplate, ID: s.Origin}}
	if s.Marker != nil {
		deps = append(deps, Ref{Kind: s.Marker.Kind, ID: s.Marker.ID})
	}
	return deps
}

// Playset is a named snapshot of pieces and spaces.
type Playset struct {
	Name        string
	Description string
	Templates   []cid.Cid
	SvgMarkers  []cid.Cid
	EmojiGroups []cid.Cid
	Spaces      []cid.Cid
}

func (Playset) Kind() Kind { return KindPlayset }

func (p Playset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: playset name is required", ErrInvalid)
	}
	for _, r := range p.Refs() {
		if !r.ID.Defined() {
			return fmt.Errorf("%w: playset has an undefined %s hash", ErrInvalid, r.Kind)
		}
	}
	return nil
}

// Refs returns every member of p in replication order: templates, svg
// markers, emoji groups, then spaces.
func (p Playset) Refs() []Ref {
	out := make([]Ref, 0, len(p.Templates)+len(p.SvgMarkers)+len(p.EmojiGroups)+len(p.Spaces))
	for _, id := range p.Templates {
		out = append(out, Ref{Kind: KindTemplate, ID: id})
	}
	for _, id := range p.SvgMarkers {
		out = append(out, Ref{Kind: KindSvgMarker, ID: id})
	}
	for _, id := range p.EmojiGroups {
		out = append(out, Ref{Kind: KindEmojiGroup, ID: id})
	}
	for _, id := range p.Spaces {
		out = append(out, Ref{Kind: KindSpace, ID: id})
	}
	return out
}

// Ref is a typed hash pointer. It carries no payload and no guarantee that
// the target exists.
type Ref struct {
	Kind Kind
	ID   cid.Cid
}

func (r Ref) String() string { return r.Kind.String() + ":" + r.ID.String() }
