package piece

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"

	"github.com/lightningrodlabs/where/cidutil"
)

// ErrMismatch is returned when a payload does not decode as the requested kind.
var ErrMismatch = errors.New("piece: payload does not match kind")

type templateWire struct {
	Name    string `json:"name"`
	Surface string `json:"surface"`
}

type svgMarkerWire struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type emojiGroupWire struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Unicodes    []string `json:"unicodes"`
}

type markerWire struct {
	Svg        string `json:"svg,omitempty"`
	EmojiGroup string `json:"emojiGroup,omitempty"`
}

type spaceWire struct {
	Name     string            `json:"name"`
	Origin   string            `json:"origin"`
	Surface  string            `json:"surface"`
	Marker   *markerWire       `json:"maybeMarker"`
	Metadata map[string]string `json:"metadata"`
}

type playsetWire struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Templates   []string `json:"templates"`
	SvgMarkers  []string `json:"svgMarkers"`
	EmojiGroups []string `json:"emojiGroups"`
	Spaces      []string `json:"spaces"`
}

// Encode returns the canonical bytes of p.
//
// The encoding is compact JSON with a fixed field order per kind, sorted map
// keys, and empty collections written as [] or {} so that nil and empty
// values share a hash. These are the bytes that are hashed, stored and sent.
func Encode(p Piece) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil piece", ErrInvalid)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var w any
	switch v := p.(type) {
	case Template:
		w = templateWire{Name: v.Name, Surface: v.Surface}
	case SvgMarker:
		w = svgMarkerWire{Name: v.Name, Value: v.Value}
	case EmojiGroup:
		w = emojiGroupWire{Name: v.Name, Description: v.Description, Unicodes: nonNil(v.Unicodes)}
	case Space:
		sw := spaceWire{
			Name:     v.Name,
			Origin:   v.Origin.String(),
			Surface:  v.Surface,
			Metadata: v.Metadata,
		}
		if sw.Metadata == nil {
			sw.Metadata = map[string]string{}
		}
		if v.Marker != nil {
			switch v.Marker.Kind {
			case KindSvgMarker:
				sw.Marker = &markerWire{Svg: v.Marker.ID.String()}
			case KindEmojiGroup:
				sw.Marker = &markerWire{EmojiGroup: v.Marker.ID.String()}
			}
		}
		w = sw
	case Playset:
		w = playsetWire{
			Name:        v.Name,
			Description: v.Description,
			Templates:   cidStrings(v.Templates),
			SvgMarkers:  cidStrings(v.SvgMarkers),
			EmojiGroups: cidStrings(v.EmojiGroups),
			Spaces:      cidStrings(v.Spaces),
		}
	default:
		return nil, fmt.Errorf("%w: unsupported piece type %T", ErrInvalid, p)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	// Encoder.Encode appends a newline; canonical bytes have none.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Sum encodes p and returns its CID along with the canonical bytes.
func Sum(p Piece) (cid.Cid, []byte, error) {
	b, err := Encode(p)
	if err != nil {
		return cid.Undef, nil, err
	}
	id, err := cidutil.Sum(b)
	if err != nil {
		return cid.Undef, nil, err
	}
	return id, b, nil
}

// Decode parses data as a value of kind k.
//
// Decoding is strict: unknown fields, trailing data, undecodable hashes and
// values failing Validate are all reported as ErrMismatch. Decode does not
// require data to be canonical; callers that care compare Sum of the result
// with the hash of data.
func Decode(k Kind, data []byte) (Piece, error) {
	switch k {
	case KindTemplate:
		var w templateWire
		if err := strictUnmarshal(data, &w); err != nil {
			return nil, mismatch(k, err)
		}
		return checked(k, Template{Name: w.Name, Surface: w.Surface})
	case KindSvgMarker:
		var w svgMarkerWire
		if err := strictUnmarshal(data, &w); err != nil {
			return nil, mismatch(k, err)
		}
		return checked(k, SvgMarker{Name: w.Name, Value: w.Value})
	case KindEmojiGroup:
		var w emojiGroupWire
		if err := strictUnmarshal(data, &w); err != nil {
			return nil, mismatch(k, err)
		}
		return checked(k, EmojiGroup{Name: w.Name, Description: w.Description, Unicodes: w.Unicodes})
	case KindSpace:
		var w spaceWire
		if err := strictUnmarshal(data, &w); err != nil {
			return nil, mismatch(k, err)
		}
		origin, err := cidutil.Parse(w.Origin)
		if err != nil {
			return nil, mismatch(k, fmt.Errorf("origin: %w", err))
		}
		s := Space{Name: w.Name, Origin: origin, Surface: w.Surface, Metadata: w.Metadata}
		if w.Marker != nil {
			m, err := decodeMarker(*w.Marker)
			if err != nil {
				return nil, mismatch(k, err)
			}
			s.Marker = m
		}
		return checked(k, s)
	case KindPlayset:
		var w playsetWire
		if err := strictUnmarshal(data, &w); err != nil {
			return nil, mismatch(k, err)
		}
		p := Playset{Name: w.Name, Description: w.Description}
		var err error
		if p.Templates, err = parseCIDs(w.Templates); err != nil {
			return nil, mismatch(k, err)
		}
		if p.SvgMarkers, err = parseCIDs(w.SvgMarkers); err != nil {
			return nil, mismatch(k, err)
		}
		if p.EmojiGroups, err = parseCIDs(w.EmojiGroups); err != nil {
			return nil, mismatch(k, err)
		}
		if p.Spaces, err = parseCIDs(w.Spaces); err != nil {
			return nil, mismatch(k, err)
		}
		return checked(k, p)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
}

// DecodeAs decodes data into the concrete type T.
func DecodeAs[T Piece](data []byte) (T, error) {
	var zero T
	p, err := Decode(zero.Kind(), data)
	if err != nil {
		return zero, err
	}
	v, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("%w: decoded %T", ErrMismatch, p)
	}
	return v, nil
}

func decodeMarker(w markerWire) (*MarkerPiece, error) {
	switch {
	case w.Svg != "" && w.EmojiGroup == "":
		id, err := cidutil.Parse(w.Svg)
		if err != nil {
			return nil, fmt.Errorf("marker: %w", err)
		}
		return SvgRef(id), nil
	case w.EmojiGroup != "" && w.Svg == "":
		id, err := cidutil.Parse(w.EmojiGroup)
		if err != nil {
			return nil, fmt.Errorf("marker: %w", err)
		}
		return EmojiGroupRef(id), nil
	default:
		return nil, errors.New("marker: exactly one of svg or emojiGroup must be set")
	}
}

func checked(k Kind, p Piece) (Piece, error) {
	if err := p.Validate(); err != nil {
		return nil, mismatch(k, err)
	}
	return p, nil
}

func mismatch(k Kind, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMismatch, k, err)
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after payload")
	}
	return nil
}

func cidStrings(ids []cid.Cid) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseCIDs(ss []string) ([]cid.Cid, error) {
	out := make([]cid.Cid, 0, len(ss))
	for _, s := range ss {
		id, err := cidutil.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
