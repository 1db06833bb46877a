package piece

import (
	"errors"
	"fmt"
)

// Kind is the closed set of content kinds.
//
// The String form is the canonical, case-sensitive type tag used on the wire.
type Kind uint8

const (
	KindTemplate Kind = iota + 1
	KindSvgMarker
	KindEmojiGroup
	KindSpace
	KindPlayset
)

// ErrUnknownKind is returned by ParseKind for any tag outside the canonical set.
var ErrUnknownKind = errors.New("piece: unknown kind")

// Kinds lists every kind in catalog order.
var Kinds = []Kind{KindTemplate, KindSvgMarker, KindEmojiGroup, KindSpace, KindPlayset}

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "Template"
	case KindSvgMarker:
		return "SvgMarker"
	case KindEmojiGroup:
		return "EmojiGroup"
	case KindSpace:
		return "Space"
	case KindPlayset:
		return "Playset"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Category is the category index key for k.
func (k Kind) Category() string {
	switch k {
	case KindTemplate:
		return "templates"
	case KindSvgMarker:
		return "svg-markers"
	case KindEmojiGroup:
		return "emoji-groups"
	case KindSpace:
		return "spaces"
	case KindPlayset:
		return "playsets"
	default:
		return ""
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k >= KindTemplate && k <= KindPlayset }

// Replicable reports whether values of kind k may travel through import.
// Playsets are catalog-local bundles and are never imported.
func (k Kind) Replicable() bool {
	switch k {
	case KindTemplate, KindSvgMarker, KindEmojiGroup, KindSpace:
		return true
	default:
		return false
	}
}

// ParseKind maps a canonical tag to its Kind. Matching is exact: "template"
// and "space" are not accepted.
func ParseKind(tag string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == tag {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	got, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = got
	return nil
}
