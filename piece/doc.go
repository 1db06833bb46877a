// Package piece defines the immutable content of a playset library.
//
// Pieces (Template, SvgMarker, EmojiGroup), the Space composite and the
// Playset bundle are plain values. Each has exactly one canonical byte
// encoding (see Encode); the CID of those bytes is the value's identity and
// its storage address.
//
// References between values (Space.Origin, Space.Marker, Playset lists) are
// weak: they carry a hash and nothing else. A reference that resolves in the
// store where it was authored may not resolve anywhere else, so every
// dereference must handle the not-found case.
package piece
