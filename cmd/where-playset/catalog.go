package main

import (
	"flag"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/lightningrodlabs/where/cidutil"
	"github.com/lightningrodlabs/where/piece"
)

var kindByCommand = map[string]piece.Kind{
	"template":    piece.KindTemplate,
	"svg-marker":  piece.KindSvgMarker,
	"emoji-group": piece.KindEmojiGroup,
	"space":       piece.KindSpace,
	"playset":     piece.KindPlayset,
}

func (a *app) cmdKind(name string, args []string) int {
	kind := kindByCommand[name]
	if len(args) == 0 {
		fmt.Fprintf(a.errOut, "usage: where-playset %s <create|get|list> ...\n", name)
		return 2
	}
	switch args[0] {
	case "create":
		return a.cmdCreate(name, kind, args[1:])
	case "get":
		return a.cmdGet(name, kind, args[1:])
	case "list":
		return a.cmdList(name, kind, args[1:])
	default:
		fmt.Fprintf(a.errOut, "unknown %s subcommand: %s\n", name, args[0])
		return 2
	}
}

func (a *app) cmdCreate(name string, kind piece.Kind, args []string) int {
	fs := flag.NewFlagSet(name+" create", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	build := createFlags(fs, kind)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(a.errOut, "usage: where-playset %s create [flags]\n", name)
		return 2
	}
	p, err := build()
	if err != nil {
		fmt.Fprintf(a.errOut, "invalid %s: %v\n", name, err)
		return 2
	}

	n, ok := a.open()
	if !ok {
		return 1
	}
	defer n.Close()

	id, err := n.Catalog.Create(p)
	if err != nil {
		fmt.Fprintf(a.errOut, "create %s: %v\n", name, err)
		return 1
	}
	_, _ = fmt.Fprintln(a.out, id)
	return 0
}

// createFlags registers the flags for kind and returns a constructor that
// reads them after parsing.
func createFlags(fs *flag.FlagSet, kind piece.Kind) func() (piece.Piece, error) {
	var nameFlag, description, surface, value string
	fs.StringVar(&nameFlag, "name", "", "Name (required)")

	switch kind {
	case piece.KindTemplate:
		fs.StringVar(&surface, "surface", "", "Serialized geometry")
		return func() (piece.Piece, error) {
			t := piece.Template{Name: nameFlag, Surface: surface}
			return t, t.Validate()
		}
	case piece.KindSvgMarker:
		fs.StringVar(&value, "value", "", "Serialized SVG")
		return func() (piece.Piece, error) {
			m := piece.SvgMarker{Name: nameFlag, Value: value}
			return m, m.Validate()
		}
	case piece.KindEmojiGroup:
		var unicodes stringList
		fs.StringVar(&description, "description", "", "Description")
		fs.Var(&unicodes, "unicode", "Single code point emoji; repeatable")
		return func() (piece.Piece, error) {
			g := piece.EmojiGroup{Name: nameFlag, Description: description, Unicodes: unicodes}
			return g, g.Validate()
		}
	case piece.KindSpace:
		var origin, svg, group cidValue
		meta := metaFlag{}
		fs.Var(&origin, "origin", "Template CID (required)")
		fs.Var(&svg, "svg", "SvgMarker CID used as marker")
		fs.Var(&group, "emoji-group", "EmojiGroup CID used as marker")
		fs.StringVar(&surface, "surface", "", "Serialized geometry")
		fs.Var(meta, "meta", "Metadata key=value; repeatable")
		return func() (piece.Piece, error) {
			s := piece.Space{Name: nameFlag, Origin: origin.id, Surface: surface, Metadata: meta}
			switch {
			case svg.id.Defined() && group.id.Defined():
				return nil, fmt.Errorf("--svg and --emoji-group are mutually exclusive")
			case svg.id.Defined():
				s.Marker = piece.SvgRef(svg.id)
			case group.id.Defined():
				s.Marker = piece.EmojiGroupRef(group.id)
			}
			return s, s.Validate()
		}
	default:
		var templates, svgs, groups, spaces cidList
		fs.StringVar(&description, "description", "", "Description")
		fs.Var(&templates, "template", "Template CID; repeatable")
		fs.Var(&svgs, "svg", "SvgMarker CID; repeatable")
		fs.Var(&groups, "emoji-group", "EmojiGroup CID; repeatable")
		fs.Var(&spaces, "space", "Space CID; repeatable")
		return func() (piece.Piece, error) {
			p := piece.Playset{
				Name:        nameFlag,
				Description: description,
				Templates:   templates,
				SvgMarkers:  svgs,
				EmojiGroups: groups,
				Spaces:      spaces,
			}
			return p, p.Validate()
		}
	}
}

func (a *app) cmdGet(name string, kind piece.Kind, args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(a.errOut, "usage: where-playset %s get <CID>\n", name)
		return 2
	}
	id, err := cidutil.Parse(args[0])
	if err != nil {
		fmt.Fprintf(a.errOut, "invalid CID: %v\n", err)
		return 2
	}

	n, ok := a.open()
	if !ok {
		return 1
	}
	defer n.Close()

	p, found, err := n.Catalog.GetKind(kind, id)
	if err != nil {
		fmt.Fprintf(a.errOut, "get %s: %v\n", name, err)
		return 1
	}
	if !found {
		fmt.Fprintf(a.errOut, "%s %s not found\n", name, id)
		return 1
	}
	b, err := piece.Encode(p)
	if err != nil {
		fmt.Fprintf(a.errOut, "encode %s: %v\n", name, err)
		return 1
	}
	_, _ = fmt.Fprintln(a.out, string(b))
	return 0
}

func (a *app) cmdList(name string, kind piece.Kind, args []string) int {
	if len(args) != 0 {
		fmt.Fprintf(a.errOut, "usage: where-playset %s list\n", name)
		return 2
	}
	n, ok := a.open()
	if !ok {
		return 1
	}
	defer n.Close()

	entries, err := n.Catalog.ListKind(kind)
	if err != nil {
		fmt.Fprintf(a.errOut, "list %s: %v\n", name, err)
		return 1
	}
	for _, e := range entries {
		_, _ = fmt.Fprintf(a.out, "%s\t%s\n", e.Hash, displayName(e.Value))
	}
	return 0
}

func (a *app) cmdInventory(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(a.errOut, "usage: where-playset inventory")
		return 2
	}
	n, ok := a.open()
	if !ok {
		return 1
	}
	defer n.Close()

	inv, err := n.Catalog.Inventory()
	if err != nil {
		fmt.Fprintf(a.errOut, "inventory: %v\n", err)
		return 1
	}
	printIDs := func(k piece.Kind, ids []cid.Cid) {
		for _, id := range ids {
			_, _ = fmt.Fprintf(a.out, "%s\t%s\n", k.Category(), id)
		}
	}
	printIDs(piece.KindTemplate, inv.Templates)
	printIDs(piece.KindSvgMarker, inv.SvgMarkers)
	printIDs(piece.KindEmojiGroup, inv.EmojiGroups)
	printIDs(piece.KindSpace, inv.Spaces)
	return 0
}

func displayName(p piece.Piece) string {
	switch v := p.(type) {
	case piece.Template:
		return v.Name
	case piece.SvgMarker:
		return v.Name
	case piece.EmojiGroup:
		return v.Name
	case piece.Space:
		return v.Name
	case piece.Playset:
		return v.Name
	default:
		return ""
	}
}
