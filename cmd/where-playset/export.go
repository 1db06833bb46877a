package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/lightningrodlabs/where/cidutil"
	"github.com/lightningrodlabs/where/piece"
	"github.com/lightningrodlabs/where/replication"
)

func (a *app) cmdExport(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.errOut, "usage: where-playset export <piece|space|playset> --to <store> ...")
		return 2
	}
	what := args[0]
	if what != "piece" && what != "space" && what != "playset" {
		fmt.Fprintf(a.errOut, "unknown export subcommand: %s\n", what)
		return 2
	}

	fs := flag.NewFlagSet("export "+what, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	var to, kindTag string
	fs.StringVar(&to, "to", "", "Destination store id (see --peers)")
	if what == "piece" {
		fs.StringVar(&kindTag, "kind", "", "Template, SvgMarker, EmojiGroup or Space")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if to == "" || fs.NArg() != 1 {
		fmt.Fprintf(a.errOut, "usage: where-playset export %s --to <store> <CID>\n", what)
		return 2
	}
	id, err := cidutil.Parse(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(a.errOut, "invalid CID: %v\n", err)
		return 2
	}
	var kind piece.Kind
	if what == "piece" {
		if kind, err = replication.ParseTag(kindTag); err != nil {
			fmt.Fprintf(a.errOut, "invalid --kind: %v\n", err)
			return 2
		}
	}

	n, ok := a.open()
	if !ok {
		return 1
	}
	defer n.Close()

	dir, closeDir := a.directory(a.cfg, a.logger)
	if closeDir != nil {
		defer closeDir()
	}
	exp := replication.NewExporter(n.Catalog, dir, replication.WithLogger(a.logger.Named("export")))
	ctx := context.Background()

	switch what {
	case "piece":
		err = exp.ExportPiece(ctx, to, kind, id)
		if err == nil {
			_, _ = fmt.Fprintf(a.out, "%s\t%s\n", kind, id)
		}
	case "space":
		var exported []cid.Cid
		exported, err = exp.ExportSpace(ctx, to, id)
		for _, x := range exported {
			_, _ = fmt.Fprintln(a.out, x)
		}
	case "playset":
		var refs []piece.Ref
		refs, err = exp.ExportPlaysetReport(ctx, to, id)
		for _, r := range refs {
			_, _ = fmt.Fprintf(a.out, "%s\t%s\n", r.Kind, r.ID)
		}
	}
	if err != nil {
		fmt.Fprintf(a.errOut, "export %s: %v\n", what, err)
		if replication.IsKind(err, replication.KindRemoteInvocationFailure) {
			fmt.Fprintln(a.errOut, "pieces already pushed stay at the destination; rerunning the export is safe")
		}
		return 1
	}
	return 0
}
