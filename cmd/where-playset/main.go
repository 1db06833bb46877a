package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/lightningrodlabs/where/internal/config"
	"github.com/lightningrodlabs/where/internal/logging"
	"github.com/lightningrodlabs/where/internal/node"
	"github.com/lightningrodlabs/where/replication"
	"github.com/lightningrodlabs/where/replication/grpcremote"
	"github.com/lightningrodlabs/where/storage/casregistry"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	a := &app{cfg: cfg, out: out, errOut: errOut, directory: grpcDirectory}
	return a.run(args)
}

// app carries global settings into every command.
type app struct {
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	logger *zap.Logger

	// directory resolves export destinations; replaced in tests.
	directory func(cfg *config.Config, logger *zap.Logger) (replication.Directory, func() error)
}

func grpcDirectory(cfg *config.Config, logger *zap.Logger) (replication.Directory, func() error) {
	d := grpcremote.NewDirectory(cfg.Remote.Peers, grpcremote.Options{
		DialTimeout: cfg.Remote.DialTimeout,
		RPCTimeout:  cfg.Remote.RPCTimeout,
		MaxMsgBytes: cfg.Remote.MaxMsgBytes,
		Logger:      logger.Named("peers"),
	})
	return d, d.Close
}

func (a *app) run(args []string) int {
	fs := flag.NewFlagSet("where-playset", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.Usage = func() { printUsage(a.errOut) }
	fs.StringVar(&a.cfg.Store.Dir, "store", a.cfg.Store.Dir, "Content table directory")
	fs.StringVar(&a.cfg.Store.IndexDir, "index", a.cfg.Store.IndexDir, "Category index directory")
	fs.StringVar(&a.cfg.Store.Backend, "backend", a.cfg.Store.Backend, "Content table backend name (default localfs)")
	fs.StringVar(&a.cfg.Store.CASConfig, "cas-config", a.cfg.Store.CASConfig, "JSON multi-backend content table config")
	fs.Var(&a.cfg.Remote.Peers, "peers", "Export destinations as id=target[,id=target...]; repeatable")
	fs.DurationVar(&a.cfg.Remote.RPCTimeout, "rpc-timeout", a.cfg.Remote.RPCTimeout, "Per-RPC timeout for export")
	fs.StringVar(&a.cfg.Log.Level, "log-level", "warn", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	args = fs.Args()
	if len(args) == 0 {
		printUsage(a.errOut)
		return 2
	}

	if a.logger == nil {
		logger, err := logging.New(logging.Config{Level: a.cfg.Log.Level, Development: true})
		if err != nil {
			fmt.Fprintf(a.errOut, "logger: %v\n", err)
			return 2
		}
		defer func() { _ = logger.Sync() }()
		a.logger = logger
	}

	switch args[0] {
	case "template", "svg-marker", "emoji-group", "space", "playset":
		return a.cmdKind(args[0], args[1:])
	case "inventory":
		return a.cmdInventory(args[1:])
	case "export":
		return a.cmdExport(args[1:])
	case "help", "-h", "--help":
		printUsage(a.out)
		return 0
	default:
		fmt.Fprintf(a.errOut, "unknown command: %s\n\n", args[0])
		printUsage(a.errOut)
		return 2
	}
}

func (a *app) open() (*node.Node, bool) {
	n, err := node.Open(a.cfg.Store, casregistry.UsageCLI, a.logger, nil)
	if err != nil {
		fmt.Fprintf(a.errOut, "open store: %v\n", err)
		return nil, false
	}
	return n, true
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "where-playset: local catalog and replication tool")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  where-playset [--store <dir>] [--index <dir>] [--peers id=target,...] <command> ...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  where-playset template create --name <n> [--surface <json>]")
	fmt.Fprintln(w, "  where-playset svg-marker create --name <n> [--value <svg>]")
	fmt.Fprintln(w, "  where-playset emoji-group create --name <n> [--description <d>] [--unicode <u> ...]")
	fmt.Fprintln(w, "  where-playset space create --name <n> --origin <CID> [--svg <CID> | --emoji-group <CID>] [--surface <json>] [--meta k=v ...]")
	fmt.Fprintln(w, "  where-playset playset create --name <n> [--description <d>] [--template <CID> ...] [--svg <CID> ...] [--emoji-group <CID> ...] [--space <CID> ...]")
	fmt.Fprintln(w, "  where-playset <kind> get <CID>")
	fmt.Fprintln(w, "  where-playset <kind> list")
	fmt.Fprintln(w, "  where-playset inventory")
	fmt.Fprintln(w, "  where-playset export piece --to <store> --kind <Template|SvgMarker|EmojiGroup|Space> <CID>")
	fmt.Fprintln(w, "  where-playset export space --to <store> <CID>")
	fmt.Fprintln(w, "  where-playset export playset --to <store> <CID>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - <kind> is one of template, svg-marker, emoji-group, space, playset")
	fmt.Fprintln(w, "  - create prints the CID of the stored value")
	fmt.Fprintln(w, "  - get prints the canonical JSON encoding")
	fmt.Fprintln(w, "  - settings also come from WHERE_* environment variables (WHERE_STORE_DIR, WHERE_REMOTE_PEERS, ...)")
}
