package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/lightningrodlabs/where/internal/config"
	"github.com/lightningrodlabs/where/internal/logging"
	"github.com/lightningrodlabs/where/internal/metrics"
	"github.com/lightningrodlabs/where/internal/node"
	"github.com/lightningrodlabs/where/replication"
	"github.com/lightningrodlabs/where/replication/grpcremote"
	"github.com/lightningrodlabs/where/storage/casregistry"
	"github.com/lightningrodlabs/where/storage/grpccas"

	_ "github.com/lightningrodlabs/where/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	fs := flag.NewFlagSet("where-playsetd", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&cfg.Server.Listen, "listen", cfg.Server.Listen, "gRPC listen address")
	fs.StringVar(&cfg.Server.MetricsAddr, "metrics-addr", cfg.Server.MetricsAddr, "Serve /metrics on this address when set")
	fs.StringVar(&cfg.Store.Backend, "backend", cfg.Store.Backend, "Content table backend name (default localfs)")
	fs.StringVar(&cfg.Store.Dir, "store", cfg.Store.Dir, "Content table directory for the localfs backend")
	fs.StringVar(&cfg.Store.IndexDir, "index", cfg.Store.IndexDir, "Category index directory; empty keeps the index in memory")
	fs.StringVar(&cfg.Store.CASConfig, "cas-config", cfg.Store.CASConfig, "JSON multi-backend content table config")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	fs.BoolVar(&cfg.Log.Development, "log-dev", cfg.Log.Development, "Human readable logs")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %v\n", fs.Args())
		return 2
	}
	if *listBackends {
		for _, b := range casregistry.List(casregistry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(out, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		fmt.Fprintf(errOut, "logger: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	d, err := newDaemon(cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return 1
	}
	defer d.close()

	lis, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		logger.Error("listen failed", zap.Error(err))
		return 1
	}
	if err := d.serve(ctx, lis); err != nil {
		logger.Error("serve failed", zap.Error(err))
		return 1
	}
	return 0
}

type daemon struct {
	cfg      *config.Config
	logger   *zap.Logger
	node     *node.Node
	registry *prometheus.Registry
	grpc     *grpc.Server
}

func newDaemon(cfg *config.Config, logger *zap.Logger) (*daemon, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	n, err := node.Open(cfg.Store, casregistry.UsageDaemon, logger, m)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer()
	grpccas.RegisterCASServer(srv, &grpccas.Server{CAS: n.CAS, Logger: logger.Named("cas"), ReadOnly: true})
	importer := replication.NewImporter(n.Catalog,
		replication.WithLogger(logger.Named("import")),
		replication.WithMetrics(m),
	)
	grpcremote.RegisterReplicationServer(srv, &grpcremote.Server{Importer: importer, Logger: logger.Named("replication")})

	return &daemon{cfg: cfg, logger: logger, node: n, registry: reg, grpc: srv}, nil
}

// serve blocks until ctx is done or the gRPC server fails.
func (d *daemon) serve(ctx context.Context, lis net.Listener) error {
	var metricsSrv *http.Server
	if d.cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: d.cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- d.grpc.Serve(lis) }()
	d.logger.Info("where-playsetd listening",
		zap.String("addr", lis.Addr().String()),
		zap.String("metrics", d.cfg.Server.MetricsAddr),
	)

	var err error
	select {
	case <-ctx.Done():
		d.logger.Info("shutting down")
		d.grpc.GracefulStop()
		<-errCh
	case err = <-errCh:
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

func (d *daemon) close() {
	if err := d.node.Close(); err != nil {
		d.logger.Warn("close store", zap.Error(err))
	}
}
