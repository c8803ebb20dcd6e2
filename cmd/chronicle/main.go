package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/config"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/events"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/gapfiller"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/health"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/httpapi"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/indexer"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/ingestion"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/log"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/metrics"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/poi"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/source"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/source/inx"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/supervisor"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "chronicle",
	Short:   "Chronicle - permanode indexer for an IOTA-family DAG ledger",
	Version: Version,
	RunE:    run,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("chronicle version %s\ncommit: %s\n", Version, Commit))
	rootCmd.Flags().String("config", "", "Path to a chronicle.yaml config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}

func run(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr, ok := tcpAddress(cfg.INX.ConnectURL); ok {
		result := health.NewTCPChecker(addr).Check(ctx)
		if !result.Healthy {
			log.Logger.Warn().Str("node_addr", addr).Str("detail", result.Message).Msg("upstream node unreachable at startup, continuing anyway")
		}
	}

	store, err := storage.NewMongoStore(ctx, storage.Config{
		ConnStr:      cfg.MongoDB.ConnStr,
		DatabaseName: cfg.MongoDB.DatabaseName,
	}, log.Logger)
	if err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer store.Close(context.Background())

	nodeClient, err := inx.Dial(cfg.INX.ConnectURL)
	if err != nil {
		return fmt.Errorf("dialing upstream node at %s: %w", cfg.INX.ConnectURL, err)
	}
	defer nodeClient.Close()

	var src source.Source = nodeClient

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	status, err := src.NodeStatus(ctx)
	if err != nil {
		return fmt.Errorf("reading node status: %w", err)
	}

	liveRange := types.Range{Start: status.LatestMilestoneIndex, End: ^types.MilestoneIndex(0)}

	ingestionWorker := ingestion.New(src, store, log.WithComponent("ingestion"))
	ingestionFn := supervisor.WorkerFunc(func(ctx context.Context) error {
		return ingestionWorker.Run(ctx, liveRange)
	})

	gfCfg, err := cfg.GapFillerConfig()
	if err != nil {
		return fmt.Errorf("resolving gap filler config: %w", err)
	}
	gapWorker := gapfiller.New(gfCfg, src, store, log.WithComponent("gapfiller"))

	collector := metrics.NewCollector(store, src)
	collector.Start()
	defer collector.Stop()

	workers := map[string]supervisor.Worker{
		"ingestion": ingestionFn,
		"gapfiller": gapWorker,
	}

	if cfg.API.Enabled {
		apiServer := httpapi.NewServer(httpapi.Config{
			Store:        store,
			Engine:       indexer.New(store),
			PoI:          poi.NewService(store),
			PublicRoutes: cfg.API.PublicRoutes,
			MaxPageSize:  cfg.API.MaxPageSize,
		}, log.WithComponent("httpapi"))

		workers["api"] = supervisor.WorkerFunc(func(ctx context.Context) error {
			return serveHTTP(ctx, apiServer.Handler(), fmt.Sprintf(":%d", cfg.API.Port))
		})
	}

	sup := supervisor.New(log.Logger, broker, supervisor.DefaultConfig())
	return sup.Run(ctx, workers)
}

// tcpAddress extracts the host:port TCPChecker should dial from an
// inx.connect_url, defaulting to port 9029 (the gRPC INX convention) when
// the URL omits one.
func tcpAddress(connectURL string) (string, bool) {
	u, err := url.Parse(connectURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Port() != "" {
		return u.Host, true
	}
	return u.Host + ":9029", true
}

// serveHTTP runs an HTTP server until ctx is canceled, then drains it with
// a bounded graceful shutdown.
func serveHTTP(ctx context.Context, handler http.Handler, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return &chronoerr.TransportTransient{Cause: err}
	}
}
