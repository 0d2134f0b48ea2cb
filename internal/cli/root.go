package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gamesrv/driftwatch/internal/console"
	"github.com/gamesrv/driftwatch/internal/extsignal"
	"github.com/gamesrv/driftwatch/internal/monitor"
	"github.com/gamesrv/driftwatch/internal/oracle"
	"github.com/gamesrv/driftwatch/internal/orchestrator"
	"github.com/gamesrv/driftwatch/internal/procwatch"
	"github.com/gamesrv/driftwatch/pkg/consts"
	"github.com/gamesrv/driftwatch/pkg/logger"
	"github.com/gamesrv/driftwatch/pkg/protocol"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "driftwatch",
	Short: "driftwatch: game-server update orchestrator",
	Long: "driftwatch watches a build registry for new versions of the content\n" +
		"packages a supervised game server runs on. When the registry drifts\n" +
		"from the local install, it walks the server through the configured\n" +
		"update mode and exits so the outer supervisor can restart the world.",
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run one update-watch cycle against the supervised server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := protocol.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		logger.Init(cfg.Observability.LogLevel)
		logger.Log = logger.Log.With("run_id", uuid.NewString())
		monitor.InitMetrics(cfg.Observability.MetricsAddr)

		proc, err := procwatch.FromPIDFile(cfg.Process.PIDFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error capturing supervised process: %v\n", err)
			os.Exit(1)
		}

		ext, err := buildSignal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error setting up extension signal: %v\n", err)
			os.Exit(1)
		}

		timeout := consts.DefaultRegistryTimeout
		if cfg.Registry.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.Registry.TimeoutSeconds) * time.Second
		}
		orc := oracle.New(oracle.NewHTTPRegistry(cfg.Registry.BaseURL, timeout), cfg.Registry.Branch)

		var sink console.Sink = console.LogSink{}
		if cfg.Console.TmuxTarget != "" {
			sink = console.NewTmux(cfg.Console.TmuxTarget)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Log.Info("driftwatch starting", "version", Version, "pid", proc.PID())
		outcome := orchestrator.NewEngine(cfg, orc, sink, proc, ext).Run(ctx)
		logger.Log.Info("driftwatch finished", "outcome", outcome.String())
		// Exit status stays zero: the exit itself is the signal to the
		// outer supervisor, outcomes are for the logs.
	},
}

func buildSignal(cfg *protocol.Config) (extsignal.Signal, error) {
	switch cfg.Signal.Transport {
	case "watch":
		return extsignal.NewWatcher(cfg.Signal.MarkerPath)
	case "socket":
		return extsignal.NewSocketListener(cfg.Signal.SocketPath)
	default:
		return extsignal.NewFileMarker(cfg.Signal.MarkerPath), nil
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the driftwatch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "driftwatch.yaml", "config file path")
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
