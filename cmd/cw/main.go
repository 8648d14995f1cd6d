package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tdvu/chanwork/internal/config"
	"github.com/tdvu/chanwork/internal/eventbus"
	"github.com/tdvu/chanwork/internal/lifecycle"
	"github.com/tdvu/chanwork/internal/stats"
	"github.com/tdvu/chanwork/internal/storage"
	"github.com/tdvu/chanwork/internal/storage/memory"
	"github.com/tdvu/chanwork/internal/storage/sqlstore"
	"github.com/tdvu/chanwork/internal/telemetry"
	"github.com/tdvu/chanwork/internal/types"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	dsn         string
	actorFlag   string
	channelFlag string
	jsonOutput  bool
	noColor     bool

	backend backendStore
	ctrl    *lifecycle.Controller
	engine  *stats.Engine

	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// backendStore is what both storage backends provide: item CRUD, channel
// directory and admin, and link resolution.
type backendStore interface {
	storage.Store
	storage.ChannelDirectory
	storage.ChannelAdmin
	Statuses(ctx context.Context, ids []string) (map[string]types.Status, error)
}

// getActor resolves the acting user for audit trails.
// Priority: --as flag > CW_ACTOR env > .chanwork.yaml actor > $USER > "unknown"
func getActor() string {
	if actorFlag != "" {
		return actorFlag
	}
	if envActor := os.Getenv("CW_ACTOR"); envActor != "" {
		return envActor
	}
	if cfg := config.LoadLocalConfig("."); cfg.Actor != "" {
		return cfg.Actor
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "unknown"
}

func init() {
	viper.SetEnvPrefix("CW")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().StringVar(&dsn, "db", "", "MySQL DSN (default: CW_DB env or .chanwork.yaml; empty = in-memory)")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "as", "", "Acting user ID (default: CW_ACTOR, .chanwork.yaml, $USER)")
	rootCmd.PersistentFlags().StringVar(&channelFlag, "channel", "", "Default channel for create/list")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable styled output")

	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("channel", rootCmd.PersistentFlags().Lookup("channel"))
}

var rootCmd = &cobra.Command{
	Use:   "cw",
	Short: "cw - Channel work-item tracker",
	Long:  `Track troubles, issues, plans and tasks across chat channels, with lifecycle gates and per-scope statistics.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		rootCtx, rootCancel = context.WithCancel(context.Background())

		cfg := config.LoadLocalConfigWithEnv(".")
		if dsn == "" {
			dsn = viper.GetString("db")
		}
		if dsn == "" {
			dsn = cfg.DB
		}
		if channelFlag == "" {
			channelFlag = viper.GetString("channel")
		}
		if channelFlag == "" {
			channelFlag = cfg.Channel
		}
		if noColor || cfg.NoColor || termenv.EnvNoColor() {
			color.NoColor = true
		}

		if err := telemetry.Init(rootCtx, "cw", Version); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry init failed: %v\n", err)
		}

		openBackend(rootCtx)

		bus := eventbus.New()
		engine = stats.NewEngine(backend)
		bus.Register(engine)
		ctrl = lifecycle.NewController(backend, backend, backend, bus)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if backend != nil {
			_ = backend.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		telemetry.Shutdown(shutdownCtx)
		cancel()
		if rootCancel != nil {
			rootCancel()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
}

// openBackend selects the storage backend: MySQL when a DSN is configured,
// otherwise an ephemeral in-memory store.
func openBackend(ctx context.Context) {
	if dsn == "" {
		WarnError("no database configured, using an ephemeral in-memory store (set --db or CW_DB)")
		backend = memory.New()
		return
	}
	s, err := sqlstore.New(ctx, dsn)
	if err != nil {
		FatalError("open database: %v", err)
	}
	backend = s
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
