package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/realmbridge/internal/cliconfig"
	logAdapter "github.com/bft-labs/realmbridge/pkg/log"
	"github.com/bft-labs/realmbridge/pkg/realmbridge"
	"github.com/bft-labs/realmbridge/pkg/state"
	"github.com/bft-labs/realmbridge/plugins/configwatcher"
)

const helpDescription = `
Run the Realm React Native bridge outside an Android host.

Highlights:
  - Loads the native engine from a WebAssembly build.
  - Serves the remote debugger (Chrome debugging) over HTTP and WebSocket.
  - Reloads log level and CORS origin when the config file changes.
  - Configure via file (TOML or YAML), .env, REALMBRIDGE_* env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  realmbridge --engine librealm.wasm --files-dir ./files
  realmbridge --config $HOME/.realmbridge/config.toml
  realmbridge status --files-dir ./files
  realmbridge config schema > realmbridge.schema.json
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return realmbridge.Version
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath, envPath string

	log := cliconfig.Logger(cfg.LogLevel)

	root := &cobra.Command{
		Use:     "realmbridge",
		Short:   "Run the Realm React Native bridge and its debug server",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, err := loadConfig(cmd, &cfg, cfgPath, envPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log = cliconfig.Logger(cfg.LogLevel)
			log.Info().Interface("config", cfg).Msg("configuration")

			return serve(cmd.Context(), log, cfg, cfgFile)
		},
	}
	root.SilenceUsage = true

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.realmbridge/config.toml)")
	root.PersistentFlags().StringVar(&envPath, "env-file", ".env", "dotenv file loaded before REALMBRIDGE_* variables")
	root.PersistentFlags().StringVar(&cfg.FilesDir, "files-dir", cfg.FilesDir, "default directory for database files")
	root.PersistentFlags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for status.json (defaults to files-dir/.realmbridge)")

	root.Flags().StringVar(&cfg.Engine, "engine", cfg.Engine, "path to the engine WebAssembly binary")
	root.Flags().StringVar(&cfg.DebugHost, "debug-host", cfg.DebugHost, "debug server listen host (empty listens on all interfaces)")
	root.Flags().IntVar(&cfg.DebugPort, "debug-port", cfg.DebugPort, "debug server port")
	root.Flags().StringVar(&cfg.AllowedOrigin, "allowed-origin", cfg.AllowedOrigin, "CORS origin of debug responses")
	root.Flags().DurationVar(&cfg.TaskInterval, "task-interval", cfg.TaskInterval, "delay between engine task polls")
	root.Flags().StringVar(&cfg.BuildProp, "build-prop", cfg.BuildProp, "Android build.prop used for emulator detection")
	root.Flags().StringVar(&cfg.AssetsDir, "assets-dir", cfg.AssetsDir, "directory of bundled assets the engine may read")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	root.Flags().StringVar(&cfg.AnalyticsURL, "analytics-url", cfg.AnalyticsURL, "usage ping endpoint (empty disables)")
	if err := root.Flags().MarkHidden("analytics-url"); err != nil {
		log.Info().Err(err).Msg("failed to hide analytics-url flag")
	}
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "maximum time to wait for graceful shutdown")

	root.AddCommand(statusCommand(&cfg, &cfgPath, &envPath), configCommand())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("realmbridge")
		os.Exit(1)
	}
}

// loadConfig applies file, dotenv and environment values under the flags the
// user set, and returns the config file that was read, if any.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath, envPath string) (string, error) {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return "", fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return "", err
		}
	} else {
		cfgFile = ""
	}

	if err := cliconfig.LoadDotEnv(envPath); err != nil {
		return "", fmt.Errorf("load env file: %w", err)
	}
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return "", err
	}
	return cfgFile, nil
}

func serve(ctx context.Context, log zerolog.Logger, cfg cliconfig.Config, cfgFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	libCfg := realmbridge.Config{
		EnginePath:      cfg.Engine,
		FilesDir:        cfg.FilesDir,
		BuildProp:       cfg.BuildProp,
		AssetsDir:       cfg.AssetsDir,
		StateDir:        cfg.StateDir,
		DebugHost:       cfg.DebugHost,
		DebugPort:       cfg.DebugPort,
		AllowedOrigin:   cfg.AllowedOrigin,
		TaskInterval:    cfg.TaskInterval,
		AnalyticsURL:    cfg.AnalyticsURL,
		ShutdownTimeout: cfg.ShutdownTimeout,
		ConfigPath:      cfgFile,
	}

	opts := []realmbridge.Option{
		realmbridge.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)),
	}
	if cfgFile != "" {
		opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()))
	}

	b, err := realmbridge.New(ctx, libCfg, opts...)
	if err != nil {
		return fmt.Errorf("create bridge: %w", err)
	}

	if err := b.Start(ctx); err != nil {
		_ = b.Close(context.WithoutCancel(ctx))
		return fmt.Errorf("start bridge: %w", err)
	}
	log.Info().
		Interface("constants", b.Constants()).
		Str("debug_addr", b.DebugAddr()).
		Msg("bridge started")

	<-ctx.Done()
	log.Info().Msg("received signal, stopping...")

	if err := b.Close(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("stop bridge: %w", err)
	}
	return nil
}

func statusCommand(cfg *cliconfig.Config, cfgPath, envPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the last recorded debug bridge status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd, cfg, *cfgPath, *envPath); err != nil {
				return err
			}

			dir := cfg.StateDir
			if dir == "" {
				if cfg.FilesDir == "" {
					return fmt.Errorf("%w: files-dir or state-dir is required", realmbridge.ErrInvalidConfig)
				}
				dir = filepath.Join(cfg.FilesDir, cliconfig.StateSubdir)
			}

			st, err := state.NewFileRepository(dir).Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load status: %w", err)
			}
			if st.IsEmpty() {
				fmt.Fprintln(cmd.OutOrStdout(), "no status recorded")
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
}

func configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := cliconfig.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return err
		},
	})
	return cmd
}
