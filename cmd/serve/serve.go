// Package serve implements the "serve" subcommand: the sole process
// entrypoint that constructs and runs internal/pipeline.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/livingstonekit-alt/feather-front/internal/buildinfo"
	"github.com/livingstonekit-alt/feather-front/internal/logging"
	"github.com/livingstonekit-alt/feather-front/internal/pipeline"
)

// Command creates the "serve" subcommand.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the capture/classify/serve pipeline",
		Long:  "Start the continuous audio-analysis pipeline: capture, silence gate, classifier pool, and the HTTP dashboard surface.",
		RunE:  runServe,
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Println("error setting up flags:", err)
		os.Exit(1)
	}

	cmd.SilenceUsage = true
	return cmd
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config", viper.GetString("config"), "Path to the settings JSON file")
	cmd.Flags().String("data-dir", viper.GetString("data-dir"), "Directory for the database, snapshot, clip index, and clips")
	cmd.Flags().Int("port", viper.GetInt("port"), "HTTP Surface listen port (0 keeps the configured/default port)")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	debug := viper.GetBool("debug")
	logJSON := viper.GetBool("log-json")
	logging.Configure(nil, logJSON)
	if debug {
		logging.SetLevel(logging.LevelTrace)
	}
	log := logging.For("serve")

	dataDir := viper.GetString("data-dir")
	if dataDir == "" {
		dataDir = "data"
	}
	settingsPath := viper.GetString("config")
	if settingsPath == "" {
		settingsPath = dataDir + "/settings.json"
	}

	paths := pipeline.Paths{
		DataDir:      dataDir,
		SegDir:       dataDir + "/tmp",
		SettingsPath: settingsPath,
		SentryDSN:    os.Getenv("FEATHER_SENTRY_DSN"),
		Release:      "feather-front@" + buildinfo.Current().Version(),
	}

	p, err := pipeline.New(paths)
	if err != nil {
		return fmt.Errorf("constructing pipeline: %w", err)
	}

	if port := viper.GetInt("port"); port != 0 {
		p.ConfStore.ApplyPatch(map[string]any{"http_port": port})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()
	defer signal.Stop(sigChan)

	log.Info("starting pipeline", "data_dir", dataDir, "settings_path", settingsPath)
	p.Run(ctx)
	return nil
}
