// Package main is the entry point for the wellness check-in CLI. It drives
// one-shot check-ins from the command line: capture a sensor window, run the
// perception agents and triage, and keep a rolling session history.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/config"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/llm"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/orchestrator"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/report"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/sensor"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/session"
)

var (
	version = "0.1.0"

	cfgPath string
	verbose bool

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wellness",
		Short: "On-device wellness check-in companion",
		Long: `wellness runs a daily check-in: it samples device motion, analyzes
optional photo and audio captures with an on-device model, and produces a
severity verdict with gentle recommendations. Cloud inference is used only
for tasks whose privacy policy permits it, and every step degrades to a
deterministic fallback so a check-in never fails outright.

Run a check-in:     wellness checkin
Review history:     wellness history
See trends:         wellness trends`,
		PersistentPreRunE: initApp,
		SilenceUsage:      true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.wellness/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wellness v%s\n", version)
		},
	})

	rootCmd.AddCommand(checkinCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(trendsCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initApp(cmd *cobra.Command, args []string) error {
	loadEnvFile()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)

	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if lvl, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil && !verbose {
		zlog.Logger = zlog.Logger.Level(lvl)
	}
	return nil
}

// loadEnvFile pulls API keys from ~/.wellness/.env into the process
// environment, so GEMINI_API_KEY does not have to live in the config file.
func loadEnvFile() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(home, ".wellness", ".env"))
}

func openStore() (*session.Store, error) {
	return session.Open(cfg.Storage.DBPath, cfg.Storage.MaxSessions)
}

func buildOrchestrator(store *session.Store) *orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithStore(store),
		orchestrator.WithLogger(zlog.Logger),
	}

	local := llm.NewLocalFromConfig(cfg.LLM.Local)
	if local.Available() {
		opts = append(opts, orchestrator.WithLocalLLM(local))
	} else {
		zlog.Warn().Msg("local model runtime unreachable, on-device inference disabled")
	}

	cloud := llm.NewCloudFromConfig(cfg.LLM.Cloud)
	if cloud.Available() {
		opts = append(opts, orchestrator.WithCloudLLM(cloud))
	} else {
		zlog.Debug().Msg("no cloud API key configured, cloud tier disabled")
	}

	return orchestrator.New(opts...)
}

func checkinCmd() *cobra.Command {
	var (
		imagePath string
		audioPath string
		shaky     bool
	)

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Run one wellness check-in",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			src := pickSource(shaky)
			interval := time.Duration(cfg.Sensor.SampleIntervalMs) * time.Millisecond
			window := time.Duration(cfg.Sensor.CaptureSeconds) * time.Second

			fmt.Printf("Capturing motion for %s, hold your device naturally...\n", window)
			samples, err := sensor.Capture(src, interval, window)
			if err != nil {
				return fmt.Errorf("sensor capture: %w", err)
			}

			o := buildOrchestrator(store)
			result, err := o.RunCheckIn(cmd.Context(), orchestrator.CheckInInput{
				ImagePath: imagePath,
				AudioPath: audioPath,
				Samples:   samples,
			})
			if err != nil {
				return err
			}

			printVerdict(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "photo to analyze for skin condition and facial emotion")
	cmd.Flags().StringVar(&audioPath, "audio", "", "audio recording to analyze for cough and voice tone")
	cmd.Flags().BoolVar(&shaky, "shaky", false, "simulate a shaky hand on the synthetic sensor")
	return cmd
}

func pickSource(shaky bool) sensor.Source {
	if cfg.Sensor.WebsocketURL != "" {
		zlog.Info().Str("url", cfg.Sensor.WebsocketURL).Msg("streaming samples from companion device")
		return sensor.NewWebsocketSource(cfg.Sensor.WebsocketURL)
	}

	amplitude := 0.05
	if shaky {
		amplitude = 0.4
	}
	return sensor.NewSyntheticSource(time.Now().UnixNano(), amplitude)
}

func printVerdict(result *orchestrator.CheckInResult) {
	v := result.Session.Triage

	badge := map[string]string{"green": "🟢", "yellow": "🟡", "red": "🔴"}[string(v.Severity)]
	fmt.Printf("\n%s %s\n\n%s\n", badge, v.Severity, v.Summary)

	if len(v.Recommendations) > 0 {
		fmt.Println()
		for _, rec := range v.Recommendations {
			fmt.Printf("  • %s\n", rec)
		}
	}

	fmt.Println()
	for task, tier := range result.Provenance {
		if tier == "fallback" {
			fmt.Printf("  (%s: estimated without model inference)\n", task)
		}
	}
}

func historyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored check-in sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.List()
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(sessions)
			}

			if len(sessions) == 0 {
				fmt.Println("No check-ins yet. Run: wellness checkin")
				return nil
			}

			for _, s := range sessions {
				ts := time.UnixMilli(s.Timestamp).Format("Jan 2 15:04")
				fmt.Printf("%s  %-6s  %s\n", ts, s.Triage.Severity, s.Triage.Summary)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit raw JSON")
	return cmd
}

func trendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Show baseline trends across recent check-ins",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.List()
			if err != nil {
				return err
			}

			for _, insight := range session.TrendInsights(sessions) {
				marker := "•"
				if insight.IsPositive {
					marker = "✓"
				}
				fmt.Printf("  %s %s\n", marker, insight.Message)
			}

			hr := session.Baseline(sessions, session.HeartRate)
			hrv := session.Baseline(sessions, session.HRV)
			if hr.Avg > 0 || hrv.Avg > 0 {
				fmt.Printf("\n  heart rate: %.0f bpm (%s)   hrv: %.0f ms (%s)\n",
					hr.Avg, hr.Trend, hrv.Avg, hrv.Trend)
			}
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the latest check-in as an HTML report",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			latest, err := store.Latest()
			if err != nil {
				return err
			}
			if latest == nil {
				return fmt.Errorf("no check-ins yet; run: wellness checkin")
			}

			history, err := store.List()
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create report file: %w", err)
			}
			defer f.Close()

			if err := report.Render(f, latest, history); err != nil {
				return fmt.Errorf("render report: %w", err)
			}
			fmt.Printf("Report written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "wellness-report.html", "output file path")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgPath
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				path = filepath.Join(home, ".wellness", "config.yaml")
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *cfg
			if shown.LLM.Cloud.APIKey != "" {
				shown.LLM.Cloud.APIKey = "(set)"
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(shown)
		},
	})

	return cmd
}
