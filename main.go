package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"infigrid/canvas"
	"infigrid/config"
	"infigrid/raster"
	"infigrid/script"
	"infigrid/tui"
)

var (
	configFile string
	verbose    bool
	fontPath   string

	cellSize   float64
	scaleStep  float64
	minScale   float64
	maxScale   float64
	notchSteps int

	width      int
	height     int
	background string
	debug      bool

	// snapshot
	scriptPath string
	scriptVars map[string]string
	outPath    string

	// config init
	force bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "infigrid",
		Short:         "infinite pan and zoom grid",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			if verbose {
				bridgeRasterLogs(logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runWindow(cfg, loggerFromContext(cmd.Context()), fontPath)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.Float64Var(&cellSize, "cell-size", config.DefaultCellSize, "grid cell size in world units")
	pf.Float64Var(&scaleStep, "scale-step", config.DefaultScaleStep, "scale change per zoom step")
	pf.Float64Var(&minScale, "min-scale", config.DefaultMinScale, "minimum scale")
	pf.Float64Var(&maxScale, "max-scale", config.DefaultMaxScale, "maximum scale")
	pf.IntVar(&notchSteps, "notch-steps", config.DefaultNotchSteps, "zoom steps per wheel notch")
	pf.IntVar(&width, "width", config.DefaultWidth, "surface width")
	pf.IntVar(&height, "height", config.DefaultHeight, "surface height")
	pf.BoolVar(&debug, "debug", false, "draw the zoom point and remainder overlay")

	rootCmd.Flags().StringVar(&background, "background", config.ModeLines, "background mode (lines or tile)")
	rootCmd.Flags().StringVar(&fontPath, "font", "", "TTF/OTF font for the UI")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "explore the grid in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cfg.Params(), cfg.Input.NotchSteps, loggerFromContext(cmd.Context()))
		},
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render a frame to PNG without opening a window",
		Args:  cobra.NoArgs,
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().StringVar(&scriptPath, "script", "", "starlark script producing events")
	snapshotCmd.Flags().StringToStringVar(&scriptVars, "var", nil, "script variable (name=value)")
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "grid.png", "output PNG path, - for stdout")

	replayCmd := &cobra.Command{
		Use:   "replay [script]",
		Short: "run a script through the viewport and print the final frame",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	replayCmd.Flags().StringToStringVar(&scriptVars, "var", nil, "script variable (name=value)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a yaml or toml file",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigInit,
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(initCmd)

	rootCmd.AddCommand(tuiCmd, snapshotCmd, replayCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("cell-size") {
		cfg.Grid.CellSize = cellSize
	}
	if flags.Changed("scale-step") {
		cfg.Grid.ScaleStep = scaleStep
	}
	if flags.Changed("min-scale") {
		cfg.Grid.MinScale = minScale
	}
	if flags.Changed("max-scale") {
		cfg.Grid.MaxScale = maxScale
	}
	if flags.Changed("notch-steps") {
		cfg.Input.NotchSteps = notchSteps
	}
	if flags.Changed("width") {
		cfg.Window.Width = width
	}
	if flags.Changed("height") {
		cfg.Window.Height = height
	}
	if flags.Lookup("background") != nil && flags.Changed("background") {
		cfg.Window.Background = background
	}
	if flags.Changed("debug") {
		cfg.Window.Debug = debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// replayScript runs the script at path through a fresh controller.
func replayScript(cfg *config.Config, path string, logger *log.Logger) (canvas.Frame, error) {
	ctrl := canvas.NewController[struct{}](cfg.Params(), float64(cfg.Window.Width), float64(cfg.Window.Height), nil)
	if path == "" {
		return ctrl.Frame(), nil
	}

	events, err := script.RunFile(path, script.ParseVars(scriptVars))
	if err != nil {
		return canvas.Frame{}, err
	}
	logger.Debug("script loaded", "path", path, "events", len(events))

	return ctrl.HandleAll(events)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f, err := replayScript(cfg, scriptPath, logger)
	if err != nil {
		return err
	}

	style := styleFor(cfg)
	style.Debug = cfg.Window.Debug

	if outPath == "-" {
		if err := raster.EncodePNG(cmd.OutOrStdout(), f, style); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		logger.Debug("snapshot written to stdout", "scale", f.Scale)
		return nil
	}
	if err := raster.SavePNG(outPath, f, style); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	logger.Info("snapshot written", "path", outPath, "scale", f.Scale, "width", f.Width, "height", f.Height)
	return nil
}

// styleFor applies the configured palette to the default raster style.
func styleFor(cfg *config.Config) raster.Style {
	palette := cfg.Palette()
	style := raster.DefaultStyle()
	style.Background = palette.Background
	style.Line = palette.Line
	style.Marker = palette.Marker
	return style
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	path := args[0]
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	logger.Info("config written", "path", path)
	return nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f, err := replayScript(cfg, args[0], logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scale:        %.4f\n", f.Scale)
	fmt.Fprintf(out, "zoom point:   (%.2f, %.2f)\n", f.ZoomPoint.X, f.ZoomPoint.Y)
	fmt.Fprintf(out, "remainder:    (%.4f, %.4f)\n", f.Remainder.X, f.Remainder.Y)
	fmt.Fprintf(out, "world offset: (%.2f, %.2f)\n", f.WorldOffset.X, f.WorldOffset.Y)
	fmt.Fprintf(out, "bounds:       L=%.2f R=%.2f T=%.2f B=%.2f\n", f.Bounds.Left, f.Bounds.Right, f.Bounds.Top, f.Bounds.Bottom)
	return nil
}
