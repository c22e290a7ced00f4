package main

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"infigrid/config"
)

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "")
	cmd.Flags().Float64Var(&maxScale, "max-scale", config.DefaultMaxScale, "")
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cmd
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	configFile = ""
	cmd := testCommand(t, "--width", "640", "--max-scale", "4")

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Window.Width != 640 {
		t.Errorf("Expected width 640, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != config.DefaultHeight {
		t.Errorf("Expected default height, got %d", cfg.Window.Height)
	}
	if cfg.Grid.MaxScale != 4 {
		t.Errorf("Expected max scale 4, got %f", cfg.Grid.MaxScale)
	}
}

func TestLoadConfigRejectsInvalidFlags(t *testing.T) {
	configFile = ""
	cmd := testCommand(t, "--max-scale", "0.5")

	if _, err := loadConfig(cmd); err == nil {
		t.Error("Expected error for max scale below min scale")
	}
}

func TestReplayScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.star")
	src := "resize(400, 300)\nfor i in range(3):\n    zoom(1, 200, 150)\npan(-10, 5)\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)
	cfg := config.Default()

	f, err := replayScript(cfg, path, logger)
	if err != nil {
		t.Fatalf("replayScript failed: %v", err)
	}
	if f.Width != 400 || f.Height != 300 {
		t.Errorf("Expected 400x300 frame, got %fx%f", f.Width, f.Height)
	}
	if f.Scale < 1.29 || f.Scale > 1.31 {
		t.Errorf("Expected scale 1.3, got %f", f.Scale)
	}
	if !strings.Contains(buf.String(), "script loaded") {
		t.Errorf("Expected debug log for script load, got %q", buf.String())
	}
}

func TestReplayScriptWithoutPath(t *testing.T) {
	cfg := config.Default()
	f, err := replayScript(cfg, "", newLogger(&bytes.Buffer{}, log.InfoLevel))
	if err != nil {
		t.Fatalf("replayScript failed: %v", err)
	}
	if f.Scale != 1 || f.Width != float64(config.DefaultWidth) {
		t.Errorf("Expected initial frame, got %+v", f)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("Expected default logger without one attached")
	}
	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("Expected attached logger")
	}
}

func TestSnapshotToStdout(t *testing.T) {
	configFile, scriptPath, outPath = "", "", "-"
	defer func() { outPath = "grid.png" }()

	cmd := testCommand(t, "--width", "48", "--height", "32")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(withLogger(context.Background(), newLogger(&bytes.Buffer{}, log.InfoLevel)))

	if err := runSnapshot(cmd, nil); err != nil {
		t.Fatalf("runSnapshot failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Expected PNG on stdout: %v", err)
	}
	if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 32 {
		t.Errorf("Expected 48x32, got %v", img.Bounds())
	}
}

func TestConfigInit(t *testing.T) {
	configFile, force = "", false
	path := filepath.Join(t.TempDir(), "infigrid.toml")

	cmd := testCommand(t, "--width", "640")
	cmd.SetContext(withLogger(context.Background(), newLogger(&bytes.Buffer{}, log.InfoLevel)))

	if err := runConfigInit(cmd, []string{path}); err != nil {
		t.Fatalf("runConfigInit failed: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Window.Width != 640 {
		t.Errorf("Expected width 640, got %d", cfg.Window.Width)
	}

	if err := runConfigInit(cmd, []string{path}); err == nil {
		t.Error("Expected refusal to overwrite without --force")
	}
	force = true
	defer func() { force = false }()
	if err := runConfigInit(cmd, []string{path}); err != nil {
		t.Errorf("Expected overwrite with --force, got %v", err)
	}
}

func TestStyleFor(t *testing.T) {
	cfg := config.Default()
	cfg.Colors.Line = "#102030"
	s := styleFor(cfg)

	if s.Line != (color.RGBA{0x10, 0x20, 0x30, 0xff}) {
		t.Errorf("Expected configured line colour, got %v", s.Line)
	}
	if s.LineWidth != 1 || s.Resolution != 1 {
		t.Errorf("Expected default width and resolution, got %v %v", s.LineWidth, s.Resolution)
	}
}
