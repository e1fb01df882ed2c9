package app_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beyondtyping/beyond/internal/beyond/app"
	"github.com/beyondtyping/beyond/internal/beyond/store"
	"github.com/beyondtyping/beyond/internal/beyond/voiceloop"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := app.New(app.Config{}, quietLogger()); err == nil {
		t.Fatal("expected error for empty config")
	}
}

func TestNew_BadRulesFile(t *testing.T) {
	cfg := validConfig(t)
	cfg.RulesPath = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := app.New(cfg, quietLogger()); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}

func TestRun_ConsoleSession(t *testing.T) {
	cfg := validConfig(t)
	if err := os.MkdirAll(filepath.Join(cfg.Home, "Documents"), 0o755); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	cfg.ModelPath = filepath.Join(dir, "absent_model.json")
	cfg.DatabasePath = filepath.Join(dir, "beyond.db")
	cfg.Stdin = strings.NewReader("go to documents\nwhere am i\nstop\n")
	var out bytes.Buffer
	cfg.Stdout = &out

	a, err := app.New(cfg, quietLogger())
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	transcript := out.String()
	for _, want := range []string{
		"Beyond: " + voiceloop.Greeting,
		"Beyond: Navigated to Documents",
		"Beyond: You are in Documents folder",
		"Beyond: Goodbye!",
	} {
		if !strings.Contains(transcript, want) {
			t.Errorf("transcript missing %q:\n%s", want, transcript)
		}
	}

	status := a.Status()
	if status.ClassifierAvailable {
		t.Error("classifier should be unavailable without a model file")
	}
	if status.Loop.Cycles != 3 || status.Loop.Nav.Current != filepath.Join(cfg.Home, "Documents") {
		t.Errorf("unexpected loop state %+v", status.Loop)
	}

	s, err := store.New(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s.Close()
	cycles, err := s.RecentCycles(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentCycles: %v", err)
	}
	if len(cycles) != 3 || cycles[0].Intent != "utility_stop" {
		t.Errorf("unexpected journal %+v", cycles)
	}
}

func TestRun_EndOfInput(t *testing.T) {
	cfg := validConfig(t)
	cfg.ModelPath = filepath.Join(t.TempDir(), "absent_model.json")
	cfg.Stdin = strings.NewReader("help\n")
	cfg.Stdout = &bytes.Buffer{}

	a, err := app.New(cfg, quietLogger())
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); !errors.Is(err, voiceloop.ErrListenerClosed) {
		t.Errorf("err = %v, want ErrListenerClosed", err)
	}
}
