package environment_test

import (
	"testing"
	"time"

	"github.com/beyondtyping/beyond/common/environment"
)

func TestStringOr(t *testing.T) {
	t.Setenv("BEYOND_TEST_STRING", "  console ")
	if got := environment.StringOr("BEYOND_TEST_STRING", "matrix"); got != "console" {
		t.Errorf("expected %q, got %q", "console", got)
	}
	if got := environment.StringOr("BEYOND_TEST_STRING_MISSING", "matrix"); got != "matrix" {
		t.Errorf("expected %q, got %q", "matrix", got)
	}
}

func TestBoolOr(t *testing.T) {
	t.Setenv("BEYOND_TEST_BOOL", "true")
	if !environment.BoolOr("BEYOND_TEST_BOOL", false) {
		t.Error("expected true")
	}
	t.Setenv("BEYOND_TEST_BOOL", "nope")
	if environment.BoolOr("BEYOND_TEST_BOOL", false) {
		t.Error("unparseable value should fall back to default")
	}
}

func TestIntOr(t *testing.T) {
	t.Setenv("BEYOND_TEST_INT", "42")
	if got := environment.IntOr("BEYOND_TEST_INT", 1); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	t.Setenv("BEYOND_TEST_INT", "x")
	if got := environment.IntOr("BEYOND_TEST_INT", 1); got != 1 {
		t.Errorf("expected default 1, got %d", got)
	}
}

func TestFloat64Or(t *testing.T) {
	t.Setenv("BEYOND_TEST_FLOAT", "0.35")
	if got := environment.Float64Or("BEYOND_TEST_FLOAT", 0); got != 0.35 {
		t.Errorf("expected 0.35, got %v", got)
	}
	if got := environment.Float64Or("BEYOND_TEST_FLOAT_MISSING", 0.5); got != 0.5 {
		t.Errorf("expected default 0.5, got %v", got)
	}
}

func TestDurationOr(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"5s", 5 * time.Second},
		{"1m30s", 90 * time.Second},
		{"12", 12 * time.Second},
		{"soon", 7 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("BEYOND_TEST_DURATION", tt.value)
			if got := environment.DurationOr("BEYOND_TEST_DURATION", 7*time.Second); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
