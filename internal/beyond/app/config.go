package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/beyondtyping/beyond/common/environment"
	"github.com/beyondtyping/beyond/internal/beyond/clarify"
	"github.com/beyondtyping/beyond/internal/beyond/classifier"
	"github.com/beyondtyping/beyond/internal/beyond/voiceloop"
)

// Transports selectable with BEYOND_TRANSPORT.
const (
	TransportConsole = "console"
	TransportMatrix  = "matrix"
)

// Config holds application configuration
type Config struct {
	// ModelPath is the intent classifier artifact. A missing file runs the
	// static rules alone.
	ModelPath string `validate:"required"`
	// RulesPath overrides the embedded static rule table.
	RulesPath      string
	ListenTimeout  time.Duration `validate:"gt=0"`
	ClarifyTimeout time.Duration `validate:"gt=0"`
	MinConfidence  float64       `validate:"gte=0,lte=1"`
	Transport      string        `validate:"oneof=console matrix"`
	// DatabasePath enables the cycle journal and persistent Matrix sync.
	DatabasePath string
	// HTTPAddr is the TCP address for the optional health/status/metrics
	// server (e.g. ":8080"). When empty the server is disabled.
	HTTPAddr string
	// Home is where folder navigation starts.
	Home string `validate:"required"`

	MatrixHomeserver  string `validate:"required_if=Transport matrix,omitempty,url"`
	MatrixUserID      string `validate:"required_if=Transport matrix"`
	MatrixAccessToken string `validate:"required_if=Transport matrix"`
	MatrixRoomID      string `validate:"required_if=Transport matrix"`
	MatrixOwner       string

	// Stdin and Stdout back the console transport; nil means the process's.
	Stdin  io.Reader `validate:"-"`
	Stdout io.Writer `validate:"-"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		ModelPath:         environment.StringOr("BEYOND_MODEL_PATH", "intent_model.json"),
		RulesPath:         environment.StringOr("BEYOND_RULES_PATH", ""),
		ListenTimeout:     environment.DurationOr("BEYOND_LISTEN_TIMEOUT", voiceloop.DefaultListenTimeout),
		ClarifyTimeout:    environment.DurationOr("BEYOND_CLARIFY_TIMEOUT", clarify.DefaultTimeout),
		MinConfidence:     environment.Float64Or("BEYOND_MIN_CONFIDENCE", classifier.DefaultMinConfidence),
		Transport:         strings.ToLower(environment.StringOr("BEYOND_TRANSPORT", TransportConsole)),
		DatabasePath:      environment.StringOr("BEYOND_DATABASE_PATH", ""),
		HTTPAddr:          environment.StringOr("BEYOND_HTTP_ADDR", ""),
		Home:              environment.StringOr("BEYOND_HOME", home),
		MatrixHomeserver:  environment.StringOr("MATRIX_HOMESERVER", ""),
		MatrixUserID:      environment.StringOr("MATRIX_USER_ID", ""),
		MatrixAccessToken: environment.StringOr("MATRIX_ACCESS_TOKEN", ""),
		MatrixRoomID:      environment.StringOr("MATRIX_ROOM_ID", ""),
		MatrixOwner:       environment.StringOr("MATRIX_OWNER", ""),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg and reports every offending field at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fmt.Sprint(fe.Value()))
	case "url":
		return fmt.Sprintf("%s must be a URL", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s=%s (value %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
}

// homeDir resolves Home to an absolute path.
func (c Config) homeDir() (string, error) {
	abs, err := filepath.Abs(c.Home)
	if err != nil {
		return "", fmt.Errorf("resolve home %q: %w", c.Home, err)
	}
	return abs, nil
}
