package actions

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrUnsupported is returned by collaborators that cannot act on this host.
var ErrUnsupported = errors.New("not supported on this system")

// Opener opens a URL or a path with the desktop's default application.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// SystemOpener shells out to the platform's "open" command.
type SystemOpener struct{}

// Open implements Opener.
func (SystemOpener) Open(ctx context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", target)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

// Desktop drives the focused window with keystrokes and launches
// applications. Key combos use xdotool names, e.g. "ctrl+shift+s".
type Desktop interface {
	Press(ctx context.Context, combos ...string) error
	Type(ctx context.Context, text string) error
	Launch(ctx context.Context, app string) error
}

// UnsupportedDesktop is used when no input automation is available.
type UnsupportedDesktop struct{}

func (UnsupportedDesktop) Press(context.Context, ...string) error { return ErrUnsupported }
func (UnsupportedDesktop) Type(context.Context, string) error     { return ErrUnsupported }
func (UnsupportedDesktop) Launch(context.Context, string) error   { return ErrUnsupported }

// DefaultApps maps the application names handlers launch to commands.
var DefaultApps = map[string][]string{
	"editor":     {"gedit"},
	"vscode":     {"code"},
	"word":       {"libreoffice", "--writer"},
	"powerpoint": {"libreoffice", "--impress"},
	"camera":     {"cheese"},
}

// XdotoolDesktop drives an X11 session through the xdotool binary.
type XdotoolDesktop struct {
	Bin  string
	Apps map[string][]string
}

// NewXdotoolDesktop returns a Desktop if xdotool is on PATH.
func NewXdotoolDesktop() (*XdotoolDesktop, bool) {
	bin, err := exec.LookPath("xdotool")
	if err != nil {
		return nil, false
	}
	return &XdotoolDesktop{Bin: bin, Apps: DefaultApps}, true
}

func (d *XdotoolDesktop) Press(ctx context.Context, combos ...string) error {
	args := append([]string{"key", "--clearmodifiers"}, combos...)
	if out, err := exec.CommandContext(ctx, d.Bin, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("xdotool key %s: %w: %s", strings.Join(combos, " "), err, out)
	}
	return nil
}

func (d *XdotoolDesktop) Type(ctx context.Context, text string) error {
	if out, err := exec.CommandContext(ctx, d.Bin, "type", "--delay", "30", "--", text).CombinedOutput(); err != nil {
		return fmt.Errorf("xdotool type: %w: %s", err, out)
	}
	return nil
}

func (d *XdotoolDesktop) Launch(ctx context.Context, app string) error {
	argv, ok := d.Apps[app]
	if !ok || len(argv) == 0 {
		return fmt.Errorf("%w: no command configured for %s", ErrUnsupported, app)
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", app, err)
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

// ScreenReader extracts text from the screen, the clipboard or the current
// selection.
type ScreenReader interface {
	ReadScreen(ctx context.Context) (string, error)
	ReadClipboard(ctx context.Context) (string, error)
	ReadSelection(ctx context.Context) (string, error)
}

// NoScreenReader reports every source as unsupported.
type NoScreenReader struct{}

func (NoScreenReader) ReadScreen(context.Context) (string, error)    { return "", ErrUnsupported }
func (NoScreenReader) ReadClipboard(context.Context) (string, error) { return "", ErrUnsupported }
func (NoScreenReader) ReadSelection(context.Context) (string, error) { return "", ErrUnsupported }

// ClipboardReader reads the clipboard and the primary selection through
// xclip or xsel. Screen text needs OCR and is left unsupported.
type ClipboardReader struct {
	Bin string
	// Clipboard and Selection are the arguments that print each buffer.
	Clipboard []string
	Selection []string
}

// NewClipboardReader returns a reader backed by xclip, or xsel when xclip
// is not on PATH.
func NewClipboardReader() (*ClipboardReader, bool) {
	if bin, err := exec.LookPath("xclip"); err == nil {
		return &ClipboardReader{
			Bin:       bin,
			Clipboard: []string{"-selection", "clipboard", "-o"},
			Selection: []string{"-selection", "primary", "-o"},
		}, true
	}
	if bin, err := exec.LookPath("xsel"); err == nil {
		return &ClipboardReader{
			Bin:       bin,
			Clipboard: []string{"--clipboard", "--output"},
			Selection: []string{"--primary", "--output"},
		}, true
	}
	return nil, false
}

func (c *ClipboardReader) ReadScreen(context.Context) (string, error) { return "", ErrUnsupported }

func (c *ClipboardReader) ReadClipboard(ctx context.Context) (string, error) {
	return c.read(ctx, c.Clipboard)
}

func (c *ClipboardReader) ReadSelection(ctx context.Context) (string, error) {
	return c.read(ctx, c.Selection)
}

func (c *ClipboardReader) read(ctx context.Context, args []string) (string, error) {
	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", filepath.Base(c.Bin), strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}
