package actions

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beyondtyping/beyond/internal/beyond/slots"
)

// press returns an Action sending combos to the focused window.
func (h *Handlers) press(response string, combos ...string) Action {
	return func(ctx context.Context, req Request) Outcome {
		if err := h.Desktop.Press(ctx, combos...); err != nil {
			return h.desktopFailure(req, err)
		}
		return ok(req, response)
	}
}

func (h *Handlers) launch(app, response string) Action {
	return func(ctx context.Context, req Request) Outcome {
		if err := h.Desktop.Launch(ctx, app); err != nil {
			return h.desktopFailure(req, err)
		}
		return ok(req, response)
	}
}

func (h *Handlers) desktopFailure(req Request, err error) Outcome {
	if errors.Is(err, ErrUnsupported) {
		return fail(req, "Sorry, I can't control the desktop on this system.")
	}
	h.Logger.Warn("desktop action failed", "handler", req.Handler, "err", err)
	return fail(req, fmt.Sprintf("That didn't work: %v", err))
}

func (h *Handlers) writeText(ctx context.Context, req Request) Outcome {
	text := req.Slots.Get("text")
	if text == "" {
		return fail(req, "What would you like me to write?")
	}
	if err := h.Desktop.Type(ctx, text); err != nil {
		return h.desktopFailure(req, err)
	}
	return ok(req, fmt.Sprintf("Text '%s' written successfully", text))
}

func (h *Handlers) deleteText(ctx context.Context, req Request) Outcome {
	text := req.Slots.Get("text")
	if text == "" {
		if err := h.Desktop.Press(ctx, "Home", "shift+End", "Delete"); err != nil {
			return h.desktopFailure(req, err)
		}
		return ok(req, "Line deleted")
	}
	if err := h.Desktop.Press(ctx, "ctrl+f"); err != nil {
		return h.desktopFailure(req, err)
	}
	if err := h.Desktop.Type(ctx, text); err != nil {
		return h.desktopFailure(req, err)
	}
	if err := h.Desktop.Press(ctx, "Return", "Escape", "Delete"); err != nil {
		return h.desktopFailure(req, err)
	}
	return ok(req, fmt.Sprintf("Deleted text '%s'", text))
}

func (h *Handlers) saveFile(ctx context.Context, req Request) Outcome {
	name := req.Slots.Get("name")
	if name == "" {
		if err := h.Desktop.Press(ctx, "ctrl+s"); err != nil {
			return h.desktopFailure(req, err)
		}
		return ok(req, "File saved")
	}
	if err := h.Desktop.Press(ctx, "ctrl+shift+s"); err != nil {
		return h.desktopFailure(req, err)
	}
	if err := h.Desktop.Type(ctx, name); err != nil {
		return h.desktopFailure(req, err)
	}
	if err := h.Desktop.Press(ctx, "Return"); err != nil {
		return h.desktopFailure(req, err)
	}
	return ok(req, fmt.Sprintf("File saved as %s", name))
}

func (h *Handlers) saveFileTo(ctx context.Context, req Request) Outcome {
	location := req.Slots.Get("location")
	if location == "" {
		return fail(req, "Where would you like to save the file?")
	}
	target, known := knownFolder(req.Nav.Home, location)
	if !known {
		return fail(req, fmt.Sprintf("Location '%s' not recognized. Use: desktop, documents, downloads, or pictures", location))
	}
	if err := h.Desktop.Press(ctx, "ctrl+shift+s", "ctrl+l"); err != nil {
		return h.desktopFailure(req, err)
	}
	if err := h.Desktop.Type(ctx, target); err != nil {
		return h.desktopFailure(req, err)
	}
	if err := h.Desktop.Press(ctx, "Return", "Return"); err != nil {
		return h.desktopFailure(req, err)
	}
	return ok(req, fmt.Sprintf("File saved to %s", strings.ToLower(filepath.Base(target))))
}

func (h *Handlers) closeFile(ctx context.Context, req Request) Outcome {
	if err := h.Desktop.Press(ctx, "alt+F4"); err != nil {
		return h.desktopFailure(req, err)
	}
	out := ok(req, "File closed")
	out.Nav = req.Nav.Clone()
	out.Nav.ExplorerOpen = false
	return out
}

func (h *Handlers) readSource(read func(context.Context) (string, error), empty string) Action {
	return func(ctx context.Context, req Request) Outcome {
		text, err := read(ctx)
		if errors.Is(err, ErrUnsupported) {
			return fail(req, "Screen reading is not available on this system.")
		}
		if err != nil {
			return fail(req, fmt.Sprintf("Failed to read text: %v", err))
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return fail(req, empty)
		}
		return ok(req, text)
	}
}

func (h *Handlers) tellTime(_ context.Context, req Request) Outcome {
	return ok(req, "The current time is "+h.Now().Format("03:04 PM"))
}

// HelpText is spoken by the help handler.
var HelpText = []string{
	"Here are the main commands you can use.",
	"Browser: Open YouTube, Open browser, Search YouTube for something, Search Google.",
	"Files: Open file explorer, Go to downloads or documents, Open file name, List files.",
	"Documents: Open notepad, Create file, Write in file, Save file.",
	"Video: Play video, Pause video, Next video, Previous video.",
	"Utilities: What time is it, Next tab, Previous tab, Help, Stop.",
}

func (h *Handlers) help(_ context.Context, req Request) Outcome {
	return ok(req, strings.Join(HelpText, " "))
}

func (h *Handlers) stop(_ context.Context, req Request) Outcome {
	out := ok(req, "Goodbye!")
	out.Stop = true
	return out
}

func (h *Handlers) chat(_ context.Context, req Request) Outcome {
	if strings.Contains(req.Utterance, "thank") {
		return ok(req, "You're welcome!")
	}
	return ok(req, "I'm here to help you control your computer by voice. Say 'help' to hear what I can do.")
}

func (h *Handlers) unlock(_ context.Context, req Request) Outcome {
	return fail(req, "I can't unlock the computer. Please sign in yourself.")
}

// Folders lists the well-known folders for help and status output.
func Folders() []slots.Folder {
	return []slots.Folder{slots.Desktop, slots.Documents, slots.Downloads, slots.Pictures, slots.Music, slots.Videos}
}
