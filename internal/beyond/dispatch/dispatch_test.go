package dispatch_test

import (
	"errors"
	"testing"

	"github.com/beyondtyping/beyond/internal/beyond/dispatch"
	"github.com/beyondtyping/beyond/internal/beyond/rules"
	"github.com/beyondtyping/beyond/internal/beyond/slots"
)

func TestResolve_SubRouting(t *testing.T) {
	table := dispatch.Default()

	tests := []struct {
		intent      string
		text        string
		wantHandler string
		wantPreset  slots.Set
	}{
		{"app_open", "open camera", dispatch.AppCamera, nil},
		{"app_open", "launch whatsapp", dispatch.AppWhatsApp, nil},
		{"app_open", "open yt", dispatch.YouTubeOpen, nil},
		{"app_open", "open vs code", dispatch.AppVSCode, nil},
		{"app_open", "open the word document", dispatch.AppWord, nil},
		{"app_open", "reset my password", dispatch.BrowserOpen, nil},
		{"app_open", "open something", dispatch.BrowserOpen, nil},
		{"app_open", "open chrome and the camera", dispatch.BrowserOpen, nil},
		{"browser_open", "open browser", dispatch.BrowserOpen, nil},
		{"browser_open", "open github", dispatch.BrowserWebsite, nil},
		{"browser_open", "youtube in the browser", dispatch.YouTubeOpen, nil},
		{"browser_search", "search for cats", dispatch.SearchGoogle, nil},
		{"browser_search", "search youtube for cats", dispatch.SearchYouTube, nil},
		{"screen_reader", "read my clipboard", dispatch.ScreenClipboard, nil},
		{"screen_reader", "read the selected text", dispatch.ScreenSelected, nil},
		{"screen_reader", "read the screen", dispatch.ScreenRead, nil},
		{"utility_window", "minimize this window", dispatch.WindowMinimize, nil},
		{"utility_scroll", "scroll down a bit", dispatch.ScrollDown, nil},
		{"youtube_control", "pause it", dispatch.VideoPause, nil},
		{"youtube_control", "next one please", dispatch.VideoNext, nil},
		{"file_explorer", "show me documents", dispatch.FolderNavigate, slots.Set{"folder": "Documents"}},
		{"file_explorer", "explorer in downloads", dispatch.FolderNavigate, slots.Set{"folder": "Downloads"}},
		{"file_explorer", "open explorer", dispatch.ExplorerOpen, nil},
		{"navigate_folder", "go to documents", dispatch.FolderNavigate, nil},
	}

	for _, tt := range tests {
		t.Run(tt.intent+"/"+tt.text, func(t *testing.T) {
			route, err := table.Resolve(tt.intent, tt.text)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if route.Handler.ID != tt.wantHandler {
				t.Errorf("handler = %s, want %s", route.Handler.ID, tt.wantHandler)
			}
			if route.Intent != tt.intent {
				t.Errorf("intent = %s", route.Intent)
			}
			for k, v := range tt.wantPreset {
				if route.Preset[k] != v {
					t.Errorf("preset %s = %q, want %q", k, route.Preset[k], v)
				}
			}
		})
	}
}

func TestResolve_NoRoute(t *testing.T) {
	table := dispatch.Default()
	for _, c := range []struct{ intent, text string }{
		{"youtube_control", "do the thing"},
		{"utility_window", "window please"},
		{"utility_scroll", "scroll"},
	} {
		if _, err := table.Resolve(c.intent, c.text); !errors.Is(err, dispatch.ErrNoRoute) {
			t.Errorf("Resolve(%s, %q) err = %v, want ErrNoRoute", c.intent, c.text, err)
		}
	}
}

func TestResolve_HandlerNotFound(t *testing.T) {
	table := dispatch.Default()
	if _, err := table.Resolve("make_coffee", "make coffee"); !errors.Is(err, dispatch.ErrHandlerNotFound) {
		t.Errorf("unknown intent: err = %v", err)
	}

	broken := dispatch.NewTable()
	broken.Map("utility_time", dispatch.UtilityTime)
	if _, err := broken.Resolve("utility_time", "what time"); !errors.Is(err, dispatch.ErrHandlerNotFound) {
		t.Errorf("undeclared handler: err = %v", err)
	}
}

func TestDefault_Consistent(t *testing.T) {
	table := dispatch.Default()
	for _, intent := range table.Intents() {
		for _, id := range table.Targets(intent) {
			if _, ok := table.Handler(id); !ok {
				t.Errorf("intent %s routes to undeclared handler %s", intent, id)
			}
		}
	}
	for _, id := range table.HandlerIDs() {
		h, _ := table.Handler(id)
		if h.Slot != nil && h.Slot.Required && h.Slot.Prompt == "" {
			t.Errorf("handler %s has a required slot without a prompt", id)
		}
	}
}

func TestDefault_CoversStaticRules(t *testing.T) {
	m, err := rules.Default()
	if err != nil {
		t.Fatalf("rules.Default: %v", err)
	}
	table := dispatch.Default()
	mapped := map[string]bool{}
	for _, intent := range table.Intents() {
		mapped[intent] = true
	}
	for _, intent := range m.Intents() {
		if !mapped[intent] {
			t.Errorf("static rule intent %s has no dispatch entry", intent)
		}
	}
}

func TestYouTubeFillers_ExtractQuery(t *testing.T) {
	table := dispatch.Default()
	h, ok := table.Handler(dispatch.SearchYouTube)
	if !ok || h.Slot == nil {
		t.Fatal("search.youtube must declare a query slot")
	}
	got, ok := slots.Extract("search youtube for lofi beats", "", *h.Slot)
	if !ok || got != "lofi beats" {
		t.Errorf("query = %q, %v; want lofi beats", got, ok)
	}
}
