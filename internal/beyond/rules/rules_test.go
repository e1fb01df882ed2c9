package rules_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beyondtyping/beyond/internal/beyond/rules"
)

func defaultMatcher(t *testing.T) *rules.Matcher {
	t.Helper()
	m, err := rules.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return m
}

func TestDefault_Match(t *testing.T) {
	m := defaultMatcher(t)

	tests := []struct {
		text       string
		wantIntent string
		wantSlots  map[string]string
	}{
		{"open youtube", "youtube_open", nil},
		{"search youtube for lofi beats", "youtube_search", nil},
		{"find cats on yt", "youtube_search", nil},
		{"open browser", "browser_open", nil},
		{"open file explorer", "file_explorer", nil},
		{"go to documents", "navigate_folder", map[string]string{"folder": "documents"}},
		{"take me to the music folder", "navigate_folder", map[string]string{"folder": "music"}},
		{"downloads open", "navigate_folder", map[string]string{"folder": "downloads"}},
		{"open folder projects", "open_folder", nil},
		{"list files", "list_files", nil},
		{"what folders are here", "list_files", nil},
		{"open file report", "file_open", nil},
		{"open picture beach", "picture_open", nil},
		{"go back to the previous folder", "folder_back", nil},
		{"where am i", "where_am_i", nil},
		{"open notepad", "editor_open", nil},
		{"create file shopping list", "file_create", nil},
		{"write hello world in file", "file_write", map[string]string{"text": " hello world "}},
		{"delete text typo", "text_delete", nil},
		{"delete file", "file_delete", nil},
		{"save file", "file_save", nil},
		{"save as draft", "file_save", nil},
		{"save to desktop", "file_save_to", nil},
		{"close the file", "file_close", nil},
		{"search google for golang", "google_search", nil},
		{"pause the video", "video_pause", nil},
		{"play video", "video_play", nil},
		{"skip", "video_next", nil},
		{"previous song", "video_previous", nil},
		{"switch tab", "tab_next", nil},
		{"last tab", "tab_previous", nil},
		{"open website github", "website_open", nil},
		{"open whatsapp", "whatsapp_open", nil},
		{"what time is it", "utility_time", nil},
		{"what can you do", "utility_help", nil},
		{"stop", "utility_stop", nil},
		{"close", "utility_stop", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := m.Match(tt.text)
			if !got.Resolved {
				t.Fatalf("Match(%q) unresolved, want %s", tt.text, tt.wantIntent)
			}
			if got.Intent != tt.wantIntent {
				t.Fatalf("Match(%q) = %s (pattern %s), want %s", tt.text, got.Intent, got.Pattern, tt.wantIntent)
			}
			for name, want := range tt.wantSlots {
				if got.Slots[name] != want {
					t.Errorf("slot %s = %q, want %q", name, got.Slots[name], want)
				}
			}
		})
	}
}

func TestDefault_Unresolved(t *testing.T) {
	m := defaultMatcher(t)
	for _, text := range []string{"blah blah", "make me a sandwich", "documents"} {
		if got := m.Match(text); got.Resolved {
			t.Errorf("Match(%q) resolved to %s, want unresolved", text, got.Intent)
		}
	}
}

// Earlier broad rules win over later, more specific ones.
func TestDefault_DeclarationOrderShadows(t *testing.T) {
	m := defaultMatcher(t)

	tests := []struct {
		text     string
		want     string
		shadowed string
	}{
		{"next tab", "video_next", "tab_next"},
		{"previous tab", "video_previous", "tab_previous"},
		{"play youtube", "youtube_open", "youtube_search"},
		{"open file report in documents", "navigate_folder", "file_open"},
		{"save file to desktop", "file_save", "file_save_to"},
		{"stop video", "video_pause", "utility_stop"},
	}
	for _, tt := range tests {
		got := m.Match(tt.text)
		if got.Intent != tt.want {
			t.Errorf("Match(%q) = %s, want %s (shadowing %s)", tt.text, got.Intent, tt.want, tt.shadowed)
		}
	}
}

func TestDefault_GenericYoutubeIsLaterRule(t *testing.T) {
	m := defaultMatcher(t)
	first := m.Match("open youtube")
	generic := m.Match("youtube")
	if first.Intent != "youtube_open" || generic.Intent != "youtube_open" {
		t.Fatalf("intents: %s, %s", first.Intent, generic.Intent)
	}
	if generic.RuleIndex <= first.RuleIndex {
		t.Errorf("generic youtube rule index %d should follow %d", generic.RuleIndex, first.RuleIndex)
	}
}

func TestLoad_FirstMatchWins(t *testing.T) {
	doc := `
rules:
  - intent: broad
    patterns: ['\bopen\b']
  - intent: specific
    patterns: ['\bopen the pod bay doors\b']
`
	m, err := rules.Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := m.Match("please open the pod bay doors")
	if got.Intent != "broad" || got.RuleIndex != 0 {
		t.Errorf("got %s at %d, want broad at 0", got.Intent, got.RuleIndex)
	}
	if got := m.Match("close the doors"); got.Resolved {
		t.Errorf("unexpected match %s", got.Intent)
	}
}

func TestLoad_PatternsInOrderWithinRule(t *testing.T) {
	doc := `
rules:
  - intent: greet
    patterns: ['(hello) there', '(hello)']
    slots: {word: 1}
`
	m, err := rules.Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := m.Match("hello there")
	if got.Pattern != "(hello) there" {
		t.Errorf("winning pattern = %q", got.Pattern)
	}
	if got.Slots["word"] != "hello" {
		t.Errorf("slot = %q", got.Slots["word"])
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"no rules", "version: 1\n", "invalid rules"},
		{"empty patterns", "rules:\n  - intent: x\n    patterns: []\n", "invalid rules"},
		{"bad intent name", "rules:\n  - intent: Open-Thing\n    patterns: ['a']\n", "invalid rules"},
		{"unknown field", "rules:\n  - intent: x\n    patterns: ['a']\n    weight: 3\n", "invalid rules"},
		{"bad regexp", "rules:\n  - intent: x\n    patterns: ['(unclosed']\n", "invalid pattern"},
		{"slot group out of range", "rules:\n  - intent: x\n    patterns: ['(a)']\n    slots: {thing: 2}\n", "refers to group 2"},
		{"not yaml", "rules: [\n", "failed to parse"},
		{"fractional version", "version: 1.5\nrules:\n  - intent: x\n    patterns: ['a']\n", "invalid rules"},
		{"slot group zero", "rules:\n  - intent: x\n    patterns: ['(a)']\n    slots: {thing: 0}\n", "invalid rules"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rules.Load([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_NumericFieldsValidate(t *testing.T) {
	doc := "version: 2\nrules:\n  - intent: file_open\n    patterns: ['open (\\w+)']\n    slots: {file: 1}\n"
	m, err := rules.Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := m.Match("open notes")
	if !got.Resolved || got.Slots["file"] != "notes" {
		t.Errorf("Match = %+v", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  - intent: utility_time\n    patterns: ['\\bclock\\b']\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := rules.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := m.Match("check the clock"); got.Intent != "utility_time" {
		t.Errorf("got %q", got.Intent)
	}
	if _, err := rules.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIntents_Distinct(t *testing.T) {
	m := defaultMatcher(t)
	intents := m.Intents()
	seen := map[string]bool{}
	for _, in := range intents {
		if seen[in] {
			t.Errorf("duplicate intent %s", in)
		}
		seen[in] = true
	}
	if len(intents) >= len(m.Rules()) {
		t.Errorf("expected fewer intents (%d) than rules (%d): youtube_open is declared twice", len(intents), len(m.Rules()))
	}
}
