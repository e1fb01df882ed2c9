package slots_test

import (
	"testing"

	"github.com/beyondtyping/beyond/internal/beyond/slots"
)

var youtubeFillers = []string{
	"search youtube for", "search youtube", "search for", "youtube search",
	"find on youtube", "youtube find", "play on youtube", "on youtube",
	"look for", "show me", "play", "find", "youtube", "search",
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		fillers []string
		want    string
	}{
		{"prefix", "go to documents", []string{"go to"}, "documents"},
		{"embedded", "please go to documents now", []string{"go to"}, "please documents now"},
		{"suffix", "documents go to", []string{"go to"}, "documents"},
		{"first occurrence only", "open open file", []string{"open"}, "open file"},
		{"prefix wins over suffix", "play music play", []string{"play"}, "music play"},
		{"whole words only", "playlist of songs", []string{"play"}, "playlist of songs"},
		{"collapses whitespace", "open   file    report  ", []string{"open file"}, "report"},
		{"entire text is filler", "delete file", []string{"delete file"}, ""},
		{"youtube query", "search youtube for lofi beats", youtubeFillers, "lofi beats"},
		{"youtube find", "find cats on youtube", youtubeFillers, "cats"},
		{"no fillers", "quarterly report", nil, "quarterly report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slots.Strip(tt.text, tt.fillers); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestStrip_IdempotentOnResidual(t *testing.T) {
	inputs := []string{
		"search youtube for lofi beats",
		"go to   documents",
		"open file quarterly report",
		"take me to the music folder",
	}
	fillers := append([]string{"go to", "take me to", "open file"}, youtubeFillers...)

	for _, in := range inputs {
		once := slots.Strip(in, fillers)
		twice := slots.Strip(once, fillers)
		if once != twice {
			t.Errorf("Strip not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestExtract_ShortResidualIsMissing(t *testing.T) {
	spec := slots.Spec{Name: "file", Fillers: []string{"delete file", "delete"}, Required: true}
	for _, text := range []string{"delete file", "delete file x", "delete"} {
		if v, ok := slots.Extract(text, "", spec); ok {
			t.Errorf("Extract(%q) = %q, want missing", text, v)
		}
	}
	if v, ok := slots.Extract("delete file notes", "", spec); !ok || v != "notes" {
		t.Errorf("Extract = %q, %v; want notes, true", v, ok)
	}
}

func TestExtract_PrefersCaptured(t *testing.T) {
	spec := slots.Spec{Name: "query", Fillers: []string{"for"}}
	v, ok := slots.Extract("search google for go generics", "for go generics", spec)
	if !ok || v != "go generics" {
		t.Fatalf("got %q, %v", v, ok)
	}
}

func TestExtract_Canonicalizes(t *testing.T) {
	spec := slots.Spec{
		Name:         "folder",
		Fillers:      []string{"go to", "navigate to"},
		Canonicalize: slots.CanonicalizeFolder,
	}
	v, ok := slots.Extract("go to documents", "", spec)
	if !ok || v != string(slots.Documents) {
		t.Fatalf("got %q, %v; want %q", v, ok, slots.Documents)
	}
}

func TestCanonicalFolder(t *testing.T) {
	tests := map[string]slots.Folder{
		"documents":      slots.Documents,
		"doc":            slots.Documents,
		"Docs":           slots.Documents,
		"my  documents":  slots.Documents,
		"pics":           slots.Pictures,
		"photos":         slots.Pictures,
		"pictures":       slots.Pictures,
		"download":       slots.Downloads,
		"the downloads":  slots.Downloads,
		"desktop folder": slots.Desktop,
		"music":          slots.Music,
		"videos":         slots.Videos,
	}
	for alias, want := range tests {
		got, ok := slots.CanonicalFolder(alias)
		if !ok || got != want {
			t.Errorf("CanonicalFolder(%q) = %q, %v; want %q", alias, got, ok, want)
		}
	}
	if _, ok := slots.CanonicalFolder("projects"); ok {
		t.Error("unknown folder should not canonicalize")
	}
	if got := slots.CanonicalizeFolder("projects"); got != "projects" {
		t.Errorf("CanonicalizeFolder passthrough = %q", got)
	}
}
