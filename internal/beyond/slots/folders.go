package slots

import "strings"

// Folder is the canonical identity of a well-known user folder. Its value is
// the directory name under the user's home.
type Folder string

const (
	Desktop   Folder = "Desktop"
	Documents Folder = "Documents"
	Downloads Folder = "Downloads"
	Pictures  Folder = "Pictures"
	Music     Folder = "Music"
	Videos    Folder = "Videos"
)

var folderAliases = map[string]Folder{
	"desktop":      Desktop,
	"documents":    Documents,
	"document":     Documents,
	"doc":          Documents,
	"docs":         Documents,
	"my documents": Documents,
	"downloads":    Downloads,
	"download":     Downloads,
	"my downloads": Downloads,
	"pictures":     Pictures,
	"picture":      Pictures,
	"pics":         Pictures,
	"photos":       Pictures,
	"my pictures":  Pictures,
	"music":        Music,
	"my music":     Music,
	"videos":       Videos,
	"my videos":    Videos,
}

// KnownFolderWords are the single words that make an utterance a folder
// navigation request rather than a generic open.
var KnownFolderWords = []string{"downloads", "documents", "desktop", "pictures", "music", "videos"}

// CanonicalFolder maps a folder alias ("docs", "my pictures", "photos folder")
// to its canonical identity.
func CanonicalFolder(name string) (Folder, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	key = strings.TrimSuffix(key, " folder")
	key = strings.TrimPrefix(key, "the ")
	f, ok := folderAliases[key]
	return f, ok
}

// CanonicalizeFolder is a Spec.Canonicalize hook: known aliases become their
// canonical identity, anything else is returned unchanged so it can be
// searched for by name.
func CanonicalizeFolder(name string) string {
	if f, ok := CanonicalFolder(name); ok {
		return string(f)
	}
	return name
}
