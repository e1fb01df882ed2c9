package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beyondtyping/beyond/internal/beyond/slots"
)

// maxSearchDepth bounds how far below a search root file lookups descend.
const maxSearchDepth = 4

// maxReadBytes caps how much of a file is read aloud.
const maxReadBytes = 2000

var pictureExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

func isPicture(name string) bool {
	return pictureExtensions[strings.ToLower(filepath.Ext(name))]
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// listing splits a directory into sub-directories and files, sorted by name.
type listing struct {
	dirs, files []string
}

func readListing(dir string) (listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return listing{}, err
	}
	var l listing
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			l.dirs = append(l.dirs, e.Name())
		} else {
			l.files = append(l.files, e.Name())
		}
	}
	sort.Strings(l.dirs)
	sort.Strings(l.files)
	return l, nil
}

func (h *Handlers) openQuietly(ctx context.Context, target string) {
	if err := h.Opener.Open(ctx, target); err != nil {
		h.Logger.Debug("opener failed", "target", target, "err", err)
	}
}

func (h *Handlers) openExplorer(ctx context.Context, req Request) Outcome {
	nav := req.Nav.Clone()
	hint := "Say 'go to downloads', 'go to documents', or 'go to desktop' to navigate."
	if nav.ExplorerOpen {
		return Outcome{Success: true, Nav: nav, Response: "File Explorer is already open. " + hint}
	}
	if err := h.Opener.Open(ctx, nav.Current); err != nil {
		return fail(req, fmt.Sprintf("Failed to open File Explorer: %v", err))
	}
	nav.ExplorerOpen = true
	return Outcome{Success: true, Nav: nav, Response: "File Explorer opened. " + hint}
}

// knownFolder resolves a canonical folder identity under home.
func knownFolder(home, name string) (string, bool) {
	f, ok := slots.CanonicalFolder(name)
	if !ok {
		for _, known := range Folders() {
			if strings.EqualFold(name, string(known)) {
				f, ok = known, true
				break
			}
		}
	}
	if !ok {
		return "", false
	}
	return filepath.Join(home, string(f)), true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// findDir looks for a directory whose name contains name, first among the
// current folder's children and then below each root.
func findDir(current string, roots []string, name string) (string, bool) {
	needle := strings.ToLower(name)
	if l, err := readListing(current); err == nil {
		for _, d := range l.dirs {
			if strings.Contains(strings.ToLower(d), needle) {
				return filepath.Join(current, d), true
			}
		}
	}
	return walkFind(roots, func(path string, d fs.DirEntry) bool {
		return d.IsDir() && strings.Contains(strings.ToLower(d.Name()), needle)
	})
}

// findFile prefers an exact name match in the current folder, then a partial
// match there, then a partial match below each root.
func findFile(current string, roots []string, name string, accept func(string) bool) (string, bool) {
	needle := strings.ToLower(name)
	if accept == nil {
		accept = func(string) bool { return true }
	}
	if l, err := readListing(current); err == nil {
		for _, f := range l.files {
			lower := strings.ToLower(f)
			if accept(f) && (lower == needle || strings.TrimSuffix(lower, filepath.Ext(lower)) == needle) {
				return filepath.Join(current, f), true
			}
		}
		for _, f := range l.files {
			if accept(f) && strings.Contains(strings.ToLower(f), needle) {
				return filepath.Join(current, f), true
			}
		}
	}
	return walkFind(roots, func(path string, d fs.DirEntry) bool {
		return !d.IsDir() && accept(d.Name()) && strings.Contains(strings.ToLower(d.Name()), needle)
	})
}

var errFound = errors.New("found")

func walkFind(roots []string, match func(path string, d fs.DirEntry) bool) (string, bool) {
	for _, root := range roots {
		if !isDir(root) {
			continue
		}
		var found string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if path == root {
				return nil
			}
			if d.IsDir() && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if match(path, d) {
				found = path
				return errFound
			}
			if d.IsDir() {
				rel, _ := filepath.Rel(root, path)
				if strings.Count(rel, string(filepath.Separator))+1 >= maxSearchDepth {
					return filepath.SkipDir
				}
			}
			return nil
		})
		if errors.Is(err, errFound) {
			return found, true
		}
	}
	return "", false
}

func (h *Handlers) announceFolder(dir string) string {
	l, err := readListing(dir)
	announcement := fmt.Sprintf("Navigated to %s", filepath.Base(dir))
	if err == nil && (len(l.files) > 0 || len(l.dirs) > 0) {
		announcement += fmt.Sprintf(". Found %s and %s", plural(len(l.files), "file"), plural(len(l.dirs), "folder"))
	}
	return announcement
}

func (h *Handlers) changeDir(ctx context.Context, req Request, dir string) Outcome {
	nav := req.Nav.push(dir)
	if nav.ExplorerOpen {
		h.openQuietly(ctx, dir)
	}
	return Outcome{Success: true, Nav: nav, Response: h.announceFolder(dir)}
}

func (h *Handlers) navigateFolder(ctx context.Context, req Request) Outcome {
	name := req.Slots.Get("folder")
	if name == "" {
		return fail(req, "Which folder would you like to go to?")
	}
	if target, ok := knownFolder(req.Nav.Home, name); ok {
		if !isDir(target) {
			return fail(req, fmt.Sprintf("Folder %s not found", filepath.Base(target)))
		}
		return h.changeDir(ctx, req, target)
	}

	roots := []string{req.Nav.Home, filepath.Join(req.Nav.Home, "Documents"), filepath.Join(req.Nav.Home, "Desktop")}
	if dir, ok := findDir(req.Nav.Current, roots, name); ok {
		return h.changeDir(ctx, req, dir)
	}
	return fail(req, fmt.Sprintf("Folder '%s' not found. Say 'list files' to see available folders.", name))
}

// openFolder only accepts well-known folders or children of the current one.
func (h *Handlers) openFolder(ctx context.Context, req Request) Outcome {
	name := req.Slots.Get("folder")
	if name == "" {
		return fail(req, "Which folder would you like to open?")
	}
	target, ok := knownFolder(req.Nav.Home, name)
	if !ok {
		target, ok = findDir(req.Nav.Current, nil, name)
	}
	if !ok || !isDir(target) {
		return fail(req, fmt.Sprintf("Folder %s not found", name))
	}
	nav := req.Nav.push(target)
	nav.ExplorerOpen = true
	h.openQuietly(ctx, target)
	return Outcome{Success: true, Nav: nav, Response: fmt.Sprintf("Opened %s folder", filepath.Base(target))}
}

func summarize(names []string) string {
	if len(names) <= 5 {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:5], ", ") + fmt.Sprintf(" and %d more", len(names)-5)
}

func (h *Handlers) listFiles(_ context.Context, req Request) Outcome {
	l, err := readListing(req.Nav.Current)
	if err != nil {
		return fail(req, "Current location is not a valid folder.")
	}
	if len(l.dirs) == 0 && len(l.files) == 0 {
		return ok(req, "This folder is empty.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "In %s: ", filepath.Base(req.Nav.Current))
	if len(l.dirs) > 0 {
		fmt.Fprintf(&b, "%s: %s", plural(len(l.dirs), "folder"), summarize(l.dirs))
	}
	if len(l.files) > 0 {
		if len(l.dirs) > 0 {
			b.WriteString(". ")
		}
		fmt.Fprintf(&b, "%s: %s", plural(len(l.files), "file"), summarize(l.files))
	}
	pictures := 0
	for _, f := range l.files {
		if isPicture(f) {
			pictures++
		}
	}
	if pictures > 0 {
		fmt.Fprintf(&b, ". %s found", plural(pictures, "picture"))
	}
	return ok(req, b.String())
}

func (h *Handlers) folderBack(ctx context.Context, req Request) Outcome {
	if len(req.Nav.History) == 0 {
		return fail(req, "No previous folder to go back to.")
	}
	nav := req.Nav.Clone()
	prev := nav.History[len(nav.History)-1]
	nav.History = nav.History[:len(nav.History)-1]
	nav.Current = prev
	nav.ExplorerOpen = false
	return Outcome{Success: true, Nav: nav, Response: fmt.Sprintf("Went back to %s", filepath.Base(prev))}
}

func (h *Handlers) whereAmI(_ context.Context, req Request) Outcome {
	l, err := readListing(req.Nav.Current)
	if err != nil {
		return fail(req, "Current location is not a valid folder.")
	}
	return ok(req, fmt.Sprintf("You are in %s folder. Path: %s. There are %s and %s here.",
		filepath.Base(req.Nav.Current), req.Nav.Current,
		plural(len(l.files), "file"), plural(len(l.dirs), "folder")))
}

func (h *Handlers) documentRoots(nav NavContext) []string {
	return []string{filepath.Join(nav.Home, "Documents"), filepath.Join(nav.Home, "Desktop"), nav.Current}
}

func (h *Handlers) openFile(ctx context.Context, req Request) Outcome {
	name := req.Slots.Get("file")
	if name == "" {
		return fail(req, "Which file would you like to open?")
	}
	path, found := findFile(req.Nav.Current, h.documentRoots(req.Nav), name, nil)
	if !found {
		return fail(req, fmt.Sprintf("File '%s' not found. Say 'list files' to see available files.", name))
	}
	if err := h.Opener.Open(ctx, path); err != nil {
		return fail(req, fmt.Sprintf("Failed to open file: %v", err))
	}
	return ok(req, fmt.Sprintf("Opened %s", filepath.Base(path)))
}

func (h *Handlers) readFile(_ context.Context, req Request) Outcome {
	name := req.Slots.Get("file")
	if name == "" {
		return fail(req, "Which file should I read?")
	}
	path, found := findFile(req.Nav.Current, h.documentRoots(req.Nav), name, nil)
	if !found {
		return fail(req, fmt.Sprintf("File '%s' not found", name))
	}
	f, err := os.Open(path)
	if err != nil {
		return fail(req, fmt.Sprintf("Failed to read file: %v", err))
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxReadBytes))
	if err != nil {
		return fail(req, fmt.Sprintf("Failed to read file: %v", err))
	}
	text := strings.Join(strings.Fields(string(data)), " ")
	if text == "" {
		return ok(req, fmt.Sprintf("%s is empty", filepath.Base(path)))
	}
	return ok(req, fmt.Sprintf("Reading %s: %s", filepath.Base(path), text))
}

func (h *Handlers) createFile(ctx context.Context, req Request) Outcome {
	name := req.Slots.Get("name")
	if name == "" {
		name = "NewDocument.txt"
	}
	if filepath.Ext(name) == "" {
		name += ".txt"
	}
	if strings.ContainsAny(name, `/\`) {
		return fail(req, "File names cannot contain slashes")
	}
	path := filepath.Join(req.Nav.Current, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fail(req, fmt.Sprintf("File %s already exists", name))
	}
	if err != nil {
		return fail(req, fmt.Sprintf("Failed to create file: %v", err))
	}
	f.Close()
	h.openQuietly(ctx, path)
	return ok(req, fmt.Sprintf("Created new file %s", name))
}

func (h *Handlers) deleteFile(_ context.Context, req Request) Outcome {
	name := req.Slots.Get("file")
	if name == "" {
		return fail(req, "Which file would you like to delete?")
	}
	path, found := findFile(req.Nav.Current, h.documentRoots(req.Nav), name, nil)
	if !found {
		return fail(req, fmt.Sprintf("File '%s' not found", name))
	}
	if err := os.Remove(path); err != nil {
		return fail(req, fmt.Sprintf("Failed to delete file: %v", err))
	}
	return ok(req, fmt.Sprintf("File %s deleted successfully", filepath.Base(path)))
}

func (h *Handlers) openPicture(ctx context.Context, req Request) Outcome {
	name := req.Slots.Get("picture")
	if name == "" {
		l, err := readListing(req.Nav.Current)
		if err == nil {
			for _, f := range l.files {
				if isPicture(f) {
					path := filepath.Join(req.Nav.Current, f)
					if err := h.Opener.Open(ctx, path); err != nil {
						return fail(req, fmt.Sprintf("Failed to open picture: %v", err))
					}
					return ok(req, fmt.Sprintf("Opened picture %s", f))
				}
			}
		}
		return fail(req, "No pictures found in current folder. Say 'go to pictures' to navigate to pictures folder.")
	}

	roots := []string{
		req.Nav.Current,
		filepath.Join(req.Nav.Home, "Pictures"),
		filepath.Join(req.Nav.Home, "Desktop"),
		filepath.Join(req.Nav.Home, "Downloads"),
	}
	path, found := findFile(req.Nav.Current, roots, name, isPicture)
	if !found {
		return fail(req, fmt.Sprintf("Picture '%s' not found.", name))
	}
	if err := h.Opener.Open(ctx, path); err != nil {
		return fail(req, fmt.Sprintf("Failed to open picture: %v", err))
	}
	return ok(req, fmt.Sprintf("Opened picture %s", filepath.Base(path)))
}
