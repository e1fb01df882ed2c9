package actions

import (
	"log/slog"
	"time"

	"github.com/beyondtyping/beyond/internal/beyond/dispatch"
)

// Handlers carries the collaborators the reference actions use. Nil fields
// are filled with inert defaults by Register.
type Handlers struct {
	Opener  Opener
	Desktop Desktop
	Screen  ScreenReader
	Now     func() time.Time
	Logger  *slog.Logger
}

func (h *Handlers) defaults() {
	if h.Opener == nil {
		h.Opener = SystemOpener{}
	}
	if h.Desktop == nil {
		h.Desktop = UnsupportedDesktop{}
	}
	if h.Screen == nil {
		h.Screen = NoScreenReader{}
	}
	if h.Now == nil {
		h.Now = time.Now
	}
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
}

// Register binds every reference handler to r.
func (h *Handlers) Register(r *Registry) {
	h.defaults()

	r.Register(dispatch.YouTubeOpen, h.openYouTube)
	r.Register(dispatch.BrowserOpen, h.openBrowser)
	r.Register(dispatch.BrowserWebsite, h.openWebsite)
	r.Register(dispatch.SearchGoogle, h.searchGoogle)
	r.Register(dispatch.SearchYouTube, h.searchYouTube)

	r.Register(dispatch.VideoPlay, h.press("Playing video", "k"))
	r.Register(dispatch.VideoPause, h.press("Video paused", "k"))
	r.Register(dispatch.VideoNext, h.press("Playing next video", "shift+n"))
	r.Register(dispatch.VideoPrevious, h.press("Playing previous video", "shift+p"))
	r.Register(dispatch.TabNext, h.press("Switched to next tab", "ctrl+Tab"))
	r.Register(dispatch.TabPrevious, h.press("Switched to previous tab", "ctrl+shift+Tab"))
	r.Register(dispatch.TabClose, h.press("Tab closed", "ctrl+w"))

	r.Register(dispatch.ExplorerOpen, h.openExplorer)
	r.Register(dispatch.FolderNavigate, h.navigateFolder)
	r.Register(dispatch.FolderOpen, h.openFolder)
	r.Register(dispatch.FolderList, h.listFiles)
	r.Register(dispatch.FolderBack, h.folderBack)
	r.Register(dispatch.FolderWhere, h.whereAmI)

	r.Register(dispatch.FileOpen, h.openFile)
	r.Register(dispatch.FileCreate, h.createFile)
	r.Register(dispatch.FileWrite, h.writeText)
	r.Register(dispatch.FileSave, h.saveFile)
	r.Register(dispatch.FileSaveTo, h.saveFileTo)
	r.Register(dispatch.FileClose, h.closeFile)
	r.Register(dispatch.FileRead, h.readFile)
	r.Register(dispatch.FileDelete, h.deleteFile)

	r.Register(dispatch.PictureOpen, h.openPicture)
	r.Register(dispatch.TextDelete, h.deleteText)
	r.Register(dispatch.EditorOpen, h.launch("editor", "Text editor opened. You can now write text, delete text, or save the file."))

	r.Register(dispatch.AppWhatsApp, h.openWhatsApp)
	r.Register(dispatch.AppVSCode, h.launch("vscode", "Opening VS Code"))
	r.Register(dispatch.AppWord, h.launch("word", "Opening Word"))
	r.Register(dispatch.AppPowerPoint, h.launch("powerpoint", "Opening PowerPoint"))
	r.Register(dispatch.AppCamera, h.launch("camera", "Opening camera"))
	r.Register(dispatch.WhatsAppSend, h.whatsappSend)
	r.Register(dispatch.WhatsAppDownload, h.whatsappDownload)

	r.Register(dispatch.ScreenRead, h.readSource(h.Screen.ReadScreen, "I couldn't find any text on the screen."))
	r.Register(dispatch.ScreenClipboard, h.readSource(h.Screen.ReadClipboard, "The clipboard is empty."))
	r.Register(dispatch.ScreenSelected, h.readSource(h.Screen.ReadSelection, "No text is selected."))

	r.Register(dispatch.UtilityTime, h.tellTime)
	r.Register(dispatch.UtilityHelp, h.help)
	r.Register(dispatch.UtilityStop, h.stop)
	r.Register(dispatch.UtilityChat, h.chat)
	r.Register(dispatch.UtilityScreenshot, h.press("Screenshot taken", "Print"))
	r.Register(dispatch.WindowMinimize, h.press("Window minimized", "super+Down"))
	r.Register(dispatch.WindowMaximize, h.press("Window maximized", "super+Up"))
	r.Register(dispatch.ScrollUp, h.press("Scrolled up", "Page_Up"))
	r.Register(dispatch.ScrollDown, h.press("Scrolled down", "Page_Down"))
	r.Register(dispatch.SystemLock, h.press("Locking the computer", "super+l"))
	r.Register(dispatch.SystemUnlock, h.unlock)
}

// NewDefaultRegistry returns a registry with every reference handler.
func NewDefaultRegistry(h Handlers) *Registry {
	r := NewRegistry()
	h.Register(r)
	return r
}
