package dispatch

// Handler identifiers. The action registry is keyed by the same strings.
const (
	YouTubeOpen    = "youtube.open"
	BrowserOpen    = "browser.open"
	BrowserWebsite = "browser.website"
	SearchGoogle   = "search.google"
	SearchYouTube  = "search.youtube"

	VideoPlay     = "video.play"
	VideoPause    = "video.pause"
	VideoNext     = "video.next"
	VideoPrevious = "video.previous"

	TabNext     = "tab.next"
	TabPrevious = "tab.previous"
	TabClose    = "tab.close"

	ExplorerOpen   = "explorer.open"
	FolderNavigate = "folder.navigate"
	FolderOpen     = "folder.open"
	FolderList     = "folder.list"
	FolderBack     = "folder.back"
	FolderWhere    = "folder.where"

	FileOpen   = "file.open"
	FileCreate = "file.create"
	FileWrite  = "file.write"
	FileSave   = "file.save"
	FileSaveTo = "file.save_to"
	FileClose  = "file.close"
	FileRead   = "file.read"
	FileDelete = "file.delete"

	PictureOpen = "picture.open"
	TextDelete  = "text.delete"
	EditorOpen  = "editor.open"

	AppWhatsApp   = "app.whatsapp"
	AppVSCode     = "app.vscode"
	AppWord       = "app.word"
	AppPowerPoint = "app.powerpoint"
	AppCamera     = "app.camera"

	WhatsAppSend     = "whatsapp.send"
	WhatsAppDownload = "whatsapp.download"

	ScreenRead      = "screen.read"
	ScreenClipboard = "screen.clipboard"
	ScreenSelected  = "screen.selected"

	UtilityTime       = "utility.time"
	UtilityHelp       = "utility.help"
	UtilityStop       = "utility.stop"
	UtilityChat       = "utility.chat"
	UtilityScreenshot = "utility.screenshot"

	WindowMinimize = "window.minimize"
	WindowMaximize = "window.maximize"
	ScrollUp       = "scroll.up"
	ScrollDown     = "scroll.down"

	SystemLock   = "system.lock"
	SystemUnlock = "system.unlock"
)
