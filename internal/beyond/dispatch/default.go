package dispatch

import "github.com/beyondtyping/beyond/internal/beyond/slots"

// YouTubeFillers strip a YouTube search request down to its query. Longer
// phrases come first so "search youtube for" is removed as one unit.
var YouTubeFillers = []string{
	"search youtube for", "search youtube", "search for", "youtube search",
	"find on youtube", "youtube find", "play on youtube", "on youtube",
	"look for", "show me", "play", "find", "youtube", "search",
}

func spec(name string, required bool, prompt string, fillers ...string) *slots.Spec {
	return &slots.Spec{Name: name, Required: required, Prompt: prompt, Fillers: fillers}
}

func folderSpec(prompt string, fillers ...string) *slots.Spec {
	s := spec("folder", true, prompt, fillers...)
	s.Canonicalize = slots.CanonicalizeFolder
	return s
}

var defaultHandlers = []Handler{
	{ID: YouTubeOpen},
	{ID: BrowserOpen},
	{ID: BrowserWebsite, Slot: spec("site", true, "Which website would you like to open?",
		"open the website", "open website", "open site", "go to website", "go to site",
		"visit website", "visit site", "open", "go to", "visit", "website", "site")},
	{ID: SearchGoogle, Slot: spec("query", true, "What would you like to search for?",
		"search on google for", "search google for", "google search for", "search on google",
		"search google", "google search", "find on google", "google find", "search for",
		"google", "search")},
	{ID: SearchYouTube, Slot: spec("query", true, "What would you like me to search for on YouTube?",
		YouTubeFillers...)},

	{ID: VideoPlay},
	{ID: VideoPause},
	{ID: VideoNext},
	{ID: VideoPrevious},
	{ID: TabNext},
	{ID: TabPrevious},
	{ID: TabClose},

	{ID: ExplorerOpen},
	{ID: FolderNavigate, Slot: folderSpec("Which folder would you like to go to?",
		"go to", "navigate to", "take me to", "open", "show me", "switch to", "the", "folder")},
	{ID: FolderOpen, Slot: folderSpec("Which folder would you like to open?",
		"open folder", "show folder", "launch folder", "the", "named", "called")},
	{ID: FolderList},
	{ID: FolderBack},
	{ID: FolderWhere},

	{ID: FileOpen, Slot: spec("file", true, "Which file would you like to open?",
		"open file", "open document", "show file", "launch file", "open the file",
		"open", "file", "document")},
	{ID: FileCreate, Slot: spec("name", false, "",
		"create a file", "create file", "create document", "new file", "make file",
		"new document", "make document", "named", "called")},
	{ID: FileWrite, Slot: spec("text", true, "What would you like me to write?",
		"write the", "type the", "write", "type",
		"in the file", "to the file", "in the document", "to the document",
		"in file", "to file", "in document", "to document")},
	{ID: FileSave, Slot: spec("name", false, "",
		"save the file", "save file", "save document", "save as")},
	{ID: FileSaveTo, Slot: &slots.Spec{
		Name: "location", Required: true, Prompt: "Where would you like to save the file?",
		Fillers:      []string{"save file to", "save to", "save in", "save at", "the", "folder"},
		Canonicalize: slots.CanonicalizeFolder,
	}},
	{ID: FileClose},
	{ID: FileRead, Slot: spec("file", true, "Which file should I read?",
		"read the file", "read file", "read document", "read out", "read")},
	{ID: FileDelete, Slot: spec("file", true, "Which file would you like to delete?",
		"delete the file", "remove the file", "delete file", "remove file", "erase file",
		"named", "called")},

	{ID: PictureOpen, Slot: spec("picture", false, "",
		"open picture", "open image", "open photo", "show picture", "show image",
		"show photo", "view picture", "view image")},
	{ID: TextDelete, Slot: spec("text", false, "",
		"delete the text", "remove the text", "delete text", "remove text", "erase text", "clear text")},
	{ID: EditorOpen},

	{ID: AppWhatsApp},
	{ID: AppVSCode},
	{ID: AppWord},
	{ID: AppPowerPoint},
	{ID: AppCamera},
	{ID: WhatsAppSend, Slot: spec("message", true, "What message should I send?",
		"send a whatsapp message", "send whatsapp message", "on whatsapp", "whatsapp",
		"send a message", "send message", "send")},
	{ID: WhatsAppDownload},

	{ID: ScreenRead},
	{ID: ScreenClipboard},
	{ID: ScreenSelected},

	{ID: UtilityTime},
	{ID: UtilityHelp},
	{ID: UtilityStop},
	{ID: UtilityChat, Slot: spec("message", false, "")},
	{ID: UtilityScreenshot},
	{ID: WindowMinimize},
	{ID: WindowMaximize},
	{ID: ScrollUp},
	{ID: ScrollDown},
	{ID: SystemLock},
	{ID: SystemUnlock},
}

// Default returns the table covering every classifier label and every
// static rule intent.
func Default() *Table {
	t := NewTable()
	for _, h := range defaultHandlers {
		t.AddHandler(h)
	}

	// Direct mappings shared by the classifier labels and the static rules.
	for intent, id := range map[string]string{
		"youtube_open":       YouTubeOpen,
		"youtube_search":     SearchYouTube,
		"google_search":      SearchGoogle,
		"website_open":       BrowserWebsite,
		"whatsapp_open":      AppWhatsApp,
		"whatsapp_send":      WhatsAppSend,
		"whatsapp_download":  WhatsAppDownload,
		"video_play":         VideoPlay,
		"video_pause":        VideoPause,
		"video_next":         VideoNext,
		"video_previous":     VideoPrevious,
		"tab_next":           TabNext,
		"tab_previous":       TabPrevious,
		"tab_close":          TabClose,
		"navigate_folder":    FolderNavigate,
		"open_folder":        FolderOpen,
		"list_files":         FolderList,
		"folder_back":        FolderBack,
		"where_am_i":         FolderWhere,
		"file_open":          FileOpen,
		"file_create":        FileCreate,
		"file_write":         FileWrite,
		"file_save":          FileSave,
		"file_save_to":       FileSaveTo,
		"file_close":         FileClose,
		"file_read":          FileRead,
		"file_delete":        FileDelete,
		"picture_open":       PictureOpen,
		"text_delete":        TextDelete,
		"editor_open":        EditorOpen,
		"utility_time":       UtilityTime,
		"utility_help":       UtilityHelp,
		"utility_stop":       UtilityStop,
		"utility_chat":       UtilityChat,
		"utility_screenshot": UtilityScreenshot,
		"system_lock":        SystemLock,
		"system_unlock":      SystemUnlock,
	} {
		t.Map(intent, id)
	}

	t.MapSub("app_open", BrowserOpen,
		SubRoute{Keywords: []string{"youtube", "yt"}, Handler: YouTubeOpen},
		SubRoute{Keywords: []string{"whatsapp"}, Handler: AppWhatsApp},
		SubRoute{Keywords: []string{"chrome", "browser"}, Handler: BrowserOpen},
		SubRoute{Keywords: []string{"vscode", "vs code"}, Handler: AppVSCode},
		SubRoute{Keywords: []string{"word"}, Handler: AppWord},
		SubRoute{Keywords: []string{"powerpoint"}, Handler: AppPowerPoint},
		SubRoute{Keywords: []string{"camera"}, Handler: AppCamera},
	)
	t.MapSub("browser_open", BrowserOpen,
		SubRoute{Keywords: []string{"google"}, Handler: BrowserOpen},
		SubRoute{Keywords: []string{"youtube"}, Handler: YouTubeOpen},
		SubRoute{Keywords: []string{"browser", "chrome", "edge"}, Handler: BrowserOpen},
		SubRoute{Keywords: []string{"website", "site", "open"}, Handler: BrowserWebsite},
	)
	t.MapSub("browser_search", SearchGoogle,
		SubRoute{Keywords: []string{"youtube"}, Handler: SearchYouTube},
	)
	t.MapSub("screen_reader", ScreenRead,
		SubRoute{Keywords: []string{"clipboard"}, Handler: ScreenClipboard},
		SubRoute{Keywords: []string{"selected", "selection"}, Handler: ScreenSelected},
	)
	t.MapSub("utility_window", "",
		SubRoute{Keywords: []string{"minimize", "minimise"}, Handler: WindowMinimize},
		SubRoute{Keywords: []string{"maximize", "maximise"}, Handler: WindowMaximize},
	)
	t.MapSub("utility_scroll", "",
		SubRoute{Keywords: []string{"down"}, Handler: ScrollDown},
		SubRoute{Keywords: []string{"up"}, Handler: ScrollUp},
	)
	t.MapSub("youtube_control", "",
		SubRoute{Keywords: []string{"play"}, Handler: VideoPlay},
		SubRoute{Keywords: []string{"pause"}, Handler: VideoPause},
		SubRoute{Keywords: []string{"next"}, Handler: VideoNext},
		SubRoute{Keywords: []string{"previous"}, Handler: VideoPrevious},
	)

	explorer := make([]SubRoute, 0, len(slots.KnownFolderWords))
	for _, word := range slots.KnownFolderWords {
		folder, _ := slots.CanonicalFolder(word)
		explorer = append(explorer, SubRoute{
			Keywords: []string{word},
			Handler:  FolderNavigate,
			Preset:   slots.Set{"folder": string(folder)},
		})
	}
	t.MapSub("file_explorer", ExplorerOpen, explorer...)

	return t
}
