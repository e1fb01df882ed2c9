package actions

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	youtubeURL  = "https://www.youtube.com"
	browserURL  = "https://www.google.com"
	whatsappURL = "https://web.whatsapp.com"
)

func (h *Handlers) openURL(ctx context.Context, req Request, target, response string) Outcome {
	if err := h.Opener.Open(ctx, target); err != nil {
		return fail(req, fmt.Sprintf("Failed to open %s: %v", target, err))
	}
	return ok(req, response)
}

func (h *Handlers) openYouTube(ctx context.Context, req Request) Outcome {
	return h.openURL(ctx, req, youtubeURL, "Opening YouTube")
}

func (h *Handlers) openBrowser(ctx context.Context, req Request) Outcome {
	return h.openURL(ctx, req, browserURL, "Opening browser")
}

// websiteURL turns a spoken site name into a URL: "github" becomes
// https://github.com and "go dot dev" becomes https://go.dev.
func websiteURL(site string) string {
	site = strings.TrimSpace(site)
	if strings.HasPrefix(site, "http://") || strings.HasPrefix(site, "https://") {
		return site
	}
	site = strings.ReplaceAll(site, " dot ", ".")
	site = strings.Join(strings.Fields(site), "")
	if !strings.Contains(site, ".") {
		site += ".com"
	}
	return "https://" + site
}

func (h *Handlers) openWebsite(ctx context.Context, req Request) Outcome {
	site := req.Slots.Get("site")
	if site == "" {
		return fail(req, "Which website would you like to open?")
	}
	target := websiteURL(site)
	return h.openURL(ctx, req, target, "Opening "+target)
}

func (h *Handlers) searchGoogle(ctx context.Context, req Request) Outcome {
	query := req.Slots.Get("query")
	if query == "" {
		return fail(req, "What would you like to search for?")
	}
	target := browserURL + "/search?q=" + url.QueryEscape(query)
	return h.openURL(ctx, req, target, "Searching Google for "+query)
}

func (h *Handlers) searchYouTube(ctx context.Context, req Request) Outcome {
	query := req.Slots.Get("query")
	if query == "" {
		return fail(req, "What would you like me to search for on YouTube?")
	}
	target := youtubeURL + "/results?search_query=" + url.QueryEscape(query)
	return h.openURL(ctx, req, target, "Searching YouTube for "+query)
}

func (h *Handlers) openWhatsApp(ctx context.Context, req Request) Outcome {
	return h.openURL(ctx, req, whatsappURL, "Opening WhatsApp Web")
}

func (h *Handlers) whatsappSend(ctx context.Context, req Request) Outcome {
	msg := req.Slots.Get("message")
	if msg == "" {
		return fail(req, "What message should I send?")
	}
	target := whatsappURL + "/send?text=" + url.QueryEscape(msg)
	return h.openURL(ctx, req, target, "Opening WhatsApp to send: "+msg)
}

func (h *Handlers) whatsappDownload(ctx context.Context, req Request) Outcome {
	return h.openURL(ctx, req, whatsappURL, "Opening WhatsApp Web for file download")
}
