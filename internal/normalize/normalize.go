// Package normalize converts raw source records into canonical posts.
package normalize

import (
	"log/slog"
	"net/url"
	"strings"

	"threadfeed/internal/metrics"
	"threadfeed/internal/model"
	"threadfeed/internal/source"
)

// thumbnail values that mean "no thumbnail".
var noThumbnail = map[string]struct{}{
	"":        {},
	"self":    {},
	"default": {},
	"nsfw":    {},
	"spoiler": {},
	"image":   {},
}

// Post converts a raw record. ok is false when the record has no identity and
// must be dropped; every other missing field normalizes to its zero value.
func Post(raw source.RawPost) (model.Post, bool) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return model.Post{}, false
	}
	p := model.Post{
		ID:          id,
		Name:        raw.Name,
		Title:       raw.Title,
		Subreddit:   raw.Subreddit,
		Score:       raw.Score,
		Ups:         raw.Ups,
		NumComments: max(raw.NumComments, 0),
		Created:     int64(raw.CreatedUTC),
		Body:        raw.Selftext,
		URL:         strings.TrimSpace(raw.URL),
		Permalink:   raw.Permalink,
	}
	if raw.Author != nil {
		p.Author = *raw.Author
	}
	if _, sentinel := noThumbnail[strings.TrimSpace(raw.Thumbnail)]; !sentinel {
		p.Thumbnail = strings.TrimSpace(raw.Thumbnail)
	}
	p.Media = resolveMedia(raw, p)
	return p, true
}

// Posts converts a page of raw records, dropping the ones without identity.
func Posts(raws []source.RawPost) []model.Post {
	out := make([]model.Post, 0, len(raws))
	for _, r := range raws {
		p, ok := Post(r)
		if !ok {
			metrics.PostsDropped.Inc()
			slog.Debug("normalize: dropped record without id", "title", r.Title)
			continue
		}
		out = append(out, p)
	}
	return out
}

func resolveMedia(raw source.RawPost, p model.Post) model.Media {
	if raw.IsVideo {
		if v := videoAsset(raw); v != nil && v.FallbackURL != "" {
			return model.Media{
				Kind:     model.MediaNativeVideo,
				URL:      v.FallbackURL,
				Width:    v.Width,
				Height:   v.Height,
				Duration: v.Duration,
			}
		}
	}
	if kind := hostKind(p.URL); kind != model.MediaNone {
		return model.Media{Kind: kind, URL: p.URL}
	}
	if p.Thumbnail != "" {
		return model.Media{Kind: model.MediaNone}
	}
	if isExternalLink(raw, p) {
		return model.Media{Kind: model.MediaExternalLink, URL: p.URL}
	}
	return model.Media{Kind: model.MediaNone}
}

func videoAsset(raw source.RawPost) *source.RawVideo {
	if raw.Media != nil && raw.Media.RedditVideo != nil {
		return raw.Media.RedditVideo
	}
	if raw.SecureMedia != nil && raw.SecureMedia.RedditVideo != nil {
		return raw.SecureMedia.RedditVideo
	}
	return nil
}

// hostKind classifies an external URL by its host.
func hostKind(raw string) model.MediaKind {
	if raw == "" {
		return model.MediaNone
	}
	u, err := url.Parse(raw)
	if err != nil {
		return model.MediaNone
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case hostIs(host, "youtube.com"), hostIs(host, "youtu.be"), hostIs(host, "youtube-nocookie.com"):
		return model.MediaYouTube
	case hostIs(host, "vimeo.com"):
		return model.MediaVimeo
	case hostIs(host, "v.redd.it"):
		return model.MediaNativeVideo
	default:
		return model.MediaNone
	}
}

// hostIs matches domain itself or any of its subdomains.
func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func isExternalLink(raw source.RawPost, p model.Post) bool {
	if raw.IsSelf || p.URL == "" {
		return false
	}
	u, err := url.Parse(p.URL)
	if err != nil || u.Host == "" {
		return false
	}
	if p.Permalink != "" && strings.HasSuffix(p.URL, p.Permalink) {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return !hostIs(host, "reddit.com") && !hostIs(host, "redd.it")
}
