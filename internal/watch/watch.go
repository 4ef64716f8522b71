// Package watch extracts YouTube video identifiers from browser tab URLs.
package watch

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNotYouTube means the URL does not point at a YouTube watch page.
var ErrNotYouTube = errors.New("not a YouTube watch page")

// ErrNoVideoID means the URL is a watch page but carries no v parameter.
var ErrNoVideoID = errors.New("watch page has no video ID")

var watchHosts = map[string]bool{
	"www.youtube.com": true,
	"youtube.com":     true,
	"m.youtube.com":   true,
}

// VideoID extracts the video identifier from a tab URL.
//
// Full watch pages (youtube.com/watch?v=...) and youtu.be short links are
// recognized. The returned errors distinguish the two disconnect reasons:
// ErrNotYouTube for foreign URLs and ErrNoVideoID for a watch page whose
// v parameter is missing or empty.
func VideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrNotYouTube
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrNotYouTube
	}

	host := strings.ToLower(u.Host)

	if host == "youtu.be" {
		id := strings.Trim(u.Path, "/")
		// Short links put the ID in the path; anything deeper is not a video.
		if id == "" || strings.Contains(id, "/") {
			return "", ErrNoVideoID
		}
		return id, nil
	}

	if !watchHosts[host] {
		return "", ErrNotYouTube
	}
	if u.Path != "/watch" {
		return "", ErrNotYouTube
	}

	id := u.Query().Get("v")
	if id == "" {
		return "", ErrNoVideoID
	}
	return id, nil
}
