package types

import "time"

// Status describes whether the panel has a live video context.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnected
)

// Session is the panel's link to the video in the active browser tab.
// Exactly one Session is live per panel; it is mutated only through the
// controller's reconcile entry point and never persisted.
type Session struct {
	VideoID          string
	Status           Status
	DisconnectReason string // "Not YouTube" or "No Video ID" while disconnected
}

// Connected reports whether the session has a video to chat about.
func (s Session) Connected() bool {
	return s.Status == StatusConnected
}

// Sender identifies who produced a chat message.
type Sender int

const (
	SenderUser Sender = iota
	SenderBot
)

// Message is one entry in the conversation log.
type Message struct {
	Text   string
	Sender Sender
}

// Tab represents a browser tab as seen from either tab source
// (extension bridge or Firefox session store).
type Tab struct {
	URL          string
	Title        string
	LastAccessed time.Time
	Active       bool
	WindowIndex  int
	TabIndex     int
	BrowserID    int // live tab ID from the extension; 0 in offline mode
}

// Profile represents a Firefox profile.
type Profile struct {
	Name       string
	Path       string // absolute path to profile directory
	IsDefault  bool
	IsRelative bool
}

// SessionData holds all parsed data from a Firefox session store.
type SessionData struct {
	AllTabs  []*Tab
	Active   *Tab // selected tab of the selected window, nil if none
	Profile  Profile
	ParsedAt time.Time
}

// Recent is one row of the recents store: a video the user has asked
// questions about, with light metadata (no chat history is kept).
type Recent struct {
	VideoID     string
	Title       string
	Questions   int
	LastAskedAt time.Time
}
