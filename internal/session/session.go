// Package session owns the panel's conversation state: the link to the
// active tab's video, the message log, and the single in-flight question.
//
// All mutation goes through three entry points (Reconcile, Submit, Resolve)
// so the TUI layer only renders and never touches state directly.
package session

import (
	"errors"
	"strings"

	"github.com/mvens/tubefrage/internal/types"
	"github.com/mvens/tubefrage/internal/watch"
)

// Greeting opens every fresh conversation.
const Greeting = "Hi! Ask me anything about this video."

const (
	reasonNotYouTube = "Not YouTube"
	reasonNoVideoID  = "No Video ID"
)

// Change describes what a Reconcile call did.
type Change int

const (
	// Unchanged: same video (or same disconnect reason) as before.
	Unchanged Change = iota
	// NewVideo: connected to a different video; the log was reset.
	NewVideo
	// Disconnected: the active tab no longer has a video.
	Disconnected
)

// Controller holds the session state machine.
type Controller struct {
	sess types.Session
	msgs []types.Message

	pending        bool
	pendingVideoID string
}

// New returns a controller in the initial Disconnected state.
func New() *Controller {
	return &Controller{
		sess: types.Session{
			Status:           types.StatusDisconnected,
			DisconnectReason: reasonNotYouTube,
		},
	}
}

// Session returns the current session state.
func (c *Controller) Session() types.Session {
	return c.sess
}

// Messages returns the conversation log in append order.
func (c *Controller) Messages() []types.Message {
	return c.msgs
}

// Pending reports whether a question is awaiting its answer. While true,
// input is disabled and the view shows the thinking placeholder.
func (c *Controller) Pending() bool {
	return c.pending
}

// CanSubmit reports whether a new question would currently be accepted.
func (c *Controller) CanSubmit() bool {
	return c.sess.Connected() && !c.pending
}

// Reconcile recomputes the session from the active tab's URL. It is a full
// idempotent recomputation: reconciling twice on the same video changes
// nothing, so overlapping triggers (tab events, poll ticks) are harmless.
//
// Connecting to a new video clears the log and appends the greeting.
// Losing the video keeps the log on screen but disables input.
func (c *Controller) Reconcile(tabURL string) Change {
	id, err := watch.VideoID(tabURL)
	if err != nil {
		reason := reasonNotYouTube
		if errors.Is(err, watch.ErrNoVideoID) {
			reason = reasonNoVideoID
		}
		already := !c.sess.Connected() && c.sess.DisconnectReason == reason
		c.sess = types.Session{
			Status:           types.StatusDisconnected,
			DisconnectReason: reason,
		}
		if already {
			return Unchanged
		}
		return Disconnected
	}

	if c.sess.Connected() && c.sess.VideoID == id {
		return Unchanged
	}

	c.sess = types.Session{VideoID: id, Status: types.StatusConnected}
	c.msgs = []types.Message{{Text: Greeting, Sender: types.SenderBot}}
	return NewVideo
}

// Submit accepts a question for the current video. It returns the video ID
// the request must be issued for, or ok=false if the question is empty
// after trimming, the session is disconnected, or a request is already in
// flight. On acceptance the user message is appended and the controller
// enters the pending state.
func (c *Controller) Submit(question string) (videoID string, ok bool) {
	question = strings.TrimSpace(question)
	if question == "" || !c.CanSubmit() {
		return "", false
	}

	c.msgs = append(c.msgs, types.Message{Text: question, Sender: types.SenderUser})
	c.pending = true
	c.pendingVideoID = c.sess.VideoID
	return c.pendingVideoID, true
}

// Resolve delivers the outcome of the in-flight request that was issued
// for videoID. The pending state always clears so input comes back, but
// the bot message is appended only if the session still points at the same
// video; answers for a video the user has navigated away from are dropped.
func (c *Controller) Resolve(videoID, answer string, err error) {
	if !c.pending || videoID != c.pendingVideoID {
		return
	}
	c.pending = false
	c.pendingVideoID = ""

	if !c.sess.Connected() || c.sess.VideoID != videoID {
		return
	}

	text := answer
	if err != nil {
		text = "Error: " + err.Error()
	}
	c.msgs = append(c.msgs, types.Message{Text: text, Sender: types.SenderBot})
}
