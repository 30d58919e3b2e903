package offline

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Control message types understood by HandleMessage.
const (
	MessageSkipWaiting = "SKIP_WAITING"
	MessageGetVersion  = "GET_VERSION"
)

// SyncTagConfirmations names the background sync registration for queued
// attendance responses.
const SyncTagConfirmations = "sync-confirmations"

// Message is one control message posted to the worker.
type Message struct {
	Type string `json:"type"`
}

// Reply is sent back over the channel a control message provides.
type Reply struct {
	Version string `json:"version"`
}

// Notification describes what HandlePush renders.
type Notification struct {
	Title              string
	Body               string
	Icon               string
	Badge              string
	Vibrate            []int
	Tag                string
	RequireInteraction bool
	Actions            []NotificationAction
}

type NotificationAction struct {
	Action string
	Title  string
}

// Config fixes the worker's identity and shell.
type Config struct {
	// Version names the cache bucket; changing it invalidates every older
	// bucket on the next activation.
	Version string
	// ShellAssets are pre-cached during install.
	ShellAssets []string
	// ShellPath is the offline fallback for document requests.
	ShellPath string
	Logger    *logrus.Logger
}

// Worker intercepts requests in the client's background context and applies
// the caching policy per request class. It is driven by one event at a
// time; each handler runs to completion before the next event is taken,
// which is the waitUntil guarantee of the browser runtime.
type Worker struct {
	cfg     Config
	storage Storage
	fetch   Fetcher
	logger  *logrus.Logger

	installed bool
	active    bool
}

func NewWorker(cfg Config, storage Storage, fetch Fetcher) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.ShellPath == "" {
		cfg.ShellPath = "/app.html"
	}
	return &Worker{
		cfg:     cfg,
		storage: storage,
		fetch:   fetch,
		logger:  logger,
	}
}

// Version returns the current cache bucket name.
func (w *Worker) Version() string { return w.cfg.Version }

// Install pre-populates the versioned bucket with the shell assets and
// marks the worker ready to activate without waiting for old instances.
func (w *Worker) Install() error {
	w.logger.Info("worker install")
	bucket := w.storage.Open(w.cfg.Version)

	for _, asset := range w.cfg.ShellAssets {
		req := Request{Method: http.MethodGet, URL: asset}
		resp, err := w.fetch(req)
		if err != nil {
			return fmt.Errorf("precache %s: %w", asset, err)
		}
		bucket.Put(req.Key(), resp)
	}

	w.installed = true
	w.SkipWaiting()
	return nil
}

// Activate prunes every bucket not matching the current version and begins
// intercepting immediately.
func (w *Worker) Activate() {
	w.logger.Info("worker activate")
	for _, name := range w.storage.Keys() {
		if name != w.cfg.Version {
			w.logger.Infof("deleting stale cache %s", name)
			w.storage.Delete(name)
		}
	}
	w.active = true
}

// SkipWaiting forces a waiting update to take over.
func (w *Worker) SkipWaiting() {
	if w.installed && !w.active {
		w.Activate()
	}
}

// Active reports whether the worker is intercepting traffic.
func (w *Worker) Active() bool { return w.active }

// HandleFetch applies the per-class caching policy to one request.
func (w *Worker) HandleFetch(req Request) (*Response, error) {
	if Classify(req.Path()) == PolicyNetworkFirst {
		return w.networkFirst(req), nil
	}
	return w.cacheFirst(req)
}

// networkFirst always produces a response: live, cached, or a synthesized
// offline error body. Network failure is a branch here, not an error.
func (w *Worker) networkFirst(req Request) *Response {
	bucket := w.storage.Open(w.cfg.Version)

	resp, err := w.fetch(req)
	if err == nil {
		bucket.Put(req.Key(), resp)
		return resp
	}

	if cached, ok := bucket.Match(req.Key()); ok {
		return cached
	}
	return offlineResponse()
}

// cacheFirst serves the cached copy without touching the network; a miss
// fetches live and stores plain successful responses. When the network
// fails only document requests get a fallback (the cached app shell).
func (w *Worker) cacheFirst(req Request) (*Response, error) {
	bucket := w.storage.Open(w.cfg.Version)

	if cached, ok := bucket.Match(req.Key()); ok {
		return cached, nil
	}

	resp, err := w.fetch(req)
	if err != nil {
		if req.Destination == "document" {
			shellReq := Request{Method: http.MethodGet, URL: w.cfg.ShellPath}
			if shell, ok := bucket.Match(shellReq.Key()); ok {
				return shell, nil
			}
		}
		return nil, err
	}

	if resp != nil && resp.Status == http.StatusOK {
		bucket.Put(req.Key(), resp)
	}
	return resp, nil
}

func offlineResponse() *Response {
	body, _ := json.Marshal(struct {
		Error   string `json:"error"`
		Offline bool   `json:"offline"`
	}{
		Error:   "no network connection",
		Offline: true,
	})
	return &Response{
		Status: http.StatusServiceUnavailable,
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   body,
	}
}

// HandleSync wakes for background sync events. Queued confirmation replay
// is not implemented yet; the tag is recognized and acknowledged.
func (w *Worker) HandleSync(tag string) error {
	w.logger.Infof("background sync: %s", tag)
	if tag != SyncTagConfirmations {
		return fmt.Errorf("unknown sync tag %q", tag)
	}
	return nil
}

// HandlePush renders a notification from the push payload, or a default
// body when the payload is empty.
func (w *Worker) HandlePush(payload []byte) Notification {
	body := "New message from your team"
	if len(payload) > 0 {
		body = string(payload)
	}
	return Notification{
		Title:   "TeamHub",
		Body:    body,
		Icon:    "/icons/icon-192x192.png",
		Badge:   "/icons/icon-72x72.png",
		Vibrate: []int{200, 100, 200},
		Tag:     "teamhub-notification",
		Actions: []NotificationAction{
			{Action: "open", Title: "Open"},
			{Action: "close", Title: "Close"},
		},
	}
}

// HandleNotificationClick closes the notification and, for the open
// action, returns the path a new window should navigate to.
func (w *Worker) HandleNotificationClick(action string) (openPath string) {
	if action == "open" {
		return w.cfg.ShellPath
	}
	return ""
}

// HandleMessage services the control protocol. GET_VERSION replies on the
// provided channel; SKIP_WAITING needs no reply.
func (w *Worker) HandleMessage(msg Message, reply chan<- Reply) error {
	switch msg.Type {
	case MessageSkipWaiting:
		w.SkipWaiting()
		return nil
	case MessageGetVersion:
		if reply == nil {
			return errors.New("get version: no reply channel")
		}
		reply <- Reply{Version: w.cfg.Version}
		return nil
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}
