package slackbot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/slack-go/slack"

	"github.com/MikeSquared-Agency/scrumbot/internal/standup"
	"github.com/MikeSquared-Agency/scrumbot/internal/store"
)

const testChannel = "C100"

type apiCall struct {
	method string
	form   url.Values
	body   []byte
}

// fakeSlack answers the handful of Web API methods the bot uses.
type fakeSlack struct {
	t      *testing.T
	server *httptest.Server

	mu      sync.Mutex
	calls   []apiCall
	history [][]map[string]any // pages of conversations.history
	fail    map[string]string  // method -> slack error code
}

func newFakeSlack(t *testing.T) *fakeSlack {
	f := &fakeSlack{t: t, fail: make(map[string]string)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSlack) client() *slack.Client {
	return slack.New("xoxb-test", slack.OptionAPIURL(f.server.URL+"/"))
}

func (f *fakeSlack) serve(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/")
	body, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(body))
	for k, v := range r.URL.Query() {
		form[k] = v
	}

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, form: form, body: body})
	page := 0
	for _, c := range f.calls[:len(f.calls)-1] {
		if c.method == "conversations.history" {
			page++
		}
	}
	failure := f.fail[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failure != "" {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": failure})
		return
	}

	var resp map[string]any
	switch method {
	case "conversations.history":
		resp = map[string]any{"ok": true, "messages": []any{}}
		if page < len(f.history) {
			resp["messages"] = f.history[page]
			if page+1 < len(f.history) {
				resp["has_more"] = true
				resp["response_metadata"] = map[string]any{"next_cursor": "cursor-" + string(rune('a'+page))}
			}
		}
	case "chat.postMessage":
		resp = map[string]any{"ok": true, "channel": form.Get("channel"), "ts": "1700000000.000100"}
	case "chat.update":
		resp = map[string]any{"ok": true, "channel": form.Get("channel"), "ts": form.Get("ts"), "text": form.Get("text")}
	case "chat.postEphemeral":
		resp = map[string]any{"ok": true, "message_ts": "1700000000.000200"}
	case "views.open":
		resp = map[string]any{"ok": true, "view": map[string]any{"id": "V1"}}
	case "auth.test":
		resp = map[string]any{"ok": true, "user": "scrumbot", "team": "test", "bot_id": "B1"}
	default:
		resp = map[string]any{"ok": false, "error": "unknown_method"}
	}
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeSlack) callsTo(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

type openedModal struct {
	CallbackID      string `json:"callback_id"`
	PrivateMetadata string `json:"private_metadata"`
	Blocks          []struct {
		BlockID string `json:"block_id"`
		Element struct {
			InitialValue string `json:"initial_value"`
		} `json:"element"`
	} `json:"blocks"`
}

// initial returns the prefilled value of the input block blockID.
func (m openedModal) initial(blockID string) string {
	for _, b := range m.Blocks {
		if b.BlockID == blockID {
			return b.Element.InitialValue
		}
	}
	return ""
}

// openedView decodes the single views.open request.
func (f *fakeSlack) openedView() (triggerID string, view openedModal) {
	f.t.Helper()
	calls := f.callsTo("views.open")
	if len(calls) != 1 {
		f.t.Fatalf("expected 1 views.open call, got %d", len(calls))
	}
	var req struct {
		TriggerID string      `json:"trigger_id"`
		View      openedModal `json:"view"`
	}
	if err := json.Unmarshal(calls[0].body, &req); err != nil {
		f.t.Fatalf("decode views.open: %v", err)
	}
	return req.TriggerID, req.View
}

func (f *fakeSlack) lastEphemeral() string {
	f.t.Helper()
	calls := f.callsTo("chat.postEphemeral")
	if len(calls) == 0 {
		f.t.Fatal("expected an ephemeral message")
	}
	return calls[len(calls)-1].form.Get("text")
}

type memStore struct {
	mu       sync.Mutex
	entries  []store.Entry
	edited   map[string]string
	profiles map[string]store.Profile
}

func newMemStore() *memStore {
	return &memStore{edited: make(map[string]string), profiles: make(map[string]store.Profile)}
}

func (m *memStore) CreateEntry(_ context.Context, e store.Entry) (store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memStore) UpdateEntryByMessage(_ context.Context, messageID, _, todayPlan, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edited[messageID] = todayPlan
	return nil
}

func (m *memStore) GetProfile(_ context.Context, userID string) (*store.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) UpsertProfile(_ context.Context, p store.Profile) (store.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	return p, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBot(t *testing.T) (*Bot, *fakeSlack, *memStore) {
	t.Helper()
	fs := newFakeSlack(t)
	api := fs.client()
	st := newMemStore()
	svc := standup.New(testChannel, NewHistory(api), st, st, NewPoster(api, discardLogger()), nil, discardLogger())
	return New(api, svc, "", discardLogger()), fs, st
}
