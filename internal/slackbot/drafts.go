package slackbot

import (
	"sync"
	"time"

	"github.com/MikeSquared-Agency/scrumbot/internal/standup"
)

// draftTTL bounds how long a prepared draft waits for its start button.
const draftTTL = 15 * time.Minute

type pendingDraft struct {
	draft   standup.CopyDraft
	expires time.Time
}

// draftCache keeps the draft built by /checkin so the start button can open
// the modal without re-reading history inside the 3s trigger window.
type draftCache struct {
	mu     sync.Mutex
	now    func() time.Time
	drafts map[string]pendingDraft // keyed by channel + user
}

func newDraftCache() *draftCache {
	return &draftCache{now: time.Now, drafts: make(map[string]pendingDraft)}
}

func draftKey(channelID, userID string) string {
	return channelID + "/" + userID
}

func (c *draftCache) put(channelID, userID string, d standup.CopyDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, p := range c.drafts {
		if now.After(p.expires) {
			delete(c.drafts, k)
		}
	}
	c.drafts[draftKey(channelID, userID)] = pendingDraft{draft: d, expires: now.Add(draftTTL)}
}

// take returns and forgets the pending draft. Expired drafts are not returned.
func (c *draftCache) take(channelID, userID string) (standup.CopyDraft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := draftKey(channelID, userID)
	p, ok := c.drafts[key]
	if !ok {
		return standup.CopyDraft{}, false
	}
	delete(c.drafts, key)
	if c.now().After(p.expires) {
		return standup.CopyDraft{}, false
	}
	return p.draft, true
}
