package broadcast

import (
	"sync"
)

// hub is the local connection registry: channel name to subscribed
// clients, plus presence membership per channel. Cross-node fan-out
// happens above the hub via the Redis backplane.
type hub struct {
	mu       sync.RWMutex
	channels map[string]map[*client]struct{}
	members  map[string]map[string]*Member
}

func newHub() *hub {
	return &hub{
		channels: make(map[string]map[*client]struct{}),
		members:  make(map[string]map[string]*Member),
	}
}

func (h *hub) subscribe(channel string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*client]struct{})
	}
	h.channels[channel][c] = struct{}{}
}

// unsubscribe removes the client and returns its presence member, if the
// channel tracked one for this socket.
func (h *hub) unsubscribe(channel string, c *client) *Member {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.channels[channel]
	if !ok {
		return nil
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.channels, channel)
	}

	members, ok := h.members[channel]
	if !ok {
		return nil
	}
	member := members[c.socketID]
	delete(members, c.socketID)
	if len(members) == 0 {
		delete(h.members, channel)
	}
	return member
}

func (h *hub) addMember(channel string, socketID string, m *Member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.members[channel]; !ok {
		h.members[channel] = make(map[string]*Member)
	}
	h.members[channel][socketID] = m
}

func (h *hub) membersOf(channel string) []*Member {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Member, 0, len(h.members[channel]))
	for _, m := range h.members[channel] {
		out = append(out, m)
	}
	return out
}

// deliver fans a prebuilt frame out to local subscribers. Slow clients
// whose send buffers are full are skipped rather than blocking the hub.
func (h *hub) deliver(channel string, payload []byte, excludeSocket string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.channels[channel] {
		if excludeSocket != "" && c.socketID == excludeSocket {
			continue
		}
		c.trySend(payload)
	}
}

// closeAll disconnects every client; used on shutdown.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[*client]struct{})
	for _, clients := range h.channels {
		for c := range clients {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			c.closeSend()
		}
	}
	h.channels = make(map[string]map[*client]struct{})
	h.members = make(map[string]map[string]*Member)
}

func (h *hub) stats() (channels, connections int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[*client]struct{})
	for _, clients := range h.channels {
		for c := range clients {
			seen[c] = struct{}{}
		}
	}
	return len(h.channels), len(seen)
}
