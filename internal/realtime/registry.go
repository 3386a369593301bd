package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// Channel names for the fixed admin feeds.
const (
	AdminTicketsChannel = "admin:tickets"
	AdminStatsChannel   = "admin:stats"
)

// ChatChannel names the fan-out channel of one conversation.
func ChatChannel(conversationID utils.SixID) string {
	return "chat:" + conversationID.String()
}

// TicketChannel names the fan-out channel of one support ticket.
func TicketChannel(ticketID utils.SixID) string {
	return "ticket:" + ticketID.String()
}

// NotifChannel names a user's personal notification feed.
func NotifChannel(userID utils.SixID) string {
	return "notif:" + userID.String()
}

// Registry maps logical channel names to the set of live subscribers and
// broadcasts payloads to every member of a channel. A subscriber may belong
// to any number of channels; a broken or saturated subscriber is removed
// from all of them without failing the broadcast for the rest.
type Registry struct {
	mu sync.RWMutex
	// channel name -> member set
	channels map[string]map[*Subscriber]struct{}
	// reverse index, so LeaveAll and drops are O(memberships)
	members map[*Subscriber]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]map[*Subscriber]struct{}),
		members:  make(map[*Subscriber]map[string]struct{}),
	}
}

// Join adds sub to channel. Joining a channel twice is a no-op.
func (r *Registry) Join(channel string, sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.channels[channel]
	if !ok {
		set = make(map[*Subscriber]struct{})
		r.channels[channel] = set
	}
	set[sub] = struct{}{}

	chans, ok := r.members[sub]
	if !ok {
		chans = make(map[string]struct{})
		r.members[sub] = chans
	}
	chans[channel] = struct{}{}
}

// Leave removes sub from channel. Leaving a channel it never joined is a
// no-op.
func (r *Registry) Leave(channel string, sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(channel, sub)
}

// LeaveAll removes sub from every channel it joined. Called on disconnect.
func (r *Registry) LeaveAll(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for channel := range r.members[sub] {
		r.leaveLocked(channel, sub)
	}
}

func (r *Registry) leaveLocked(channel string, sub *Subscriber) {
	if set, ok := r.channels[channel]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(r.channels, channel)
		}
	}
	if chans, ok := r.members[sub]; ok {
		delete(chans, channel)
		if len(chans) == 0 {
			delete(r.members, sub)
		}
	}
}

// Count returns the number of subscribers currently joined to channel.
func (r *Registry) Count(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}

// Broadcast marshals v once and delivers it to every subscriber of channel.
// Marshal failures are logged; delivery is best-effort.
func (r *Registry) Broadcast(channel string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("registry: marshal for channel %s: %v", channel, err)
		return
	}
	r.BroadcastRaw(channel, payload)
}

// BroadcastRaw delivers an already-marshaled payload to every subscriber of
// channel. A subscriber whose buffer is full or that is already closed gets
// dropped from all channels and closed, and delivery to the rest proceeds.
func (r *Registry) BroadcastRaw(channel string, payload []byte) {
	r.mu.RLock()
	var dropped []*Subscriber
	for sub := range r.channels[channel] {
		if !sub.enqueue(payload) {
			dropped = append(dropped, sub)
		}
	}
	r.mu.RUnlock()

	for _, sub := range dropped {
		log.Printf("registry: dropping slow subscriber from channel %s", channel)
		r.LeaveAll(sub)
		sub.Close()
	}
}
