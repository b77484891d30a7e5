package notify

import "sync"

// Registry keeps channels in registration order.
type Registry struct {
	mu       sync.RWMutex
	channels []Channel
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a channel. A channel with the same name replaces the earlier
// one in place.
func (r *Registry) Register(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.channels {
		if existing.Name() == ch.Name() {
			r.channels[i] = ch
			return
		}
	}
	r.channels = append(r.channels, ch)
}

// Get returns the channel registered under name, or false.
func (r *Registry) Get(name string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ch := range r.channels {
		if ch.Name() == name {
			return ch, true
		}
	}
	return nil, false
}

// Channels returns a snapshot of the registered channels.
func (r *Registry) Channels() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Channel, len(r.channels))
	copy(out, r.channels)
	return out
}
