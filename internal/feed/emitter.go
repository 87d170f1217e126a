package feed

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Event describes one accepted selection change in a link group.
type Event struct {
	Group   string    `json:"group"`
	Source  string    `json:"source"`
	Kind    string    `json:"kind"` // "filter", "highlight", or "reset"
	Version uint64    `json:"version"`
	At      time.Time `json:"at"`
}

// Emit queues an event for broadcast. Emission never blocks the update
// path: if the queue is full the event is dropped, since a subscriber
// re-fetching on the next event converges anyway.
func (m *Manager) Emit(e *Event) {
	select {
	case m.emitChan <- e:
	default:
		log.Warn().Msgf("Feed queue full, dropping event for group %s", e.Group)
	}
}

// broadcast writes the event to every connected subscriber.
func (m *Manager) broadcast(e *Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal feed event")
		return
	}

	// Newline framing.
	message := append(data, '\n')

	// No new subscribers while writing.
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	for client := range m.clients {
		_ = client.SetWriteDeadline(time.Now().Add(100 * time.Millisecond))
		_, err = client.Write(message)
		if err != nil {
			_ = client.Close()
			delete(m.clients, client)
		}
	}
}
