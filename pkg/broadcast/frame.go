package broadcast

import "encoding/json"

// Reserved event names emitted by the broadcaster itself.
const (
	EventSubscribed = "broadcast:subscribed"
	EventError      = "broadcast:error"
	EventJoin       = "presence:join"
	EventLeave      = "presence:leave"
)

// Client actions accepted on the socket.
const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
	actionPublish     = "publish"
)

// frame is the JSON message exchanged with browser clients. Inbound frames
// carry an action; outbound frames carry channel, event, and payload.
type frame struct {
	Action  string          `json:"action,omitempty"`
	Channel string          `json:"channel"`
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (f frame) encode() []byte {
	b, _ := json.Marshal(f)
	return b
}

func errorFrame(channel, message string) []byte {
	payload, _ := json.Marshal(map[string]string{"message": message})
	return frame{Channel: channel, Event: EventError, Payload: payload}.encode()
}

// envelope is the backplane message exchanged between nodes over Redis
// pub/sub. Origin lets nodes skip their own publishes, which were already
// delivered locally.
type envelope struct {
	Origin  string          `json:"origin"`
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Exclude string          `json:"exclude,omitempty"`
}
