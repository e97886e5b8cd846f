package broadcast

import (
	"net/http"
	"strings"
)

// ChannelKind classifies a channel by its name prefix, following the
// pusher-style convention: "private-" and "presence-" prefixes gate the
// channel behind the authorizer, everything else is open.
type ChannelKind int

const (
	Public ChannelKind = iota
	Private
	Presence
)

func (k ChannelKind) String() string {
	switch k {
	case Private:
		return "private"
	case Presence:
		return "presence"
	default:
		return "public"
	}
}

// KindOf returns the channel kind derived from the name prefix.
func KindOf(channel string) ChannelKind {
	switch {
	case strings.HasPrefix(channel, "presence-"):
		return Presence
	case strings.HasPrefix(channel, "private-"):
		return Private
	default:
		return Public
	}
}

// Member identifies a presence channel participant. Info is broadcast to
// other members, so it should carry display data only.
type Member struct {
	ID   string         `json:"id"`
	Info map[string]any `json:"info,omitempty"`
}

// Authorizer decides channel access for private and presence channels.
// Returning an error denies the subscription. Presence channels require a
// non-nil Member; private channels may return (nil, nil) to allow.
type Authorizer func(r *http.Request, channel string) (*Member, error)
