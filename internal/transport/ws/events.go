package ws

const (
	EventTypeSystem  = "system"
	EventTypeMessage = "message"
)

// FallbackLabel names a connection the hub could not find on disconnect.
const FallbackLabel = "Someone"

// Event is the envelope for everything the relay sends to clients.
type Event struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Content  string `json:"content"`
}

// InboundMessage is the only payload clients send.
type InboundMessage struct {
	Message string `json:"message"`
}

func SystemEvent(content string) Event {
	return Event{Type: EventTypeSystem, Content: content}
}

func MessageEvent(label, content string) Event {
	return Event{Type: EventTypeMessage, Username: label, Content: content}
}

func JoinedEvent(label string) Event {
	return SystemEvent(label + " has joined")
}

func LeftEvent(label string) Event {
	return SystemEvent(label + " has left")
}
