package assistant

import "fmt"

// Role identifies who authored a transcript entry.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleUser, RoleAssistant:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
}

func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "user":
		*r = RoleUser
	case "assistant":
		*r = RoleAssistant
	default:
		return fmt.Errorf("unknown role %q", string(text))
	}
	return nil
}

// ChatMessage is one turn of the dialogue.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleUser, Text: text}
}

func AssistantMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Text: text}
}

// Outcome classifies how a completion settled.
type Outcome string

const (
	OutcomeAnswered    Outcome = "answered"
	OutcomeEmpty       Outcome = "empty"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeFailed      Outcome = "failed"
)

// Reply is the assistant entry appended when a submission settles.
type Reply struct {
	Message ChatMessage `json:"message"`
	Outcome Outcome     `json:"outcome"`
}

// Scripted texts. The site is German-language.
const (
	GreetingText     = "As-salamu alaykum! Ich bin Ihre virtuelle Assistenz. Wie kann ich Ihnen bei den Gebetszeiten oder Informationen zur Moschee helfen?"
	UnavailableText  = "Service ist derzeit nicht verfügbar."
	EmptyReplyText   = "Entschuldigung, ich konnte diese Anfrage nicht bearbeiten."
	ConnectivityText = "Ich habe im Moment Verbindungsprobleme."
)

// copyTranscript detaches a transcript slice from session state.
func copyTranscript(in []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(in))
	copy(out, in)
	return out
}
