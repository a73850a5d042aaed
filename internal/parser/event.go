package parser

// Kind tags the variant held by an Event.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindGeneric
	KindChat
	KindJoin
	KindLeave
	KindAdvancement
	KindDeath
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindChat:
		return "chat"
	case KindJoin:
		return "join"
	case KindLeave:
		return "leave"
	case KindAdvancement:
		return "advancement"
	case KindDeath:
		return "death"
	default:
		return "unknown"
	}
}

// Event is a parsed log line. Kind selects which fields are meaningful:
//
//	KindGeneric      Message
//	KindChat         Secure, Sender, Message
//	KindJoin         Player
//	KindLeave        Player
//	KindAdvancement  Player, Advancement
//	KindDeath        Victim, Attacker, Weapon (unbound slots are empty)
//	KindUnknown      Raw
//
// Every byte slice, including Logger.Name, points into the line passed to
// Parse. An Event must not be used after that buffer is reused.
type Event struct {
	Kind   Kind
	Time   Timestamp
	Logger LoggerContext

	Secure  bool
	Sender  []byte
	Message []byte

	Player      []byte
	Advancement []byte

	Victim   []byte
	Attacker []byte
	Weapon   []byte

	Raw []byte
}

// Span is the half-open byte range [Start, End) of the line consumed by the
// grammar that produced an event.
type Span struct {
	Start int
	End   int
}

// Len returns End - Start.
func (s Span) Len() int { return s.End - s.Start }

// Slice returns the spanned bytes of line. line must be the exact slice the
// span was produced from.
func (s Span) Slice(line []byte) []byte {
	return line[s.Start:s.End]
}
