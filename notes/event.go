package notes

// Kind distinguishes the input events the animator reacts to.
type Kind uint8

const (
	NoteOn Kind = iota + 1
	NoteOff
	// AllOff drops every fade and blacks out the strip.
	AllOff
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case AllOff:
		return "all-off"
	}
	return "unknown"
}

// Event is one discrete input event keyed by note number.
type Event struct {
	Kind Kind
	Note int
}
