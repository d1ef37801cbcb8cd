package roll

// Kind classifies a decoded MIDI message.
type Kind uint8

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindControlChange
	KindProgramChange
	KindMeta
	KindOther
)

// MaxChannels is the number of MIDI channels a stream can address.
const MaxChannels = 16

// Event is one decoded message from the source stream. Delta is the tick
// count since the previous event in the same originating track. Channel is
// 0-15 for channel voice messages and -1 for everything else. Only the
// fields relevant to Kind are set; an Event is never modified after decode.
type Event struct {
	Kind    Kind
	Delta   uint32
	Channel int8

	Note     uint8
	Velocity uint8
	Control  uint8
	Value    uint8
	Program  uint8

	MetaType string
	Meta     MetaFields
}

// MetaFields holds the decoded payload of a meta message.
type MetaFields struct {
	TempoMicros uint32
	Text        string
	Numerator   uint8
	Denominator uint8
}

// Stream is a fully decoded multi-track event stream plus its tick
// resolution. It is materialized in full before any processing starts.
type Stream struct {
	Tracks       [][]Event
	TicksPerBeat uint16
}

// GlobalMeta maps a meta message type name to its most recently decoded
// payload. Later occurrences overwrite earlier ones.
type GlobalMeta map[string]MetaFields

// ChannelTimeline is the ordered event sequence for one channel. Source is
// the channel number the events carried on the wire; after Demux drops
// empty channels, consumers address timelines by slice position instead.
type ChannelTimeline struct {
	Source uint8
	Events []Event
}

// Demux splits a stream into per-channel timelines and collects global meta
// messages. Tracks are traversed in file order and each channel's events are
// appended in that traversal order: a channel's events from a later track
// land strictly after all of its events from earlier tracks. Timelines are
// NOT merged by absolute time — this per-track-append ordering is part of
// the contract, and changing it would change rasterization results for
// multi-track single-channel streams.
//
// Channels that received no events are dropped and the survivors are
// renumbered densely from 0. Fields outside the 7-bit range fail fast with
// a MalformedEventError; they must never reach the rasterizer.
func Demux(s *Stream) ([]ChannelTimeline, GlobalMeta, error) {
	byChannel := make([][]Event, MaxChannels)
	meta := GlobalMeta{}

	for ti, track := range s.Tracks {
		for ei, ev := range track {
			if field, value, ok := checkFields(ev); !ok {
				return nil, nil, &MalformedEventError{
					Track: ti,
					Index: ei,
					Field: field,
					Value: value,
				}
			}
			if ev.Channel >= 0 {
				byChannel[ev.Channel] = append(byChannel[ev.Channel], ev)
				continue
			}
			if ev.Kind == KindMeta && ev.MetaType != "" {
				meta[ev.MetaType] = ev.Meta
			}
			// Unrecognized messages carry no channel and no meta name;
			// they are skipped.
		}
	}

	var timelines []ChannelTimeline
	for ch, events := range byChannel {
		if len(events) == 0 {
			continue
		}
		timelines = append(timelines, ChannelTimeline{Source: uint8(ch), Events: events})
	}
	return timelines, meta, nil
}

// checkFields validates the 7-bit fields relevant to the event's kind.
// Delta cannot be negative by construction (unsigned).
func checkFields(ev Event) (field string, value int, ok bool) {
	if ev.Channel >= MaxChannels {
		return "channel", int(ev.Channel), false
	}
	switch ev.Kind {
	case KindNoteOn, KindNoteOff:
		if ev.Note > 127 {
			return "note", int(ev.Note), false
		}
		if ev.Velocity > 127 {
			return "velocity", int(ev.Velocity), false
		}
	case KindControlChange:
		if ev.Control > 127 {
			return "control", int(ev.Control), false
		}
		if ev.Value > 127 {
			return "value", int(ev.Value), false
		}
	case KindProgramChange:
		if ev.Program > 127 {
			return "program", int(ev.Program), false
		}
	}
	return "", 0, true
}
