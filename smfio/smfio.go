// Package smfio decodes standard MIDI files into the event streams the roll
// package rasterizes. It owns all file-system concerns: reading SMF data,
// building cache identities, and listing candidate files for the picker.
package smfio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"

	"midi-roll/roll"
)

// ReadFile decodes the SMF file at path into a stream.
func ReadFile(path string) (*roll.Stream, error) {
	data, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return FromSMF(data)
}

// FromSMF converts a decoded SMF into the flat, track-ordered event stream
// the core consumes. Only metric time division is supported; SMPTE-timed
// files are rejected.
func FromSMF(data *smf.SMF) (*roll.Stream, error) {
	ticks, ok := data.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v: only metric ticks carry a beat resolution", data.TimeFormat)
	}

	stream := &roll.Stream{
		TicksPerBeat: uint16(ticks),
		Tracks:       make([][]roll.Event, 0, len(data.Tracks)),
	}
	for _, track := range data.Tracks {
		events := make([]roll.Event, 0, len(track))
		for _, te := range track {
			events = append(events, decode(te.Delta, te.Message))
		}
		stream.Tracks = append(stream.Tracks, events)
	}
	return stream, nil
}

// decode maps one SMF message to a stream event. Note-ons keep their wire
// status even at velocity zero — the rasterizer relies on seeing them as
// note_on events, not as note-offs. Messages that are neither channel voice
// nor a recognized meta type come back as KindOther with no channel and are
// skipped by the demultiplexer.
func decode(delta uint32, msg smf.Message) roll.Event {
	ev := roll.Event{Kind: roll.KindOther, Delta: delta, Channel: -1}

	var channel, key, velocity, controller, value, program uint8
	var bpm float64
	var text string
	var num, denom, clocksPerClick, dsqpq uint8

	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		ev.Kind = roll.KindNoteOn
		ev.Channel = int8(channel)
		ev.Note = key
		ev.Velocity = velocity

	case msg.GetNoteOff(&channel, &key, &velocity):
		ev.Kind = roll.KindNoteOff
		ev.Channel = int8(channel)
		ev.Note = key
		ev.Velocity = velocity

	case msg.GetControlChange(&channel, &controller, &value):
		ev.Kind = roll.KindControlChange
		ev.Channel = int8(channel)
		ev.Control = controller
		ev.Value = value

	case msg.GetProgramChange(&channel, &program):
		ev.Kind = roll.KindProgramChange
		ev.Channel = int8(channel)
		ev.Program = program

	case msg.GetChannel(&channel):
		// Pitch bend, aftertouch and friends: no roll semantics, but the
		// delta still advances the channel clock.
		ev.Channel = int8(channel)

	case msg.GetMetaTempo(&bpm):
		ev.Kind = roll.KindMeta
		ev.MetaType = "set_tempo"
		if bpm > 0 {
			ev.Meta.TempoMicros = uint32(math.Round(60e6 / bpm))
		}

	case msg.GetMetaTimeSig(&num, &denom, &clocksPerClick, &dsqpq):
		ev.Kind = roll.KindMeta
		ev.MetaType = "time_signature"
		ev.Meta.Numerator = num
		ev.Meta.Denominator = denom

	case msg.GetMetaTrackName(&text):
		ev.Kind = roll.KindMeta
		ev.MetaType = "track_name"
		ev.Meta.Text = text

	case msg.GetMetaInstrument(&text):
		ev.Kind = roll.KindMeta
		ev.MetaType = "instrument_name"
		ev.Meta.Text = text

	case msg.GetMetaMarker(&text):
		ev.Kind = roll.KindMeta
		ev.MetaType = "marker"
		ev.Meta.Text = text

	case msg.GetMetaLyric(&text):
		ev.Kind = roll.KindMeta
		ev.MetaType = "lyric"
		ev.Meta.Text = text

	case msg.GetMetaCopyright(&text):
		ev.Kind = roll.KindMeta
		ev.MetaType = "copyright"
		ev.Meta.Text = text

	case msg.GetMetaText(&text):
		ev.Kind = roll.KindMeta
		ev.MetaType = "text"
		ev.Meta.Text = text

	case msg.Is(smf.MetaEndOfTrackMsg):
		ev.Kind = roll.KindMeta
		ev.MetaType = "end_of_track"
	}

	return ev
}

// SourceKey builds a stable cache identity for a file from its absolute
// path, size and modification time.
func SourceKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano()), nil
}

// ListFiles returns the names of the .mid/.midi files directly inside dir,
// sorted by name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".mid", ".midi":
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
