package smfio

import (
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"midi-roll/roll"
)

func buildSMF(t *testing.T) *smf.SMF {
	t.Helper()
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(480)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(120))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		t.Fatalf("add tempo track: %v", err)
	}

	var track1 smf.Track
	track1.Add(0, midi.ProgramChange(0, 5))
	track1.Add(0, midi.ControlChange(0, 7, 64))
	track1.Add(0, midi.NoteOn(0, 60, 100))
	track1.Add(240, midi.Pitchbend(0, 2000))
	track1.Add(240, midi.NoteOff(0, 60))
	track1.Close(0)
	if err := sm.Add(track1); err != nil {
		t.Fatalf("add note track: %v", err)
	}

	var track2 smf.Track
	track2.Add(0, midi.NoteOn(9, 36, 0)) // velocity-zero note_on stays note_on
	track2.Close(480)
	if err := sm.Add(track2); err != nil {
		t.Fatalf("add drum track: %v", err)
	}

	return sm
}

func TestFromSMF(t *testing.T) {
	stream, err := FromSMF(buildSMF(t))
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if stream.TicksPerBeat != 480 {
		t.Fatalf("expected 480 ticks per beat, got %d", stream.TicksPerBeat)
	}
	if len(stream.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(stream.Tracks))
	}

	// Track 1 decodes in order with deltas preserved.
	want := []struct {
		kind  roll.Kind
		delta uint32
	}{
		{roll.KindProgramChange, 0},
		{roll.KindControlChange, 0},
		{roll.KindNoteOn, 0},
		{roll.KindOther, 240}, // pitch bend: channel event with no roll semantics
		{roll.KindNoteOff, 240},
	}
	events := stream.Tracks[1]
	for i, w := range want {
		if events[i].Kind != w.kind || events[i].Delta != w.delta {
			t.Fatalf("track 1 event %d: got kind=%d delta=%d, want kind=%d delta=%d",
				i, events[i].Kind, events[i].Delta, w.kind, w.delta)
		}
		if events[i].Channel != 0 {
			t.Fatalf("track 1 event %d: expected channel 0, got %d", i, events[i].Channel)
		}
	}
	if events[0].Program != 5 {
		t.Errorf("expected program 5, got %d", events[0].Program)
	}
	if events[1].Control != 7 || events[1].Value != 64 {
		t.Errorf("expected CC7=64, got CC%d=%d", events[1].Control, events[1].Value)
	}
	if events[2].Note != 60 || events[2].Velocity != 100 {
		t.Errorf("expected note 60 velocity 100, got %d/%d", events[2].Note, events[2].Velocity)
	}

	// Velocity-zero note_on keeps its wire status.
	drum := stream.Tracks[2][0]
	if drum.Kind != roll.KindNoteOn || drum.Velocity != 0 {
		t.Errorf("expected velocity-zero note_on preserved, got kind=%d velocity=%d", drum.Kind, drum.Velocity)
	}

	// 120 BPM tempo meta decodes to 500000 µs/beat.
	var tempo *roll.Event
	for i := range stream.Tracks[0] {
		if stream.Tracks[0][i].MetaType == "set_tempo" {
			tempo = &stream.Tracks[0][i]
		}
	}
	if tempo == nil {
		t.Fatalf("no set_tempo event decoded")
	}
	if tempo.Kind != roll.KindMeta || tempo.Meta.TempoMicros != 500000 {
		t.Fatalf("expected 500000 µs/beat, got %d", tempo.Meta.TempoMicros)
	}
}

func TestFromSMFRejectsNonMetric(t *testing.T) {
	var data smf.SMF // zero time format is not metric ticks
	if _, err := FromSMF(&data); err == nil {
		t.Fatalf("expected error for non-metric time format")
	}
}

func TestReadFileIntoPerformance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	if err := buildSMF(t).WriteFile(path); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	stream, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	perf, err := roll.New(stream, 10)
	if err != nil {
		t.Fatalf("performance failed: %v", err)
	}
	// Channels 0 and 9 are active.
	if perf.ChannelCount() != 2 {
		t.Fatalf("expected 2 channels, got %d", perf.ChannelCount())
	}
	if perf.TempoMicros() != 500000 {
		t.Errorf("expected tempo 500000, got %d", perf.TempoMicros())
	}
	// CC7=64 scales volume to 50; velocity 100 gives 50*100/127 = 39,
	// painted from bin 0 to bin (0+240+240)/10 = 48.
	if got := perf.Roll.At(0, 60, 0); got != 39 {
		t.Errorf("expected intensity 39 at bin 0, got %d", got)
	}
	if got := perf.Roll.At(0, 60, 47); got != 39 {
		t.Errorf("expected intensity 39 at bin 47, got %d", got)
	}

	key, err := SourceKey(path)
	if err != nil {
		t.Fatalf("source key failed: %v", err)
	}
	if key == "" {
		t.Fatalf("empty source key")
	}
	again, err := SourceKey(path)
	if err != nil || key != again {
		t.Fatalf("source key not stable: %q vs %q (%v)", key, again, err)
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mid", "a.MID", "tune.midi", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.mid"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"a.MID", "b.mid", "tune.midi"}
	if len(files) != len(want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, files)
		}
	}
}
