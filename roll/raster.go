package roll

// DefaultDownsample is the default number of ticks folded into one time bin.
const DefaultDownsample = 10

// MaxRollCells caps the raster allocation at channels × 128 × bins cells
// (256 MiB of uint8 cells). A pathological input fails with ErrRollTooLarge
// instead of allocating without bound.
const MaxRollCells = 1 << 28

// Controller numbers the rasterizer reacts to.
const (
	ccMainVolume = 7
	ccExpression = 11
)

// PianoRoll is a dense channel × pitch × time-bin intensity matrix.
// It is immutable once Rasterize returns it and safe for concurrent reads.
type PianoRoll struct {
	channels int
	bins     int
	cells    []uint8
}

func newPianoRoll(channels, bins int64) (*PianoRoll, error) {
	total := channels * 128 * bins
	if total > MaxRollCells {
		return nil, ErrRollTooLarge
	}
	return &PianoRoll{
		channels: int(channels),
		bins:     int(bins),
		cells:    make([]uint8, total),
	}, nil
}

// Channels returns the number of channel rows (empty channels were dropped,
// so this is the retained channel count, not 16).
func (r *PianoRoll) Channels() int { return r.channels }

// Bins returns the length of the time axis.
func (r *PianoRoll) Bins() int { return r.bins }

// At returns the intensity at one cell.
func (r *PianoRoll) At(channel, note, bin int) uint8 {
	return r.cells[(channel*128+note)*r.bins+bin]
}

// Row returns the full time axis for one pitch of one channel. The slice
// aliases the matrix; callers must treat it as read-only.
func (r *PianoRoll) Row(channel, note int) []uint8 {
	off := (channel*128 + note) * r.bins
	return r.cells[off : off+r.bins]
}

// paint writes intensity over the half-open bin range [from, to),
// unconditionally overwriting prior values. Out-of-axis portions are
// clipped.
func (r *PianoRoll) paint(channel, note, from, to int, intensity uint8) {
	if from < 0 {
		from = 0
	}
	if to > r.bins {
		to = r.bins
	}
	if from >= to {
		return
	}
	row := r.Row(channel, note)
	for i := from; i < to; i++ {
		row[i] = intensity
	}
}

// Range is a running [min, max] pair, tightened monotonically.
type Range struct {
	Min int
	Max int
}

func (r *Range) observe(v int) {
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
}

// Ranges carries the extrema observed while rasterizing. Both start at
// inverted sentinels (min above any real value, max below) so the first
// note_on always updates both ends; they are read-only afterward.
type Ranges struct {
	Intensity Range
	Note      Range
}

// Raster is the output of one rasterization pass.
type Raster struct {
	Roll   *PianoRoll
	Ranges Ranges

	// Programs holds the last program_change value seen per channel,
	// -1 when none. Display metadata only; programs never affect cells.
	Programs []int
}

// noteSlot is one pitch of the per-channel note register: either inactive
// or carrying the bin where the current segment ends and the intensity to
// paint up to it.
type noteSlot struct {
	active    bool
	endBin    int
	intensity uint8
}

// Rasterize walks each channel timeline in order and paints note segments
// into the roll. Channels are processed independently with the register and
// controller state reset between them, and each channel writes only its own
// rows; the passes are pure given their timeline.
//
// Per event, in timeline order:
//
//   - control 7 (main volume) sets volume to 100*value/127.
//   - control 11 (expression) multiplies volume by value/127 in integer
//     division, so the factor is 0 for any value below 127 and 1 only at
//     the maximum. This truncation reproduces the reference behavior
//     exactly; see the note range scenario in the tests.
//   - note_on computes its segment end bin from the pre-advance time
//     counter plus its own delta. A second note_on without an intervening
//     note_off first paints the previous segment up to the new end bin.
//   - note_off paints the registered segment and clears the slot; with no
//     matching note_on it is a no-op.
//
// Every event then advances the channel's time counter by its delta. Pitches
// still registered when the timeline ends sustain to the end of the axis.
func Rasterize(timelines []ChannelTimeline, downsample int, totalTicks int64) (*Raster, error) {
	if downsample <= 0 {
		downsample = DefaultDownsample
	}
	ds := int64(downsample)

	roll, err := newPianoRoll(int64(len(timelines)), totalTicks/ds)
	if err != nil {
		return nil, err
	}
	bins := roll.Bins()

	result := &Raster{
		Roll: roll,
		Ranges: Ranges{
			Intensity: Range{Min: 100, Max: 0},
			Note:      Range{Min: 127, Max: 0},
		},
		Programs: make([]int, len(timelines)),
	}

	for idx, tl := range timelines {
		var register [128]noteSlot
		var timeCounter int64
		volume := 100
		result.Programs[idx] = -1

		for _, ev := range tl.Events {
			switch ev.Kind {
			case KindControlChange:
				switch ev.Control {
				case ccMainVolume:
					volume = 100 * int(ev.Value) / 127
				case ccExpression:
					volume *= int(ev.Value) / 127
				}

			case KindProgramChange:
				result.Programs[idx] = int(ev.Program)

			case KindNoteOn:
				endBin := int((timeCounter + int64(ev.Delta)) / ds)
				intensity := uint8(volume * int(ev.Velocity) / 127)
				result.Ranges.Intensity.observe(int(intensity))
				result.Ranges.Note.observe(int(ev.Note))
				if slot := register[ev.Note]; slot.active {
					// Re-trigger without a note_off: close the previous
					// segment at this event's end bin.
					roll.paint(idx, int(ev.Note), slot.endBin, endBin, slot.intensity)
				}
				register[ev.Note] = noteSlot{active: true, endBin: endBin, intensity: intensity}

			case KindNoteOff:
				if slot := register[ev.Note]; slot.active {
					endBin := int((timeCounter + int64(ev.Delta)) / ds)
					roll.paint(idx, int(ev.Note), slot.endBin, endBin, slot.intensity)
					register[ev.Note] = noteSlot{}
				}
			}
			timeCounter += int64(ev.Delta)
		}

		// Unterminated notes sustain to the end of the raster.
		for note, slot := range register {
			if slot.active {
				roll.paint(idx, note, slot.endBin, bins, slot.intensity)
			}
		}
	}

	return result, nil
}
