package roll

// DefaultTempoMicros is the tempo assumed when the stream carries no
// set_tempo meta message: 500000 microseconds per beat, i.e. 120 BPM.
const DefaultTempoMicros = 500000

// TempoMicros returns the tempo in microseconds per beat from the last
// set_tempo meta message, or DefaultTempoMicros when none was recorded.
// A missing tempo is a normal case, not an error. Only the first lookup
// matters: a single tempo is assumed for the whole performance.
func (m GlobalMeta) TempoMicros() uint32 {
	if fields, ok := m["set_tempo"]; ok && fields.TempoMicros > 0 {
		return fields.TempoMicros
	}
	return DefaultTempoMicros
}

// TicksToSeconds converts a tick count to wall-clock seconds using the
// standard tick/beat/microsecond relationship.
func TicksToSeconds(ticks int64, ticksPerBeat uint16, tempoMicros uint32) float64 {
	if ticksPerBeat == 0 {
		return 0
	}
	return float64(ticks) * float64(tempoMicros) / (float64(ticksPerBeat) * 1e6)
}

// TotalTicks is the maximum, over all channels, of that channel's summed
// delta ticks. Every event contributes its delta, whatever its kind.
func TotalTicks(timelines []ChannelTimeline) int64 {
	var max int64
	for _, tl := range timelines {
		var ticks int64
		for _, ev := range tl.Events {
			ticks += int64(ev.Delta)
		}
		if ticks > max {
			max = ticks
		}
	}
	return max
}
