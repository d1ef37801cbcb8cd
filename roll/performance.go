package roll

// Performance is everything derived from one source stream: the per-channel
// timelines, the global meta, the rasterized roll and its ranges, and the
// timing scalars. It is built once by New and never mutated afterward, so a
// single instance can back any number of concurrent readers.
type Performance struct {
	Timelines []ChannelTimeline
	Meta      GlobalMeta
	Roll      *PianoRoll
	Ranges    Ranges
	Programs  []int

	TrackCount   int
	TicksPerBeat uint16
	Downsample   int
	TotalTicks   int64
}

// New demultiplexes and rasterizes a stream. downsample is the number of
// ticks per time bin; values <= 0 select DefaultDownsample. A stream with
// zero non-empty channels yields a zero-row roll, not an error.
func New(stream *Stream, downsample int) (*Performance, error) {
	if downsample <= 0 {
		downsample = DefaultDownsample
	}

	timelines, meta, err := Demux(stream)
	if err != nil {
		return nil, err
	}

	total := TotalTicks(timelines)
	raster, err := Rasterize(timelines, downsample, total)
	if err != nil {
		return nil, err
	}

	return &Performance{
		Timelines:    timelines,
		Meta:         meta,
		Roll:         raster.Roll,
		Ranges:       raster.Ranges,
		Programs:     raster.Programs,
		TrackCount:   len(stream.Tracks),
		TicksPerBeat: stream.TicksPerBeat,
		Downsample:   downsample,
		TotalTicks:   total,
	}, nil
}

// ChannelCount is the number of non-empty channels.
func (p *Performance) ChannelCount() int { return len(p.Timelines) }

// TempoMicros is the performance tempo in microseconds per beat.
func (p *Performance) TempoMicros() uint32 { return p.Meta.TempoMicros() }

// TicksToSeconds converts ticks to seconds at the performance tempo.
func (p *Performance) TicksToSeconds(ticks int64) float64 {
	return TicksToSeconds(ticks, p.TicksPerBeat, p.TempoMicros())
}

// TotalSeconds is the performance length in wall-clock seconds.
func (p *Performance) TotalSeconds() float64 {
	return p.TicksToSeconds(p.TotalTicks)
}

// TicksPerSecond is the tick rate, or 0 for an empty performance.
func (p *Performance) TicksPerSecond() float64 {
	seconds := p.TotalSeconds()
	if seconds == 0 {
		return 0
	}
	return float64(p.TotalTicks) / seconds
}
