// rollstat prints rasterization stats for MIDI files without the viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"midi-roll/roll"
	"midi-roll/smfio"
)

func main() {
	downsample := flag.Int("downsample", roll.DefaultDownsample, "ticks per time bin")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: rollstat [-downsample N] file.mid ...")
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := report(path, *downsample); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func report(path string, downsample int) error {
	stream, err := smfio.ReadFile(path)
	if err != nil {
		return err
	}
	perf, err := roll.New(stream, downsample)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", path)
	fmt.Printf("  tracks:       %d\n", perf.TrackCount)
	fmt.Printf("  channels:     %d\n", perf.ChannelCount())
	for i, tl := range perf.Timelines {
		line := fmt.Sprintf("    ch %d: source %d, %d events", i, tl.Source, len(tl.Events))
		if perf.Programs[i] >= 0 {
			line += fmt.Sprintf(", program %d", perf.Programs[i])
		}
		fmt.Println(line)
	}
	fmt.Printf("  intensity:    [%d, %d]\n", perf.Ranges.Intensity.Min, perf.Ranges.Intensity.Max)
	fmt.Printf("  notes:        [%d, %d]\n", perf.Ranges.Note.Min, perf.Ranges.Note.Max)
	fmt.Printf("  ticks/beat:   %d\n", perf.TicksPerBeat)
	fmt.Printf("  tempo:        %d us/beat\n", perf.TempoMicros())
	fmt.Printf("  ticks/second: %.2f\n", perf.TicksPerSecond())
	fmt.Printf("  length:       %d ticks, %.2fs, %d bins\n",
		perf.TotalTicks, perf.TotalSeconds(), perf.Roll.Bins())
	return nil
}
