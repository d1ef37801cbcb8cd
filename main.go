package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"midi-roll/config"
	"midi-roll/debug"
	"midi-roll/roll"
	"midi-roll/smfio"
	"midi-roll/tui"
)

func main() {
	debugFlag := flag.Bool("debug", false, "log to ~/.config/midi-roll/debug.log")
	downsample := flag.Int("downsample", 0, "ticks per time bin (overrides config)")
	flag.Parse()

	if *debugFlag {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *downsample > 0 {
		cfg.Downsample = *downsample
	}

	target := flag.Arg(0)
	if target == "" {
		if cfg.LastPath != "" {
			target = cfg.LastPath
		} else {
			target = "."
		}
	}

	info, err := os.Stat(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", target, err)
		os.Exit(1)
	}

	var (
		dir     string
		files   []string
		initial string
	)
	if info.IsDir() {
		dir = target
		files, err = smfio.ListFiles(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", dir, err)
			os.Exit(1)
		}
	} else {
		initial = target
	}

	cache := roll.NewCache()
	m := tui.NewModel(cache, cfg, dir, files, initial)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
	}
}
