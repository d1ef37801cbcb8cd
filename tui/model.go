package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midi-roll/config"
	"midi-roll/debug"
	"midi-roll/roll"
	"midi-roll/smfio"
	"midi-roll/theme"
	"midi-roll/widgets"
)

// Zoom levels: time bins folded into one terminal column (9 levels)
var ZoomLevels = []int{1, 2, 5, 10, 20, 50, 100, 200, 500}

const defaultZoom = 3 // 10 bins per column

type mode int

const (
	modePicker mode = iota
	modeRoll
)

type Model struct {
	cache *roll.Cache
	cfg   *config.Config

	// File picker state (active when a directory was given)
	dir    string
	files  []string
	cursor int

	// Loaded performance and its colormaps
	path string
	perf *roll.Performance
	maps []theme.Colormap

	// Viewport
	startBin    int
	zoom        int // index into ZoomLevels
	centerPitch int
	cmapIdx     int

	width    int
	height   int
	mode     mode
	status   string
	quitting bool
}

type loadedMsg struct {
	path string
	perf *roll.Performance
}

type loadErrMsg struct {
	path string
	err  error
}

// NewModel builds the viewer. dir/files drive the picker; initial, when
// non-empty, is a file to open immediately.
func NewModel(cache *roll.Cache, cfg *config.Config, dir string, files []string, initial string) Model {
	m := Model{
		cache:       cache,
		cfg:         cfg,
		dir:         dir,
		files:       files,
		path:        initial,
		zoom:        defaultZoom,
		centerPitch: 60,
		mode:        modePicker,
	}
	for i, name := range theme.Names() {
		if name == cfg.Colormap {
			m.cmapIdx = i
		}
	}
	if initial != "" {
		m.mode = modeRoll
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.path != "" {
		return m.openFile(m.path)
	}
	return nil
}

// openFile loads a performance through the cache; repeat opens of an
// unchanged file reuse the rasterized matrix.
func (m Model) openFile(path string) tea.Cmd {
	downsample := m.cfg.Downsample
	cache := m.cache
	return func() tea.Msg {
		key, err := smfio.SourceKey(path)
		if err != nil {
			return loadErrMsg{path, err}
		}
		perf, err := cache.Load(key, func() (*roll.Performance, error) {
			stream, err := smfio.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return roll.New(stream, downsample)
		})
		if err != nil {
			return loadErrMsg{path, err}
		}
		debug.Log("load", "%s: %d tracks, %d channels, %d bins",
			path, perf.TrackCount, perf.ChannelCount(), perf.Roll.Bins())
		return loadedMsg{path, perf}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampView()

	case loadedMsg:
		m.path = msg.path
		m.perf = msg.perf
		m.mode = modeRoll
		m.status = ""
		m.startBin = 0
		if notes := m.perf.Ranges.Note; notes.Min <= notes.Max {
			m.centerPitch = (notes.Min + notes.Max) / 2
		}
		m.cfg.LastPath = msg.path
		m.rebuildMaps()

	case loadErrMsg:
		m.status = fmt.Sprintf("%s: %v", filepath.Base(msg.path), msg.err)
		debug.Log("load", "failed %s: %v", msg.path, msg.err)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		if m.mode == modePicker {
			return m.updatePicker(msg)
		}
		return m.updateRoll(msg)
	}

	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter", " ":
		if len(m.files) > 0 {
			path := filepath.Join(m.dir, m.files[m.cursor])
			m.status = "loading " + m.files[m.cursor]
			return m, m.openFile(path)
		}
	}
	return m, nil
}

func (m Model) updateRoll(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.perf == nil {
		return m, nil
	}
	step := m.gridCols() * ZoomLevels[m.zoom] / 4
	if step < 1 {
		step = 1
	}

	switch msg.String() {
	case "h", "left":
		m.startBin -= step
	case "l", "right":
		m.startBin += step
	case "H", "pgup":
		m.startBin -= step * 4
	case "L", "pgdown":
		m.startBin += step * 4
	case "g", "home":
		m.startBin = 0
	case "G", "end":
		m.startBin = m.perf.Roll.Bins()
	case "+", "=":
		if m.zoom > 0 {
			m.zoom--
		}
	case "-", "_":
		if m.zoom < len(ZoomLevels)-1 {
			m.zoom++
		}
	case "k", "up":
		m.cfg.AutoRange = false
		m.centerPitch += 2
	case "j", "down":
		m.cfg.AutoRange = false
		m.centerPitch -= 2
	case "a":
		m.cfg.AutoRange = !m.cfg.AutoRange
	case "c":
		m.cmapIdx = (m.cmapIdx + 1) % len(theme.Names())
		m.cfg.Colormap = theme.Names()[m.cmapIdx]
		m.rebuildMaps()
	case "b":
		if m.cfg.Background == config.BackgroundBlack {
			m.cfg.Background = config.BackgroundWhite
		} else {
			m.cfg.Background = config.BackgroundBlack
		}
		m.rebuildMaps()
	case "tab":
		if m.dir != "" {
			m.mode = modePicker
		}
	}

	m.clampView()
	return m, nil
}

func (m *Model) rebuildMaps() {
	if m.perf == nil {
		return
	}
	m.maps = theme.Maps(theme.Names()[m.cmapIdx], m.perf.ChannelCount(), m.background())
}

func (m Model) background() theme.RGB {
	if m.cfg.Background == config.BackgroundWhite {
		return theme.White
	}
	return theme.Black
}

func (m *Model) clampView() {
	if m.perf == nil {
		return
	}
	maxStart := m.perf.Roll.Bins() - m.gridCols()*ZoomLevels[m.zoom]
	if maxStart < 0 {
		maxStart = 0
	}
	if m.startBin > maxStart {
		m.startBin = maxStart
	}
	if m.startBin < 0 {
		m.startBin = 0
	}
	if m.centerPitch < 0 {
		m.centerPitch = 0
	}
	if m.centerPitch > 127 {
		m.centerPitch = 127
	}
}

func (m Model) gridCols() int {
	cols := m.width - 5 // pitch label gutter
	if cols < 8 {
		cols = 8
	}
	return cols
}

func (m Model) gridRows() int {
	rows := m.height - 11 // header, info, legend, help, status
	if rows < 8 {
		rows = 8
	}
	return rows
}

// pitchWindow picks the visible pitch band: the observed note range plus a
// semitone of margin when auto range is on, a window around centerPitch
// otherwise.
func (m Model) pitchWindow(rows int) (top, bottom int) {
	notes := m.perf.Ranges.Note
	if m.cfg.AutoRange && notes.Min <= notes.Max {
		bottom = notes.Min - 1
		top = notes.Max + 1
		if top-bottom+1 > rows {
			mid := (notes.Min + notes.Max) / 2
			top = mid + rows/2
			bottom = top - rows + 1
		}
	} else {
		top = m.centerPitch + rows/2
		bottom = top - rows + 1
	}
	if bottom < 0 {
		top -= bottom
		bottom = 0
	}
	if top > 127 {
		bottom -= top - 127
		top = 127
	}
	if bottom < 0 {
		bottom = 0
	}
	return top, bottom
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteLabel(pitch int) string {
	return fmt.Sprintf("%2s%d ", noteNames[pitch%12], pitch/12)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#c678dd"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#5c6370"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75"))

	if m.mode == modePicker {
		return m.viewPicker(headerStyle, dimStyle, errStyle)
	}
	return m.viewRoll(headerStyle, dimStyle, errStyle)
}

func (m Model) viewPicker(headerStyle, dimStyle, errStyle lipgloss.Style) string {
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("midi-roll  %s", m.dir)))
	out.WriteString("\n\n")

	if len(m.files) == 0 {
		out.WriteString(dimStyle.Render("  no .mid files here"))
		out.WriteString("\n")
	}
	for i, name := range m.files {
		if i == m.cursor {
			out.WriteString(headerStyle.Render("> " + name))
		} else {
			out.WriteString("  " + name)
		}
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Title: "Files", Keys: []widgets.KeyBinding{
			{Key: "j / k", Desc: "move"},
			{Key: "enter", Desc: "open"},
			{Key: "q", Desc: "quit"},
		}},
	}))
	if m.status != "" {
		out.WriteString("\n\n")
		out.WriteString(errStyle.Render(m.status))
	}
	return out.String()
}

func (m Model) viewRoll(headerStyle, dimStyle, errStyle lipgloss.Style) string {
	var out strings.Builder
	out.WriteString("\n")

	if m.perf == nil {
		out.WriteString(dimStyle.Render("loading..."))
		return out.String()
	}
	perf := m.perf

	out.WriteString(headerStyle.Render(fmt.Sprintf("midi-roll  %s", filepath.Base(m.path))))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(fmt.Sprintf(
		"tracks:%d  channels:%d  intensity:[%d,%d]  notes:[%d,%d]",
		perf.TrackCount, perf.ChannelCount(),
		perf.Ranges.Intensity.Min, perf.Ranges.Intensity.Max,
		perf.Ranges.Note.Min, perf.Ranges.Note.Max)))
	out.WriteString("\n")

	binsPerCol := ZoomLevels[m.zoom]
	ticksPerBin := int64(perf.Downsample)
	viewFrom := perf.TicksToSeconds(int64(m.startBin) * ticksPerBin)
	viewTo := perf.TicksToSeconds(int64(m.startBin+m.gridCols()*binsPerCol) * ticksPerBin)
	total := perf.TotalSeconds()
	if viewTo > total {
		viewTo = total
	}
	out.WriteString(dimStyle.Render(fmt.Sprintf(
		"ticks/beat:%d  ticks/s:%.1f  length:%d ticks / %.2fs  view:%.2fs-%.2fs",
		perf.TicksPerBeat, perf.TicksPerSecond(), perf.TotalTicks, total, viewFrom, viewTo)))
	out.WriteString("\n\n")

	out.WriteString(m.renderGrid())
	out.WriteString("\n")

	for i, tl := range perf.Timelines {
		color := m.maps[i].Lookup(1)
		desc := fmt.Sprintf("source channel %d", tl.Source)
		if perf.Programs[i] >= 0 {
			desc += fmt.Sprintf(", program %d", perf.Programs[i])
		}
		out.WriteString(widgets.RenderLegendItem([3]uint8(color), fmt.Sprintf("ch %d", i), desc))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render(
		"h/l:pan  +/-:zoom  j/k:pitch  a:auto-range  c:colormap  b:background  tab:files  q:quit"))
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(errStyle.Render(m.status))
	}
	return out.String()
}

// renderGrid draws the visible window of the roll, one pitch per row, high
// notes on top. Each column folds binsPerCol time bins; where channels
// overlap, the strongest cell wins and is tinted with that channel's map.
func (m Model) renderGrid() string {
	perf := m.perf
	matrix := perf.Roll
	cols := m.gridCols()
	rows := m.gridRows()
	binsPerCol := ZoomLevels[m.zoom]
	top, bottom := m.pitchWindow(rows)

	// Scale display against the strongest intensity actually seen, so
	// quiet performances still span the colormap.
	maxIntensity := perf.Ranges.Intensity.Max
	if maxIntensity <= 0 {
		maxIntensity = 1
	}

	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#3a3f4b"))
	empty := emptyStyle.Render("·")
	beyond := emptyStyle.Render("-")

	styles := make(map[theme.RGB]lipgloss.Style)

	var out strings.Builder
	for pitch := top; pitch >= bottom; pitch-- {
		out.WriteString(noteLabel(pitch))
		for col := 0; col < cols; col++ {
			b0 := m.startBin + col*binsPerCol
			if b0 >= matrix.Bins() {
				out.WriteString(beyond)
				continue
			}
			b1 := b0 + binsPerCol
			if b1 > matrix.Bins() {
				b1 = matrix.Bins()
			}

			best := -1
			bestVal := uint8(0)
			for ch := 0; ch < matrix.Channels(); ch++ {
				row := matrix.Row(ch, pitch)
				for b := b0; b < b1; b++ {
					if row[b] > bestVal {
						bestVal = row[b]
						best = ch
					}
				}
			}

			if best < 0 {
				out.WriteString(empty)
				continue
			}
			color := m.maps[best].Lookup(float64(bestVal) / float64(maxIntensity))
			style, ok := styles[color]
			if !ok {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(color.Hex()))
				styles[color] = style
			}
			out.WriteString(style.Render("█"))
		}
		out.WriteString("\n")
	}
	return out.String()
}
