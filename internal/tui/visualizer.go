// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"raven/internal/analysis"
	"raven/internal/audio"
	"raven/internal/viz"
)

// Spectrum is the analysis side the visualizer reads from and the mode
// selector it drives.
type Spectrum interface {
	analysis.SnapshotProvider
	ActiveMode() viz.Mode
	CycleForward() viz.Mode
	CycleBackward() viz.Mode
}

// Playback controls a file player. Capture sessions have none.
type Playback interface {
	TogglePause() bool
	Paused() bool
	ToggleMute() bool
	Muted() bool
	VolumeUp() float64
	VolumeDown() float64
	Volume() float64
	Finished() bool
	Position() time.Duration
	Track() *audio.Track
}

// Capture reports on a live input. Playback sessions have none.
type Capture interface {
	Silent() bool
	GateEnabled() bool
	ToggleGate() bool
}

// Options configures a VisualizerModel.
type Options struct {
	FPS       int
	Threshold float64 // normalized amplitude at or below which bins are not drawn
	Title     string  // shown in the header, e.g. the track or device name
	Playback  Playback
	Capture   Capture
	// Next loads the next playlist entry and returns its title. Nil when
	// there is nothing to advance to.
	Next func() (string, error)
}

// readoutFrequency is the angular frequency of the header springs.
const readoutFrequency = 8.0

type frameMsg time.Time

type trackMsg struct {
	title string
	err   error
}

// VisualizerModel is the Bubble Tea model of the spectrum display. On every
// frame it acquires the latest snapshot through its own reader, maps it with
// the active mode and rasterizes the primitives onto a Braille canvas.
type VisualizerModel struct {
	spectrum Spectrum
	reader   *analysis.Reader
	playback Playback
	capture  Capture
	next     func() (string, error)

	interval time.Duration
	bins     int
	mapper   *viz.Mapper
	canvas   *Canvas
	styles   *shadeStyles
	prims    []viz.Primitive
	norm     []float64

	keys     keyMap
	help     help.Model
	title    string
	status   string
	loading  bool
	showInfo bool
	lastPass uint64

	peak      float64
	dominant  float64
	peakShown readout
	freqShown readout
	width     int
	height    int
	quitting  bool
}

// NewVisualizerModel subscribes a reader on spectrum and returns the model.
func NewVisualizerModel(spectrum Spectrum, opts Options) VisualizerModel {
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	size := spectrum.WindowSize()
	h := help.New()
	h.Styles.ShortKey = highlightStyle
	h.Styles.FullKey = highlightStyle

	return VisualizerModel{
		spectrum:  spectrum,
		reader:    spectrum.NewReader(),
		playback:  opts.Playback,
		capture:   opts.Capture,
		next:      opts.Next,
		interval:  time.Second / time.Duration(fps),
		bins:      viz.VisibleBins(size),
		mapper:    viz.NewMapper(size, opts.Threshold),
		canvas:    NewCanvas(0, 0),
		styles:    newShadeStyles(palette),
		norm:      make([]float64, size),
		keys:      defaultKeyMap().withSource(opts.Playback != nil, opts.Next != nil, opts.Capture != nil),
		help:      h,
		title:     opts.Title,
		peak:      analysis.DefaultPeak,
		peakShown: newReadout(fps, readoutFrequency),
		freqShown: newReadout(fps, readoutFrequency),
	}
}

func (m VisualizerModel) frameCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Init starts the frame clock.
func (m VisualizerModel) Init() tea.Cmd {
	return m.frameCmd()
}

// Update handles frames, input and resizes.
func (m VisualizerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case frameMsg:
		m.refresh()
		if m.playback != nil && m.next != nil && !m.loading && m.playback.Finished() {
			m.loading = true
			return m, tea.Batch(m.frameCmd(), m.loadNext())
		}
		return m, m.frameCmd()

	case trackMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("load failed: %v", msg.err)
		} else {
			m.title = msg.title
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m VisualizerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.spectrum.Unsubscribe(m.reader)
		return m, tea.Quit
	case key.Matches(msg, m.keys.Forward):
		m.spectrum.CycleForward()
	case key.Matches(msg, m.keys.Backward):
		m.spectrum.CycleBackward()
	case key.Matches(msg, m.keys.Pause):
		m.playback.TogglePause()
	case key.Matches(msg, m.keys.Mute):
		m.playback.ToggleMute()
	case key.Matches(msg, m.keys.VolumeUp):
		m.playback.VolumeUp()
	case key.Matches(msg, m.keys.VolumeDown):
		m.playback.VolumeDown()
	case key.Matches(msg, m.keys.Next):
		if !m.loading {
			m.loading = true
			return m, m.loadNext()
		}
	case key.Matches(msg, m.keys.Gate):
		m.capture.ToggleGate()
	case key.Matches(msg, m.keys.Info):
		m.showInfo = !m.showInfo
		m.layout()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	}
	return m, nil
}

func (m VisualizerModel) loadNext() tea.Cmd {
	next := m.next
	return func() tea.Msg {
		title, err := next()
		return trackMsg{title: title, err: err}
	}
}

// layout sizes the canvas to the space left by the header, info line and
// help.
func (m *VisualizerModel) layout() {
	helpRows := 1
	if m.help.ShowAll {
		helpRows = strings.Count(m.help.View(m.keys), "\n") + 1
	}
	infoRows := 0
	if m.showInfo {
		infoRows = 1
	}
	m.canvas.Resize(m.width, max(m.height-1-infoRows-helpRows, 0))
}

// refresh maps the latest snapshot onto the canvas.
func (m *VisualizerModel) refresh() {
	snap := m.reader.Acquire()
	if snap.Sequence != m.lastPass {
		if snap.Frames == 0 {
			// The source was reset; drop the radial smoothing with it.
			m.mapper.Reset()
			m.peakShown.snap(snap.Peak)
			m.freqShown.snap(0)
		}
		m.lastPass = snap.Sequence
	}

	snap.NormalizeInto(m.norm)
	m.peak = snap.Peak
	m.dominant = m.spectrum.FrequencyForBin(snap.PeakBin(1, m.bins))
	m.peakShown.step(m.peak)
	m.freqShown.step(m.dominant)

	m.prims = m.mapper.Map(m.spectrum.ActiveMode(), m.norm, m.canvas.Geometry(m.bins), m.prims[:0])
	m.canvas.Clear()
	m.canvas.Draw(m.prims)
}

// header renders the status line.
func (m VisualizerModel) header() string {
	parts := []string{
		titleStyle.Render("raven"),
		modeStyle.Render(m.spectrum.ActiveMode().String()),
		infoStyle.Render(fmt.Sprintf("peak %.2f", m.peakShown.pos)),
		infoStyle.Render(fmt.Sprintf("%.0f Hz", m.freqShown.pos)),
	}
	if m.title != "" {
		parts = append(parts, infoStyle.Render(m.title))
	}
	if p := m.playback; p != nil {
		if t := p.Track(); t != nil {
			parts = append(parts, infoStyle.Render(clock(p.Position())+" / "+clock(t.Duration())))
		}
		state := fmt.Sprintf("vol %.0f%%", p.Volume()*100)
		if p.Muted() {
			state += " muted"
		}
		if p.Paused() {
			state += " paused"
		}
		parts = append(parts, statusStyle.Render(state))
	}
	if c := m.capture; c != nil {
		switch {
		case !c.GateEnabled():
			parts = append(parts, statusStyle.Render("gate off"))
		case c.Silent():
			parts = append(parts, statusStyle.Render("silent"))
		}
	}
	if m.status != "" {
		parts = append(parts, errorStyle.Render(m.status))
	}
	return strings.Join(parts, "  ")
}

// info renders the stream and analysis details shown by the info toggle.
func (m VisualizerModel) info() string {
	size := m.spectrum.WindowSize()
	parts := []string{
		fmt.Sprintf("window %d", size),
		fmt.Sprintf("%.0f Hz", m.spectrum.SampleRate()),
		fmt.Sprintf("%.2f Hz/bin", m.spectrum.FrequencyForBin(1)),
		fmt.Sprintf("%d bins shown", m.bins),
	}
	if p := m.playback; p != nil {
		if t := p.Track(); t != nil {
			parts = append(parts,
				fmt.Sprintf("file %d Hz", t.SampleRate),
				fmt.Sprintf("%d ch", t.Channels),
				fmt.Sprintf("%d-bit", t.BitDepth),
				clock(t.Duration()),
			)
		}
	}
	return infoStyle.Render(strings.Join(parts, "  "))
}

// clock formats d as m:ss.
func clock(d time.Duration) string {
	secs := int(max(d, 0) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// View renders the header, canvas and help.
func (m VisualizerModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Initializing..."
	}
	top := m.header()
	if m.showInfo {
		top += "\n" + m.info()
	}
	return top + "\n" + m.canvas.Render(m.styles) + "\n" + m.help.View(m.keys)
}

// Run starts the visualizer in the alternate screen and blocks until the
// user quits.
func Run(m VisualizerModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
