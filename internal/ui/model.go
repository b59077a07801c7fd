package ui

import (
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brysonandrew/visualizer/internal/engine"
	"github.com/brysonandrew/visualizer/internal/export"
	"github.com/brysonandrew/visualizer/internal/player"
	"github.com/brysonandrew/visualizer/internal/util"
)

// chromeRows is the vertical space the header, track info, meters, progress
// and help lines take away from the frame area.
const chromeRows = 15

// Model is the Bubbletea model for the playback screen. It owns the
// transport keys and mirrors the engine's latest composed frame into the
// terminal on every tick.
type Model struct {
	player   *player.Player
	engine   *engine.Engine
	recorder *export.Recorder
	metadata player.Metadata
	frames   *FrameRenderer

	bassMeter Meter
	midMeter  Meter
	bassLevel float64
	midLevel  float64
	lastBoost float64
	beatUntil time.Time

	frame    *image.RGBA
	viz      string
	elapsed  time.Duration
	duration time.Duration
	volume   float64
	paused   bool
	loopMode LoopMode
	width    int
	height   int

	status     string    // transient status message
	statusTime time.Time // when status was set
	assetErr   error
	stopping   bool // recording stop in flight
	quitting   bool
}

// New creates a playback model over an open player and a running engine.
func New(p *player.Player, eng *engine.Engine, rec *export.Recorder, meta player.Metadata) Model {
	return Model{
		player:    p,
		engine:    eng,
		recorder:  rec,
		metadata:  meta,
		frames:    NewFrameRenderer(),
		bassMeter: NewMeter(uiFrameRate),
		midMeter:  NewMeter(uiFrameRate),
		duration:  p.Duration(),
		volume:    p.Volume(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), checkDone(m.player), tea.SetWindowTitle(windowTitle(m.metadata.Title, false)))
}

func checkDone(p *player.Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			return m.shutdown()
		}
		switch msg.String() {
		case " ":
			m.player.TogglePause()
			m.paused = m.player.Paused()
			return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
		case "left", "h":
			m.player.Seek(-5 * time.Second)
		case "right", "l":
			m.player.Seek(5 * time.Second)
		case "up", "k":
			m.player.AdjustVolume(0.05)
			m.volume = m.player.Volume()
		case "down", "j":
			m.player.AdjustVolume(-0.05)
			m.volume = m.player.Volume()
		case "o":
			m.loopMode = m.loopMode.Next()
			return m, nil
		case "r":
			return m.toggleRecording()
		}
		return m, nil

	case recordingStoppedMsg:
		m.stopping = false
		if m.quitting {
			return m.shutdown()
		}
		if msg.err != nil {
			m.status = fmt.Sprintf("Recording failed: %v", msg.err)
		} else {
			m.status = "Saved " + msg.path
		}
		m.statusTime = time.Now()
		return m, nil

	case tickMsg:
		m.elapsed = m.player.Position()
		m.volume = m.player.Volume()
		m.paused = m.player.Paused()

		snap := m.engine.Snapshot()
		m.frame = m.engine.CopyFrame(m.frame)
		m.bassLevel = m.bassMeter.Update(snap.Levels.Bass)
		m.midLevel = m.midMeter.Update(snap.Levels.Mid)
		// Boost only ever rises when a beat fires, so a rise marks a beat
		// even when the UI tick skips over the one-tick Beat flag.
		if snap.Levels.Boost > m.lastBoost+1e-9 {
			m.beatUntil = time.Time(msg).Add(180 * time.Millisecond)
		}
		m.lastBoost = snap.Levels.Boost
		m.assetErr = snap.AssetErr
		m.viz = m.renderViz()

		if m.status != "" && time.Since(m.statusTime) > 5*time.Second {
			m.status = ""
		}
		return m, tickCmd()

	case playbackEndedMsg:
		if m.loopMode == LoopTrack {
			m.player.Restart()
			m.elapsed = 0
			return m, checkDone(m.player)
		}
		m.elapsed = m.duration
		return m.shutdown()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// shutdown tears the session down, finishing any recording first so the
// container gets finalized.
func (m Model) shutdown() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.stopping {
		return m, nil // quit resumes once the recorder reports back
	}
	if m.recorder.Active() {
		m.stopping = true
		return m, stopRecordingCmd(m.recorder)
	}
	m.engine.Stop()
	m.player.Close()
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.stopping {
		return m, nil
	}
	if m.recorder.Active() {
		m.stopping = true
		m.status = "Finishing recording..."
		m.statusTime = time.Now()
		return m, stopRecordingCmd(m.recorder)
	}

	if !export.Available() {
		m.status = "ffmpeg not found, recording disabled"
		m.statusTime = time.Now()
		return m, nil
	}
	if m.frame == nil {
		return m, nil
	}
	b := m.frame.Bounds()
	if err := m.recorder.Start(m.engine, m.player.Tap(), b.Dx(), b.Dy()); err != nil {
		m.status = fmt.Sprintf("Recording failed: %v", err)
	} else {
		m.status = "Recording..."
	}
	m.statusTime = time.Now()
	return m, nil
}

func (m Model) renderViz() string {
	if m.frame == nil {
		return ""
	}
	w, h := m.width, m.height
	if w < 30 {
		w = 60
	}
	if h < chromeRows+4 {
		h = chromeRows + 16
	}
	b := m.frame.Bounds()
	cols, rows := m.frames.Fit(w-4, h-chromeRows, b.Dx(), b.Dy())
	return m.frames.Render(m.frame, cols, rows)
}

func (m Model) View() string {
	if m.quitting {
		if m.stopping {
			return "\n  Finishing recording...\n"
		}
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	header := headerStyle.Render("visualizer")
	if m.recorder.Active() {
		header += "  " + recStyle.Render("● REC")
	}

	title := titleStyle.Render(m.metadata.Title)

	subtitle := ""
	if m.metadata.Artist != "" && m.metadata.Album != "" {
		subtitle = artistStyle.Render(fmt.Sprintf("%s - %s", m.metadata.Artist, m.metadata.Album))
	} else if m.metadata.Artist != "" {
		subtitle = artistStyle.Render(m.metadata.Artist)
	} else if m.metadata.Album != "" {
		subtitle = artistStyle.Render(m.metadata.Album)
	}

	meters := statusStyle.Render("bass") + " " + renderMeter(m.bassLevel, 16) +
		"  " + statusStyle.Render("mid") + " " + renderMeter(m.midLevel, 16)
	if time.Now().Before(m.beatUntil) {
		meters += "  " + recStyle.Render("●")
	}

	elapsedStr := timeStyle.Render(util.FormatDuration(m.elapsed))
	durationStr := timeStyle.Render(util.FormatDuration(m.duration))
	barWidth := w - len(util.FormatDuration(m.elapsed)) - len(util.FormatDuration(m.duration)) - 6
	if barWidth < 10 {
		barWidth = 10
	}
	bar := renderProgressBar(m.elapsed.Seconds(), m.duration.Seconds(), barWidth)
	progressLine := fmt.Sprintf("%s %s %s", elapsedStr, bar, durationStr)

	statusIcon := "▶"
	statusText := "playing"
	if m.paused {
		statusIcon = "❚❚"
		statusText = "paused"
	}
	loopIcon := m.loopMode.Icon()
	volStr := renderVolumePercent(m.volume)

	// Right-align volume
	leftText := fmt.Sprintf("%s  %s", statusIcon, statusText)
	if loopIcon != "" {
		leftText += "  " + loopIcon
	}
	statusLeft := statusStyle.Render(leftText)
	statusRight := statusStyle.Render(volStr)
	gap := w - len(leftText) - len(volStr) - 4
	if gap < 2 {
		gap = 2
	}
	statusLine := fmt.Sprintf("%s%s%s", statusLeft, spaces(gap), statusRight)

	help := helpStyle.Render(helpText(m.recorder.Active()))

	lines := "\n"
	lines += "  " + header + "\n"
	lines += "\n"
	lines += "  " + title + "\n"
	if subtitle != "" {
		lines += "  " + subtitle + "\n"
	}
	lines += "\n"
	if m.viz != "" {
		for _, row := range strings.Split(m.viz, "\n") {
			lines += "  " + row + "\n"
		}
		lines += "\n"
	}
	lines += "  " + meters + "\n"
	lines += "\n"
	lines += "  " + progressLine + "\n"
	lines += "\n"
	lines += "  " + statusLine + "\n"
	if m.status != "" {
		lines += "  " + helpStyle.Render(m.status) + "\n"
	}
	if m.assetErr != nil {
		lines += "  " + errorStyle.Render(fmt.Sprintf("asset error: %v", m.assetErr)) + "\n"
	}
	lines += "\n"
	lines += "  " + help + "\n"

	return lines
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " — visualizer"
	}
	return "▶ " + title + " — visualizer"
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
