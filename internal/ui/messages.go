package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brysonandrew/visualizer/internal/export"
)

// uiFrameRate is how often the playback screen redraws. The engine composes
// at its own rate; each UI tick just shows the latest finished frame.
const uiFrameRate = 20

type tickMsg time.Time
type playbackEndedMsg struct{}
type recordingStoppedMsg struct {
	path string
	err  error
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/uiFrameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func stopRecordingCmd(rec *export.Recorder) tea.Cmd {
	return func() tea.Msg {
		path, err := rec.Stop()
		return recordingStoppedMsg{path: path, err: err}
	}
}
