package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Animation frame rate
const (
	AnimationFPS    = 30
	AnimationTickMs = 1000 / AnimationFPS // ~33ms
	PressFlashDur   = 6                   // 6 frames = 200ms
)

// Flash targets
const (
	FlashConnect   = "connect"
	FlashRevoke    = "revoke"
	FlashLongPress = "longpress"
)

// Flash is the press feedback on one row.
// Frames only advance while it is active, so the program is idle otherwise.
type Flash struct {
	Index     int
	Target    string
	Frame     int
	MaxFrames int
	Active    bool
}

// Trigger starts a flash on row index
func (f *Flash) Trigger(index int, target string) {
	*f = Flash{
		Index:     index,
		Target:    target,
		MaxFrames: PressFlashDur,
		Active:    true,
	}
}

// Tick advances one frame and reports whether another tick is needed
func (f *Flash) Tick() bool {
	if !f.Active {
		return false
	}
	f.Frame++
	if f.Frame >= f.MaxFrames {
		f.Active = false
	}
	return f.Active
}

// On reports whether row index is flashing target
func (f Flash) On(index int, target string) bool {
	return f.Active && f.Index == index && f.Target == target
}

// AnimationTickMsg is sent on each animation frame
type AnimationTickMsg time.Time

// AnimationTickCmd creates the tick command for animations
func AnimationTickCmd() tea.Cmd {
	return tea.Tick(time.Duration(AnimationTickMs)*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}
