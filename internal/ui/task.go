package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotimine/internal/tasks"
)

// ProgressLine renders update as a bar followed by its message.
func ProgressLine(bar progress.Model, update tasks.ProgressUpdate) string {
	if update.Message == "" {
		return bar.ViewAs(update.Fraction())
	}
	return fmt.Sprintf("%s  %s", bar.ViewAs(update.Fraction()), update.Message)
}

// taskModel shows progress updates of a running task until it reports completion.
type taskModel struct {
	title     string
	bar       progress.Model
	updates   <-chan tasks.ProgressUpdate
	done      <-chan error
	update    tasks.ProgressUpdate
	keys      keyMap
	finished  bool
	cancelled bool
	err       error
}

func newTaskModel(title string, updates <-chan tasks.ProgressUpdate, done <-chan error) *taskModel {
	return &taskModel{
		title:   title,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		updates: updates,
		done:    done,
		keys:    newKeyMap(),
	}
}

func (m *taskModel) Init() tea.Cmd {
	return m.waitForProgress()
}

// waitForProgress reads the next update. Once the update channel is closed the task result is read.
func (m *taskModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return taskCompleteMsg(<-m.done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.cancelled = true
			return m, tea.Quit
		}
	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.update = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForProgress()
		case MsgTaskComplete:
			m.finished = true
			m.err, _ = msg.data.(error)
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *taskModel) View() string {
	if m.finished {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n", styles.title.Render(m.title), ProgressLine(m.bar, m.update))
}
