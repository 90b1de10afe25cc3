package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotimine/internal/spotify"
)

// pickerModel is a filterable playlist list. choice is -1 until a playlist is selected.
type pickerModel struct {
	list   list.Model
	help   help.Model
	keys   keyMap
	choice int
}

func newPickerModel(title string, playlists []*spotify.Playlist) *pickerModel {
	l := list.New(playlistItems(playlists), list.NewDefaultDelegate(), 80, 20)
	l.Title = title
	l.SetShowHelp(false)
	return &pickerModel{list: l, help: help.New(), keys: newKeyMap(), choice: -1}
}

func (m *pickerModel) Init() tea.Cmd {
	return nil
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.list.SelectedItem().(playlistItem); ok {
				m.choice = item.index
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *pickerModel) View() string {
	return fmt.Sprintf("%s\n%s", m.list.View(), styles.help.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
}
