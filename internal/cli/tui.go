package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/pipeline"
	"github.com/matzehuels/thankstars/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RepoPickerModel - Interactive repository selection
// =============================================================================

// RepoPickerModel is the bubbletea model for choosing which discovered
// repositories to star. Every repository starts out checked.
type RepoPickerModel struct {
	Repos     []discovery.Repository
	Checked   []bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewRepoPickerModel creates a picker with every repository checked.
func NewRepoPickerModel(repos []discovery.Repository) RepoPickerModel {
	checked := make([]bool, len(repos))
	for i := range checked {
		checked[i] = true
	}
	return RepoPickerModel{
		Repos:   repos,
		Checked: checked,
		Height:  15,
	}
}

func (m RepoPickerModel) Init() tea.Cmd {
	return nil
}

func (m RepoPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Repos)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "space", "x":
			if len(m.Repos) > 0 {
				m.Checked[m.Cursor] = !m.Checked[m.Cursor]
			}
		case "a":
			all := m.count() < len(m.Repos)
			for i := range m.Checked {
				m.Checked[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RepoPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Repositories to Star"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all/none  ⏎ confirm  q cancel"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Repos) {
		end = len(m.Repos)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Repos[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = "[x]"
		}
		via := r.Via
		if via == "" {
			via = render.UnknownVia
		}
		rows = append(rows, []string{cursor + box, r.Key(), via})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Repository", "Via").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Repos) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case !m.Checked[idx]:
				return listDimStyle
			case col == 2:
				return listDimStyle
			default:
				return listNormalStyle
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", m.count(), len(m.Repos))))

	return b.String()
}

func (m RepoPickerModel) count() int {
	n := 0
	for _, c := range m.Checked {
		if c {
			n++
		}
	}
	return n
}

// Selection returns the checked repositories in their original order, or
// nothing when the picker was cancelled.
func (m RepoPickerModel) Selection() []discovery.Repository {
	if !m.Confirmed {
		return nil
	}
	var selected []discovery.Repository
	for i, r := range m.Repos {
		if m.Checked[i] {
			selected = append(selected, r)
		}
	}
	return selected
}

// pickRepositories returns a pipeline select stage that runs the picker on
// in/out. Cancelling the picker selects nothing.
func pickRepositories(in io.Reader, out io.Writer) pipeline.SelectFunc {
	return func(ctx context.Context, repos []discovery.Repository) ([]discovery.Repository, error) {
		p := tea.NewProgram(NewRepoPickerModel(repos),
			tea.WithContext(ctx),
			tea.WithInput(in),
			tea.WithOutput(out),
		)
		final, err := p.Run()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("repository picker: %w", err)
		}
		selected := final.(RepoPickerModel).Selection()
		if len(selected) == 0 {
			printWarning(out, "No repositories selected")
		}
		return selected, nil
	}
}
