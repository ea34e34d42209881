package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/specmark/specmark/internal/infrastructure/wiring"
	"github.com/specmark/specmark/pkg/domain/checkbox"
	"github.com/specmark/specmark/pkg/domain/document"
)

var boardCmd = &cobra.Command{
	Use:   "board [spec-id]",
	Short: "Interactive TUI checklist board",
	Long: `Board opens an interactive checklist view. Without a spec id it
shows every discovered spec's items.

Keys:
  space    toggle the selected item
  u        undo the last change
  r        redo
  q        quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		onlySpec := 0
		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid spec id %q", args[0])
			}
			onlySpec = id
		}
		ws, err := currentWorkspace()
		if err != nil {
			return err
		}
		m, err := newBoardModel(ws, onlySpec)
		if err != nil {
			return MapError(err)
		}
		p := tea.NewProgram(m)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("board run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(boardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var boardHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var boardErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type boardModel struct {
	ws       *wiring.Workspace
	onlySpec int
	table    table.Model
	ids      []document.ItemID // parallel to table rows
	status   string
	err      error
}

func newBoardModel(ws *wiring.Workspace, onlySpec int) (*boardModel, error) {
	m := &boardModel{ws: ws, onlySpec: onlySpec}
	if _, err := ws.Tracking.LoadAll(); err != nil {
		return nil, err
	}

	columns := []table.Column{
		{Title: "Done", Width: 4},
		{Title: "Spec", Width: 4},
		{Title: "Section", Width: 24},
		{Title: "Item", Width: 48},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(16),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	m.table = t
	if err := m.refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// refresh rebuilds the table rows from tracker state, keeping the cursor.
func (m *boardModel) refresh() error {
	entries, err := m.ws.Repo.Discover()
	if err != nil {
		return err
	}

	var rows []table.Row
	var ids []document.ItemID
	for _, e := range entries {
		if m.onlySpec != 0 && e.SpecID != m.onlySpec {
			continue
		}
		items, err := m.ws.Tracking.Checkboxes(e.SpecID)
		if err != nil {
			return err
		}
		for _, item := range items {
			rows = append(rows, table.Row{mark(item.Checked), strconv.Itoa(e.SpecID), item.Section, item.Text})
			ids = append(ids, item.ID)
		}
	}

	cursor := m.table.Cursor()
	m.table.SetRows(rows)
	if cursor < len(rows) {
		m.table.SetCursor(cursor)
	}
	m.ids = ids
	return nil
}

func (m *boardModel) Init() tea.Cmd { return nil }

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.toggleSelected()
			return m, nil
		case "u":
			m.applyHistory(m.ws.Tracking.Undo)
			return m, nil
		case "r":
			m.applyHistory(m.ws.Tracking.Redo)
			return m, nil
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *boardModel) toggleSelected() {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.ids) {
		return
	}
	change, err := m.ws.Tracking.Toggle(m.ids[cursor], checkbox.SourceBoard)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = fmt.Sprintf("toggled %s -> %s", change.Item, mark(change.NewState))
	if err := m.refresh(); err != nil {
		m.err = err
	}
}

func (m *boardModel) applyHistory(step func() (*checkbox.Change, error)) {
	change, err := step()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	if change == nil {
		m.status = "nothing to do"
		return
	}
	m.status = fmt.Sprintf("%s %s -> %s", change.Source, change.Item, mark(change.NewState))
	if err := m.refresh(); err != nil {
		m.err = err
	}
}

func (m *boardModel) View() string {
	header := boardHeaderStyle.Render("specmark board")
	if m.onlySpec != 0 {
		header = boardHeaderStyle.Render(fmt.Sprintf("specmark board: spec %d", m.onlySpec))
	}

	footer := "[space] Toggle  [u] Undo  [r] Redo  [q] Quit"
	if m.status != "" {
		footer = m.status + "\n" + footer
	}
	if m.err != nil {
		footer = boardErrStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n" + footer
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.table.View(),
			footer,
		),
	) + "\n"
}
