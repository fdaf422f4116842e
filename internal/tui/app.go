package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"devops-topics/internal/viewmodel"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeAddTopic
	modeAddSubtopic
	modeEdit
)

const progressBarWidth = 20

type appModel struct {
	list *viewmodel.TopicsList
	keys keyMap
	help help.Model

	input  textinput.Model
	mode   inputMode
	editID string

	cursor int
	width  int
	height int

	status    string
	statusErr bool
}

func newAppModel(list *viewmodel.TopicsList) appModel {
	in := textinput.New()
	in.CharLimit = 200
	in.Width = 40
	in.Prompt = ""

	return appModel{
		list:  list,
		keys:  defaultKeyMap(),
		help:  help.New(),
		input: in,
		width: 80,
	}
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) rows() []row {
	return visibleRows(m.list.PageTopics())
}

func (m appModel) selected() (row, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return row{}, false
	}
	return rows[m.cursor], true
}

func (m *appModel) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *appModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuitCtl) {
			return m, tea.Quit
		}
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m appModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if r, ok := m.selected(); ok {
			m.list.ToggleComplete(r.topic.ID, false)
		}
	case key.Matches(msg, m.keys.ToggleDeep):
		if r, ok := m.selected(); ok {
			m.list.ToggleComplete(r.topic.ID, true)
		}
	case key.Matches(msg, m.keys.Expand):
		if r, ok := m.selected(); ok && r.topic.HasSubtopics() {
			m.list.ToggleExpanded(r.topic.ID)
		}
	case key.Matches(msg, m.keys.AddTopic):
		m.list.StartAddingTopic()
		return m.beginInput(modeAddTopic, "", "New topic name")
	case key.Matches(msg, m.keys.AddSubtopic):
		if r, ok := m.selected(); ok {
			m.list.StartAddingSubtopic(r.topic.ID)
			return m.beginInput(modeAddSubtopic, "", "New subtopic name")
		}
	case key.Matches(msg, m.keys.Edit):
		if r, ok := m.selected(); ok {
			m.list.StartEditingSubtopic(r.topic.ID, r.topic.Name)
			m.editID = r.topic.ID
			return m.beginInput(modeEdit, r.topic.Name, "Name")
		}
	case key.Matches(msg, m.keys.Delete):
		r, ok := m.selected()
		if !ok {
			break
		}
		if !r.isSubtopic() {
			m.setStatus("only subtopics can be deleted", true)
			break
		}
		if err := m.list.DeleteSubtopic(r.parentID, r.topic.ID); err != nil {
			if errors.Is(err, viewmodel.ErrPermissionRequired) {
				m.setStatus("delete requires permission", true)
			} else {
				m.setStatus(err.Error(), true)
			}
		}
	case key.Matches(msg, m.keys.NextPage):
		m.list.NextPage()
		m.cursor = 0
	case key.Matches(msg, m.keys.PrevPage):
		m.list.PreviousPage()
		m.cursor = 0
	case key.Matches(msg, m.keys.LastPage):
		m.list.GoToLastPage()
		m.cursor = 0
	case key.Matches(msg, m.keys.JumpPage):
		if n, err := strconv.Atoi(msg.String()); err == nil {
			m.list.GoToPage(n)
			m.cursor = 0
		}
	}

	m.clampCursor()
	return m, nil
}

func (m appModel) beginInput(mode inputMode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m appModel) endInput() appModel {
	m.mode = modeNormal
	m.editID = ""
	m.input.Blur()
	m.input.SetValue("")
	m.clampCursor()
	return m
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		switch m.mode {
		case modeAddTopic:
			if m.list.AddNewTopic() {
				// The new topic is the last root on the last page.
				m.cursor = m.rowIndexOfRoot(len(m.list.PageTopics()) - 1)
			}
		case modeAddSubtopic:
			m.list.SaveNewSubtopic()
		case modeEdit:
			m.list.SaveSubtopicName(m.editID)
		}
		return m.endInput(), nil
	case key.Matches(msg, m.keys.Cancel):
		switch m.mode {
		case modeAddTopic:
			m.list.CancelAddingTopic()
		case modeAddSubtopic:
			m.list.CancelAddingSubtopic()
		case modeEdit:
			m.list.CancelEditingSubtopic(m.editID)
		}
		return m.endInput(), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	switch m.mode {
	case modeAddTopic:
		m.list.SetNewTopicName(m.input.Value())
	case modeAddSubtopic:
		m.list.SetNewSubtopicName(m.input.Value())
	case modeEdit:
		m.list.SetSubtopicEdit(m.editID, m.input.Value())
	}
	return m, cmd
}

// rowIndexOfRoot maps the i-th root of the current page to its row index.
func (m appModel) rowIndexOfRoot(i int) int {
	seen := -1
	for idx, r := range m.rows() {
		if r.depth == 0 {
			seen++
			if seen == i {
				return idx
			}
		}
	}
	return 0
}

func (m appModel) View() string {
	w := m.width
	if w <= 0 {
		w = 80
	}

	var b strings.Builder
	b.WriteString(m.viewHeader(w))
	b.WriteString("\n\n")

	rows := m.rows()
	if len(rows) == 0 && m.mode != modeAddTopic {
		b.WriteString(styleMuted().Render("No topics yet. Press a to add one."))
		b.WriteString("\n")
	}
	addingFor, addingSub := m.list.AddingSubtopicFor()
	for i, r := range rows {
		if m.mode == modeEdit && r.topic.ID == m.editID {
			b.WriteString(renderInputLine(w, indent(r.depth)+"✎ ", m.input.View()))
			b.WriteString("\n")
		} else {
			b.WriteString(m.viewRow(r, i == m.cursor, w))
			b.WriteString("\n")
		}
		if m.mode == modeAddSubtopic && addingSub && r.topic.ID == addingFor {
			b.WriteString(renderInputLine(w, indent(r.depth+1)+"+ ", m.input.View()))
			b.WriteString("\n")
		}
	}
	if m.mode == modeAddTopic {
		b.WriteString(renderInputLine(w, "+ ", m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewPager())
	b.WriteString("\n")
	if m.status != "" {
		st := styleMuted()
		if m.statusErr {
			st = styleStatusError()
		}
		b.WriteString(st.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m appModel) viewHeader(w int) string {
	pct := m.list.CompletionPercentage()
	filled := pct * progressBarWidth / 100
	bar := styleDone().Render(strings.Repeat(glyphBarFull(), filled)) +
		styleMuted().Render(strings.Repeat(glyphBarEmpty(), progressBarWidth-filled))
	line := styleTitle().Render("DevOps Topics") + "  " + bar + fmt.Sprintf(" %d%% complete", pct)
	return xansi.Truncate(line, w, "…")
}

func (m appModel) viewRow(r row, selected bool, w int) string {
	t := r.topic

	twisty := glyphLeaf()
	if t.HasSubtopics() {
		twisty = glyphTwistyCollapsed()
		if t.Expanded {
			twisty = glyphTwistyExpanded()
		}
	}
	box := glyphUnchecked()
	if t.Completed {
		box = styleDone().Render(glyphChecked())
	}

	name := t.Name
	if t.HasSubtopics() {
		done := 0
		for _, st := range t.Subtopics {
			if st.Completed {
				done++
			}
		}
		name += styleMuted().Render(fmt.Sprintf("  %d/%d", done, len(t.Subtopics)))
	}

	line := indent(r.depth) + twisty + " " + box + " " + styleMuted().Render(t.Number) + " " + name
	line = xansi.Truncate(line, w, "…")
	if selected {
		return styleSelected().Render(line)
	}
	return line
}

func (m appModel) viewPager() string {
	total := m.list.TotalPages()
	if total == 0 {
		return styleMuted().Render("page 0/0")
	}
	parts := make([]string, 0, total+2)
	if m.list.CurrentPage() > 1 {
		parts = append(parts, "‹")
	}
	for _, p := range m.list.PageNumbers() {
		if p == m.list.CurrentPage() {
			parts = append(parts, styleAccent().Render("["+strconv.Itoa(p)+"]"))
			continue
		}
		parts = append(parts, strconv.Itoa(p))
	}
	if m.list.CurrentPage() < total {
		parts = append(parts, "›")
	}
	return strings.Join(parts, " ") + styleMuted().Render(fmt.Sprintf("  page %d/%d", m.list.CurrentPage(), total))
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
