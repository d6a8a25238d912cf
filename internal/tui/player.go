package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/exam"
)

// Color palette
var (
	colorPrimary = lipgloss.Color("#F59E0B") // Amber
	colorSuccess = lipgloss.Color("#22C55E") // Green
	colorError   = lipgloss.Color("#F43F5E") // Rose
	colorText    = lipgloss.Color("#F8FAFC") // White
	colorDim     = lipgloss.Color("#94A3B8") // Slate
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	correctStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	wrongStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	hintStyle     = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
)

type phase int

const (
	phaseAnswering phase = iota
	phaseGrading
	phaseResults
)

type gradedMsg struct {
	score   int
	results []exam.ItemResult
	next    bank.Difficulty
	err     error
}

// Model is the interactive exam player.
type Model struct {
	engine    *exam.Engine
	level     bank.Difficulty
	questions []bank.Question
	answers   []string

	phase    phase
	idx      int
	selected int
	spin     spinner.Model

	score   int
	results []exam.ItemResult
	next    bank.Difficulty
	err     error

	width  int
	height int
}

// New samples an exam from the engine and builds the player model.
func New(engine *exam.Engine, level bank.Difficulty, size int) (Model, error) {
	questions, err := engine.Generate(level, size)
	if err != nil {
		return Model{}, err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		engine:    engine,
		level:     level,
		questions: questions,
		spin:      sp,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.phase == phaseGrading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case gradedMsg:
		m.phase = phaseResults
		m.score = msg.score
		m.results = msg.results
		m.next = msg.next
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	}

	if m.phase != phaseAnswering {
		return m, nil
	}

	switch key {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(bank.OptionLabels)-1 {
			m.selected++
		}
	case "a", "b", "c", "d":
		m.selected = int(key[0] - 'a')
	case "enter":
		m.answers = append(m.answers, bank.OptionLabels[m.selected])
		m.selected = 0
		m.idx++
		if m.idx >= len(m.questions) {
			m.phase = phaseGrading
			return m, tea.Batch(m.spin.Tick, m.gradeCmd())
		}
	}

	return m, nil
}

// gradeCmd grades off the UI goroutine: explanations hit the vector
// index, which takes a moment per wrong answer.
func (m Model) gradeCmd() tea.Cmd {
	questions := m.questions
	answers := m.answers
	engine := m.engine
	level := m.level

	return func() tea.Msg {
		score, results, err := engine.Grade(context.Background(), questions, answers)
		return gradedMsg{
			score:   score,
			results: results,
			next:    exam.NextLevel(score, level),
			err:     err,
		}
	}
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	switch m.phase {
	case phaseGrading:
		v.SetContent(fmt.Sprintf("\n  %s Grading your exam...\n", m.spin.View()))
	case phaseResults:
		v.SetContent(m.renderResults())
	default:
		v.SetContent(m.renderQuestion())
	}
	return v
}

func (m Model) renderQuestion() string {
	q := m.questions[m.idx]

	var b strings.Builder
	b.WriteString(titleStyle.Render("Traffic Theory Exam"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  ·  level %s  ·  question %d/%d",
		m.level, m.idx+1, len(m.questions))))
	b.WriteString("\n\n")
	b.WriteString(questionStyle.Render(q.Question))
	b.WriteString("\n\n")

	for i, label := range bank.OptionLabels {
		line := fmt.Sprintf("  %s)  %s", label, q.Options[label])
		if i == m.selected {
			b.WriteString(selectedStyle.Render("▸" + line[1:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("↑↓/a-d select · enter confirm · q quit"))
	return b.String()
}

func (m Model) renderResults() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(wrongStyle.Render("Grading failed: " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("q to quit"))
		return b.String()
	}

	b.WriteString(titleStyle.Render("Results"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Score: %d/%d\n", m.score, len(m.questions)))
	b.WriteString(fmt.Sprintf("Next level: %s\n\n", m.next))

	for i, r := range m.results {
		q := m.questions[i]
		if r.Correct {
			b.WriteString(correctStyle.Render(fmt.Sprintf("✓ %d. %s", i+1, q.Question)))
			b.WriteString("\n")
			continue
		}
		b.WriteString(wrongStyle.Render(fmt.Sprintf("✗ %d. %s", i+1, q.Question)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("   your answer: %s · correct: %s",
			m.answers[i], q.CorrectAnswer)))
		b.WriteString("\n")
		if r.Explanation != "" {
			b.WriteString(dimStyle.Render("   " + firstLine(r.Explanation)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("q to quit"))
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Run starts the exam player.
func Run(engine *exam.Engine, level bank.Difficulty, size int) error {
	m, err := New(engine, level, size)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}
