package tui

import (
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/exam"
)

func testEngine(n int) *exam.Engine {
	qs := make([]bank.Question, n)
	for i := range qs {
		qs[i] = bank.Question{
			Question:      fmt.Sprintf("question %d", i),
			Options:       map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"},
			CorrectAnswer: "B",
			Difficulty:    bank.Medium,
		}
	}
	return exam.New(qs, nil)
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func enter() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}

func TestNewSamplesExam(t *testing.T) {
	m, err := New(testEngine(10), bank.Medium, 3)
	require.NoError(t, err)
	assert.Len(t, m.questions, 3)
	assert.Equal(t, phaseAnswering, m.phase)
}

func TestNewFailsOnEmptyBank(t *testing.T) {
	_, err := New(exam.New(nil, nil), bank.Medium, 3)
	require.Error(t, err)
}

func TestNavigationAndDirectSelection(t *testing.T) {
	m, err := New(testEngine(10), bank.Medium, 3)
	require.NoError(t, err)

	next, _ := m.Update(keyPress('j'))
	m = next.(Model)
	assert.Equal(t, 1, m.selected)

	next, _ = m.Update(keyPress('d'))
	m = next.(Model)
	assert.Equal(t, 3, m.selected)

	next, _ = m.Update(keyPress('k'))
	m = next.(Model)
	assert.Equal(t, 2, m.selected)
}

func TestEnterRecordsAnswerAndAdvances(t *testing.T) {
	m, err := New(testEngine(10), bank.Medium, 3)
	require.NoError(t, err)

	next, _ := m.Update(keyPress('b'))
	m = next.(Model)
	next, _ = m.Update(enter())
	m = next.(Model)

	assert.Equal(t, 1, m.idx)
	assert.Equal(t, []string{"B"}, m.answers)
	assert.Zero(t, m.selected, "selection resets for the next question")
}

func TestFinalAnswerStartsGrading(t *testing.T) {
	m, err := New(testEngine(10), bank.Medium, 2)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		next, _ := m.Update(keyPress('a'))
		m = next.(Model)
		next, cmd := m.Update(enter())
		m = next.(Model)
		if i == 1 {
			assert.Equal(t, phaseGrading, m.phase)
			require.NotNil(t, cmd)
		}
	}
}

func TestGradedMsgShowsResults(t *testing.T) {
	m, err := New(testEngine(10), bank.Medium, 2)
	require.NoError(t, err)
	m.answers = []string{"B", "A"}

	next, _ := m.Update(gradedMsg{
		score:   1,
		results: []exam.ItemResult{{Correct: true}, {Correct: false, Explanation: "rule text"}},
		next:    bank.Easy,
	})
	m = next.(Model)

	assert.Equal(t, phaseResults, m.phase)
	assert.Equal(t, 1, m.score)
	assert.Equal(t, bank.Easy, m.next)

	out := m.renderResults()
	assert.Contains(t, out, "Score: 1/2")
	assert.Contains(t, out, "Next level: easy")
	assert.Contains(t, out, "rule text")
}

func TestQuitKey(t *testing.T) {
	m, err := New(testEngine(10), bank.Medium, 2)
	require.NoError(t, err)

	_, cmd := m.Update(keyPress('q'))
	require.NotNil(t, cmd)
}

func TestRenderQuestionShowsProgress(t *testing.T) {
	m, err := New(testEngine(10), bank.Hard, 5)
	require.NoError(t, err)

	out := m.renderQuestion()
	assert.Contains(t, out, "question 1/5")
	assert.Contains(t, out, "level hard")
}
