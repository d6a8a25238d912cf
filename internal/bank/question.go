package bank

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Difficulty is the exam difficulty tier of a question.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// OptionLabels are the four answer labels every question must carry.
var OptionLabels = []string{"A", "B", "C", "D"}

// Question is a single multiple-choice question as persisted in the bank.
// Once accepted a question is never edited, only appended or skipped.
type Question struct {
	// Question is the question text shown to the examinee.
	Question string `json:"question"`

	// QuestionES is an optional localized variant, preferred when building
	// retrieval queries for explanations.
	QuestionES string `json:"question_es,omitempty"`

	// Options maps the labels A-D to option text. All four must be present.
	Options map[string]string `json:"options"`

	// CorrectAnswer is the label of the correct option, one of A-D.
	CorrectAnswer string `json:"correct_answer"`

	// Explanation is an optional rationale produced at generation time.
	Explanation string `json:"explanation,omitempty"`

	// TopicName is an optional topic tag, e.g. "Speed limits".
	TopicName string `json:"topic_name,omitempty"`

	// Source names the corpus document the question was generated from.
	Source string `json:"source,omitempty"`

	// Difficulty is one of easy/medium/hard. Empty means medium.
	Difficulty Difficulty `json:"difficulty,omitempty"`
}

// EffectiveDifficulty returns the question's difficulty, defaulting to medium.
func (q Question) EffectiveDifficulty() Difficulty {
	switch q.Difficulty {
	case Easy, Medium, Hard:
		return q.Difficulty
	default:
		return Medium
	}
}

// Validate checks the bank invariants: exactly four options labeled A-D and
// a correct answer that names one of them.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != len(OptionLabels) {
		return fmt.Errorf("expected %d options, got %d", len(OptionLabels), len(q.Options))
	}
	for _, label := range OptionLabels {
		text, ok := q.Options[label]
		if !ok {
			return fmt.Errorf("missing option %q", label)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("option %q is empty", label)
		}
	}
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		return fmt.Errorf("correct_answer %q is not an option label", q.CorrectAnswer)
	}
	if q.Difficulty != "" && q.Difficulty != Easy && q.Difficulty != Medium && q.Difficulty != Hard {
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	return nil
}

// Normalize canonicalizes question text for identity purposes: surrounding
// whitespace trimmed, inner runs of whitespace collapsed, lowercased.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Hash returns the identity hash of a question text: the SHA-256 hex digest
// of its normalized form.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}
