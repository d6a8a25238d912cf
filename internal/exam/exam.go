package exam

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/vialex/vialex/internal/bank"
)

const (
	// DefaultSize is the standard exam length. The level transition
	// thresholds below are fixed fractions of this size.
	DefaultSize = 30

	promoteScore = 26
	demoteScore  = 18

	retrievalTopK = 8
)

// fallbackExplanation is used when retrieval yields no clean grounding.
const fallbackExplanation = "According to traffic regulations, the selected answer does not comply with the correct rule."

// ErrLengthMismatch is returned by Grade when the answer sheet does not
// line up with the exam.
var ErrLengthMismatch = errors.New("exam and answers have different lengths")

// Grounder supplies regulation text to base explanations on.
type Grounder interface {
	Retrieve(ctx context.Context, query string, k int) (string, error)
}

// ItemResult is the graded outcome of one exam question.
type ItemResult struct {
	Correct     bool            `json:"correct"`
	Difficulty  bank.Difficulty `json:"difficulty"`
	Explanation string          `json:"explanation"`
}

// Engine samples exams from the bank and grades submissions.
type Engine struct {
	questions []bank.Question
	buckets   map[bank.Difficulty][]bank.Question
	grounder  Grounder
}

// New builds an Engine over the given questions. The grounder may be nil,
// in which case wrong answers get the generic fallback explanation.
func New(questions []bank.Question, grounder Grounder) *Engine {
	e := &Engine{
		questions: questions,
		buckets:   make(map[bank.Difficulty][]bank.Question),
		grounder:  grounder,
	}
	for _, q := range questions {
		d := q.EffectiveDifficulty()
		e.buckets[d] = append(e.buckets[d], q)
	}
	return e
}

// Buckets reports the bucket sizes, for stats output.
func (e *Engine) Buckets() map[bank.Difficulty]int {
	out := make(map[bank.Difficulty]int, len(e.buckets))
	for d, qs := range e.buckets {
		out[d] = len(qs)
	}
	return out
}

// weights is the per-level difficulty mix.
var weights = map[bank.Difficulty]map[bank.Difficulty]float64{
	bank.Easy:   {bank.Easy: 0.7, bank.Medium: 0.3, bank.Hard: 0.0},
	bank.Medium: {bank.Easy: 0.3, bank.Medium: 0.5, bank.Hard: 0.2},
	bank.Hard:   {bank.Easy: 0.1, bank.Medium: 0.4, bank.Hard: 0.5},
}

// Generate samples an exam of n questions for the given level.
//
// For each bucket it draws floor(n·weight) questions without replacement,
// capped by bucket size. Rounding loss and small buckets are topped up
// with uniform draws (with replacement) from the whole bank. The combined
// sequence is shuffled and truncated to exactly n.
func (e *Engine) Generate(level bank.Difficulty, n int) ([]bank.Question, error) {
	if len(e.questions) == 0 {
		return nil, errors.New("question bank is empty")
	}
	if n <= 0 {
		n = DefaultSize
	}

	w, ok := weights[level]
	if !ok {
		w = weights[bank.Medium]
	}

	var exam []bank.Question
	for _, d := range []bank.Difficulty{bank.Easy, bank.Medium, bank.Hard} {
		bucket := e.buckets[d]
		count := min(int(float64(n)*w[d]), len(bucket))
		if count <= 0 {
			continue
		}
		exam = append(exam, sample(bucket, count)...)
	}

	for len(exam) < n {
		exam = append(exam, e.questions[rand.IntN(len(e.questions))])
	}

	rand.Shuffle(len(exam), func(i, j int) {
		exam[i], exam[j] = exam[j], exam[i]
	})
	return exam[:n], nil
}

// Grade scores a submitted answer sheet against its exam. Answers must be
// option labels (A–D); any mismatch in length fails before grading.
func (e *Engine) Grade(ctx context.Context, exam []bank.Question, answers []string) (int, []ItemResult, error) {
	if len(exam) != len(answers) {
		return 0, nil, fmt.Errorf("%w: %d questions, %d answers",
			ErrLengthMismatch, len(exam), len(answers))
	}

	score := 0
	results := make([]ItemResult, 0, len(exam))

	for i, q := range exam {
		res := ItemResult{Difficulty: q.EffectiveDifficulty()}

		if answers[i] == q.CorrectAnswer {
			res.Correct = true
			score++
		} else {
			res.Explanation = e.explain(ctx, q)
		}
		results = append(results, res)
	}

	return score, results, nil
}

// explain builds a retrieval-grounded rationale for a wrong answer. The
// Spanish question variant is the better retrieval key against the BOE
// corpus when it exists.
func (e *Engine) explain(ctx context.Context, q bank.Question) string {
	if e.grounder == nil {
		return fallbackExplanation
	}

	query := q.QuestionES
	if query == "" {
		query = fmt.Sprintf("%s Correct answer: %s", q.Question, q.CorrectAnswer)
	}

	grounding, err := e.grounder.Retrieve(ctx, query, retrievalTopK)
	if err != nil || grounding == "" {
		return fallbackExplanation
	}

	return fmt.Sprintf("The correct answer is %s: %s. Relevant regulation:\n%s",
		q.CorrectAnswer, q.Options[q.CorrectAnswer], grounding)
}

// NextLevel maps a score to the next difficulty level. The transition is
// absolute: the current level never changes the outcome.
func NextLevel(score int, current bank.Difficulty) bank.Difficulty {
	switch {
	case score >= promoteScore:
		return bank.Hard
	case score <= demoteScore:
		return bank.Easy
	default:
		return bank.Medium
	}
}

// sample draws count distinct questions from bucket.
func sample(bucket []bank.Question, count int) []bank.Question {
	idx := rand.Perm(len(bucket))[:count]
	out := make([]bank.Question, count)
	for i, j := range idx {
		out[i] = bucket[j]
	}
	return out
}
