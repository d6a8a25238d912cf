package bank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Bank is the persisted, deduplicated collection of accepted questions.
// It is append-only: questions are added or skipped, never edited in place.
// Writes are serialized by an internal mutex (single-writer discipline);
// Questions returns a copy, so concurrent readers are always safe.
type Bank struct {
	path string

	mu        sync.Mutex
	questions []Question
	seen      map[string]struct{}
}

// Load reads the bank file at path. A missing file yields an empty bank;
// any other read or decode failure is an error. Duplicate entries in the
// file are skipped so the in-memory bank always satisfies the hash-unique
// invariant.
func Load(path string) (*Bank, error) {
	b := &Bank{
		path: path,
		seen: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode bank file %s: %w", path, err)
	}

	for _, q := range questions {
		h := Hash(q.Question)
		if _, dup := b.seen[h]; dup {
			continue
		}
		b.seen[h] = struct{}{}
		b.questions = append(b.questions, q)
	}

	return b, nil
}

// Add appends a question unless its normalized text hash is already
// present. It returns true when the question was added, false for an
// exact duplicate, and an error when the question violates the bank
// invariants. Add does not write to disk; call Flush to checkpoint.
func (b *Bank) Add(q Question) (bool, error) {
	if err := q.Validate(); err != nil {
		return false, fmt.Errorf("invalid question: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	h := Hash(q.Question)
	if _, dup := b.seen[h]; dup {
		return false, nil
	}
	b.seen[h] = struct{}{}
	b.questions = append(b.questions, q)
	return true, nil
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.questions)
}

// Questions returns a copy of the bank contents in insertion order.
func (b *Bank) Questions() []Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Contains reports whether a question with the same normalized text is
// already in the bank.
func (b *Bank) Contains(questionText string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.seen[Hash(questionText)]
	return ok
}

// Flush rewrites the whole bank file atomically: the JSON array is written
// to a temp file in the same directory and renamed over the target, so a
// concurrent reader never observes a partially written bank.
func (b *Bank) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create bank directory: %w", err)
	}

	questions := b.questions
	if questions == nil {
		questions = []Question{}
	}
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bank: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".bank-*.json")
	if err != nil {
		return fmt.Errorf("create temp bank file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp bank file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp bank file: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace bank file: %w", err)
	}
	return nil
}

// Path returns the on-disk location of the bank file.
func (b *Bank) Path() string {
	return b.path
}
