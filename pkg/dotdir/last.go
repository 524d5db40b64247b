package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lastFile = "last.json"
)

// LastCompletion is the persisted result of the most recent completion.
type LastCompletion struct {
	// Prompt is the full prompt that was sent, including any earlier
	// text it continued from.
	Prompt string `json:"prompt"`

	// Text is the completion text that came back.
	Text string `json:"text"`

	Model       string    `json:"model,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// Continuation returns the prompt for a follow-up completion: the previous
// prompt, its completion, then next.
func (l *LastCompletion) Continuation(next string) string {
	return l.Prompt + l.Text + next
}

// LoadLast loads the last completion from a target .textstream/last.json.
// Returns nil, nil if no completion has been saved.
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadLast(overrideDir string) (*LastCompletion, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, lastFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading last completion: %w", err)
	}

	last := &LastCompletion{}
	if err := json.Unmarshal(data, last); err != nil {
		return nil, fmt.Errorf("parsing last completion: %w", err)
	}

	return last, nil
}

// SaveLast persists the last completion to a target .textstream/last.json.
func (m *Manager) SaveLast(last *LastCompletion, overrideDir string) error {
	if last == nil {
		return errors.New("cannot save nil completion")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(last, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling last completion: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, lastFile), data, 0o600); err != nil {
		return fmt.Errorf("writing last completion: %w", err)
	}

	return nil
}
