// Package session carries the last score between commands.
//
// The store behind it is injected through Bridge: a string-keyed get/set
// interface. Persist overwrites both keys wholesale and Restore treats any
// missing or unreadable entry as "no results".
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spigell/resume-scorer/internal/scorer"
)

const (
	KeyScoreResponse  = "scoreResponse"
	KeyResumeFileName = "resumeFileName"
)

// Bridge is a string-keyed store.
type Bridge interface {
	// Get returns the value and whether the key is present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Saved is what Restore hands back.
type Saved struct {
	Response *scorer.ScoreResponse
	FileName string
}

// Persist stores resp and fileName, replacing whatever was saved before.
func Persist(bridge Bridge, resp *scorer.ScoreResponse, fileName string) error {
	if resp == nil {
		return fmt.Errorf("nothing to persist")
	}

	normalized := *resp
	if normalized.TopKeywords == nil {
		normalized.TopKeywords = []string{}
	}
	if normalized.SkillsMatched == nil {
		normalized.SkillsMatched = []string{}
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("encoding score response: %w", err)
	}

	if batch, ok := bridge.(BatchSetter); ok {
		err := batch.SetMany(map[string]string{
			KeyScoreResponse:  string(data),
			KeyResumeFileName: fileName,
		})
		if err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		return nil
	}

	// Without a batch write the file name goes first and the response last,
	// so a failure never pairs the new response with the old name.
	previousName, _, err := bridge.Get(KeyResumeFileName)
	if err != nil {
		return fmt.Errorf("reading resume file name: %w", err)
	}

	if err := bridge.Set(KeyResumeFileName, fileName); err != nil {
		return fmt.Errorf("saving resume file name: %w", err)
	}

	if err := bridge.Set(KeyScoreResponse, string(data)); err != nil {
		err = fmt.Errorf("saving score response: %w", err)
		if rollbackErr := bridge.Set(KeyResumeFileName, previousName); rollbackErr != nil {
			return errors.Join(err, fmt.Errorf("restoring resume file name: %w", rollbackErr))
		}
		return err
	}

	return nil
}

// Restore loads the last saved score. Anything absent, unreadable or
// malformed yields (nil, false).
func Restore(bridge Bridge) (*Saved, bool) {
	if bridge == nil {
		return nil, false
	}

	raw, ok, err := bridge.Get(KeyScoreResponse)
	if err != nil || !ok || raw == "" {
		return nil, false
	}

	resp, err := scorer.DecodeScoreResponse([]byte(raw))
	if err != nil {
		return nil, false
	}

	saved := &Saved{Response: resp}
	if name, ok, err := bridge.Get(KeyResumeFileName); err == nil && ok {
		saved.FileName = name
	}

	return saved, true
}
