package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/shared"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidProgress = errors.New("invalid progress document")

type storedPreferences struct {
	ShowAnimations              *bool  `json:"showAnimations"`
	AutoComplete                *bool  `json:"autoComplete"`
	AutoCompleteTimeThreshold   *int64 `json:"autoCompleteTimeThreshold"`
	AutoCompleteScrollThreshold *int   `json:"autoCompleteScrollThreshold"`
}

// storedProgress mirrors model.UserProgress with optional fields so that a
// missing field can be told apart from a zero one.
type storedProgress struct {
	Version      *int                              `json:"version"`
	Stats        *model.ProgressStats              `json:"stats"`
	Pages        map[string]*model.PageProgress    `json:"pages"`
	Sections     map[string]*model.SectionProgress `json:"sections"`
	Achievements []model.Achievement               `json:"achievements"`
	Preferences  *storedPreferences                `json:"preferences"`
	CreatedAt    *time.Time                        `json:"createdAt"`
	UpdatedAt    *time.Time                        `json:"updatedAt"`
}

// DecodeProgress parses a stored blob and brings it to the current schema.
func DecodeProgress(data []byte, now time.Time) (*model.UserProgress, error) {
	var stored storedProgress
	if err := shared.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProgress, err)
	}
	return migrateStored(&stored, now), nil
}

func migrateStored(stored *storedProgress, now time.Time) *model.UserProgress {
	progress := model.DefaultUserProgress(now)

	if stored.Version != nil && *stored.Version > model.ProgressVersion {
		log.WithFields(log.Fields{
			"stored_version":  *stored.Version,
			"current_version": model.ProgressVersion,
		}).Warn("Stored progress has a newer schema version, defaulting unknown fields")
	}

	if stored.Stats != nil {
		progress.Stats = *stored.Stats
	}
	if stored.Pages != nil {
		progress.Pages = stored.Pages
	}
	if stored.Sections != nil {
		progress.Sections = stored.Sections
	}
	if stored.Achievements != nil {
		progress.Achievements = stored.Achievements
	}

	if prefs := stored.Preferences; prefs != nil {
		if prefs.ShowAnimations != nil {
			progress.Preferences.ShowAnimations = *prefs.ShowAnimations
		}
		if prefs.AutoComplete != nil {
			progress.Preferences.AutoComplete = *prefs.AutoComplete
		}
		if prefs.AutoCompleteTimeThreshold != nil {
			progress.Preferences.AutoCompleteTimeThreshold = *prefs.AutoCompleteTimeThreshold
		}
		if prefs.AutoCompleteScrollThreshold != nil {
			progress.Preferences.AutoCompleteScrollThreshold = *prefs.AutoCompleteScrollThreshold
		}
	}

	if stored.CreatedAt != nil && !stored.CreatedAt.IsZero() {
		progress.CreatedAt = *stored.CreatedAt
	}
	progress.UpdatedAt = progress.CreatedAt
	if stored.UpdatedAt != nil && !stored.UpdatedAt.IsZero() {
		progress.UpdatedAt = *stored.UpdatedAt
	}

	return normalize(progress)
}

// MigrateProgress brings an already decoded document to the current schema.
// The input is not modified.
func MigrateProgress(p *model.UserProgress, now time.Time) *model.UserProgress {
	if p == nil {
		return model.DefaultUserProgress(now)
	}
	progress := p.Clone()

	defaults := model.DefaultPreferences()
	if progress.Preferences == (model.Preferences{}) {
		progress.Preferences = defaults
	}
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = now
	}
	if progress.UpdatedAt.IsZero() {
		progress.UpdatedAt = progress.CreatedAt
	}
	return normalize(progress)
}

func normalize(p *model.UserProgress) *model.UserProgress {
	p.Version = model.ProgressVersion
	p.Stats.TotalPages = model.TotalCatalogPages()
	if p.Stats.StrongestAreas == nil {
		p.Stats.StrongestAreas = []string{}
	}

	if p.Pages == nil {
		p.Pages = map[string]*model.PageProgress{}
	}
	for id, page := range p.Pages {
		if page == nil {
			delete(p.Pages, id)
			continue
		}
		if page.PageID == "" {
			page.PageID = id
		}
	}

	if p.Sections == nil {
		p.Sections = map[string]*model.SectionProgress{}
	}
	for id, section := range p.Sections {
		if section == nil {
			delete(p.Sections, id)
			continue
		}
		if section.PageIDs == nil {
			section.PageIDs = []string{}
		}
	}

	if p.Achievements == nil {
		p.Achievements = []model.Achievement{}
	}

	defaults := model.DefaultPreferences()
	if p.Preferences.AutoCompleteTimeThreshold <= 0 {
		p.Preferences.AutoCompleteTimeThreshold = defaults.AutoCompleteTimeThreshold
	}
	if p.Preferences.AutoCompleteScrollThreshold <= 0 || p.Preferences.AutoCompleteScrollThreshold > 100 {
		p.Preferences.AutoCompleteScrollThreshold = defaults.AutoCompleteScrollThreshold
	}
	return p
}

// validateProgress checks the shape of an imported document before it is
// allowed to replace stored state.
func validateProgress(p *model.UserProgress) error {
	if p == nil {
		return fmt.Errorf("%w: missing progress", ErrInvalidProgress)
	}
	if p.Version < 0 {
		return fmt.Errorf("%w: negative version", ErrInvalidProgress)
	}
	if p.Pages == nil || p.Sections == nil || p.Achievements == nil {
		return fmt.Errorf("%w: missing collections", ErrInvalidProgress)
	}
	for id, page := range p.Pages {
		if page == nil {
			return fmt.Errorf("%w: page %q is null", ErrInvalidProgress, id)
		}
		if page.TimeSpent < 0 || page.VisitCount < 0 {
			return fmt.Errorf("%w: page %q has negative counters", ErrInvalidProgress, id)
		}
		if page.MaxScrollDepth < 0 || page.MaxScrollDepth > 100 {
			return fmt.Errorf("%w: page %q scroll depth out of range", ErrInvalidProgress, id)
		}
	}
	for _, a := range p.Achievements {
		if a.ID == "" {
			return fmt.Errorf("%w: achievement without id", ErrInvalidProgress)
		}
	}
	return nil
}
