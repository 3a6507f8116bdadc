package seeders

import (
	"fmt"
	"log"
	"time"

	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/services/calculator"
	"github.com/lac-hong-legacy/learning_hub/services/storage"
)

const (
	ProfileStarter  = "starter"
	ProfileStreak   = "streak"
	ProfileComplete = "complete"
)

// MainSeeder writes demo learner profiles into a progress storage.
type MainSeeder struct {
	store *storage.ProgressStorage
	now   time.Time
}

func NewMainSeeder(store *storage.ProgressStorage, now time.Time) *MainSeeder {
	return &MainSeeder{store: store, now: now}
}

// Seed builds the named profile, recomputes derived state and saves it.
func (s *MainSeeder) Seed(profile string) (*model.UserProgress, error) {
	var progress *model.UserProgress
	switch profile {
	case ProfileStarter:
		progress = s.starter()
	case ProfileStreak:
		progress = s.streak()
	case ProfileComplete:
		progress = s.complete()
	default:
		return nil, fmt.Errorf("unknown profile %q", profile)
	}

	unlocked := calculator.Recompute(progress, s.now)
	log.Printf("Seeding %s profile: %d pages, %d%% complete, %d achievements unlocked",
		profile, len(progress.Pages), progress.Stats.OverallCompletion, len(unlocked))

	if !s.store.Save(progress) {
		return nil, fmt.Errorf("seed %s: storage rejected the write", profile)
	}
	return progress, nil
}

func (s *MainSeeder) visit(progress *model.UserProgress, pageID string, at time.Time, spent time.Duration, scroll int, completed bool) {
	descriptor, ok := model.FindPage(pageID)
	if !ok {
		return
	}
	page := calculator.CreatePageProgress(descriptor.ID, descriptor.Path, descriptor.Title, progress.Pages[pageID], at)
	ms := spent.Milliseconds()
	update := model.PageUpdate{TimeSpent: &ms, ScrollDepth: &scroll}
	if completed {
		update.Completed = &completed
	}
	progress.Pages[pageID] = calculator.UpdatePageProgress(page, update, at)
}

// starter has the foundation pages started and one completed.
func (s *MainSeeder) starter() *model.UserProgress {
	start := s.now.Add(-2 * time.Hour)
	progress := model.DefaultUserProgress(start)

	s.visit(progress, "understanding-aws", start, 4*time.Minute, 100, true)
	s.visit(progress, "aws-basics", start.Add(10*time.Minute), 90*time.Second, 40, false)
	s.visit(progress, "home", start.Add(20*time.Minute), 20*time.Second, 10, false)
	return progress
}

// streak completes one page per day for the last eight days.
func (s *MainSeeder) streak() *model.UserProgress {
	start := s.now.AddDate(0, 0, -7)
	progress := model.DefaultUserProgress(start)

	pages := model.Sections[1].Pages
	for day := 0; day < 8 && day < len(pages); day++ {
		at := start.AddDate(0, 0, day)
		s.visit(progress, pages[day].ID, at, 3*time.Minute, 90, true)
	}
	return progress
}

// complete finishes the whole catalog over the last month.
func (s *MainSeeder) complete() *model.UserProgress {
	start := s.now.AddDate(0, 0, -30)
	progress := model.DefaultUserProgress(start)

	i := 0
	for _, section := range model.Sections {
		for _, page := range section.Pages {
			at := start.Add(time.Duration(i) * 29 * time.Hour)
			s.visit(progress, page.ID, at, 2*time.Minute, 100, true)
			i++
		}
	}
	return progress
}
