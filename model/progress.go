package model

import "time"

const ProgressVersion = 1

type AchievementCategory string

const (
	CategoryCompletion  AchievementCategory = "completion"
	CategoryStreak      AchievementCategory = "streak"
	CategorySpeed       AchievementCategory = "speed"
	CategoryExploration AchievementCategory = "exploration"
)

type PageProgress struct {
	PageID         string     `json:"pageId"`
	Path           string     `json:"path"`
	Title          string     `json:"title"`
	Completed      bool       `json:"completed"`
	InProgress     bool       `json:"inProgress"`
	FirstVisited   *time.Time `json:"firstVisited,omitempty"`
	LastVisited    *time.Time `json:"lastVisited,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	TimeSpent      int64      `json:"timeSpent"`      // milliseconds
	MaxScrollDepth int        `json:"maxScrollDepth"` // 0-100
	VisitCount     int        `json:"visitCount"`
}

type SectionProgress struct {
	SectionID            string   `json:"sectionId"`
	SectionName          string   `json:"sectionName"`
	PageIDs              []string `json:"pageIds"`
	CompletedCount       int      `json:"completedCount"`
	TotalCount           int      `json:"totalCount"`
	CompletionPercentage int      `json:"completionPercentage"`
	AverageTimePerPage   float64  `json:"averageTimePerPage"`
}

type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Category    AchievementCategory `json:"category"`
	Unlocked    bool                `json:"unlocked"`
	UnlockedAt  *time.Time          `json:"unlockedAt,omitempty"`
}

type LearningStreak struct {
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	TotalActiveDays  int        `json:"totalActiveDays"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
}

type ProgressStats struct {
	OverallCompletion       int            `json:"overallCompletion"`
	PagesCompleted          int            `json:"pagesCompleted"`
	TotalPages              int            `json:"totalPages"`
	TotalTimeInvested       int64          `json:"totalTimeInvested"`
	AverageTimePerPage      float64        `json:"averageTimePerPage"`
	LearningStreak          LearningStreak `json:"learningStreak"`
	StartDate               *time.Time     `json:"startDate,omitempty"`
	EstimatedCompletionDate *time.Time     `json:"estimatedCompletionDate,omitempty"`
	StrongestAreas          []string       `json:"strongestAreas"`
	LastActivity            *time.Time     `json:"lastActivity,omitempty"`
}

type Preferences struct {
	ShowAnimations              bool  `json:"showAnimations"`
	AutoComplete                bool  `json:"autoComplete"`
	AutoCompleteTimeThreshold   int64 `json:"autoCompleteTimeThreshold"`   // milliseconds
	AutoCompleteScrollThreshold int   `json:"autoCompleteScrollThreshold"` // percent
}

// UserProgress is the single persisted document for the learner profile.
type UserProgress struct {
	Version      int                         `json:"version"`
	Stats        ProgressStats               `json:"stats"`
	Pages        map[string]*PageProgress    `json:"pages"`
	Sections     map[string]*SectionProgress `json:"sections"`
	Achievements []Achievement               `json:"achievements"`
	Preferences  Preferences                 `json:"preferences"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

type ExportMetadata struct {
	ExportDate    time.Time `json:"exportDate" validate:"required"`
	Version       int       `json:"version" validate:"required,min=1"`
	TotalPages    int       `json:"totalPages" validate:"min=0"`
	TotalSections int       `json:"totalSections" validate:"min=0"`
	Checksum      string    `json:"checksum,omitempty" validate:"omitempty,hexadecimal"`
}

type ProgressExport struct {
	Metadata *ExportMetadata `json:"metadata" validate:"required"`
	Progress *UserProgress   `json:"progress" validate:"required"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		ShowAnimations:              true,
		AutoComplete:                true,
		AutoCompleteTimeThreshold:   30000,
		AutoCompleteScrollThreshold: 80,
	}
}

func DefaultUserProgress(now time.Time) *UserProgress {
	return &UserProgress{
		Version: ProgressVersion,
		Stats: ProgressStats{
			TotalPages:     TotalCatalogPages(),
			StrongestAreas: []string{},
		},
		Pages:        map[string]*PageProgress{},
		Sections:     map[string]*SectionProgress{},
		Achievements: []Achievement{},
		Preferences:  DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (p *PageProgress) Clone() *PageProgress {
	if p == nil {
		return nil
	}
	c := *p
	c.FirstVisited = cloneTime(p.FirstVisited)
	c.LastVisited = cloneTime(p.LastVisited)
	c.CompletedAt = cloneTime(p.CompletedAt)
	return &c
}

func (s *SectionProgress) Clone() *SectionProgress {
	if s == nil {
		return nil
	}
	c := *s
	c.PageIDs = append([]string(nil), s.PageIDs...)
	return &c
}

func (a Achievement) Clone() Achievement {
	a.UnlockedAt = cloneTime(a.UnlockedAt)
	return a
}

func (s ProgressStats) Clone() ProgressStats {
	s.LearningStreak.LastActivityDate = cloneTime(s.LearningStreak.LastActivityDate)
	s.StartDate = cloneTime(s.StartDate)
	s.EstimatedCompletionDate = cloneTime(s.EstimatedCompletionDate)
	s.LastActivity = cloneTime(s.LastActivity)
	s.StrongestAreas = append([]string{}, s.StrongestAreas...)
	return s
}

// Clone returns a deep copy that shares no maps, slices or timestamps with p.
func (p *UserProgress) Clone() *UserProgress {
	if p == nil {
		return nil
	}
	c := *p
	c.Stats = p.Stats.Clone()

	c.Pages = make(map[string]*PageProgress, len(p.Pages))
	for id, page := range p.Pages {
		c.Pages[id] = page.Clone()
	}

	c.Sections = make(map[string]*SectionProgress, len(p.Sections))
	for id, section := range p.Sections {
		c.Sections[id] = section.Clone()
	}

	c.Achievements = make([]Achievement, 0, len(p.Achievements))
	for _, a := range p.Achievements {
		c.Achievements = append(c.Achievements, a.Clone())
	}
	return &c
}

// PageUpdate carries the optional fields of a progress update. TimeSpent is a
// delta in milliseconds, added to the stored total.
type PageUpdate struct {
	TimeSpent   *int64
	ScrollDepth *int
	Completed   *bool
	InProgress  *bool
}

type Recommendation struct {
	PageID string `json:"pageId"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}
