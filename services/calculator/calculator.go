// Package calculator derives section, stats, streak and achievement state from
// the raw page map. Every function is pure; the current time is passed in.
package calculator

import (
	"fmt"
	"math"
	"sort"
	"time"

	calendar "github.com/jinzhu/now"
	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/shared"
)

const unknownSectionName = "Unknown Section"

// SectionProgress rolls up one catalog section. The catalog page count is always
// the denominator; average time is taken over pages present in the map.
func SectionProgress(sectionID string, pages map[string]*model.PageProgress) *model.SectionProgress {
	section, ok := model.FindSection(sectionID)
	if !ok {
		return &model.SectionProgress{
			SectionID:   sectionID,
			SectionName: unknownSectionName,
			PageIDs:     []string{},
		}
	}

	result := &model.SectionProgress{
		SectionID:   section.ID,
		SectionName: section.Name,
		PageIDs:     make([]string, 0, len(section.Pages)),
		TotalCount:  len(section.Pages),
	}

	var totalTime int64
	present := 0
	for _, descriptor := range section.Pages {
		result.PageIDs = append(result.PageIDs, descriptor.ID)

		page, ok := pages[descriptor.ID]
		if !ok || page == nil {
			continue
		}
		present++
		totalTime += page.TimeSpent
		if page.Completed {
			result.CompletedCount++
		}
	}

	if result.TotalCount > 0 {
		result.CompletionPercentage = roundPercent(result.CompletedCount, result.TotalCount)
	}
	if present > 0 {
		result.AverageTimePerPage = float64(totalTime) / float64(present)
	}
	return result
}

func AllSectionProgress(pages map[string]*model.PageProgress) map[string]*model.SectionProgress {
	sections := make(map[string]*model.SectionProgress, len(model.Sections))
	for _, section := range model.Sections {
		sections[section.ID] = SectionProgress(section.ID, pages)
	}
	return sections
}

// OverallCompletion is the share of the whole catalog that is completed.
// Pages outside the catalog never count.
func OverallCompletion(pages map[string]*model.PageProgress) int {
	total := model.TotalCatalogPages()
	if total == 0 {
		return 0
	}
	return roundPercent(completedCatalogPages(pages), total)
}

func completedCatalogPages(pages map[string]*model.PageProgress) int {
	count := 0
	for id, page := range pages {
		if page != nil && page.Completed && model.IsCatalogPage(id) {
			count++
		}
	}
	return count
}

func roundPercent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// dayNumber maps t to a day ordinal in loc, so that consecutive calendar days
// differ by exactly one regardless of DST transitions.
func dayNumber(t time.Time, loc *time.Location) int64 {
	start := calendar.With(t.In(loc)).BeginningOfDay()
	y, m, d := start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	return calendar.With(t.In(loc)).BeginningOfDay()
}

func LearningStreak(pages map[string]*model.PageProgress, now time.Time) model.LearningStreak {
	loc := now.Location()

	seen := map[int64]time.Time{}
	for _, page := range pages {
		if page == nil {
			continue
		}
		for _, ts := range []*time.Time{page.CompletedAt, page.LastVisited} {
			if ts == nil {
				continue
			}
			day := dayNumber(*ts, loc)
			if _, ok := seen[day]; !ok {
				seen[day] = dayStart(*ts, loc)
			}
		}
	}

	if len(seen) == 0 {
		return model.LearningStreak{}
	}

	days := make([]int64, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	last := days[len(days)-1]
	today := dayNumber(now, loc)
	if last == today || last == today-1 {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if days[i+1]-days[i] != 1 {
				break
			}
			current++
		}
	}

	lastActivity := seen[last]
	return model.LearningStreak{
		CurrentStreak:    current,
		LongestStreak:    longest,
		TotalActiveDays:  len(days),
		LastActivityDate: &lastActivity,
	}
}

// EstimatedCompletionDate projects the current completion pace over the
// remaining catalog pages. It returns nil when fewer than two completions are
// on record.
func EstimatedCompletionDate(progress *model.UserProgress, now time.Time) *time.Time {
	completed := completedCatalogPages(progress.Pages)
	if completed == 0 {
		return nil
	}

	remaining := model.TotalCatalogPages() - completed
	if remaining <= 0 {
		done := now
		return &done
	}

	var dates []time.Time
	for _, page := range progress.Pages {
		if page != nil && page.Completed && page.CompletedAt != nil {
			dates = append(dates, *page.CompletedAt)
		}
	}
	if len(dates) < 2 {
		return nil
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var totalDays float64
	for i := 1; i < len(dates); i++ {
		totalDays += dates[i].Sub(dates[i-1]).Hours() / 24
	}
	averageDays := totalDays / float64(len(dates)-1)

	estimate := now.AddDate(0, 0, int(math.Ceil(averageDays*float64(remaining))))
	return &estimate
}

// StrongestAreas returns up to three section names ranked by average time per
// page. Sections without recorded time are skipped; ties keep catalog order.
func StrongestAreas(sections map[string]*model.SectionProgress) []string {
	type area struct {
		name    string
		average float64
	}

	var areas []area
	for _, section := range model.Sections {
		progress, ok := sections[section.ID]
		if !ok || progress == nil || progress.AverageTimePerPage <= 0 {
			continue
		}
		areas = append(areas, area{name: progress.SectionName, average: progress.AverageTimePerPage})
	}

	sort.SliceStable(areas, func(i, j int) bool { return areas[i].average > areas[j].average })

	names := []string{}
	for i := 0; i < len(areas) && i < 3; i++ {
		names = append(names, areas[i].name)
	}
	return names
}

func UpdateProgressStats(progress *model.UserProgress, now time.Time) model.ProgressStats {
	sections := AllSectionProgress(progress.Pages)

	var totalTime int64
	pagesCompleted := 0
	var start, last *time.Time

	for _, page := range progress.Pages {
		if page == nil {
			continue
		}
		totalTime += page.TimeSpent
		if page.Completed {
			pagesCompleted++
		}
		for _, ts := range []*time.Time{page.FirstVisited, page.CompletedAt} {
			if ts != nil && (start == nil || ts.Before(*start)) {
				t := *ts
				start = &t
			}
		}
		for _, ts := range []*time.Time{page.LastVisited, page.CompletedAt} {
			if ts != nil && (last == nil || ts.After(*last)) {
				t := *ts
				last = &t
			}
		}
	}

	if start == nil && progress.Stats.StartDate != nil {
		t := *progress.Stats.StartDate
		start = &t
	}
	if last == nil && progress.Stats.LastActivity != nil {
		t := *progress.Stats.LastActivity
		last = &t
	}

	var average float64
	if pagesCompleted > 0 {
		average = float64(totalTime) / float64(pagesCompleted)
	}

	return model.ProgressStats{
		OverallCompletion:       OverallCompletion(progress.Pages),
		PagesCompleted:          pagesCompleted,
		TotalPages:              model.TotalCatalogPages(),
		TotalTimeInvested:       totalTime,
		AverageTimePerPage:      average,
		LearningStreak:          LearningStreak(progress.Pages, now),
		StartDate:               start,
		EstimatedCompletionDate: EstimatedCompletionDate(progress, now),
		StrongestAreas:          StrongestAreas(sections),
		LastActivity:            last,
	}
}

type achievementRule func(progress *model.UserProgress, now time.Time) bool

var achievementRules = map[string]achievementRule{
	model.AchievementFirstPage: func(p *model.UserProgress, _ time.Time) bool {
		return p.Stats.PagesCompleted >= 1
	},
	model.AchievementQuarter: func(p *model.UserProgress, _ time.Time) bool {
		return p.Stats.OverallCompletion >= 25
	},
	model.AchievementHalf: func(p *model.UserProgress, _ time.Time) bool {
		return p.Stats.OverallCompletion >= 50
	},
	model.AchievementThreeQuarter: func(p *model.UserProgress, _ time.Time) bool {
		return p.Stats.OverallCompletion >= 75
	},
	model.AchievementAllComplete: func(p *model.UserProgress, _ time.Time) bool {
		return p.Stats.OverallCompletion >= 100
	},
	model.AchievementWeekStreak: func(p *model.UserProgress, _ time.Time) bool {
		return p.Stats.LearningStreak.CurrentStreak >= 7
	},
	model.AchievementMonthStreak: func(p *model.UserProgress, _ time.Time) bool {
		return p.Stats.LearningStreak.CurrentStreak >= 30
	},
	model.AchievementSpeedDemon: speedDemon,
	model.AchievementExplorer:   explorer,
}

func speedDemon(progress *model.UserProgress, now time.Time) bool {
	perDay := map[int64]int{}
	for _, page := range progress.Pages {
		if page == nil || !page.Completed || page.CompletedAt == nil {
			continue
		}
		day := dayNumber(*page.CompletedAt, now.Location())
		perDay[day]++
		if perDay[day] >= model.SpeedDemonDailyCompletions {
			return true
		}
	}
	return false
}

// explorer holds once every catalog section has at least one visited page.
func explorer(progress *model.UserProgress, _ time.Time) bool {
	for _, section := range model.Sections {
		visited := false
		for _, descriptor := range section.Pages {
			if page, ok := progress.Pages[descriptor.ID]; ok && page != nil && page.VisitCount > 0 {
				visited = true
				break
			}
		}
		if !visited {
			return false
		}
	}
	return true
}

// CheckAchievements returns the previously unlocked achievements followed by
// any catalog achievement that now qualifies. Entries are never removed.
// Stats must already be current.
func CheckAchievements(progress *model.UserProgress, now time.Time) []model.Achievement {
	result := make([]model.Achievement, 0, len(model.AchievementTemplates))
	unlocked := map[string]bool{}
	for _, a := range progress.Achievements {
		result = append(result, a.Clone())
		unlocked[a.ID] = true
	}

	for _, template := range model.AchievementTemplates {
		if unlocked[template.ID] {
			continue
		}
		rule, ok := achievementRules[template.ID]
		if !ok || !rule(progress, now) {
			continue
		}
		a := template
		at := now
		a.Unlocked = true
		a.UnlockedAt = &at
		result = append(result, a)
	}
	return result
}

func NewlyUnlocked(previous, current []model.Achievement) []model.Achievement {
	known := make(map[string]bool, len(previous))
	for _, a := range previous {
		known[a.ID] = true
	}

	var fresh []model.Achievement
	for _, a := range current {
		if !known[a.ID] {
			fresh = append(fresh, a.Clone())
		}
	}
	return fresh
}

// Recompute refreshes sections, stats and achievements in place and returns the
// achievements unlocked by this pass.
func Recompute(progress *model.UserProgress, now time.Time) []model.Achievement {
	progress.Sections = AllSectionProgress(progress.Pages)
	progress.Stats = UpdateProgressStats(progress, now)

	previous := progress.Achievements
	progress.Achievements = CheckAchievements(progress, now)
	return NewlyUnlocked(previous, progress.Achievements)
}

// CreatePageProgress records a visit: a new record on first visit, otherwise a
// copy of existing with the visit count and lastVisited bumped.
func CreatePageProgress(pageID, path, title string, existing *model.PageProgress, now time.Time) *model.PageProgress {
	visited := now
	if existing != nil {
		page := existing.Clone()
		page.LastVisited = &visited
		page.VisitCount++
		if page.FirstVisited == nil {
			first := now
			page.FirstVisited = &first
		}
		return page
	}

	first := now
	return &model.PageProgress{
		PageID:       pageID,
		Path:         path,
		Title:        title,
		FirstVisited: &first,
		LastVisited:  &visited,
		VisitCount:   1,
	}
}

// UpdatePageProgress applies update to a copy of existing. Time is accumulated,
// scroll depth only rises, and completion is stamped once. Completed=false on a
// completed page moves it back to in-progress and clears completedAt.
func UpdatePageProgress(existing *model.PageProgress, update model.PageUpdate, now time.Time) *model.PageProgress {
	page := existing.Clone()

	if update.TimeSpent != nil && *update.TimeSpent > 0 {
		page.TimeSpent += *update.TimeSpent
	}

	if update.ScrollDepth != nil {
		depth := clampDepth(*update.ScrollDepth)
		if depth > page.MaxScrollDepth {
			page.MaxScrollDepth = depth
		}
	}

	if update.InProgress != nil {
		page.InProgress = *update.InProgress
	}

	if update.Completed != nil {
		switch {
		case *update.Completed && !page.Completed:
			at := now
			page.Completed = true
			page.CompletedAt = &at
		case !*update.Completed && page.Completed:
			page.Completed = false
			page.CompletedAt = nil
			page.InProgress = true
		}
	}

	if page.Completed {
		page.InProgress = false
	}
	return page
}

func clampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > 100 {
		return 100
	}
	return depth
}

// RecommendedPages suggests at most three pages, in priority order: the next
// incomplete page of the current section, in-progress pages by scroll depth,
// then incomplete foundation pages.
func RecommendedPages(progress *model.UserProgress, currentPageID string) []model.Recommendation {
	var recs []model.Recommendation
	seen := map[string]bool{}
	add := func(rec model.Recommendation) {
		if seen[rec.PageID] {
			return
		}
		seen[rec.PageID] = true
		recs = append(recs, rec)
	}

	if _, visited := progress.Pages[currentPageID]; currentPageID != "" && visited {
		if sectionID, ok := model.SectionOf(currentPageID); ok {
			section, _ := model.FindSection(sectionID)
			for _, descriptor := range section.Pages {
				if descriptor.ID == currentPageID || isCompleted(progress, descriptor.ID) {
					continue
				}
				add(model.Recommendation{
					PageID: descriptor.ID,
					Path:   descriptor.Path,
					Title:  descriptor.Title,
					Reason: fmt.Sprintf(shared.ReasonContinueSection, section.Name),
				})
				break
			}
		}
	}

	var inProgress []*model.PageProgress
	for _, page := range progress.Pages {
		if page != nil && page.InProgress && !page.Completed {
			inProgress = append(inProgress, page)
		}
	}
	sort.Slice(inProgress, func(i, j int) bool {
		if inProgress[i].MaxScrollDepth != inProgress[j].MaxScrollDepth {
			return inProgress[i].MaxScrollDepth > inProgress[j].MaxScrollDepth
		}
		return inProgress[i].PageID < inProgress[j].PageID
	})
	for i := 0; i < len(inProgress) && i < 2; i++ {
		page := inProgress[i]
		add(model.Recommendation{
			PageID: page.PageID,
			Path:   page.Path,
			Title:  page.Title,
			Reason: shared.ReasonResume,
		})
	}

	for _, section := range model.Sections {
		for _, descriptor := range section.Pages {
			if !isFoundation(descriptor.Path) || isCompleted(progress, descriptor.ID) {
				continue
			}
			add(model.Recommendation{
				PageID: descriptor.ID,
				Path:   descriptor.Path,
				Title:  descriptor.Title,
				Reason: shared.ReasonFoundation,
			})
		}
	}

	if len(recs) > 3 {
		recs = recs[:3]
	}
	return recs
}

func isCompleted(progress *model.UserProgress, pageID string) bool {
	page, ok := progress.Pages[pageID]
	return ok && page != nil && page.Completed
}

func isFoundation(path string) bool {
	for _, p := range model.FoundationPaths {
		if p == path {
			return true
		}
	}
	return false
}

func FormatDuration(milliseconds int64) string {
	seconds := milliseconds / 1000
	minutes := seconds / 60
	hours := minutes / 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

func FormatPercentage(percentage float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(percentage)))
}
