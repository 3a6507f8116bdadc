package services

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/services/calculator"
	"github.com/lac-hong-legacy/learning_hub/services/storage"
	"github.com/lac-hong-legacy/learning_hub/shared"
	log "github.com/sirupsen/logrus"
)

// ProgressStore is the storage adapter the progress service persists through.
type ProgressStore interface {
	Load() *model.UserProgress
	DebouncedSave(progress *model.UserProgress, delay time.Duration)
	Flush() bool
	Clear() bool
	ExportData() (*model.ProgressExport, bool)
	ImportData(export *model.ProgressExport) bool
	ImportJSON(data []byte) bool
	OnExternalChange(fn func(*model.UserProgress)) func()
	Info() storage.Info
}

type AchievementNotifier interface {
	Trigger(a model.Achievement) bool
}

type progressMetrics interface {
	RecordMutation(operation string)
	RecordAchievement(id string)
	SetOverallCompletion(percent int)
}

// ProgressService owns the in-memory progress document. Mutations are applied
// one at a time; each recomputes sections, stats and achievements and
// schedules a debounced save.
type ProgressService struct {
	context.DefaultService

	store    ProgressStore
	notifier AchievementNotifier
	metrics  progressMetrics
	clock    func() time.Time
	debounce time.Duration

	mu              sync.Mutex
	progress        *model.UserProgress
	newAchievements []model.Achievement
	listeners       map[int]func(*model.UserProgress)
	nextListener    int
	unsubscribe     func()
}

const PROGRESS_SVC = "progress_svc"

func NewProgressService(store ProgressStore, notifier AchievementNotifier, clock func() time.Time) *ProgressService {
	svc := &ProgressService{
		store:    store,
		notifier: notifier,
		clock:    clock,
	}
	svc.init()
	return svc
}

func (svc *ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *context.Context) error {
	if v := os.Getenv("PROGRESS_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			svc.debounce = time.Duration(ms) * time.Millisecond
		}
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	svc.store = svc.Service(STORAGE_SVC).(*StorageService).Storage()
	svc.notifier = svc.Service(NOTIFICATION_SVC).(*NotificationService)
	if monitoringSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.metrics = monitoringSvc
	}

	svc.init()
	log.Println("Progress service started")
	return nil
}

func (svc *ProgressService) init() {
	if svc.clock == nil {
		svc.clock = time.Now
	}
	if svc.debounce <= 0 {
		svc.debounce = shared.DefaultDebounceMs * time.Millisecond
	}
	svc.listeners = make(map[int]func(*model.UserProgress))

	progress := svc.store.Load()
	now := svc.clock()
	progress.Sections = calculator.AllSectionProgress(progress.Pages)
	progress.Stats = calculator.UpdateProgressStats(progress, now)

	svc.mu.Lock()
	svc.progress = progress
	svc.mu.Unlock()

	svc.unsubscribe = svc.store.OnExternalChange(svc.applyExternal)
}

func (svc *ProgressService) Shutdown() {
	if svc.unsubscribe != nil {
		svc.unsubscribe()
	}
	if svc.store != nil {
		svc.store.Flush()
	}
}

// applyExternal replaces the in-memory document with one written by another
// instance.
func (svc *ProgressService) applyExternal(progress *model.UserProgress) {
	svc.mu.Lock()
	svc.progress = progress
	snapshot := progress.Clone()
	listeners := svc.listenersLocked()
	svc.mu.Unlock()

	log.WithFields(log.Fields{"pages": len(progress.Pages)}).Debug("Progress reloaded from another instance")
	svc.broadcast(listeners, snapshot)
}

// Subscribe registers fn for every change of the progress document.
func (svc *ProgressService) Subscribe(fn func(*model.UserProgress)) func() {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	id := svc.nextListener
	svc.nextListener++
	svc.listeners[id] = fn

	return func() {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		delete(svc.listeners, id)
	}
}

func (svc *ProgressService) listenersLocked() []func(*model.UserProgress) {
	fns := make([]func(*model.UserProgress), 0, len(svc.listeners))
	for _, fn := range svc.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func (svc *ProgressService) broadcast(listeners []func(*model.UserProgress), snapshot *model.UserProgress) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}

type mutationResult struct {
	unlocked   []model.Achievement
	snapshot   *model.UserProgress
	listeners  []func(*model.UserProgress)
	completion int
}

// commitLocked recomputes derived state after a mutation and schedules the
// save.
func (svc *ProgressService) commitLocked(now time.Time) mutationResult {
	unlocked := calculator.Recompute(svc.progress, now)
	svc.progress.UpdatedAt = now
	svc.newAchievements = append(svc.newAchievements, unlocked...)
	svc.store.DebouncedSave(svc.progress, svc.debounce)

	return mutationResult{
		unlocked:   unlocked,
		snapshot:   svc.progress.Clone(),
		listeners:  svc.listenersLocked(),
		completion: svc.progress.Stats.OverallCompletion,
	}
}

// publish runs the side effects of a committed mutation outside the lock.
func (svc *ProgressService) publish(operation string, res mutationResult) {
	if svc.metrics != nil {
		svc.metrics.RecordMutation(operation)
		svc.metrics.SetOverallCompletion(res.completion)
	}
	for _, a := range res.unlocked {
		log.WithFields(log.Fields{"achievement": a.ID}).Info("Achievement unlocked")
		if svc.metrics != nil {
			svc.metrics.RecordAchievement(a.ID)
		}
		if svc.notifier != nil {
			svc.notifier.Trigger(a)
		}
	}
	svc.broadcast(res.listeners, res.snapshot)
}

func (svc *ProgressService) VisitPage(pageID, path, title string) *model.PageProgress {
	svc.mu.Lock()
	now := svc.clock()
	page := calculator.CreatePageProgress(pageID, path, title, svc.progress.Pages[pageID], now)
	svc.progress.Pages[pageID] = page
	res := svc.commitLocked(now)
	svc.mu.Unlock()

	svc.publish("visit", res)
	return page.Clone()
}

// UpdatePageProgress applies update to a visited page. Unknown pages are
// left alone and reported with false.
func (svc *ProgressService) UpdatePageProgress(pageID string, update model.PageUpdate) (*model.PageProgress, bool) {
	return svc.updatePage("update", pageID, update)
}

func (svc *ProgressService) updatePage(operation, pageID string, update model.PageUpdate) (*model.PageProgress, bool) {
	svc.mu.Lock()
	existing, ok := svc.progress.Pages[pageID]
	if !ok || existing == nil {
		svc.mu.Unlock()
		log.WithFields(log.Fields{"page_id": pageID}).Warn("Page not found in progress data")
		return nil, false
	}

	now := svc.clock()
	page := calculator.UpdatePageProgress(existing, update, now)
	svc.progress.Pages[pageID] = page
	res := svc.commitLocked(now)
	svc.mu.Unlock()

	svc.publish(operation, res)
	return page.Clone(), true
}

func (svc *ProgressService) MarkPageComplete(pageID string) (*model.PageProgress, bool) {
	completed, inProgress := true, false
	return svc.updatePage("complete", pageID, model.PageUpdate{Completed: &completed, InProgress: &inProgress})
}

// MarkPageIncomplete moves a completed page back to in-progress.
func (svc *ProgressService) MarkPageIncomplete(pageID string) (*model.PageProgress, bool) {
	completed := false
	return svc.updatePage("incomplete", pageID, model.PageUpdate{Completed: &completed})
}

// EvaluateAutoComplete marks pageID complete when its stored time and scroll
// depth meet the auto-complete thresholds. It reports whether the page was
// completed by this call.
func (svc *ProgressService) EvaluateAutoComplete(pageID string) (*model.PageProgress, bool) {
	svc.mu.Lock()
	page, ok := svc.progress.Pages[pageID]
	prefs := svc.progress.Preferences
	due := ok && page != nil && !page.Completed && prefs.AutoComplete &&
		page.TimeSpent >= prefs.AutoCompleteTimeThreshold &&
		page.MaxScrollDepth >= prefs.AutoCompleteScrollThreshold
	svc.mu.Unlock()

	if !due {
		return nil, false
	}
	return svc.MarkPageComplete(pageID)
}

// ShowCompletionPrompt reports whether a manual completion control should be
// offered for the stored totals of pageID.
func (svc *ProgressService) ShowCompletionPrompt(pageID string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	page, ok := svc.progress.Pages[pageID]
	if !ok || page == nil || page.Completed {
		return false
	}
	prefs := svc.progress.Preferences
	timeRatio, scrollRatio := 0.0, 0.0
	if prefs.AutoCompleteTimeThreshold > 0 {
		timeRatio = float64(page.TimeSpent/1000) / (float64(prefs.AutoCompleteTimeThreshold) / 1000)
	}
	if prefs.AutoCompleteScrollThreshold > 0 {
		scrollRatio = float64(page.MaxScrollDepth) / float64(prefs.AutoCompleteScrollThreshold)
	}
	return timeRatio >= 0.7 || scrollRatio >= 0.7 || (timeRatio >= 0.5 && scrollRatio >= 0.5)
}

func (svc *ProgressService) ResetProgress() {
	svc.store.Clear()

	svc.mu.Lock()
	svc.progress = model.DefaultUserProgress(svc.clock())
	svc.newAchievements = nil
	snapshot := svc.progress.Clone()
	listeners := svc.listenersLocked()
	svc.mu.Unlock()

	if svc.metrics != nil {
		svc.metrics.RecordMutation("reset")
		svc.metrics.SetOverallCompletion(0)
	}
	svc.broadcast(listeners, snapshot)
}

// ResetSection clears the completion, time and scroll of every visited page
// in the catalog section. Achievements are kept.
func (svc *ProgressService) ResetSection(sectionID string) bool {
	section, ok := model.FindSection(sectionID)
	if !ok {
		log.WithFields(log.Fields{"section_id": sectionID}).Warn("Section not found")
		return false
	}

	svc.mu.Lock()
	for _, descriptor := range section.Pages {
		page, ok := svc.progress.Pages[descriptor.ID]
		if !ok || page == nil {
			continue
		}
		reset := page.Clone()
		reset.Completed = false
		reset.InProgress = false
		reset.CompletedAt = nil
		reset.TimeSpent = 0
		reset.MaxScrollDepth = 0
		svc.progress.Pages[descriptor.ID] = reset
	}
	res := svc.commitLocked(svc.clock())
	svc.mu.Unlock()

	svc.publish("reset_section", res)
	return true
}

// ExportData writes any pending change and returns the stored document in an
// export envelope.
func (svc *ProgressService) ExportData() (*model.ProgressExport, bool) {
	svc.store.Flush()
	return svc.store.ExportData()
}

func (svc *ProgressService) ImportData(export *model.ProgressExport) bool {
	return svc.afterImport(svc.store.ImportData(export))
}

func (svc *ProgressService) ImportJSON(data []byte) bool {
	return svc.afterImport(svc.store.ImportJSON(data))
}

func (svc *ProgressService) afterImport(ok bool) bool {
	if !ok {
		return false
	}

	svc.mu.Lock()
	svc.progress = svc.store.Load()
	svc.newAchievements = nil
	snapshot := svc.progress.Clone()
	listeners := svc.listenersLocked()
	svc.mu.Unlock()

	if svc.metrics != nil {
		svc.metrics.RecordMutation("import")
	}
	svc.broadcast(listeners, snapshot)
	return true
}

// RefreshProgress reloads the stored document and recomputes time-dependent
// stats such as the learning streak.
func (svc *ProgressService) RefreshProgress() {
	svc.store.Flush()
	progress := svc.store.Load()

	svc.mu.Lock()
	now := svc.clock()
	progress.Sections = calculator.AllSectionProgress(progress.Pages)
	progress.Stats = calculator.UpdateProgressStats(progress, now)
	svc.progress = progress
	snapshot := progress.Clone()
	listeners := svc.listenersLocked()
	svc.mu.Unlock()

	svc.broadcast(listeners, snapshot)
}

func (svc *ProgressService) GetProgress() *model.UserProgress {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.progress.Clone()
}

func (svc *ProgressService) GetPageProgress(pageID string) (*model.PageProgress, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	page, ok := svc.progress.Pages[pageID]
	if !ok || page == nil {
		return nil, false
	}
	return page.Clone(), true
}

func (svc *ProgressService) GetNewAchievements() []model.Achievement {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	out := make([]model.Achievement, 0, len(svc.newAchievements))
	for _, a := range svc.newAchievements {
		out = append(out, a.Clone())
	}
	return out
}

func (svc *ProgressService) ClearNewAchievements() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.newAchievements = nil
}

func (svc *ProgressService) GetRecommendations(currentPageID string) []model.Recommendation {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return calculator.RecommendedPages(svc.progress, currentPageID)
}

func (svc *ProgressService) OverallCompletion() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.progress.Stats.OverallCompletion
}

// SectionProgress returns the progress of a catalog section, including
// sections with no visited page.
func (svc *ProgressService) SectionProgress(sectionID string) (*model.SectionProgress, bool) {
	if _, ok := model.FindSection(sectionID); !ok {
		return nil, false
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	return calculator.SectionProgress(sectionID, svc.progress.Pages), true
}

func (svc *ProgressService) UnlockedAchievements() []model.Achievement {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	out := make([]model.Achievement, 0, len(svc.progress.Achievements))
	for _, a := range svc.progress.Achievements {
		out = append(out, a.Clone())
	}
	return out
}

func (svc *ProgressService) Preferences() model.Preferences {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.progress.Preferences
}

func (svc *ProgressService) StorageInfo() storage.Info {
	return svc.store.Info()
}
