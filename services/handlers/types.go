package handlers

import (
	"context"

	"github.com/lac-hong-legacy/learning_hub/dto"
	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/services/storage"
)

type ProgressServiceInterface interface {
	GetProgress() *model.UserProgress
	GetPageProgress(pageID string) (*model.PageProgress, bool)
	VisitPage(pageID, path, title string) *model.PageProgress
	UpdatePageProgress(pageID string, update model.PageUpdate) (*model.PageProgress, bool)
	EvaluateAutoComplete(pageID string) (*model.PageProgress, bool)
	ShowCompletionPrompt(pageID string) bool
	MarkPageComplete(pageID string) (*model.PageProgress, bool)
	MarkPageIncomplete(pageID string) (*model.PageProgress, bool)
	SectionProgress(sectionID string) (*model.SectionProgress, bool)
	ResetSection(sectionID string) bool
	GetRecommendations(currentPageID string) []model.Recommendation
	UnlockedAchievements() []model.Achievement
	ResetProgress()
	ExportData() (*model.ProgressExport, bool)
	ImportJSON(data []byte) bool
	StorageInfo() storage.Info
}

type NotificationServiceInterface interface {
	Current() *model.Achievement
	QueueLength() int
	Dismiss()
}

type ArchiveServiceInterface interface {
	Enabled() bool
	ArchiveExport(ctx context.Context, export *model.ProgressExport) (*dto.ArchiveResponse, error)
	FetchExport(ctx context.Context, objectName string) ([]byte, error)
	ListExports(ctx context.Context) ([]dto.ArchiveResponse, error)
}
