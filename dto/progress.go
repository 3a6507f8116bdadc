package dto

import (
	"time"

	"github.com/lac-hong-legacy/learning_hub/model"
)

type PageParams struct {
	PageID string `json:"pageId" validate:"required,slug,max=100"`
}

func (p PageParams) Validate() error {
	return GetValidator().Struct(p)
}

type SectionParams struct {
	SectionID string `json:"sectionId" validate:"required,catalog_section"`
}

func (p SectionParams) Validate() error {
	return GetValidator().Struct(p)
}

type VisitPageRequest struct {
	PageID string `json:"-" validate:"required,slug,max=100"`
	Path   string `json:"path" validate:"required,startswith=/,max=255" example:"/learn/s3-storage"`
	Title  string `json:"title" validate:"required,max=255" example:"S3 Storage"`
}

func (r VisitPageRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdatePageRequest struct {
	TimeSpent   *int64 `json:"timeSpent,omitempty" validate:"omitempty,min=0" example:"2000"`
	ScrollDepth *int   `json:"scrollDepth,omitempty" validate:"omitempty,min=0,max=100" example:"45"`
	Completed   *bool  `json:"completed,omitempty"`
	InProgress  *bool  `json:"inProgress,omitempty"`
}

func (r UpdatePageRequest) Validate() error {
	return GetValidator().Struct(r)
}

func (r UpdatePageRequest) ToPageUpdate() model.PageUpdate {
	return model.PageUpdate{
		TimeSpent:   r.TimeSpent,
		ScrollDepth: r.ScrollDepth,
		Completed:   r.Completed,
		InProgress:  r.InProgress,
	}
}

type ImportRequest struct {
	Metadata *model.ExportMetadata `json:"metadata" validate:"required"`
	Progress *model.UserProgress   `json:"progress" validate:"required"`
}

func (r ImportRequest) Validate() error {
	return GetValidator().Struct(r)
}

func (r ImportRequest) ToExport() *model.ProgressExport {
	return &model.ProgressExport{Metadata: r.Metadata, Progress: r.Progress}
}

type OverviewResponse struct {
	OverallCompletion int                      `json:"overallCompletion"`
	Stats             model.ProgressStats      `json:"stats"`
	Sections          []*model.SectionProgress `json:"sections"`
	Achievements      []model.Achievement      `json:"achievements"`
	TimeInvested      string                   `json:"timeInvested" example:"1h 5m"`
	CompletionLabel   string                   `json:"completionLabel" example:"40%"`
}

type PageProgressResponse struct {
	Page                 *model.PageProgress `json:"page"`
	ShowCompletionPrompt bool                `json:"showCompletionPrompt"`
}

type RecommendationsResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

type NotificationResponse struct {
	Current     *model.Achievement `json:"current,omitempty"`
	QueueLength int                `json:"queueLength"`
}

type StorageInfoResponse struct {
	Engine     string `json:"engine" example:"sqlite"`
	Degraded   bool   `json:"degraded"`
	DataSize   int    `json:"dataSize"`
	DataExists bool   `json:"dataExists"`
}

type ArchiveResponse struct {
	Object     string    `json:"object" example:"exports/2024-01-02T15-04-05Z-0b6d.json"`
	Size       int64     `json:"size"`
	ExportDate time.Time `json:"exportDate"`
}

type ArchiveListResponse struct {
	Archives []ArchiveResponse `json:"archives"`
}
