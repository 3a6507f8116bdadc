package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learning_hub/dto"
	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/services/calculator"
	"github.com/lac-hong-legacy/learning_hub/shared"
)

// ExportFileName is the attachment name of a downloaded export.
const ExportFileName = "learning-hub-progress.json"

var (
	errPageNotTracked  = errors.New("page not tracked")
	errSectionNotFound = errors.New("section not found")
	errExportFailed    = errors.New("export failed")
	errImportRejected  = errors.New("import rejected")
)

type ProgressHandler struct {
	progressSvc     ProgressServiceInterface
	notificationSvc NotificationServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface, notificationSvc NotificationServiceInterface) *ProgressHandler {
	return &ProgressHandler{
		progressSvc:     progressSvc,
		notificationSvc: notificationSvc,
	}
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.CreateValidationErrorResponse(err))
}

func pageParam(c *fiber.Ctx) (string, error) {
	params := dto.PageParams{PageID: c.Params("pageId")}
	if err := params.Validate(); err != nil {
		return "", err
	}
	return params.PageID, nil
}

// @Summary Get Progress
// @Description Returns the full learner progress document
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=model.UserProgress}
// @Router /api/v1/progress [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	return shared.ResponseOK(c, h.progressSvc.GetProgress())
}

// @Summary Get Overview
// @Description Returns overall completion, stats, per-section progress and unlocked achievements
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=dto.OverviewResponse}
// @Router /api/v1/progress/overview [get]
func (h *ProgressHandler) GetOverview(c *fiber.Ctx) error {
	progress := h.progressSvc.GetProgress()

	sections := make([]*model.SectionProgress, 0, len(model.Sections))
	for _, section := range model.Sections {
		if sp, ok := h.progressSvc.SectionProgress(section.ID); ok {
			sections = append(sections, sp)
		}
	}

	return shared.ResponseOK(c, dto.OverviewResponse{
		OverallCompletion: progress.Stats.OverallCompletion,
		Stats:             progress.Stats,
		Sections:          sections,
		Achievements:      progress.Achievements,
		TimeInvested:      calculator.FormatDuration(progress.Stats.TotalTimeInvested),
		CompletionLabel:   calculator.FormatPercentage(float64(progress.Stats.OverallCompletion)),
	})
}

// @Summary Visit Page
// @Description Records a visit to a page, creating its progress entry on first visit
// @Tags pages
// @Accept json
// @Produce json
// @Param pageId path string true "Page ID"
// @Param visitPageRequest body dto.VisitPageRequest true "Visit request"
// @Success 200 {object} shared.Response{data=model.PageProgress}
// @Router /api/v1/pages/{pageId}/visit [post]
func (h *ProgressHandler) VisitPage(c *fiber.Ctx) error {
	var req dto.VisitPageRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	req.PageID = c.Params("pageId")

	if err := req.Validate(); err != nil {
		return validationFailed(c, err)
	}

	return shared.ResponseOK(c, h.progressSvc.VisitPage(req.PageID, req.Path, req.Title))
}

// @Summary Update Page Progress
// @Description Adds time spent, raises scroll depth or sets flags on a visited page, then applies auto-completion
// @Tags pages
// @Accept json
// @Produce json
// @Param pageId path string true "Page ID"
// @Param updatePageRequest body dto.UpdatePageRequest true "Update request"
// @Success 200 {object} shared.Response{data=dto.PageProgressResponse}
// @Failure 404 {object} shared.Response
// @Failure 429 {object} shared.Response{data=dto.RateLimitInfo}
// @Router /api/v1/pages/{pageId} [patch]
func (h *ProgressHandler) UpdatePage(c *fiber.Ctx) error {
	pageID, err := pageParam(c)
	if err != nil {
		return validationFailed(c, err)
	}

	var req dto.UpdatePageRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := req.Validate(); err != nil {
		return validationFailed(c, err)
	}

	page, ok := h.progressSvc.UpdatePageProgress(pageID, req.ToPageUpdate())
	if !ok {
		return shared.NewNotFoundError(errPageNotTracked, "Page has not been visited")
	}
	if completed, ok := h.progressSvc.EvaluateAutoComplete(pageID); ok {
		page = completed
	}

	return shared.ResponseOK(c, dto.PageProgressResponse{
		Page:                 page,
		ShowCompletionPrompt: h.progressSvc.ShowCompletionPrompt(pageID),
	})
}

// @Summary Get Page Progress
// @Tags pages
// @Produce json
// @Param pageId path string true "Page ID"
// @Success 200 {object} shared.Response{data=dto.PageProgressResponse}
// @Failure 404 {object} shared.Response
// @Router /api/v1/pages/{pageId} [get]
func (h *ProgressHandler) GetPage(c *fiber.Ctx) error {
	pageID, err := pageParam(c)
	if err != nil {
		return validationFailed(c, err)
	}

	page, ok := h.progressSvc.GetPageProgress(pageID)
	if !ok {
		return shared.NewNotFoundError(errPageNotTracked, "Page has not been visited")
	}

	return shared.ResponseOK(c, dto.PageProgressResponse{
		Page:                 page,
		ShowCompletionPrompt: h.progressSvc.ShowCompletionPrompt(pageID),
	})
}

// @Summary Mark Page Complete
// @Tags pages
// @Produce json
// @Param pageId path string true "Page ID"
// @Success 200 {object} shared.Response{data=model.PageProgress}
// @Failure 404 {object} shared.Response
// @Router /api/v1/pages/{pageId}/complete [post]
func (h *ProgressHandler) CompletePage(c *fiber.Ctx) error {
	pageID, err := pageParam(c)
	if err != nil {
		return validationFailed(c, err)
	}

	page, ok := h.progressSvc.MarkPageComplete(pageID)
	if !ok {
		return shared.NewNotFoundError(errPageNotTracked, "Page has not been visited")
	}
	return shared.ResponseOK(c, page)
}

// @Summary Mark Page Incomplete
// @Tags pages
// @Produce json
// @Param pageId path string true "Page ID"
// @Success 200 {object} shared.Response{data=model.PageProgress}
// @Failure 404 {object} shared.Response
// @Router /api/v1/pages/{pageId}/incomplete [post]
func (h *ProgressHandler) IncompletePage(c *fiber.Ctx) error {
	pageID, err := pageParam(c)
	if err != nil {
		return validationFailed(c, err)
	}

	page, ok := h.progressSvc.MarkPageIncomplete(pageID)
	if !ok {
		return shared.NewNotFoundError(errPageNotTracked, "Page has not been visited")
	}
	return shared.ResponseOK(c, page)
}

// @Summary Get Section Progress
// @Tags sections
// @Produce json
// @Param sectionId path string true "Section ID"
// @Success 200 {object} shared.Response{data=model.SectionProgress}
// @Router /api/v1/sections/{sectionId} [get]
func (h *ProgressHandler) GetSection(c *fiber.Ctx) error {
	params := dto.SectionParams{SectionID: c.Params("sectionId")}
	if err := params.Validate(); err != nil {
		return validationFailed(c, err)
	}

	section, ok := h.progressSvc.SectionProgress(params.SectionID)
	if !ok {
		return shared.NewNotFoundError(errSectionNotFound, "Section not found")
	}
	return shared.ResponseOK(c, section)
}

// @Summary Reset Section
// @Description Clears completion, time and scroll for every page of a section. Achievements are kept.
// @Tags sections
// @Produce json
// @Param sectionId path string true "Section ID"
// @Success 200 {object} shared.Response{data=model.SectionProgress}
// @Router /api/v1/sections/{sectionId}/reset [post]
func (h *ProgressHandler) ResetSection(c *fiber.Ctx) error {
	params := dto.SectionParams{SectionID: c.Params("sectionId")}
	if err := params.Validate(); err != nil {
		return validationFailed(c, err)
	}

	if !h.progressSvc.ResetSection(params.SectionID) {
		return shared.NewNotFoundError(errSectionNotFound, "Section not found")
	}

	section, _ := h.progressSvc.SectionProgress(params.SectionID)
	return shared.ResponseOK(c, section)
}

// @Summary Get Recommendations
// @Tags progress
// @Produce json
// @Param current query string false "Current page ID"
// @Success 200 {object} shared.Response{data=dto.RecommendationsResponse}
// @Router /api/v1/recommendations [get]
func (h *ProgressHandler) GetRecommendations(c *fiber.Ctx) error {
	return shared.ResponseOK(c, dto.RecommendationsResponse{
		Recommendations: h.progressSvc.GetRecommendations(c.Query("current")),
	})
}

// @Summary Get Achievements
// @Description Returns the unlocked achievements in unlock order
// @Tags achievements
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.Achievement}
// @Router /api/v1/achievements [get]
func (h *ProgressHandler) GetAchievements(c *fiber.Ctx) error {
	return shared.ResponseOK(c, h.progressSvc.UnlockedAchievements())
}

// @Summary Get Current Notification
// @Tags achievements
// @Produce json
// @Success 200 {object} shared.Response{data=dto.NotificationResponse}
// @Router /api/v1/notifications/current [get]
func (h *ProgressHandler) GetCurrentNotification(c *fiber.Ctx) error {
	return shared.ResponseOK(c, dto.NotificationResponse{
		Current:     h.notificationSvc.Current(),
		QueueLength: h.notificationSvc.QueueLength(),
	})
}

// @Summary Dismiss Notification
// @Tags achievements
// @Produce json
// @Success 200 {object} shared.Response
// @Router /api/v1/notifications/dismiss [post]
func (h *ProgressHandler) DismissNotification(c *fiber.Ctx) error {
	h.notificationSvc.Dismiss()
	return shared.ResponseOK(c, nil)
}

// @Summary Reset Progress
// @Description Deletes all stored progress and starts over with defaults
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=model.UserProgress}
// @Router /api/v1/progress/reset [post]
func (h *ProgressHandler) ResetProgress(c *fiber.Ctx) error {
	h.progressSvc.ResetProgress()
	return shared.ResponseOK(c, h.progressSvc.GetProgress())
}

// @Summary Export Progress
// @Description Returns the stored progress wrapped in a checksummed export envelope
// @Tags progress
// @Produce json
// @Success 200 {object} model.ProgressExport
// @Router /api/v1/progress/export [get]
func (h *ProgressHandler) ExportProgress(c *fiber.Ctx) error {
	export, ok := h.progressSvc.ExportData()
	if !ok {
		return shared.NewInternalError(errExportFailed, "Export failed")
	}

	c.Attachment(ExportFileName)
	return c.Status(fiber.StatusOK).JSON(export)
}

// @Summary Import Progress
// @Description Replaces stored progress with a previously exported envelope
// @Tags progress
// @Accept json
// @Produce json
// @Param importRequest body dto.ImportRequest true "Export envelope"
// @Success 200 {object} shared.Response{data=model.UserProgress}
// @Failure 400 {object} shared.Response
// @Router /api/v1/progress/import [post]
func (h *ProgressHandler) ImportProgress(c *fiber.Ctx) error {
	if !h.progressSvc.ImportJSON(c.Body()) {
		return shared.NewBadRequestError(errImportRejected, "Invalid export file")
	}
	return shared.ResponseOK(c, h.progressSvc.GetProgress())
}

// @Summary Storage Info
// @Tags storage
// @Produce json
// @Success 200 {object} shared.Response{data=dto.StorageInfoResponse}
// @Router /api/v1/storage/info [get]
func (h *ProgressHandler) GetStorageInfo(c *fiber.Ctx) error {
	info := h.progressSvc.StorageInfo()
	return shared.ResponseOK(c, dto.StorageInfoResponse{
		Engine:     info.Engine,
		Degraded:   info.Degraded,
		DataSize:   info.DataSize,
		DataExists: info.DataExists,
	})
}
