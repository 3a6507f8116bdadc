package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learning_hub/dto"
	"github.com/lac-hong-legacy/learning_hub/shared"
)

var errArchiveDisabled = errors.New("archive storage not configured")

// ArchiveHandler moves export envelopes to and from object storage.
type ArchiveHandler struct {
	progressSvc ProgressServiceInterface
	archiveSvc  ArchiveServiceInterface
}

func NewArchiveHandler(progressSvc ProgressServiceInterface, archiveSvc ArchiveServiceInterface) *ArchiveHandler {
	return &ArchiveHandler{
		progressSvc: progressSvc,
		archiveSvc:  archiveSvc,
	}
}

func (h *ArchiveHandler) enabled() error {
	if h.archiveSvc == nil || !h.archiveSvc.Enabled() {
		return shared.NewServiceUnavailableError(errArchiveDisabled, "Archive storage is not configured")
	}
	return nil
}

// @Summary Archive Export
// @Description Exports the current progress and stores the envelope in object storage
// @Tags archive
// @Produce json
// @Success 200 {object} shared.Response{data=dto.ArchiveResponse}
// @Failure 503 {object} shared.Response
// @Router /api/v1/progress/export/archive [post]
func (h *ArchiveHandler) ArchiveExport(c *fiber.Ctx) error {
	if err := h.enabled(); err != nil {
		return err
	}

	export, ok := h.progressSvc.ExportData()
	if !ok {
		return shared.NewInternalError(errExportFailed, "Export failed")
	}

	archive, err := h.archiveSvc.ArchiveExport(c.Context(), export)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, archive)
}

// @Summary List Archives
// @Tags archive
// @Produce json
// @Success 200 {object} shared.Response{data=dto.ArchiveListResponse}
// @Failure 503 {object} shared.Response
// @Router /api/v1/progress/export/archive [get]
func (h *ArchiveHandler) ListArchives(c *fiber.Ctx) error {
	if err := h.enabled(); err != nil {
		return err
	}

	archives, err := h.archiveSvc.ListExports(c.Context())
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, dto.ArchiveListResponse{Archives: archives})
}

// @Summary Import Archive
// @Description Replaces stored progress with an archived export envelope
// @Tags archive
// @Produce json
// @Param object path string true "Archive object name"
// @Success 200 {object} shared.Response{data=model.UserProgress}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/progress/import/archive/{object} [post]
func (h *ArchiveHandler) ImportArchive(c *fiber.Ctx) error {
	if err := h.enabled(); err != nil {
		return err
	}

	data, err := h.archiveSvc.FetchExport(c.Context(), c.Params("object"))
	if err != nil {
		return err
	}

	if !h.progressSvc.ImportJSON(data) {
		return shared.NewBadRequestError(errImportRejected, "Archived export is invalid")
	}
	return shared.ResponseOK(c, h.progressSvc.GetProgress())
}
