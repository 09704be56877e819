package documents

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/odontosys/odontosys/internal/platform/blobstore"
	"github.com/odontosys/odontosys/internal/platform/validation"
	"github.com/odontosys/odontosys/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:patientId/documents", h.ListByPatient)
	api.GET("/documents/:id", h.Get)
	api.POST("/documents/upload", h.Upload)
	api.POST("/documents/upload-batch", h.UploadBatch)
	api.DELETE("/documents/:id", h.Delete)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	return c.JSON(http.StatusOK, d)
}

// Upload accepts a multipart form with a single "file" part plus patient_id,
// doc_type and description fields.
func (h *Handler) Upload(c echo.Context) error {
	patientID, err := uuid.Parse(c.FormValue("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	d := &Document{
		PatientID:   patientID,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		DocType:     c.FormValue("doc_type"),
	}
	if desc := c.FormValue("description"); desc != "" {
		d.Description = &desc
	}
	if err := h.svc.Upload(c.Request().Context(), d, src); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// UploadBatch accepts a multipart form with repeated "files" parts. The
// response lists one progress entry per file in upload order, so a partial
// failure is visible per file rather than failing the whole batch.
func (h *Handler) UploadBatch(c echo.Context) error {
	patientID, err := uuid.Parse(c.FormValue("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fhs := form.File["files"]
	if len(fhs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one file is required")
	}

	uploads := make([]blobstore.Upload, 0, len(fhs))
	closers := make([]func() error, 0, len(fhs))
	for _, fh := range fhs {
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		closers = append(closers, src.Close)
		uploads = append(uploads, blobstore.Upload{
			Meta: blobstore.FileMetadata{
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				PatientID:   patientID.String(),
			},
			Content: src,
		})
	}
	defer func() {
		for _, cl := range closers {
			cl()
		}
	}()

	type entry struct {
		Index    int                     `json:"index"`
		Total    int                     `json:"total"`
		Percent  int                     `json:"percent"`
		FileName string                  `json:"file_name"`
		Result   *blobstore.FileMetadata `json:"result,omitempty"`
		Error    string                  `json:"error,omitempty"`
	}
	var results []entry
	failed := 0
	for p := range h.svc.UploadBatch(c.Request().Context(), patientID, c.FormValue("doc_type"), uploads) {
		e := entry{Index: p.Index, Total: p.Total, Percent: p.Percent, FileName: p.FileName, Result: p.Result}
		if p.Error != "" {
			e.Error = p.Error
			failed++
		}
		results = append(results, e)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"uploaded": len(results) - failed,
		"failed":   failed,
		"results":  results,
	})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func writeError(c echo.Context, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": verr.Fields})
	}
	if errors.Is(err, blobstore.ErrFileTooLarge) || errors.Is(err, blobstore.ErrInvalidContentType) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
