package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/violets/internal/apperror"
	"github.com/sakif/violets/internal/service"
)

// BackupHandler serves journal downloads and the restore upload.
type BackupHandler struct {
	service *service.BackupService
	render  *Renderer
	logger  *slog.Logger
}

func NewBackupHandler(svc *service.BackupService, render *Renderer, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{service: svc, render: render, logger: logger}
}

// MaxSnapshotBytes caps the size of an uploaded snapshot.
const MaxSnapshotBytes = 10 << 20

var snapshotContentTypes = map[string]string{
	service.FormatJSON: "application/json",
	service.FormatYAML: "application/yaml",
}

// HandleExport downloads the whole journal as a snapshot file that the
// import command can restore.
//
// HTTP: GET /export?format=json|yaml (default json)
func (h *BackupHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = service.FormatJSON
	}
	contentType, ok := snapshotContentTypes[format]
	if !ok {
		h.render.RenderError(w, r, apperror.ValidationFailed("format",
			fmt.Sprintf("Unknown export format %q. Use json or yaml.", format)))
		return
	}

	snap, err := h.service.Export(r.Context())
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := service.EncodeSnapshot(&buf, snap, format); err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	filename := fmt.Sprintf("violets-%s.%s", snap.ExportedAt.Format("20060102"), format)
	writeDownload(w, h.logger, contentType, filename, &buf)
}

// HandleCareCSV downloads the full care history as CSV, oldest first.
//
// HTTP: GET /export/care_logs.csv
func (h *BackupHandler) HandleCareCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.WriteCareCSV(r.Context(), &buf); err != nil {
		h.render.RenderError(w, r, err)
		return
	}
	writeDownload(w, h.logger, "text/csv; charset=utf-8", "care_logs.csv", &buf)
}

func writeDownload(w http.ResponseWriter, logger *slog.Logger, contentType, filename string, body *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := body.WriteTo(w); err != nil {
		logger.Warn("failed to write download",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
	}
}

// HandleImportForm renders the restore upload form.
//
// HTTP: GET /import
func (h *BackupHandler) HandleImportForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "import.html", h.render.Page(r, "Restore journal"))
}

// HandleImport replaces the whole journal with an uploaded snapshot and
// redirects to the list. The format comes from the form, or else from the
// file name. A rejected snapshot leaves the journal untouched.
//
// HTTP: POST /import (multipart: snapshot file, optional format)
func (h *BackupHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxSnapshotBytes)

	if err := h.importUpload(r); err != nil {
		if apperror.IsUserFacing(err) {
			h.logger.Debug("snapshot upload rejected",
				slog.String("field", fieldFor(err)),
				slog.String("reason", err.Error()),
			)
			h.render.Render(w, statusFor(err), "import.html",
				withError(h.render.Page(r, "Restore journal"), err))
			return
		}
		h.render.RenderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *BackupHandler) importUpload(r *http.Request) error {
	file, header, err := r.FormFile("snapshot")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return apperror.ValidationFailed("snapshot", "Choose a snapshot file to upload.")
		case errors.As(err, &tooLarge):
			return apperror.ValidationFailed("snapshot",
				fmt.Sprintf("Snapshot file must be %d MB or less.", MaxSnapshotBytes>>20))
		default:
			return badForm(err)
		}
	}
	defer file.Close()

	format := r.FormValue("format")
	if format == "" {
		format = service.FormatFromPath(header.Filename)
	}

	snap, err := service.DecodeSnapshot(file, format)
	if err != nil {
		return err
	}
	return h.service.Import(r.Context(), snap)
}
