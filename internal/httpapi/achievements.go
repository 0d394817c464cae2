package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Lllllllleong/achievementflow/internal/assets"
	"github.com/Lllllllleong/achievementflow/internal/models"
	"github.com/Lllllllleong/achievementflow/internal/services"
	"github.com/Lllllllleong/achievementflow/internal/view"
)

// list serves GET with an optional ?q= search term. A failed fetch degrades
// to the empty table instead of an error status.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	logCtx := slog.With("requestId", middleware.GetReqID(r.Context()), "search", term)

	all, err := h.pipeline.List(r.Context())
	resp := models.ListAchievementsResponse{Search: term}
	if err != nil {
		var rErr *models.ReadError
		if !errors.As(err, &rErr) {
			logCtx.Error("Listing failed", "error", err)
			writeError(w, r, err)
			return
		}
		logCtx.Warn("Listing degraded to empty table.", "error", err)
		resp.Degraded = true
		all = nil
	}

	visible := view.Filter(all, term)
	resp.Total = len(all)
	resp.Matched = len(visible)
	resp.Table = view.BuildTable(visible)
	writeJSON(w, r, http.StatusOK, resp)
}

// submit serves a multipart POST with fields title, studentName,
// description, date and file.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	logCtx := slog.With("requestId", middleware.GetReqID(r.Context()))

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mErr *http.MaxBytesError
		if errors.As(err, &mErr) {
			writeError(w, r, err)
			return
		}
		logCtx.Warn("Could not parse multipart body", "error", err)
		writeError(w, r, &models.ValidationError{Reason: fmt.Sprintf("could not parse multipart form: %v", err)})
		return
	}
	defer r.MultipartForm.RemoveAll()

	sub := services.Submission{
		Title:       r.FormValue("title"),
		StudentName: r.FormValue("studentName"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
	}
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		sub.File = file
		sub.FileName = header.Filename
	case errors.Is(err, http.ErrMissingFile):
		// Left empty; the pipeline reports it as a missing field.
	default:
		logCtx.Warn("Could not read file part", "error", err)
		writeError(w, r, &models.ValidationError{Fields: []string{"file"}, Reason: err.Error()})
		return
	}
	if sub.FileName != "" && !assets.IsAcceptedExtension(sub.FileName) {
		logCtx.Warn("File extension outside the form's accepted list; storing anyway.", "fileName", sub.FileName)
	}

	res, err := h.pipeline.Submit(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, submitResponse(res, r.URL.Query().Get("q")))
}

func submitResponse(res *services.SubmitResult, term string) models.SubmitAchievementResponse {
	out := models.SubmitAchievementResponse{
		Status:       "success",
		SubmissionID: res.SubmissionID,
		RecordID:     res.RecordID,
		FileURL:      res.Asset.URL,
	}
	if res.RefreshErr != nil {
		out.RefreshError = res.RefreshErr.Error()
		out.Table = view.BuildTable(nil)
		return out
	}
	out.Table = view.BuildTable(view.Filter(res.Records, term))
	return out
}
