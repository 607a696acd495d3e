package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docsift/docsift-api/internal/api/middleware"
	"github.com/docsift/docsift-api/internal/api/shared"
	"github.com/docsift/docsift-api/internal/domain"
	"github.com/docsift/docsift-api/internal/platform/logger"
	"github.com/docsift/docsift-api/internal/service"
)

// TaskHandler handles task-related HTTP requests. It is the multipart
// boundary: it decodes the upload, validates and normalizes the model
// selection, and hands the already-authenticated owner plus the finite
// document payload to the task service.
type TaskHandler struct {
	taskService    service.TaskService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(
	taskService service.TaskService,
	maxUploadBytes int64,
	log *slog.Logger,
) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}

	return &TaskHandler{
		taskService:    taskService,
		maxUploadBytes: maxUploadBytes,
		logger:         log.With("component", "task_handler"),
	}
}

// CreateTask handles POST /api/task requests. The multipart form carries a
// "file" part with the document and a "model" field selecting the extraction
// variant. Responds 202 with the task snapshot; processing happens
// asynchronously and callers poll GetTask for completion.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := middleware.GetOwnerID(r)
	if !ok || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Owner identity not found")
		return
	}

	// Bound the multipart body before any parsing touches it.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	model, err := domain.ParseModel(r.FormValue("model"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid extraction model")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing file upload")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Error("failed to close upload file", "error", err)
		}
	}()

	taskID, err := h.taskService.CreateTask(r.Context(), ownerID, model, service.Document{
		Reader: file,
		Size:   header.Size,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err,
		)
		return
	}

	// Read the snapshot back through the service so the response reflects
	// the durably visible record, not an in-memory echo of the request.
	task, err := h.taskService.GetTask(r.Context(), ownerID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(task))
}

// GetTask handles GET /api/task/{id} requests. Malformed ids are rejected
// before any repository round-trip.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r)
	if !ok || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Owner identity not found")
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	task, err := h.taskService.GetTask(r.Context(), ownerID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
