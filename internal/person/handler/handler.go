package handler

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"personpatch/internal/person/models"
	id "personpatch/pkg/domain"
	dErrors "personpatch/pkg/domain-errors"
	"personpatch/pkg/mergepatch"
	"personpatch/pkg/platform/httputil"
	"personpatch/pkg/requestcontext"
)

// MergePatchContentType is the only media type PATCH accepts.
const MergePatchContentType = "application/merge-patch+json"

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for person operations.
type Service interface {
	List(ctx context.Context) ([]*models.Person, error)
	Get(ctx context.Context, personID id.PersonID) (*models.Person, error)
	Create(ctx context.Context, req *models.PersonRequest) (*models.Person, error)
	Patch(ctx context.Context, personID id.PersonID, patch mergepatch.Node) (*models.Person, error)
}

// Handler wires /people endpoints to the person service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a person handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts person endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/people", h.HandleList)
	r.Post("/people", h.HandleCreate)
	r.Get("/people/{id}", h.HandleGet)
	r.With(requireContentType(MergePatchContentType)).Patch("/people/{id}", h.HandlePatch)
}

// HandleList handles GET /people. An empty collection is reported as 404.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	people, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list people",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if len(people) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no people stored"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponses(people))
}

// HandleGet handles GET /people/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	personID, err := id.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Get(ctx, personID)
	if err != nil {
		h.logFailure(ctx, "failed to get person", requestID, personID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(p))
}

// HandleCreate handles POST /people. The response body is the new id as
// plain text and Location points at the created resource.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeJSON[models.PersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Create(ctx, req)
	if err != nil {
		h.logFailure(ctx, "failed to create person", requestID, "", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "person created",
		"request_id", requestID,
		"person_id", p.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.Header().Set("Location", "/people/"+p.ID.String())
	httputil.WriteText(w, http.StatusCreated, p.ID.String())
}

// HandlePatch handles PATCH /people/{id} with an RFC 7396 merge patch body.
func (h *Handler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	personID, err := id.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	body, err := httputil.ReadBody(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	patch, err := mergepatch.Parse(body)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "patch body is not valid JSON"))
		return
	}

	p, err := h.service.Patch(ctx, personID, patch)
	if err != nil {
		h.logFailure(ctx, "failed to patch person", requestID, personID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "person patched",
		"request_id", requestID,
		"person_id", personID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(p))
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, personID id.PersonID, err error) {
	level := slog.LevelError
	if dErrors.ToHTTPStatus(dErrors.CodeOf(err)) < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"person_id", personID,
		"error_code", dErrors.CodeOf(err),
		"error", err,
	)
}

// requireContentType rejects requests whose media type is not contentType
// with a 415 error body. Parameters such as charset are ignored.
func requireContentType(contentType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != contentType {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnsupportedMedia, "content type must be "+contentType))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
