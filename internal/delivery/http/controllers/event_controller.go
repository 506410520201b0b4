package controllers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// maxUploadBytes bounds the multipart form held in memory per request.
const maxUploadBytes = 32 << 20

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// EventPageSuccessResponse is the success response envelope for the event list endpoints (200).
type EventPageSuccessResponse struct {
	Data  *domain.EventPage `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns one page of non-deleted events, each with its image URLs in display order, plus the total number of events.
// @Tags events
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	page, err := c.Service.ListPage(r.Context(), params)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// ListEventsByStatus godoc
// @Summary List events filtered by status
// @Description Returns one page of events whose time window matches the filter (upcoming, ongoing, past); the total reflects only matching events.
// @Tags events
// @Produce json
// @Param filter path string true "Status filter: upcoming, ongoing or past"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/status/{filter} [get]
func (c *EventController) ListEventsByStatus(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	filter := domain.EventStatusFilter(r.PathValue("filter"))
	page, err := c.Service.ListByStatus(r.Context(), params, filter)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.EventWithImages `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// GetEvent godoc
// @Summary Get one event
// @Description Returns the event with its image URLs. Soft-deleted events are indistinguishable from absent ones.
// @Tags events
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.FindByID(r.Context(), eventID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event from a multipart form (fields: name, description, location, start_time, end_time, point, max_attenders; files: images). At least one image is required. Event, images, and the notification broadcast commit atomically.
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	req, uploads, ok := c.parseEventForm(w, r)
	if !ok {
		return
	}
	event, err := c.Service.Create(r.Context(), req, uploads)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces the event fields; when the form carries new images the whole image set is replaced in the same transaction.
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	req, uploads, ok := c.parseEventForm(w, r)
	if !ok {
		return
	}
	event, err := c.Service.Update(r.Context(), domain.EventUpdateRequest{
		EventID:            eventID,
		EventCreateRequest: req,
	}, uploads)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /admin/events/{eventID}.
type DeleteEventSuccessResponse struct {
	Data  bool              `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEvent godoc
// @Summary Soft-delete an event
// @Description Marks the event deleted and retracts its notifications. Returns data=false (not an error) when the event does not exist; deletion is idempotent.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.DeleteEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	deleted, err := c.Service.SoftDelete(r.Context(), eventID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, deleted)
}

// ListAttendedSuccessResponse is the success response envelope for GET /me/events/attended.
type ListAttendedSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListMyAttendedEvents godoc
// @Summary List events the current user attended
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListAttendedSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/events/attended [get]
func (c *EventController) ListMyAttendedEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListAttendedByUser(r.Context(), userID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// parseEventForm reads the multipart form into the create request plus the
// uploaded images. ok is false after a 400 was written.
func (c *EventController) parseEventForm(w http.ResponseWriter, r *http.Request) (domain.EventCreateRequest, []domain.ImageUpload, bool) {
	var req domain.EventCreateRequest

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form: "+err.Error())
		return req, nil, false
	}

	req.Name = r.FormValue("name")
	req.Description = r.FormValue("description")
	req.Location = r.FormValue("location")

	var err error
	if req.StartTime, err = time.Parse(time.RFC3339, r.FormValue("start_time")); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start_time must be RFC3339")
		return req, nil, false
	}
	if req.EndTime, err = time.Parse(time.RFC3339, r.FormValue("end_time")); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end_time must be RFC3339")
		return req, nil, false
	}
	if s := r.FormValue("point"); s != "" {
		if req.Point, err = strconv.Atoi(s); err != nil || req.Point < 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "point must be a non-negative integer")
			return req, nil, false
		}
	}
	if req.MaxAttenders, err = parsePositiveInt(r.FormValue("max_attenders")); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "max_attenders must be a positive integer")
		return req, nil, false
	}

	var uploads []domain.ImageUpload
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unreadable image "+header.Filename)
				return req, nil, false
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unreadable image "+header.Filename)
				return req, nil, false
			}
			uploads = append(uploads, domain.ImageUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return req, uploads, true
}

func parsePositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("must be positive")
	}
	return v, nil
}
