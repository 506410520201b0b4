package controllers

import (
	"io"
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// RegistrationSuccessResponse is the success response envelope for registration endpoints.
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// Register godoc
// @Summary Register the current user for an event
// @Description Registers the authenticated user. Capacity is enforced under concurrency: the event row is locked for the whole check-then-write sequence, so an event never exceeds max_attenders.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded or already_registered"
// @Failure 503 {object} helpers.APIResponse "error.code: lock_timeout (retryable)"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.Register(r.Context(), eventID, userID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Cancel godoc
// @Summary Cancel the current user's registration
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/registrations [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Cancel(r.Context(), eventID, userID); err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "registration cancelled")
}

// IsRegisteredSuccessResponse is the success response envelope for GET /events/{eventID}/registrations/me.
type IsRegisteredSuccessResponse struct {
	Data  bool              `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// IsRegistered godoc
// @Summary Check whether the current user holds an active registration
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.IsRegisteredSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/{eventID}/registrations/me [get]
func (c *RegistrationController) IsRegistered(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	registered, err := c.Service.IsRegistered(r.Context(), eventID, userID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, registered)
}

// AttendanceImageSuccessResponse is the success response envelope for POST /events/{eventID}/attendance-images.
type AttendanceImageSuccessResponse struct {
	Data  *domain.AttendanceImage `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// UploadAttendanceImage godoc
// @Summary Upload a proof-of-presence photo for an event
// @Description Stores one attendance photo for the authenticated user. Requires an active registration for the event.
// @Tags registrations
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param image formData file true "Attendance photo"
// @Success 201 {object} controllers.AttendanceImageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no active registration)"
// @Router /events/{eventID}/attendance-images [post]
func (c *RegistrationController) UploadAttendanceImage(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	upload, ok := parseAttendanceImage(w, r)
	if !ok {
		return
	}
	img, err := c.Service.AttachAttendanceImage(r.Context(), eventID, userID, upload)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, img)
}

// ListMyAttendanceImagesSuccessResponse is the success response envelope for GET /events/{eventID}/attendance-images/me.
type ListMyAttendanceImagesSuccessResponse struct {
	Data  []*domain.AttendanceImage `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ListMyAttendanceImages godoc
// @Summary List the current user's attendance photos for an event
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.ListMyAttendanceImagesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendance-images/me [get]
func (c *RegistrationController) ListMyAttendanceImages(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	images, err := c.Service.ListAttendanceImages(r.Context(), eventID, userID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, images)
}

// ListRegistrantAttendanceImages godoc
// @Summary List one registrant's attendance photos for an event
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param userID path int true "User ID"
// @Success 200 {object} controllers.ListMyAttendanceImagesSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/registrants/{userID}/attendance-images [get]
func (c *RegistrationController) ListRegistrantAttendanceImages(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	images, err := c.Service.ListAttendanceImages(r.Context(), eventID, userID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, images)
}

// parseAttendanceImage reads the single "image" file from the multipart
// form. ok is false after a 400 was written.
func parseAttendanceImage(w http.ResponseWriter, r *http.Request) (domain.ImageUpload, bool) {
	var upload domain.ImageUpload
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form: "+err.Error())
		return upload, false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "image file is required")
		return upload, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unreadable image "+header.Filename)
		return upload, false
	}
	upload = domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return upload, true
}

// ListRegistrantsSuccessResponse is the success response envelope for GET /admin/events/{eventID}/registrants.
type ListRegistrantsSuccessResponse struct {
	Data  []*domain.Registration `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListRegistrants godoc
// @Summary List every registration of an event
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.ListRegistrantsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/registrants [get]
func (c *RegistrationController) ListRegistrants(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	regs, err := c.Service.ListRegistrants(r.Context(), eventID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// RemoveRegistrant godoc
// @Summary Remove a registrant from an event
// @Description Cancels the given user's active registration on their behalf. Takes the same per-event lock as user registration.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param userID path int true "User ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/registrants/{userID} [delete]
func (c *RegistrationController) RemoveRegistrant(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := c.Service.RemoveRegistrant(r.Context(), eventID, userID); err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "registrant removed")
}

// UpdateRegistrantStatusRequest is the request body for PUT /admin/events/{eventID}/registrants/{userID}/status.
type UpdateRegistrantStatusRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (r *UpdateRegistrantStatusRequest) Validate() []string {
	if !domain.RegistrationStatus(r.Status).Valid() {
		return []string{"status must be one of: registered, cancelled, attended_predicted, attended_confirmed"}
	}
	return nil
}

// UpdateRegistrantStatus godoc
// @Summary Correct one registrant's status
// @Description Applies a validated status transition for the given registrant, under the per-event lock.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param userID path int true "User ID"
// @Param body body controllers.UpdateRegistrantStatusRequest true "New status"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown status or illegal transition)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/registrants/{userID}/status [put]
func (c *RegistrationController) UpdateRegistrantStatus(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var req UpdateRegistrantStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.UpdateRegistrantStatus(r.Context(), eventID, userID, domain.RegistrationStatus(req.Status)); err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "status updated")
}

// PredictAttendanceSuccessResponse is the success response envelope for POST /admin/events/{eventID}/registrations/predict.
type PredictAttendanceSuccessResponse struct {
	Data  int               `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PredictAttendance godoc
// @Summary Resolve predicted attendance for an event
// @Description Moves every registered row of the event to attended_predicted, under the per-event lock. Returns the number of affected registrations.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.PredictAttendanceSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/registrations/predict [post]
func (c *RegistrationController) PredictAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	changed, err := c.Service.MarkPredictedAttendance(r.Context(), eventID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, changed)
}
