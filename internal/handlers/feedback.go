package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"candor-backend/internal/common"
	"candor-backend/internal/config"
	"candor-backend/internal/email"
	"candor-backend/internal/feedback"
	"candor-backend/internal/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type FeedbackHandler struct {
	common.ServerState
	Registry  *feedback.Registry
	Inviter   *feedback.Inviter
	Collector *feedback.Collector
}

type InviteRequest struct {
	Emails []string `json:"emails" validate:"required,min=1"`
}

func NewFeedbackHandler(db *gorm.DB, cfg *config.Config, notifier email.Notifier, logger echo.Logger) *FeedbackHandler {
	registry := feedback.NewRegistry(db)

	return &FeedbackHandler{
		ServerState: common.ServerState{
			DB:       db,
			Config:   cfg,
			Notifier: notifier,
		},
		Registry:  registry,
		Inviter:   feedback.NewInviter(registry, notifier, cfg, logger),
		Collector: feedback.NewCollector(registry),
	}
}

// ListFeedbacks returns every submitted feedback entry in submission order
func (h *FeedbackHandler) ListFeedbacks(c echo.Context) error {
	records, err := h.Registry.Feedbacks()
	if err != nil {
		c.Logger().Errorf("Failed to list feedbacks: %v", err)
		return c.JSON(http.StatusInternalServerError,
			models.NewErrorResponse("internal_error", "Failed to fetch feedbacks"))
	}

	return c.JSON(http.StatusOK, map[string][]models.FeedbackRecord{
		"feedbacks": records,
	})
}

// SendInvites issues invite tokens for a batch of addresses and mails out the
// redemption links. Outcomes are reported per address; the endpoint itself
// only fails on a malformed payload.
func (h *FeedbackHandler) SendInvites(c echo.Context) error {
	// Decode in two steps so a missing key and a malformed array produce
	// different messages
	var payload map[string]json.RawMessage
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("invalid_format", "Invalid or empty email array."))
	}

	rawEmails, ok := payload["emails"]
	if !ok {
		return c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("invalid_format", "No 'emails' key found in the JSON payload."))
	}

	req := new(InviteRequest)
	if err := json.Unmarshal(rawEmails, &req.Emails); err != nil {
		return c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("invalid_format", "Invalid or empty email array."))
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("invalid_format", "Invalid or empty email array."))
	}

	return c.JSON(http.StatusOK, h.Inviter.InviteAll(req.Emails))
}

// SubmitFeedback redeems an invite token with the submitted feedback text
func (h *FeedbackHandler) SubmitFeedback(c echo.Context) error {
	var payload map[string]json.RawMessage
	if err := c.Bind(&payload); err != nil {
		return submitPayloadError(c)
	}

	rawToken, hasToken := payload["token"]
	rawFeedback, hasFeedback := payload["feedback"]
	if !hasToken || !hasFeedback {
		return submitPayloadError(c)
	}

	var token, feedbackText string
	if err := json.Unmarshal(rawToken, &token); err != nil {
		return submitPayloadError(c)
	}
	if err := json.Unmarshal(rawFeedback, &feedbackText); err != nil {
		return submitPayloadError(c)
	}

	if _, err := h.Collector.Submit(token, feedbackText); err != nil {
		return submitFailure(c, token, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Feedback submitted successfully!",
	})
}

func submitPayloadError(c echo.Context) error {
	return c.JSON(http.StatusBadRequest,
		models.NewErrorResponse("invalid_format", "Invalid or missing 'token' or 'feedback' in the JSON payload."))
}

// submitFailure maps collector errors onto the API's status categories. Only
// the generic branch logs: every other case is an expected client error.
func submitFailure(c echo.Context, token string, err error) error {
	switch {
	case errors.Is(err, feedback.ErrInvalidFormat):
		return c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("invalid_format", "Invalid token format."))
	case errors.Is(err, feedback.ErrNotFound):
		return c.JSON(http.StatusNotFound,
			models.NewErrorResponse("not_found", fmt.Sprintf("Token '%s' not found.", token)))
	case errors.Is(err, feedback.ErrAlreadyRedeemed):
		return c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("already_redeemed", "Feedback already submitted for this token."))
	case errors.Is(err, feedback.ErrInvalidBody):
		return c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("invalid_body", "Feedback text must not be empty."))
	case errors.Is(err, feedback.ErrInvalidRecipient):
		return c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("invalid_recipient", "Invalid email address."))
	default:
		c.Logger().Errorf("Failed to submit feedback: %v", err)
		return c.JSON(http.StatusInternalServerError,
			models.NewErrorResponse("internal_error", "Failed to submit feedback"))
	}
}
