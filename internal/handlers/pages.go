package handlers

import (
	"net/http"

	"candor-backend/internal/models"

	"github.com/labstack/echo/v4"
)

// IndexPage renders the landing page
func (h *FeedbackHandler) IndexPage(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", nil)
}

// AdminPage renders the invite management page
func (h *FeedbackHandler) AdminPage(c echo.Context) error {
	return c.Render(http.StatusOK, "admin.html", nil)
}

// FeedbackFormPage renders the redemption form. The token from the query is
// handed to the page as-is; it is only checked against the registry when the
// form is submitted.
func (h *FeedbackHandler) FeedbackFormPage(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("invalid_format", "Token not found in the query parameters."))
	}

	return c.Render(http.StatusOK, "feedback-form.html", map[string]interface{}{
		"Token": token,
	})
}

// Hello returns a static greeting kept around for client smoke tests
func (h *FeedbackHandler) Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Hello, World!",
	})
}
