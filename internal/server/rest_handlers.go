package server

import (
	"postboard/internal/middleware"
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadImageRequest is the body of POST /uploadimages.
type UploadImageRequest struct {
	// Image is a data URI or a remote URL.
	Image string `json:"image"`
}

// UploadImageResponse is the API response after uploading an image.
type UploadImageResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// RemoveImageRequest is the body of POST /removeimage.
type RemoveImageRequest struct {
	PublicID string `json:"public_id"`
}

// RemoveImageResponse reports the outcome of POST /removeimage.
type RemoveImageResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Rest handles GET /rest, a token-protected liveness probe for REST clients.
func (s *Server) Rest(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": "hit rest endpoint great!"})
}

// FeatureFlagsResponse is the body of GET /feature-flags.
type FeatureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// FeatureFlags handles GET /feature-flags, evaluating rollouts for the caller.
func (s *Server) FeatureFlags(c *fiber.Ctx) error {
	var subject string
	if id := middleware.IdentityFrom(c); id != nil {
		subject = id.UID
	}
	return c.JSON(FeatureFlagsResponse{
		Raw:       s.flags.Raw(),
		Evaluated: s.flags.Snapshot(subject),
	})
}

// UploadImages handles POST /uploadimages
func (s *Server) UploadImages(c *fiber.Ctx) error {
	var req UploadImageRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	img, err := s.images.Upload(c.UserContext(), req.Image)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}
	return c.JSON(UploadImageResponse{URL: img.URL, PublicID: img.PublicID})
}

// RemoveImage handles POST /removeimage
func (s *Server) RemoveImage(c *fiber.Ctx) error {
	var req RemoveImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(RemoveImageResponse{Error: "Invalid request body"})
	}

	if err := s.images.Remove(c.UserContext(), req.PublicID); err != nil {
		return c.Status(models.HTTPStatus(err)).JSON(RemoveImageResponse{
			Error: models.AsAppError(err).Message,
		})
	}
	return c.JSON(RemoveImageResponse{Success: true})
}
