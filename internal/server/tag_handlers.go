package server

import (
	"chronicle/internal/models"
	"chronicle/internal/service"

	"github.com/gofiber/fiber/v2"
)

type tagRequest struct {
	Name string `json:"name"`
}

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	views, err := s.tagService.ListTags(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(views)
}

// GetTag handles GET /api/tags/:id
func (s *Server) GetTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.tagService.GetTag(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// CreateTag handles POST /api/tags
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req tagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	view, err := s.tagService.CreateTag(c.UserContext(), service.CreateTagInput{
		UserID: currentUserID(c),
		Name:   req.Name,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// DeleteTag handles DELETE /api/tags/:id
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.tagService.DeleteTag(c.UserContext(), service.DeleteTagInput{
		UserID: currentUserID(c),
		TagID:  id,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPostsByTag handles GET /api/tags/:name/posts
func (s *Server) GetPostsByTag(c *fiber.Ctx) error {
	page, err := s.tagService.PostsByTag(c.UserContext(), c.Params("name"), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}
