package server

import (
	"chronicle/internal/models"
	"chronicle/internal/service"

	"github.com/gofiber/fiber/v2"
)

type categoryRequest struct {
	Name string `json:"name"`
}

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	views, err := s.categoryService.ListCategories(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(views)
}

// GetCategoriesDigest handles GET /api/categories/digest
func (s *Server) GetCategoriesDigest(c *fiber.Ctx) error {
	digests, err := s.categoryService.Digest(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(digests)
}

// GetCategory handles GET /api/categories/:id
func (s *Server) GetCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.categoryService.GetCategory(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// CreateCategory handles POST /api/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	view, err := s.categoryService.CreateCategory(c.UserContext(), service.CreateCategoryInput{
		UserID: currentUserID(c),
		Name:   req.Name,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// UpdateCategory handles PUT /api/categories/:id
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	view, err := s.categoryService.UpdateCategory(c.UserContext(), service.UpdateCategoryInput{
		UserID:     currentUserID(c),
		CategoryID: id,
		Name:       req.Name,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// DeleteCategory handles DELETE /api/categories/:id
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.categoryService.DeleteCategory(c.UserContext(), service.DeleteCategoryInput{
		UserID:     currentUserID(c),
		CategoryID: id,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
