package server

import (
	"context"

	"chronicle/internal/models"
	"chronicle/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title               string   `json:"title"`
	Content             string   `json:"content"`
	Excerpt             string   `json:"excerpt"`
	FeaturedImageURL    string   `json:"featured_image_url"`
	AdditionalImageURLs []string `json:"additional_image_urls"`
	CategoryID          *uint    `json:"category_id"`
	Tags                []string `json:"tags"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:              userID,
		Title:               req.Title,
		Content:             req.Content,
		Excerpt:             req.Excerpt,
		FeaturedImageURL:    req.FeaturedImageURL,
		AdditionalImageURLs: req.AdditionalImageURLs,
		CategoryID:          req.CategoryID,
		Tags:                req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	views, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(views)
}

// GetLightweightPosts handles GET /api/posts/lightweight
func (s *Server) GetLightweightPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListLightweight(c.UserContext(), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetLatestNews handles GET /api/posts/latest
func (s *Server) GetLatestNews(c *fiber.Ctx) error {
	page, err := s.postService.ListLatestNews(c.UserContext(), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetTrendingPosts handles GET /api/posts/trending
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	views, err := s.postService.TrendingPosts(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(views)
}

// GetFeaturedPosts handles GET /api/posts/featured
func (s *Server) GetFeaturedPosts(c *fiber.Ctx) error {
	views, err := s.postService.FeaturedPosts(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(views)
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	page, err := s.postService.SearchPosts(c.UserContext(), c.Query("q"), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// GetPostBySlug handles GET /api/posts/slug/:slug
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	view, err := s.postService.GetPostBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// GetPostsByCategory handles GET /api/posts/category/:name
func (s *Server) GetPostsByCategory(c *fiber.Ctx) error {
	page, err := s.postService.ListByCategory(c.UserContext(), c.Params("name"), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetMyPosts handles GET /api/posts/mine
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListMyPosts(c.UserContext(), currentUserID(c), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:              currentUserID(c),
		PostID:              id,
		Title:               req.Title,
		Content:             req.Content,
		Excerpt:             req.Excerpt,
		FeaturedImageURL:    req.FeaturedImageURL,
		AdditionalImageURLs: req.AdditionalImageURLs,
		CategoryID:          req.CategoryID,
		Tags:                req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: id,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.postService.LikePost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	unliked, err := s.postService.UnlikePost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unliked": unliked})
}

type flagRequest struct {
	Value bool `json:"value"`
}

// SetPostFeatured handles PUT /api/posts/:id/featured
func (s *Server) SetPostFeatured(c *fiber.Ctx) error {
	return s.setPostFlag(c, s.postService.SetFeatured)
}

// SetPostLatestNews handles PUT /api/posts/:id/latest-news
func (s *Server) SetPostLatestNews(c *fiber.Ctx) error {
	return s.setPostFlag(c, s.postService.SetLatestNews)
}

func (s *Server) setPostFlag(c *fiber.Ctx, set func(ctx context.Context, in service.SetPostFlagInput) error) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req flagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := set(c.UserContext(), service.SetPostFlagInput{
		UserID: currentUserID(c),
		PostID: id,
		Value:  req.Value,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
