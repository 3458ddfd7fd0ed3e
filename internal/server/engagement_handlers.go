package server

import (
	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Body string `json:"body"`
}

// CreateComment posts a comment on a product.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	comment, err := s.engagement.CommentOnProduct(c.UserContext(), caller(c), c.Params("id"), req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment removes a comment (author, product owner or admin).
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	deleted, err := s.engagement.DeleteComment(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(deleted)
}

// ToggleUpvote adds the caller's upvote, or removes it when present.
func (s *Server) ToggleUpvote(c *fiber.Ctx) error {
	result, err := s.engagement.UpvoteProduct(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
