package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetPendingProducts lists the review queue (admin).
func (s *Server) GetPendingProducts(c *fiber.Ctx) error {
	products, err := s.moderation.GetPendingProducts(c.UserContext(), caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// ActivateProduct publishes a pending product (admin).
func (s *Server) ActivateProduct(c *fiber.Ctx) error {
	product, err := s.moderation.ActivateProduct(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// RejectProduct turns a pending product down with a reason (admin).
func (s *Server) RejectProduct(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	product, err := s.moderation.RejectProduct(c.UserContext(), caller(c), c.Params("id"), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.moderation.GetStats(c.UserContext(), caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
