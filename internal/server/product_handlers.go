package server

import (
	"launchpad/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetActiveProducts returns the public directory feed.
func (s *Server) GetActiveProducts(c *fiber.Ctx) error {
	products, err := s.engagement.GetActiveProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GetProduct returns a product with its categories and images.
func (s *Server) GetProduct(c *fiber.Ctx) error {
	product, err := s.products.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// GetProductBySlug returns a live product page.
func (s *Server) GetProductBySlug(c *fiber.Ctx) error {
	product, err := s.products.GetProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.products.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// GetMyProducts lists the caller's products; anonymous callers get [].
func (s *Server) GetMyProducts(c *fiber.Ctx) error {
	products, err := s.products.GetOwnerProducts(c.UserContext(), caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// CreateProduct submits a product for review.
func (s *Server) CreateProduct(c *fiber.Ctx) error {
	var in service.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	product, err := s.products.CreateProduct(c.UserContext(), caller(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct edits the caller's product and sends it back to review. The
// response carries both the previous and the stored version.
func (s *Server) UpdateProduct(c *fiber.Ctx) error {
	var in service.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	ctx := c.UserContext()
	id := c.Params("id")

	previous, err := s.products.UpdateProduct(ctx, caller(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	current, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"previous": previous,
		"product":  current,
	})
}

// DeleteProduct removes the caller's product and everything attached to it.
func (s *Server) DeleteProduct(c *fiber.Ctx) error {
	deleted, err := s.products.DeleteProduct(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(deleted)
}
