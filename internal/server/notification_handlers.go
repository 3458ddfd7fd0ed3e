package server

import (
	"launchpad/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListNotifications returns the caller's feed, newest first.
// Query: unread=true, limit (default 20, max 100), offset.
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	notes, err := s.notifications.List(c.UserContext(), caller(c), service.ListNotificationsInput{
		UnreadOnly: c.QueryBool("unread", false),
		Limit:      c.QueryInt("limit", 0),
		Offset:     c.QueryInt("offset", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notes)
}

func (s *Server) UnreadNotificationCount(c *fiber.Ctx) error {
	n, err := s.notifications.UnreadCount(c.UserContext(), caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	if err := s.notifications.MarkRead(c.UserContext(), caller(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notifications.MarkAllRead(c.UserContext(), caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}
