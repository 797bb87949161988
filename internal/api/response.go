package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/quotedesk/rfq-client/pkg/model"
)

// statusForError maps domain error kinds onto HTTP statuses.
func statusForError(err error) int {
	var (
		validationErr *model.ValidationError
		ownershipErr  *model.OwnershipError
		notFoundErr   *model.RFQNotFoundError
		signatureErr  *model.SignatureError
		networkErr    *model.NetworkError
	)

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.As(err, &ownershipErr):
		return fiber.StatusForbidden
	case errors.As(err, &notFoundErr):
		return fiber.StatusNotFound
	case errors.As(err, &signatureErr):
		return fiber.StatusInternalServerError
	case errors.As(err, &networkErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
}
