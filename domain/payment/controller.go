package payment

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"payment-gateway/infrastructure/queue"
)

type Controller struct {
	service      *Service
	paymentQueue *queue.PaymentQueue
}

func NewController(service *Service, paymentQueue *queue.PaymentQueue) *Controller {
	return &Controller{service, paymentQueue}
}

func (c *Controller) InitRoutes(app *fiber.App) {
	app.Post("/payments", c.postPayment)
	app.Get("/payments-summary", c.getSummary)
	app.Post("/purge-payments", c.purge)
}

func (c *Controller) postPayment(ctx *fiber.Ctx) error {
	var input PostInput
	if err := ctx.BodyParser(&input); err != nil {
		return c.fail(ctx, ErrInvalidBody)
	}

	pending, err := c.service.Submit(ctx.Context(), input)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(PostOutput{
		CorrelationId: pending.CorrelationId.String(),
		Status:        string(pending.Status),
		Message:       "payment accepted for processing",
	})
}

func (c *Controller) getSummary(ctx *fiber.Ctx) error {
	summaryDate, err := parseSummaryDate(ctx.Query("from"), ctx.Query("to"))
	if err != nil {
		return c.fail(ctx, err)
	}

	summary, err := c.service.Summary(ctx.Context(), summaryDate)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(summary)
}

func (c *Controller) purge(ctx *fiber.Ctx) error {
	if err := c.service.Purge(ctx.Context()); err != nil {
		return c.fail(ctx, err)
	}

	if err := c.paymentQueue.Purge(); err != nil {
		return ctx.SendStatus(fiber.StatusInternalServerError)
	}

	return ctx.SendStatus(fiber.StatusOK)
}

func parseSummaryDate(from, to string) (SummaryDate, error) {
	var summaryDate SummaryDate
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return summaryDate, ErrInvalidBody
		}
		summaryDate.From = &t
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return summaryDate, ErrInvalidBody
		}
		summaryDate.To = &t
	}
	return summaryDate, nil
}

// fail maps the closed error-kind set to its HTTP status. Anything
// that is not an *Error is an internal failure by definition.
func (c *Controller) fail(ctx *fiber.Ctx, err error) error {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal
	}

	return ctx.Status(appErr.Kind.StatusCode()).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
