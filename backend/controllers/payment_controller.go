package controllers

import (
	"lessons/backend/errs"
	"lessons/backend/metrics"
	"lessons/backend/middleware"
	"lessons/backend/models"
	"lessons/backend/payment"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const headerStripeSignature = "Stripe-Signature"

type PaymentController struct {
	Gate    *payment.Gate
	Metrics *metrics.Metrics
	Log     *utils.Logger
}

func NewPaymentController(gate *payment.Gate, m *metrics.Metrics, log *utils.Logger) *PaymentController {
	return &PaymentController{Gate: gate, Metrics: m, Log: log}
}

type CheckoutRequest struct {
	Plan string `json:"plan" example:"premium"`
}

type ConfirmRequest struct {
	SessionID string `json:"sessionId" validate:"required" example:"cs_test_a1b2c3"`
}

// Checkout godoc
// @Summary Start premium checkout
// @Description Opens a hosted checkout session and returns its URL
// @Tags payments
// @Accept json
// @Produce json
// @Param input body CheckoutRequest false "Plan, premium by default"
// @Success 200 {object} payment.CheckoutResult
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /payments/checkout [post]
func (pc *PaymentController) Checkout(c *fiber.Ctx) error {
	var input CheckoutRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &input); err != nil {
			return utils.Fail(c, err)
		}
	}
	res, err := pc.Gate.Checkout(c.UserContext(), middleware.Principal(c), input.Plan)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, fiber.StatusOK, res)
}

// ConfirmPayment godoc
// @Summary Confirm a paid checkout session
// @Description Idempotent: confirming the same session again records nothing new
// @Tags payments
// @Accept json
// @Produce json
// @Param input body ConfirmRequest true "Session"
// @Success 200 {object} payment.Result
// @Failure 400 {object} utils.ErrorResponse
// @Failure 402 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /payments/confirm [post]
func (pc *PaymentController) ConfirmPayment(c *fiber.Ctx) error {
	var input ConfirmRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}
	res, err := pc.Gate.ConfirmPayment(c.UserContext(), input.SessionID)
	pc.observe(res, err)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Message(c, "Payment confirmed", res)
}

// Webhook godoc
// @Summary Payment provider webhook
// @Description Verifies the signature and applies completed checkouts
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /payments/webhook [post]
func (pc *PaymentController) Webhook(c *fiber.Ctx) error {
	res, err := pc.Gate.ConfirmFromWebhook(c.UserContext(), c.Body(), c.Get(headerStripeSignature))
	if err != nil {
		pc.observe(nil, err)
		pc.Log.Warn("webhook rejected", "error", err, "request_id", middleware.RequestIDFrom(c))
		return utils.Fail(c, err)
	}
	if res == nil {
		return utils.Message(c, "Event ignored", nil)
	}
	pc.observe(res, nil)
	pc.Log.Info("webhook applied", "email", res.Email, "transaction", res.TransactionID, "recorded", res.Recorded)
	return utils.Message(c, "Payment confirmed", res)
}

// GetHistory godoc
// @Summary My payments
// @Tags payments
// @Produce json
// @Success 200 {array} models.Payment
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /payments/history [get]
func (pc *PaymentController) GetHistory(c *fiber.Ctx) error {
	items, err := pc.Gate.History(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return utils.Fail(c, err)
	}
	if items == nil {
		items = []models.Payment{}
	}
	return utils.Success(c, fiber.StatusOK, items)
}

// GetAllPayments godoc
// @Summary All payments
// @Tags admin
// @Produce json
// @Success 200 {array} models.Payment
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/payments [get]
func (pc *PaymentController) GetAllPayments(c *fiber.Ctx) error {
	items, err := pc.Gate.All(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return utils.Fail(c, err)
	}
	if items == nil {
		items = []models.Payment{}
	}
	return utils.Success(c, fiber.StatusOK, items)
}

func (pc *PaymentController) observe(res *payment.Result, err error) {
	switch {
	case err != nil:
		pc.Metrics.Payment(string(errs.KindOf(err)))
	case res.Recorded:
		pc.Metrics.Payment("recorded")
	default:
		pc.Metrics.Payment("replayed")
	}
}
