package handlers

import (
	"errors"
	"log"
	"time"

	"montoit/internal/models"
	"montoit/internal/services/verification"
	"montoit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries the hex HMAC of the callback body.
const SignatureHeader = "x-smile-signature"

type VerificationHandler struct {
	service verification.Service
}

func NewVerificationHandler(s verification.Service) *VerificationHandler {
	return &VerificationHandler{service: s}
}

// Submit handles POST /smile-id-submit.
func (h *VerificationHandler) Submit(c *fiber.Ctx) error {
	var req verification.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if !ownsUser(c, req.UserID) {
		return response.Forbidden(c, "token does not belong to this user")
	}

	res, err := h.service.Submit(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}

	return response.Success(c, fiber.Map{
		"jobId":         res.JobID,
		"status":        res.Status,
		"partnerParams": res.PartnerParams,
		"timestamp":     res.Timestamp,
	})
}

// Status handles GET /smile-id-status?jobId=.
func (h *VerificationHandler) Status(c *fiber.Ctx) error {
	jobID := c.Query("jobId")
	if jobID == "" {
		return response.BadRequest(c, "jobId is required")
	}

	res, err := h.service.PollStatus(c.UserContext(), jobID)
	if err != nil {
		return h.fail(c, err)
	}

	return response.Success(c, fiber.Map{
		"jobId":     res.JobID,
		"userId":    res.UserID,
		"status":    res.Status,
		"result":    res.Result,
		"timestamp": res.Timestamp,
	})
}

// Callback handles POST /smile-id-callback. The raw body is handed over
// untouched since the signature covers its exact bytes.
func (h *VerificationHandler) Callback(c *fiber.Ctx) error {
	res, err := h.service.HandleCallback(c.UserContext(), c.Body(), c.Get(SignatureHeader))
	if err != nil {
		return h.fail(c, err)
	}

	return response.Success(c, fiber.Map{
		"job_id":    res.JobID,
		"timestamp": res.Timestamp,
	})
}

// CallbackHealth handles GET /smile-id-callback.
func (h *VerificationHandler) CallbackHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   "Smile ID Callback",
		"timestamp": time.Now().UTC(),
	})
}

// Token handles POST /smile-id-token.
func (h *VerificationHandler) Token(c *fiber.Ctx) error {
	var req verification.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if !ownsUser(c, req.UserID) {
		return response.Forbidden(c, "token does not belong to this user")
	}

	res, err := h.service.IssueToken(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}

	return response.Success(c, fiber.Map{
		"signature":     res.Signature,
		"timestamp":     res.Timestamp,
		"partnerId":     res.PartnerID,
		"jobId":         res.JobID,
		"jobType":       res.JobType,
		"partnerParams": res.PartnerParams,
		"callbackUrl":   res.CallbackURL,
		"sandbox":       res.Sandbox,
	})
}

// WebToken handles POST /smile-id-web-token. An empty body is accepted and
// defaults to the authenticated user, if any.
func (h *VerificationHandler) WebToken(c *fiber.Ctx) error {
	var req verification.WebTokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	}
	if claims, ok := c.Locals("claims").(*models.UserClaims); ok && claims != nil && req.UserID == "" {
		req.UserID = claims.UserID()
	}
	if !ownsUser(c, req.UserID) {
		return response.Forbidden(c, "token does not belong to this user")
	}

	res, err := h.service.IssueWebToken(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}

	body := fiber.Map{}
	for k, v := range res.Token {
		body[k] = v
	}
	return response.Success(c, body)
}

func (h *VerificationHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, verification.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, verification.ErrInvalidSignature):
		return response.Unauthorized(c, "invalid signature")
	case errors.Is(err, verification.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, verification.ErrConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, verification.ErrConfiguration):
		return response.ServerError(c, "Configuration error", err.Error())
	case errors.Is(err, verification.ErrVendor):
		return response.ServerError(c, "Smile ID API error", err.Error())
	default:
		log.Printf("verification request %s %s failed: %v", c.Method(), c.Path(), err)
		return response.ServerError(c, "Internal server error", err.Error())
	}
}

// ownsUser reports whether the authenticated caller may act for userID.
// Without claims (auth disabled) or without a userID there is nothing to compare.
func ownsUser(c *fiber.Ctx, userID string) bool {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil || userID == "" {
		return true
	}
	return claims.UserID() == userID
}
