package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartbuspass/backend/ctxutil"
	"github.com/smartbuspass/backend/dates"
	"github.com/smartbuspass/backend/ecode"
	"github.com/smartbuspass/backend/net/resp"
)

type verifyPassBody struct {
	RiderID string `json:"user_id" binding:"required"`
	BusRef  string `json:"bus_id"`
}

// VerifyPass checks a rider's pass against the conductor's bus route
// and records the attempt in the ledger. An invalid or expired pass is
// a successful response with valid=false, not an error.
func (h *Handler) VerifyPass(c *gin.Context) {
	var body verifyPassBody
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(ecode.FieldIsRequired("user_id"), err.Error()))
		return
	}

	principal, ok := ctxutil.GetPrincipal(c.Request.Context())
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("Token is missing"))
		return
	}

	now := time.Now()
	outcome, err := h.verify.Verify(c.Request.Context(), body.RiderID, body.BusRef, now)
	if err != nil {
		h.logger.Error(c.Request.Context(), "pass verification failed", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("Verification failed"))
		return
	}

	h.verify.RecordAttempt(c.Request.Context(), outcome, principal.Conductor, body.BusRef, now)

	resp.Success(c.Writer, outcome)
}

// Verifications lists the calling conductor's ledger entries, newest
// first.
func (h *Handler) Verifications(c *gin.Context) {
	principal, ok := ctxutil.GetPrincipal(c.Request.Context())
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("Token is missing"))
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			resp.Fail(c.Writer, resp.BadRequest(ecode.FieldIsInvalid("limit")))
			return
		}
		limit = parsed
	}

	records, err := h.verify.History(c.Request.Context(), principal.Conductor, limit)
	if err != nil {
		h.logger.Error(c.Request.Context(), "failed to list verifications", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("Failed to list verifications"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"verifications": records,
		"count":         len(records),
	})
}

// VerificationHistory lists ledger entries for a bus on a given date,
// defaulting to today.
func (h *Handler) VerificationHistory(c *gin.Context) {
	busRef := c.Query("busId")
	if busRef == "" {
		resp.Fail(c.Writer, resp.BadRequest(ecode.FieldIsRequired("busId")))
		return
	}

	date := c.Query("date")
	if date == "" {
		date = dates.Format(time.Now())
	} else if dates.Parse(date) == nil {
		resp.Fail(c.Writer, resp.BadRequest(ecode.FieldIsInvalid("date")))
		return
	} else {
		date = dates.Format(date)
	}

	records, err := h.verify.BusHistory(c.Request.Context(), busRef, date)
	if err != nil {
		h.logger.Error(c.Request.Context(), "failed to list verification history", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("Failed to list verification history"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"verifications": records,
		"date":          date,
		"count":         len(records),
	})
}
