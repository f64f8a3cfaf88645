package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "crowdbond/internal/errors"
	"crowdbond/internal/services"
)

// ClaimHandler handles payout claim requests.
type ClaimHandler struct {
	claimService services.ClaimServicer
	auditService services.AuditServicer
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(claimService services.ClaimServicer, auditService services.AuditServicer) *ClaimHandler {
	return &ClaimHandler{
		claimService: claimService,
		auditService: auditService,
	}
}

// ClaimRequest represents the request payload for settling a claim.
// Certificate IDs are optional; when omitted the claim covers every
// certificate the caller owns in the round.
type ClaimRequest struct {
	CertificateIDs []uint `json:"certificate_ids" binding:"omitempty,dive,gt=0"`
}

// ClaimRound handles settling all payable phases for the caller's certificates.
// @Summary     Claim payouts
// @Description Settle every payable phase for the caller's certificates in a round
// @Tags        claims
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int          true  "Round ID"
// @Param       request body ClaimRequest false "Optional certificate IDs"
// @Success     200 {object} services.ClaimResult "Claim settled"
// @Failure     400 {object} ErrorResponse "Invalid parameters or duplicate certificates"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     409 {object} ErrorResponse "Nothing to claim or insufficient reward pool"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id}/claims [post]
func (h *ClaimHandler) ClaimRound(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	roundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.claimService.ClaimRound(userID, roundID, req.CertificateIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CLAIM_PAYOUT", "round", roundID, c.ClientIP(),
		map[string]interface{}{"total_payout": result.TotalPayout, "certificates": len(result.Payouts)})

	c.JSON(http.StatusOK, gin.H{"claim": result})
}

// Claimable handles previewing the caller's payable entitlement in a round.
// @Summary     Preview claimable payouts
// @Description Evaluate what the caller could claim right now without settling anything
// @Tags        claims
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Round ID"
// @Success     200 {object} services.ClaimResult "Payable entitlement"
// @Failure     400 {object} ErrorResponse "Invalid round ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id}/claims [get]
func (h *ClaimHandler) Claimable(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	roundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.claimService.Claimable(userID, roundID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"claimable": result})
}
