package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "crowdbond/internal/errors"
	"crowdbond/internal/pagination"
	"crowdbond/internal/services"
)

// CertificateHandler handles certificate registry requests.
type CertificateHandler struct {
	certificateService services.CertificateServicer
	auditService       services.AuditServicer
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certificateService services.CertificateServicer, auditService services.AuditServicer) *CertificateHandler {
	return &CertificateHandler{
		certificateService: certificateService,
		auditService:       auditService,
	}
}

// TransferRequest represents the request payload for a certificate transfer.
type TransferRequest struct {
	NewOwnerID uint `json:"new_owner_id" binding:"required,gt=0"`
}

// ListCertificates handles listing the caller's certificates.
// @Summary     List certificates
// @Description Get a paginated list of certificates owned by the caller
// @Tags        certificates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Certificate] "Paginated certificates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /certificates [get]
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.certificateService.OwnedBy(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCertificate handles retrieving one of the caller's certificates.
// @Summary     Get certificate by ID
// @Description Get a certificate the caller owns, including its round
// @Tags        certificates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Certificate ID"
// @Success     200 {object} models.Certificate "Certificate details"
// @Failure     400 {object} ErrorResponse "Invalid certificate ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Certificate not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /certificates/{id} [get]
func (h *CertificateHandler) GetCertificate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	certificateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	certificate, err := h.certificateService.GetCertificate(userID, certificateID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"certificate": certificate})
}

// Transfer handles moving a certificate to another holder.
// @Summary     Transfer certificate
// @Description Transfer a certificate the caller owns to another active user
// @Tags        certificates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true "Certificate ID"
// @Param       request body TransferRequest true "Recipient"
// @Success     200 {object} models.Certificate "Certificate transferred"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Certificate or recipient not found"
// @Failure     409 {object} ErrorResponse "Certificate locked during claim settlement"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /certificates/{id}/transfer [post]
func (h *CertificateHandler) Transfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	certificateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	certificate, err := h.certificateService.Transfer(userID, certificateID, req.NewOwnerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "TRANSFER_CERTIFICATE", "certificate", certificateID, c.ClientIP(),
		map[string]interface{}{"new_owner_id": req.NewOwnerID})

	c.JSON(http.StatusOK, gin.H{"certificate": certificate})
}
