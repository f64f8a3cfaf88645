package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "crowdbond/internal/errors"
	"crowdbond/internal/models"
	"crowdbond/internal/pagination"
	"crowdbond/internal/services"
)

// RoundHandler handles round lifecycle and investment requests.
type RoundHandler struct {
	roundService    services.RoundServicer
	treasuryService services.TreasuryServicer
	auditService    services.AuditServicer
}

// NewRoundHandler creates a new RoundHandler.
func NewRoundHandler(roundService services.RoundServicer, treasuryService services.TreasuryServicer, auditService services.AuditServicer) *RoundHandler {
	return &RoundHandler{
		roundService:    roundService,
		treasuryService: treasuryService,
		auditService:    auditService,
	}
}

// CreateRoundRequest represents the request payload for creating a round.
type CreateRoundRequest struct {
	Name          string    `json:"name" binding:"required,min=1,max=200"`
	Currency      string    `json:"currency" binding:"omitempty,iso4217"`
	UnitPrice     int64     `json:"unit_price" binding:"required,gt=0"`
	RewardRateBps int64     `json:"reward_rate_bps" binding:"required,gt=0,lte=10000"`
	SupplyCap     int64     `json:"supply_cap" binding:"required,gt=0"`
	OpenUntil     time.Time `json:"open_until" binding:"required"`
	Maturity      time.Time `json:"maturity" binding:"required"`
}

// InvestRequest represents the request payload for buying round units.
type InvestRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// SetActiveRequest represents the request payload for toggling a round.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateStatusRequest represents the request payload for a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,round_status"`
}

// AddRewardRequest represents the request payload for a reward pool top-up.
type AddRewardRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// EmergencyWithdrawRequest represents the request payload for the circuit breaker.
type EmergencyWithdrawRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// CreateRound handles round creation.
// @Summary     Create round
// @Description Create a new fundraising round with its treasury
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRoundRequest true "Round definition"
// @Success     201 {object} models.Round "Round created"
// @Failure     400 {object} ErrorResponse "Invalid parameters"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator capability required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds [post]
func (h *RoundHandler) CreateRound(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	round, err := h.roundService.CreateRound(adminID, req.Name, req.Currency,
		req.UnitPrice, req.RewardRateBps, req.SupplyCap, req.OpenUntil, req.Maturity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "CREATE_ROUND", "round", round.ID, c.ClientIP(),
		map[string]interface{}{"name": round.Name, "unit_price": round.UnitPrice, "supply_cap": round.SupplyCap})

	c.JSON(http.StatusCreated, gin.H{"round": round})
}

// ListRounds handles listing rounds.
// @Summary     List rounds
// @Description Get a paginated list of rounds, optionally filtered by status or active flag
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       status    query string false "Lifecycle status filter"
// @Param       active    query bool   false "Only active rounds"
// @Success     200 {object} pagination.PageResponse[models.Round] "Paginated rounds"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds [get]
func (h *RoundHandler) ListRounds(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.RoundFilter
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.RoundStatus(statusStr)
		filter.Status = &status
	}
	if c.Query("active") == "true" {
		filter.ActiveOnly = true
	}

	result, err := h.roundService.ListRounds(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRound handles retrieving a specific round.
// @Summary     Get round by ID
// @Description Get a round with its treasury balances
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Round ID"
// @Success     200 {object} models.Round "Round details"
// @Failure     400 {object} ErrorResponse "Invalid round ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id} [get]
func (h *RoundHandler) GetRound(c *gin.Context) {
	roundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	round, err := h.roundService.GetRound(roundID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"round": round})
}

// Invest handles buying units of a round.
// @Summary     Invest in a round
// @Description Buy units of a round; one certificate is minted per unit
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int           true "Round ID"
// @Param       request body InvestRequest true "Units to buy"
// @Success     201 {object} services.InvestmentReceipt "Investment settled"
// @Failure     400 {object} ErrorResponse "Invalid parameters or window closed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     409 {object} ErrorResponse "Supply exhausted"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id}/investments [post]
func (h *RoundHandler) Invest(c *gin.Context) {
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

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	receipt, err := h.roundService.Invest(userID, roundID, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "INVEST", "round", roundID, c.ClientIP(),
		map[string]interface{}{"quantity": req.Quantity, "cost": receipt.Cost})

	c.JSON(http.StatusCreated, gin.H{"receipt": receipt})
}

// SetActive handles toggling a round's active flag.
// @Summary     Set round active flag
// @Description Toggle whether the round accepts investments and claims
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Round ID"
// @Param       request body SetActiveRequest true "Active flag"
// @Success     200 {object} models.Round "Round updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator capability required"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id}/active [patch]
func (h *RoundHandler) SetActive(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	roundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	round, err := h.roundService.SetActive(adminID, roundID, *req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "SET_ROUND_ACTIVE", "round", roundID, c.ClientIP(),
		map[string]interface{}{"is_active": *req.IsActive})

	c.JSON(http.StatusOK, gin.H{"round": round})
}

// UpdateStatus handles a round lifecycle transition.
// @Summary     Update round status
// @Description Move a round to a new lifecycle status
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Round ID"
// @Param       request body UpdateStatusRequest true "New status"
// @Success     200 {object} models.Round "Round updated"
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator capability required"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id}/status [patch]
func (h *RoundHandler) UpdateStatus(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	roundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	round, err := h.roundService.UpdateStatus(adminID, roundID, models.RoundStatus(req.Status))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "UPDATE_ROUND_STATUS", "round", roundID, c.ClientIP(),
		map[string]interface{}{"status": req.Status})

	c.JSON(http.StatusOK, gin.H{"round": round})
}

// Withdraw handles the administrator withdrawal of a round's raised funds.
// @Summary     Withdraw round funds
// @Description Transfer the round's entire ledger balance to the administrator
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Round ID"
// @Success     200 {object} map[string]int64 "Withdrawn amount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator capability required"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id}/withdrawal [post]
func (h *RoundHandler) Withdraw(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	roundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	amount, err := h.roundService.Withdraw(adminID, roundID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "WITHDRAW_ROUND", "round", roundID, c.ClientIP(),
		map[string]interface{}{"amount": amount})

	c.JSON(http.StatusOK, gin.H{"withdrawn": amount})
}

// AddReward handles a reward pool top-up.
// @Summary     Add reward funds
// @Description Move funds from the administrator wallet into the round's reward pool
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Round ID"
// @Param       request body AddRewardRequest true "Reward amount"
// @Success     200 {object} models.RoundTreasury "Updated treasury"
// @Failure     400 {object} ErrorResponse "Invalid amount or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator capability required"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id}/rewards [post]
func (h *RoundHandler) AddReward(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	roundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	treasury, err := h.treasuryService.AddReward(adminID, roundID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "ADD_REWARD", "round", roundID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusOK, gin.H{"treasury": treasury})
}

// EmergencyWithdraw handles the administrator circuit breaker.
// @Summary     Emergency withdraw
// @Description Pull a bounded amount out of the round treasury through the normal debit path
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Round ID"
// @Param       request body EmergencyWithdrawRequest true "Amount"
// @Success     200 {object} models.RoundTreasury "Updated treasury"
// @Failure     400 {object} ErrorResponse "Invalid amount or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator capability required"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id}/emergency-withdrawal [post]
func (h *RoundHandler) EmergencyWithdraw(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	roundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EmergencyWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	treasury, err := h.treasuryService.EmergencyWithdraw(adminID, roundID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "EMERGENCY_WITHDRAW", "round", roundID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusOK, gin.H{"treasury": treasury})
}

// ListTreasuryEntries handles listing a round's treasury audit entries.
// @Summary     List treasury entries
// @Description Get a paginated list of the round's fund movements, newest first
// @Tags        rounds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  int true  "Round ID"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.TreasuryEntry] "Paginated entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator capability required"
// @Failure     404 {object} ErrorResponse "Round not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rounds/{id}/treasury/entries [get]
func (h *RoundHandler) ListTreasuryEntries(c *gin.Context) {
	roundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.treasuryService.ListEntries(roundID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
