package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"crowdbond/internal/handlers"
	"crowdbond/internal/logger"
	"crowdbond/internal/middleware"
	"crowdbond/internal/models"
	"crowdbond/internal/services"
	"crowdbond/internal/validator"
)

// adminEmail is the registration email that receives the administrator role
// in integration tests.
const adminEmail = "admin@crowdbond.test"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Rounds services.RoundServicer
	Claims services.ClaimServicer
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Wallet{},
		&models.Round{},
		&models.RoundTreasury{},
		&models.Certificate{},
		&models.TreasuryEntry{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	locks := services.NewRoundLocks()
	userService := services.NewUserService(db, adminEmail)
	walletService := services.NewWalletService(db)
	treasuryService := services.NewTreasuryService(db, walletService, locks)
	certificateService := services.NewCertificateService(db)
	roundService := services.NewRoundService(db, treasuryService, certificateService, walletService, locks)
	claimService := services.NewClaimService(db, treasuryService, certificateService, walletService, locks)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	walletHandler := handlers.NewWalletHandler(walletService, auditService)
	roundHandler := handlers.NewRoundHandler(roundService, treasuryService, auditService)
	claimHandler := handlers.NewClaimHandler(claimService, auditService)
	certificateHandler := handlers.NewCertificateHandler(certificateService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	wallet := protected.Group("/wallet")
	wallet.GET("", walletHandler.GetWallet)
	wallet.POST("/deposits", walletHandler.Deposit)

	rounds := protected.Group("/rounds")
	rounds.GET("", roundHandler.ListRounds)
	rounds.GET("/:id", roundHandler.GetRound)
	rounds.POST("/:id/investments", roundHandler.Invest)
	rounds.POST("/:id/claims", claimHandler.ClaimRound)
	rounds.GET("/:id/claims", claimHandler.Claimable)

	certificates := protected.Group("/certificates")
	certificates.GET("", certificateHandler.ListCertificates)
	certificates.GET("/:id", certificateHandler.GetCertificate)
	certificates.POST("/:id/transfer", certificateHandler.Transfer)

	admin := protected.Group("/rounds")
	admin.Use(middleware.RequireAdmin())
	admin.POST("", roundHandler.CreateRound)
	admin.PATCH("/:id/active", roundHandler.SetActive)
	admin.PATCH("/:id/status", roundHandler.UpdateStatus)
	admin.POST("/:id/rewards", roundHandler.AddReward)
	admin.POST("/:id/withdrawal", roundHandler.Withdraw)
	admin.POST("/:id/emergency-withdrawal", roundHandler.EmergencyWithdraw)
	admin.GET("/:id/treasury/entries", roundHandler.ListTreasuryEntries)

	return &testApp{DB: db, Rounds: roundService, Claims: claimService, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(float64)
}

// registerAdmin registers the administrator account and returns its token.
func (app *testApp) registerAdmin(t *testing.T) (token string, userID float64) {
	t.Helper()
	return app.registerUser(t, adminEmail, "password123")
}

// deposit funds the user's wallet through the API.
func (app *testApp) deposit(t *testing.T, token string, amount int64) {
	t.Helper()
	rec := app.request("POST", "/api/v1/wallet/deposits", fmt.Sprintf(`{"amount":%d}`, amount), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit failed: %d %s", rec.Code, rec.Body.String())
	}
}

// createRound creates a round through the API and returns its ID. The round
// stays open for 30 days and matures 400 days out.
func (app *testApp) createRound(t *testing.T, adminToken string, unitPrice, rewardRateBps, supplyCap int64) float64 {
	t.Helper()
	openUntil := time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339)
	maturity := time.Now().Add(400 * 24 * time.Hour).UTC().Format(time.RFC3339)
	body := fmt.Sprintf(
		`{"name":"Integration Round","currency":"USD","unit_price":%d,"reward_rate_bps":%d,"supply_cap":%d,`+
			`"open_until":%q,"maturity":%q}`,
		unitPrice, rewardRateBps, supplyCap, openUntil, maturity)
	rec := app.request("POST", "/api/v1/rounds", body, adminToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create round failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	round := result["round"].(map[string]interface{})
	return round["id"].(float64)
}
