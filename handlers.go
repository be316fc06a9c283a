package main

import (
	_ "embed"
	"errors"
	"net/http"
	"time"

	"rashan/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:embed dashboard.html
var dashboardHTML []byte

func setupRoutes(r *gin.Engine) {
	r.GET("/", dashboardHandler)
	r.GET("/api/stats", statsHandler)
	r.POST("/api/sms-webhook", smsWebhookHandler)

	if db != nil {
		r.POST("/register", registerHandler)
		r.POST("/login", loginHandler)
	}
	admin := r.Group("/api")
	admin.Use(adminAuthMiddleware())
	admin.POST("/manual-add", manualAddHandler)
	admin.GET("/donations", listDonationsHandler)
}

// adminAuthMiddleware picks the auth scheme for mutating endpoints: JWT when
// user accounts are available, a static bearer token when running file-only,
// open when no token is configured.
func adminAuthMiddleware() gin.HandlerFunc {
	if db != nil {
		return jwtAuthMiddleware()
	}
	token := cfg.AdminToken
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+token {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		c.Set("username", username)
		c.Next()
	}
}

func dashboardHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", dashboardHTML)
}

func statsHandler(c *gin.Context) {
	donations, err := store.All(c.Request.Context())
	if err != nil {
		logg.Error().Err(err).Msg("stats query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, ComputeStats(donations, cfg.BagCost, time.Now()))
}

// smsWebhookHandler ingests a raw notification text forwarded by the phone.
func smsWebhookHandler(c *gin.Context) {
	var req struct {
		SMS string `json:"sms" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	result, err := ingestor.Ingest(c.Request.Context(), req.SMS, time.Now())
	if err != nil {
		logg.Error().Err(err).Msg("webhook ingest failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}
	if result == IngestIgnored {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": "not a donation SMS"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(result)})
}

// manualAddHandler records a donation directly, bypassing the extractor.
// Used for backfilling pledges taken over the phone.
func manualAddHandler(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Name   string          `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.Amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "amount must be positive"})
		return
	}
	name := req.Name
	if name == "" {
		name = "Anonymous"
	}
	tid := "MANUAL-" + uuid.NewString()[:8]
	d := models.NewDonation(tid, req.Amount, name, time.Now())
	if err := store.Append(c.Request.Context(), d); err != nil {
		logg.Error().Err(err).Msg("manual add failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction_id": tid})
}

// listDonationsHandler returns the full ledger for audit/backfill checks.
func listDonationsHandler(c *gin.Context) {
	donations, err := store.All(c.Request.Context())
	if err != nil {
		logg.Error().Err(err).Msg("donations query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, donations)
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateCredentials(req.Username, req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Username, req.Password); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUserExists) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString})
}
