// Package api exposes the diagnosis service over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/raredx-server/internal/catalog"
	"github.com/raredx-server/internal/domain"
	"github.com/raredx-server/internal/feedback"
	"github.com/raredx-server/internal/middleware"
	"github.com/raredx-server/internal/repository"
	"github.com/raredx-server/internal/service"
)

// maxBatchSize bounds one batch request; larger cohorts should be split by
// the caller
const maxBatchSize = 100

// Per-client throttle. Diagnosis requests are cheap; this guards against
// runaway batch callers, not legitimate load.
const (
	requestsPerSecond = 100
	requestBurst      = 200
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	diagnosis     *service.DiagnosisService
	catalog       *catalog.Catalog
	feedbackStore feedback.Store
	caseLog       *repository.CaseRepository
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance. feedbackStore and caseLog
// may be nil; the feedback endpoints then respond with 503 and cases are
// not recorded.
func NewServer(
	configManager domain.ConfigManager,
	logger *logrus.Logger,
	diagnosis *service.DiagnosisService,
	cat *catalog.Catalog,
	feedbackStore feedback.Store,
	caseLog *repository.CaseRepository,
) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestTimeout(cfg.Server.WriteTimeout))
	router.Use(middleware.NewRateLimiter(requestsPerSecond, requestBurst).Middleware())

	server := &Server{
		configManager: configManager,
		logger:        logger,
		diagnosis:     diagnosis,
		catalog:       cat,
		feedbackStore: feedbackStore,
		caseLog:       caseLog,
		router:        router,
	}

	server.setupRoutes()

	return server
}

// Router exposes the gin engine, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{"addr": addr}).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/diagnose", s.handleDiagnose)
		v1.POST("/diagnose/batch", s.handleBatchDiagnose)
		v1.GET("/diseases", s.handleListDiseases)
		v1.POST("/feedback", s.handleSaveFeedback)
		v1.GET("/feedback", s.handleListFeedback)
		v1.GET("/feedback/stats", s.handleFeedbackStats)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}

// diagnoseResponse wraps a diagnosis result with its case identifier
type diagnoseResponse struct {
	CaseID string `json:"case_id"`
	*domain.DiagnosisResult
}

// handleDiagnose runs one diagnosis
func (s *Server) handleDiagnose(c *gin.Context) {
	var patient domain.PatientRecord
	if err := c.ShouldBindJSON(&patient); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "malformed request body", err.Error())
		return
	}

	if len(patient.Symptoms) == 0 {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrValidation, "at least one symptom is required", "")
		return
	}

	result := s.diagnosis.Diagnose(c.Request.Context(), &patient)
	caseID := uuid.New()
	s.recordCase(c.Request.Context(), caseID, &patient, result)

	c.JSON(http.StatusOK, diagnoseResponse{
		CaseID:          caseID.String(),
		DiagnosisResult: result,
	})
}

// recordCase persists the case when a case log is configured. Failures are
// logged and do not affect the response.
func (s *Server) recordCase(ctx context.Context, caseID uuid.UUID, patient *domain.PatientRecord, result *domain.DiagnosisResult) {
	if s.caseLog == nil {
		return
	}

	err := s.caseLog.Create(ctx, &repository.DiagnosisCase{
		CaseID:           caseID,
		Patient:          patient,
		Result:           result,
		PrimaryDiagnosis: result.PrimaryDiagnosis,
		Confidence:       result.Confidence,
		ModelVersion:     result.ModelVersion,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"case_id": caseID}).Warn("Failed to record diagnosis case")
	}
}

type batchRequest struct {
	Patients []domain.PatientRecord `json:"patients"`
}

// handleBatchDiagnose runs diagnoses for a patient cohort
func (s *Server) handleBatchDiagnose(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "malformed request body", err.Error())
		return
	}

	if len(req.Patients) == 0 {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrValidation, "patients list must not be empty", "")
		return
	}
	if len(req.Patients) > maxBatchSize {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrValidation,
			fmt.Sprintf("batch size exceeds maximum of %d", maxBatchSize), "")
		return
	}

	results := s.diagnosis.BatchDiagnose(c.Request.Context(), req.Patients)

	responses := make([]diagnoseResponse, 0, len(results))
	for i := range results {
		caseID := uuid.New()
		s.recordCase(c.Request.Context(), caseID, &req.Patients[i], &results[i])
		responses = append(responses, diagnoseResponse{
			CaseID:          caseID.String(),
			DiagnosisResult: &results[i],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(responses),
		"results": responses,
	})
}

// handleListDiseases returns the disease catalog
func (s *Server) handleListDiseases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"count":    s.catalog.Len(),
		"diseases": s.catalog.Profiles(),
	})
}

type feedbackRequest struct {
	CaseID             string  `json:"case_id" binding:"required"`
	SuggestedDiagnosis string  `json:"suggested_diagnosis" binding:"required"`
	ClinicianDiagnosis string  `json:"clinician_diagnosis" binding:"required"`
	ClinicianAgreed    bool    `json:"clinician_agreed"`
	Confidence         float64 `json:"confidence"`
	ModelVersion       string  `json:"model_version"`
	Notes              string  `json:"notes"`
}

// handleSaveFeedback records a clinician's verdict on a diagnosis
func (s *Server) handleSaveFeedback(c *gin.Context) {
	if s.feedbackStore == nil {
		s.abortWithError(c, http.StatusServiceUnavailable, domain.ErrDatabaseError, "feedback store is not configured", "")
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "malformed request body", err.Error())
		return
	}

	if _, err := uuid.Parse(req.CaseID); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrValidation, "case_id must be a valid UUID", req.CaseID)
		return
	}

	fb := &feedback.Feedback{
		CaseID:             req.CaseID,
		SuggestedDiagnosis: req.SuggestedDiagnosis,
		ClinicianDiagnosis: req.ClinicianDiagnosis,
		ClinicianAgreed:    req.ClinicianAgreed,
		Confidence:         req.Confidence,
		ModelVersion:       req.ModelVersion,
		Notes:              req.Notes,
	}

	if err := s.feedbackStore.Save(c.Request.Context(), fb); err != nil {
		s.logger.WithError(err).Error("Failed to save feedback")
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to save feedback", "")
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// handleListFeedback returns stored feedback with pagination
func (s *Server) handleListFeedback(c *gin.Context) {
	if s.feedbackStore == nil {
		s.abortWithError(c, http.StatusServiceUnavailable, domain.ErrDatabaseError, "feedback store is not configured", "")
		return
	}

	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	list, err := s.feedbackStore.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list feedback")
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to list feedback", "")
		return
	}
	if list == nil {
		list = []*feedback.Feedback{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(list),
		"feedback": list,
	})
}

// handleFeedbackStats reports aggregate clinician agreement
func (s *Server) handleFeedbackStats(c *gin.Context) {
	if s.feedbackStore == nil {
		s.abortWithError(c, http.StatusServiceUnavailable, domain.ErrDatabaseError, "feedback store is not configured", "")
		return
	}

	count, err := s.feedbackStore.Count(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to count feedback")
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to count feedback", "")
		return
	}

	rate, err := s.feedbackStore.AgreementRate(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to compute agreement rate")
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to compute agreement rate", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_entries":  count,
		"agreement_rate": rate,
	})
}

func (s *Server) abortWithError(c *gin.Context, status int, code, message, details string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(status, gin.H{
		"error": domain.NewAPIError(code, message, details, requestID),
	})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
