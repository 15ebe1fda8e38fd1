package api

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rhyred/smart-triage-system/internal/domain"
	"github.com/Rhyred/smart-triage-system/internal/history"
)

// AnalyzeRequest is the body of POST /api/v1/analyze. Both fields are
// optional: with no reading the configured sensor provider is polled, with
// no image the evaluation runs sensor-only.
type AnalyzeRequest struct {
	Reading   *domain.SensorReading `json:"reading,omitempty"`
	ImageData string                `json:"imageData,omitempty"`
}

// AnalyzeResponse wraps a verdict with the request correlation ID.
type AnalyzeResponse struct {
	RequestID string                `json:"request_id"`
	Verdict   *domain.TriageVerdict `json:"verdict"`
}

// HistoryListResponse is the body of GET /api/v1/history.
type HistoryListResponse struct {
	Total   int64             `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	Records []*history.Record `json:"records"`
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

func (s *Server) correlationID(c *gin.Context) string {
	return c.GetString("correlation_id")
}

func (s *Server) writeError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewAPIError(code, message, details, s.correlationID(c)))
}

// handleAnalyze runs one triage evaluation.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, http.StatusBadRequest, domain.ErrCodeInvalidReading,
				"Malformed request body", err.Error())
			return
		}
	}

	reading, ok := s.resolveReading(c, &req)
	if !ok {
		return
	}

	var image []byte
	if req.ImageData != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			s.writeError(c, http.StatusBadRequest, domain.ErrCodeInvalidReading,
				"Image data is not valid base64", err.Error())
			return
		}
		image = decoded
	}

	// Vision failures are absorbed below the engine: a nil verdict means
	// the evaluation proceeds sensor-only.
	var visionVerdict *domain.VisionVerdict
	if s.analyzer != nil {
		visionVerdict = s.analyzer.Analyze(c.Request.Context(), image)
	}

	verdict, err := s.engine.Evaluate(reading, visionVerdict)
	if err != nil {
		if domain.IsInvalidReading(err) {
			s.writeError(c, http.StatusBadRequest, domain.ErrCodeInvalidReading,
				"Sensor reading is physiologically impossible", err.Error())
			return
		}
		s.log.WithError(err).Error("Evaluation failed")
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer,
			"Evaluation failed", "")
		return
	}

	requestID := s.correlationID(c)

	// History persistence is best effort and never fails the request.
	record := history.NewRecord(requestID, verdict)
	if err := s.store.Save(c.Request.Context(), record); err != nil {
		s.log.WithError(err).Warn("Failed to persist verdict history")
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		RequestID: requestID,
		Verdict:   verdict,
	})
}

// resolveReading obtains the sensor reading for this request, either from
// the request body or the configured provider. A false return means an
// error response has already been written.
func (s *Server) resolveReading(c *gin.Context, req *AnalyzeRequest) (*domain.SensorReading, bool) {
	if req.Reading != nil {
		if !s.config.Sensor.AllowClientReadings {
			s.writeError(c, http.StatusBadRequest, domain.ErrCodeInvalidReading,
				"Client-supplied readings are not accepted", "")
			return nil, false
		}
		return req.Reading, true
	}

	reading, err := s.provider.Read(c.Request.Context())
	if err != nil {
		if domain.IsHardwareUnavailable(err) {
			s.writeError(c, http.StatusServiceUnavailable, domain.ErrCodeHardwareUnavailable,
				"Sensor hardware is unavailable", err.Error())
			return nil, false
		}
		s.log.WithError(err).Error("Sensor read failed")
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer,
			"Sensor read failed", "")
		return nil, false
	}
	return reading, true
}

// handleListHistory returns stored verdicts newest-first.
func (s *Server) handleListHistory(c *gin.Context) {
	limit := parseIntQuery(c, "limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	offset := parseIntQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	records, err := s.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.log.WithError(err).Error("History list failed")
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer,
			"Failed to list history", "")
		return
	}

	total, err := s.store.Count(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("History count failed")
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer,
			"Failed to count history", "")
		return
	}

	if records == nil {
		records = []*history.Record{}
	}

	c.JSON(http.StatusOK, HistoryListResponse{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Records: records,
	})
}

// handleGetHistory returns one stored verdict by ID.
func (s *Server) handleGetHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.writeError(c, http.StatusBadRequest, domain.ErrCodeNotFound,
			"History ID must be an integer", "")
		return
	}

	record, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.log.WithError(err).Error("History lookup failed")
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer,
			"Failed to load history record", "")
		return
	}
	if record == nil {
		s.writeError(c, http.StatusNotFound, domain.ErrCodeNotFound,
			"History record not found", "")
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"timestamp":        time.Now().UTC(),
		"version":          "1.0.0",
		"sensor_source":    s.config.Sensor.Source,
		"detector_enabled": s.config.Detector.Enabled,
		"history_backend":  s.config.History.Backend,
	})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
