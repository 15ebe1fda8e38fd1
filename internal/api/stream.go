package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the HTTP layer; the dashboard may be served from
	// a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// VitalsFrame is one message on the live vitals stream.
type VitalsFrame struct {
	Reading   *domain.SensorReading `json:"reading,omitempty"`
	Verdict   *domain.TriageVerdict `json:"verdict,omitempty"`
	Error     *domain.APIError      `json:"error,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// handleVitalsStream upgrades to a websocket and pushes evaluated vitals at
// the configured interval until the client disconnects.
func (s *Server) handleVitalsStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	requestID := s.correlationID(c)
	interval := s.config.Server.StreamInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	s.log.WithFields(map[string]any{
		"correlation_id": requestID,
		"interval":       interval.String(),
	}).Info("Vitals stream opened")

	// Drain client messages so ping/pong and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-done:
			s.log.WithField("correlation_id", requestID).Info("Vitals stream closed by client")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := s.nextFrame(c)
			if err := conn.WriteJSON(frame); err != nil {
				s.log.WithError(err).Debug("Vitals stream write failed")
				return
			}
		}
	}
}

// nextFrame polls the sensor and evaluates one sensor-only verdict. Stream
// frames never include vision: images are request-scoped, not continuous.
func (s *Server) nextFrame(c *gin.Context) VitalsFrame {
	now := time.Now().UTC()

	reading, err := s.provider.Read(c.Request.Context())
	if err != nil {
		code := domain.ErrCodeInternalServer
		if domain.IsHardwareUnavailable(err) {
			code = domain.ErrCodeHardwareUnavailable
		}
		return VitalsFrame{
			Error:     domain.NewAPIError(code, "Sensor read failed", err.Error(), s.correlationID(c)),
			Timestamp: now,
		}
	}

	verdict, err := s.engine.Evaluate(reading, nil)
	if err != nil {
		return VitalsFrame{
			Reading:   reading,
			Error:     domain.NewAPIError(domain.ErrCodeInvalidReading, "Evaluation failed", err.Error(), s.correlationID(c)),
			Timestamp: now,
		}
	}

	return VitalsFrame{
		Reading:   reading,
		Verdict:   verdict,
		Timestamp: now,
	}
}
