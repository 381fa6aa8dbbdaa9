package server

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iksnae/completion-estimator/internal"
	"github.com/iksnae/completion-estimator/internal/chart"
)

type analyzeRequest struct {
	Text string `json:"text"`
}

// SessionView is the JSON form of a hosted session
type SessionView struct {
	ID               string          `json:"id"`
	RunID            string          `json:"run_id,omitempty"`
	State            internal.State  `json:"state"`
	Cursor           int             `json:"cursor"`
	ChunkCount       int             `json:"chunk_count"`
	Series           internal.Series `json:"series"`
	ConvergenceChunk *int            `json:"convergence_chunk"`
	Convergence      string          `json:"convergence"`
	Running          bool            `json:"running"`
	LastError        string          `json:"last_error,omitempty"`
}

func newSessionView(sess *Session, snap internal.Snapshot) SessionView {
	v := SessionView{
		ID:               sess.ID,
		RunID:            snap.RunID,
		State:            snap.State,
		Cursor:           snap.Cursor,
		ChunkCount:       snap.ChunkCount,
		Series:           snap.Series,
		ConvergenceChunk: snap.Series.ConvergenceChunk,
		Convergence:      internal.ConvergenceLine(snap.Series),
		Running:          sess.Running(),
	}
	if err := sess.LastError(); err != nil {
		v.LastError = err.Error()
	}
	return v
}

// POST /api/sessions
func (s *Server) createSession(c *gin.Context) {
	sess, err := s.registry.Create()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "session_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID})
}

// GET /api/sessions/:id
func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	respondOK(c, newSessionView(sess, sess.Sequencer().Snapshot()))
}

// POST /api/sessions/:id/analyze
func (s *Server) analyze(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	snap, err := sess.Analyze(s.ctx, c.Request.Context(), req.Text)
	if err != nil {
		status, code := backendStatus(err)
		respondError(c, status, code, err)
		return
	}
	c.JSON(http.StatusAccepted, newSessionView(sess, snap))
}

// POST /api/sessions/:id/reset
func (s *Server) resetSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := sess.Reset(c.Request.Context()); err != nil {
		status, code := backendStatus(err)
		respondError(c, status, code, err)
		return
	}
	respondOK(c, newSessionView(sess, sess.Sequencer().Snapshot()))
}

// GET /api/sessions/:id/charts/:name
func (s *Server) chart(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	snap := sess.Sequencer().Snapshot()
	if snap.Series.Len() == 0 {
		respondError(c, http.StatusNotFound, "no_results", errors.New("no chunk has been analyzed yet"))
		return
	}

	format := c.DefaultQuery("format", chart.FormatSVG)
	if format != chart.FormatSVG && format != chart.FormatPNG {
		respondError(c, http.StatusBadRequest, "unsupported_format", fmt.Errorf("unsupported chart format: %s", format))
		return
	}
	dashboard := *s.dashboard
	dashboard.Format = format

	var buf bytes.Buffer
	ext, err := dashboard.RenderChart(&buf, c.Param("name"), snap.Series)
	if err != nil {
		respondError(c, http.StatusNotFound, "unknown_chart", err)
		return
	}
	c.Data(http.StatusOK, mime.TypeByExtension("."+ext), buf.Bytes())
}

// DELETE /api/sessions/:id
func (s *Server) deleteSession(c *gin.Context) {
	if err := s.registry.Delete(c.Param("id")); err != nil {
		respondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /healthcheck
func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) lookup(c *gin.Context) (*Session, bool) {
	sess, err := s.registry.Get(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "session_not_found", err)
		return nil, false
	}
	return sess, true
}

// backendStatus maps a failed reset or start to a response status
func backendStatus(err error) (int, string) {
	var te *internal.TransportError
	var pe *internal.ProtocolError
	switch {
	case errors.As(err, &te):
		return http.StatusBadGateway, "backend_unavailable"
	case errors.As(err, &pe):
		return http.StatusBadGateway, "backend_protocol"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
