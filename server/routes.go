package server

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/pipeline"
	"github.com/kbukum/codenexus/server/endpoint"
	"github.com/kbukum/codenexus/stream"
)

type dataRequest struct {
	Data json.RawMessage `json:"data" binding:"required"`
}

type dispatchRequest struct {
	Batch stream.Batch `json:"batch" binding:"required"`
}

// ReportResponse is returned by the single-adapter routes.
type ReportResponse struct {
	Pipeline string         `json:"pipeline"`
	Report   string         `json:"report"`
	Failed   bool           `json:"failed"`
	Stats    pipeline.Stats `json:"stats"`
}

// DispatchResponse is returned by /streams/dispatch.
type DispatchResponse struct {
	Results []string       `json:"results"`
	Failed  int            `json:"failed"`
	Stats   []stream.Stats `json:"stats"`
}

// StatsResponse is returned by /stats.
type StatsResponse struct {
	Manager   pipeline.ManagerStats `json:"manager"`
	Pipelines []pipeline.Stats      `json:"pipelines"`
	Streams   []stream.Stats        `json:"streams"`
}

func (s *Server) routes() {
	s.engine.GET("/health", endpoint.Health(s.deps.ServiceName, s.deps.Health))
	s.engine.GET("/version", endpoint.Version())
	s.engine.GET("/stats", s.stats)

	p := s.engine.Group("/pipelines")
	p.POST("/json", s.processWith(pipeline.FormatJSON, jsonPayload))
	p.POST("/csv", s.processWith(pipeline.FormatCSV, textPayload))
	p.POST("/stream", s.processWith(pipeline.FormatStream, decodedPayload))
	p.POST("/chain", s.chain)
	p.POST("/recover", s.recoverDemo)

	s.engine.POST("/streams/dispatch", s.dispatch)
}

type payloadFunc func(raw json.RawMessage) (any, error)

// jsonPayload hands the raw bytes to the JSON adapter so key order survives.
func jsonPayload(raw json.RawMessage) (any, error) { return []byte(raw), nil }

func textPayload(raw json.RawMessage) (any, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, apperrors.InvalidInput("data must be a JSON string").WithCause(err)
	}
	return text, nil
}

func decodedPayload(raw json.RawMessage) (any, error) {
	v, err := pipeline.DecodeJSON(raw)
	if err != nil {
		return nil, apperrors.InvalidInput("data is not valid JSON").WithCause(err)
	}
	return v, nil
}

func (s *Server) bindData(c *gin.Context) (json.RawMessage, bool) {
	var req dataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("request body must be {\"data\": ...}").WithCause(err), nil)
		return nil, false
	}
	return req.Data, true
}

func (s *Server) adapter(format string) (pipeline.Pipeline, bool) {
	for _, p := range s.deps.Manager.Pipelines() {
		if p.Format() == format {
			return p, true
		}
	}
	return nil, false
}

func (s *Server) processWith(format string, payload payloadFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := s.adapter(format)
		if !ok {
			RespondWithError(c, apperrors.Newf(apperrors.ErrCodeInvalidConfig, "no %s pipeline registered", format), nil)
			return
		}
		raw, ok := s.bindData(c)
		if !ok {
			return
		}
		in, err := payload(raw)
		if err != nil {
			RespondWithError(c, err, nil)
			return
		}

		report := p.Process(c.Request.Context(), in)
		RespondOK(c, ReportResponse{
			Pipeline: p.ID(),
			Report:   report,
			Failed:   pipeline.IsErrorReport(report),
			Stats:    p.Stats(),
		})
	}
}

func (s *Server) chain(c *gin.Context) {
	raw, ok := s.bindData(c)
	if !ok {
		return
	}
	in, err := decodedPayload(raw)
	if err != nil {
		RespondWithError(c, err, nil)
		return
	}

	out, err := s.deps.Manager.ChainPipelines(c.Request.Context(), in)
	if err != nil {
		RespondWithError(c, err, gin.H{"result": out})
		return
	}
	RespondOK(c, gin.H{"result": out, "stats": s.deps.Manager.Stats()})
}

func (s *Server) recoverDemo(c *gin.Context) {
	raw, ok := s.bindData(c)
	if !ok {
		return
	}
	in, err := decodedPayload(raw)
	if err != nil {
		RespondWithError(c, err, nil)
		return
	}
	report := s.deps.Manager.SimulateErrorRecovery(c.Request.Context(), in)
	RespondOK(c, gin.H{"report": report, "stats": s.deps.Manager.Stats()})
}

func (s *Server) dispatch(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("request body must be {\"batch\": [...]}").WithCause(err), nil)
		return
	}

	results := s.deps.Dispatcher.ProcessAll(c.Request.Context(), req.Batch)
	failed := 0
	for _, r := range results {
		if stream.IsErrorResult(r) {
			failed++
		}
	}
	RespondOK(c, DispatchResponse{Results: results, Failed: failed, Stats: s.deps.Dispatcher.Stats()})
}

func (s *Server) stats(c *gin.Context) {
	RespondOK(c, StatsResponse{
		Manager:   s.deps.Manager.Stats(),
		Pipelines: s.deps.Manager.PipelineStats(),
		Streams:   s.deps.Dispatcher.Stats(),
	})
}
