package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agenthands/ordex/internal/config"
	"github.com/agenthands/ordex/internal/core"
	"github.com/agenthands/ordex/internal/core/common"
	"github.com/agenthands/ordex/internal/core/reconcile"
	"github.com/agenthands/ordex/internal/llm"
	"github.com/agenthands/ordex/internal/metrics"
	"github.com/agenthands/ordex/internal/textsource"
)

const requestIDHeader = "X-Request-ID"

// multipartOverhead is the room left above MaxUpload for part headers and
// the model field.
const multipartOverhead = 64 << 10

type Server struct {
	Pipeline     *core.Pipeline
	Gatherer     prometheus.Gatherer
	DefaultModel string
	MaxUpload    int64
	Logger       *zap.Logger

	llmClient llm.Client
}

// NewServer wires the LLM client, metrics registry and pipeline from cfg.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.LLM.APIKey == "" && cfg.LLM.Provider != "ollama" {
		logger.Warn("no LLM API key configured; generative fallback calls will fail and degrade to pattern output",
			zap.String("provider", cfg.LLM.Provider))
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	var gatherer prometheus.Gatherer
	var m *metrics.Metrics
	if !cfg.Server.DisableMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		gatherer = reg
	}

	p, err := core.NewPipeline(cfg, llmClient, m, logger)
	if err != nil {
		_ = llm.Close(llmClient)
		return nil, err
	}

	return &Server{
		Pipeline:     p,
		Gatherer:     gatherer,
		DefaultModel: cfg.LLM.Model,
		MaxUpload:    cfg.Server.MaxUpload,
		Logger:       logger,
		llmClient:    llmClient,
	}, nil
}

// Close releases the LLM client. Call it after the HTTP server has stopped.
func (s *Server) Close() error {
	return llm.Close(s.llmClient)
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()
	if s.MaxUpload > 0 {
		r.MaxMultipartMemory = s.MaxUpload
	}
	r.Use(requestID())

	r.POST("/extract", s.Extract)
	r.GET("/healthz", s.Health)
	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) Extract(c *gin.Context) {
	ctx := c.Request.Context()
	log := common.Logger(ctx, s.Logger)

	if s.MaxUpload > 0 {
		limit := s.MaxUpload + multipartOverhead
		if c.Request.ContentLength > limit {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if s.MaxUpload > 0 && fh.Size > s.MaxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		log.Error("failed to open upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		log.Error("failed to read upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}

	opts := reconcile.Options{Model: c.DefaultPostForm("model", s.DefaultModel)}
	res, err := s.Pipeline.ExtractDocument(ctx, data, fh.Header.Get("Content-Type"), opts)
	if err != nil {
		if errors.Is(err, textsource.ErrUnreadable) {
			log.Info("rejected document", zap.String("filename", fh.Filename), zap.Error(err))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not read document"})
			return
		}
		log.Error("failed to extract", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to extract"})
		return
	}

	log.Info("extracted",
		zap.String("filename", fh.Filename),
		zap.String("engine", string(res.Engine)),
		zap.Int("missing", len(res.Missing())),
	)
	c.JSON(http.StatusOK, res)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
