package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/exam"
)

// maxBodyBytes bounds submit payloads: a 30-question exam plus answers
// fits comfortably, anything bigger is abuse.
const maxBodyBytes = 50_000

// Server exposes the exam engine over HTTP.
type Server struct {
	engine *exam.Engine
	log    *zap.Logger
}

// New creates a Server over the given engine.
func New(engine *exam.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{engine: engine, log: log}
}

// Router builds the gin handler tree.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))
	router.Use(bodySizeLimit(maxBodyBytes))

	router.GET("/healthcheck", s.healthcheck)

	api := router.Group("/api")
	{
		api.POST("/exam", s.newExam)
		api.POST("/submit", s.submit)
	}

	return router
}

// bodySizeLimit rejects oversized payloads before any handler reads them.
func bodySizeLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				gin.H{"error": "Payload too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func (s *Server) healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type examRequest struct {
	Level bank.Difficulty `json:"level"`
}

func (s *Server) newExam(c *gin.Context) {
	req := examRequest{Level: bank.Medium}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions, err := s.engine.Generate(req.Level, exam.DefaultSize)
	if err != nil {
		s.log.Error("generate exam failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate exam"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exam": questions})
}

type submitRequest struct {
	Exam    []bank.Question `json:"exam" binding:"required"`
	Answers []string        `json:"answers" binding:"required"`
	Level   bank.Difficulty `json:"level"`
}

func (s *Server) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, details, err := s.engine.Grade(c.Request.Context(), req.Exam, req.Answers)
	if err != nil {
		if errors.Is(err, exam.ErrLengthMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("grading failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not grade exam"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"score":      score,
		"next_level": exam.NextLevel(score, req.Level),
		"details":    details,
	})
}

// Run serves the API until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("exam API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
