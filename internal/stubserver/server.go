// Package stubserver is a stand-in diagnosis service speaking the same HTTP
// contract as the production backend, for local runs and end-to-end tests.
package stubserver

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"  // register decoders for upload checks
	_ "image/jpeg" // register decoders for upload checks
	_ "image/png"  // register decoders for upload checks
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/logger"
)

// MaxUploadSize bounds the multipart body accepted by the diagnosis endpoint
const MaxUploadSize = 10 << 20

// Server holds the handler dependencies
type Server struct {
	classifier Classifier
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Server
type Option func(*Server)

// WithClassifier replaces the default HashClassifier
func WithClassifier(c Classifier) Option {
	return func(s *Server) { s.classifier = c }
}

// WithClock sets the time source used for report dates
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a stub server
func New(log *zap.Logger, opts ...Option) *Server {
	s := &Server{
		classifier: HashClassifier{},
		now:        time.Now,
		logger:     logger.OrNop(log).Named("stub"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the Gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.MaxMultipartMemory = MaxUploadSize
	s.RegisterRoutes(router)
	return router
}

// RegisterRoutes wires the HTTP handlers to the Gin router
func (s *Server) RegisterRoutes(router gin.IRoutes) {
	router.GET("/api/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, diagnosis.HealthResponse{Status: "Backend working!"})
	})
	router.POST("/api/crop-diagnosis", s.handleDiagnosis)
	router.POST("/api/generate-report", s.handleReport)
}

func (s *Server) handleDiagnosis(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, diagnosis.ErrorResponse{Error: "Image too large"})
			return
		}
		c.JSON(http.StatusBadRequest, diagnosis.ErrorResponse{Error: "No image uploaded"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, diagnosis.ErrorResponse{Error: "Unable to open image"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, diagnosis.ErrorResponse{Error: "Failed to read image"})
		return
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		c.JSON(http.StatusBadRequest, diagnosis.ErrorResponse{Error: "Invalid image file"})
		return
	}

	prediction, err := s.classifier.Classify(data)
	if err != nil {
		s.logger.Error("classification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, diagnosis.ErrorResponse{Error: err.Error()})
		return
	}

	result := Diagnose(prediction)
	s.logger.Info("diagnosis",
		zap.String("request_id", c.GetHeader("X-Request-ID")),
		zap.String("label", prediction.Label),
		zap.Float64("confidence", prediction.Confidence))

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleReport(c *gin.Context) {
	var result diagnosis.Result
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, diagnosis.ErrorResponse{Error: "Invalid diagnosis payload"})
		return
	}

	pdf, err := RenderReport(&result, s.now())
	if err != nil {
		s.logger.Error("report rendering failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, diagnosis.ErrorResponse{Error: "Failed to generate report"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="crop_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Serve runs the stub on listener until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, listener net.Listener, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		err := server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	s.logger.Info("stub diagnosis service listening", zap.String("addr", listener.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down stub service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
