package lab

import (
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// OracleRequest is the body of POST /oracle: hex of IV || ciphertext.
type OracleRequest struct {
	Ciphertext string `json:"ciphertext" binding:"required"`
}

// OracleResponse is returned by POST /oracle.
type OracleResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Challenge is returned by GET /challenge.
type Challenge struct {
	Algorithm  string `json:"algorithm"`
	BlockSize  int    `json:"block_size"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// Server exposes a Target over HTTP. Padding validity leaks through the
// status code: 200 for valid padding, 400 for a padding error, 422 for input
// that cannot be decrypted at all.
type Server struct {
	target    *Target
	challenge Challenge
	queries   atomic.Int64
	log       *slog.Logger
	router    *gin.Engine
}

// NewServer encrypts secret once and serves it as the challenge.
func NewServer(target *Target, algorithm string, secret []byte, logger *slog.Logger) (*Server, error) {
	iv, ct, err := target.Encrypt(secret)
	if err != nil {
		return nil, errors.Wrap(err, "lab: encrypt challenge")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		target: target,
		challenge: Challenge{
			Algorithm:  algorithm,
			BlockSize:  target.BlockSize(),
			IV:         hex.EncodeToString(iv),
			Ciphertext: hex.EncodeToString(ct),
		},
		log: logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)
	router.GET("/challenge", s.getChallenge)
	router.POST("/oracle", s.oracle)

	s.router = router
	return s, nil
}

// Handler returns the HTTP handler, for httptest or a custom http.Server.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on addr until the server fails.
func (s *Server) Run(addr string) error {
	s.log.Info("padding oracle lab listening", "addr", addr, "block_size", s.target.BlockSize())
	return s.router.Run(addr)
}

// Queries returns how many oracle requests have been answered.
func (s *Server) Queries() int64 { return s.queries.Load() }

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"queries": s.Queries(),
	})
}

func (s *Server) getChallenge(c *gin.Context) {
	c.JSON(http.StatusOK, s.challenge)
}

func (s *Server) oracle(c *gin.Context) {
	var req OracleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, OracleResponse{Message: "invalid request body"})
		return
	}
	data, err := hex.DecodeString(req.Ciphertext)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, OracleResponse{Message: "ciphertext is not hex"})
		return
	}

	s.queries.Add(1)
	valid, err := s.target.Check(data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, OracleResponse{Message: err.Error()})
		return
	}
	if !valid {
		c.JSON(http.StatusBadRequest, OracleResponse{Message: "padding error"})
		return
	}
	c.JSON(http.StatusOK, OracleResponse{Valid: true})
}
