// Package dashboard serves a read-only JSON view of the reserve program:
// global parameters, program balance, and per-wallet lock, vote and reward
// state. Writes stay in the CLI.
package dashboard

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"ogc-reserve-cli/logging"
	ogc_reserve "ogc-reserve-cli/solana"
	"ogc-reserve-cli/storage"
)

// Reader is the query side of the program client.
type Reader interface {
	FetchGlobalData(ctx context.Context) (*ogc_reserve.GlobalDataAccount, error)
	GetProgramBalance(ctx context.Context) (uint64, error)
	GetLockStatus(ctx context.Context, owner solana.PublicKey) (uint64, error)
	GetUnlockStatus(ctx context.Context, owner solana.PublicKey, epoch uint64) (*ogc_reserve.UnlockStatus, error)
	GetEpochVotes(ctx context.Context, epoch uint64) ([]uint64, error)
	GetMyVote(ctx context.Context, owner solana.PublicKey, epoch uint64) (*ogc_reserve.VoteAccount, error)
	GetClaimable(ctx context.Context, owner solana.PublicKey, epoch uint64) (*ogc_reserve.Claimable, error)
	GetBalance(ctx context.Context, publicKey solana.PublicKey) (uint64, error)
	GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error)
	GetHistory(ctx context.Context, publicKey solana.PublicKey, limit int) (*ogc_reserve.HistoryResult, error)
}

// Profiles lists the locally stored wallet profiles.
type Profiles interface {
	GetAllWallets() ([]storage.WalletInfo, error)
}

// Config holds what the server needs besides its data sources.
type Config struct {
	Listen      string
	OgcMint     solana.PublicKey
	OggMint     solana.PublicKey
	OgcDecimals uint8
	OggDecimals uint8
}

// Server is the dashboard HTTP server.
type Server struct {
	reader     Reader
	profiles   Profiles
	config     Config
	httpServer *http.Server
	startTime  time.Time
}

// NewServer creates a dashboard server. profiles may be nil.
func NewServer(config Config, reader Reader, profiles Profiles) *Server {
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		reader:    reader,
		profiles:  profiles,
		config:    config,
		startTime: time.Now(),
	}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(s.loggingMiddleware())
	router.Use(gin.Recovery())
	s.setupRoutes(router)
	return router
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	logging.Info("Starting dashboard on %s", s.config.Listen)

	s.httpServer = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("Dashboard server failed: %v", err)
		}
	}()

	logging.Info("Dashboard listening on http://%s", listener.Addr())
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down dashboard...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
