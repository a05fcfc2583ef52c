package dashboard

import "github.com/gin-gonic/gin"

func (s *Server) setupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", s.handleHealth)
	v1.GET("/global", s.handleGlobal)
	v1.GET("/profiles", s.handleProfiles)
	v1.GET("/epochs/:epoch/votes", s.handleEpochVotes)

	wallets := v1.Group("/wallets/:wallet")
	{
		wallets.GET("/balance", s.handleBalance)
		wallets.GET("/lock", s.handleLockStatus)
		wallets.GET("/unlock", s.handleUnlockStatus)
		wallets.GET("/claimable", s.handleClaimable)
		wallets.GET("/votes/:epoch", s.handleMyVote)
		wallets.GET("/history", s.handleHistory)
	}
}
