package api

func (s *Server) setupRoutes() {
	s.router.GET("/api/status", s.handleStatus)
	s.router.GET("/api/params", s.handleParams)

	pools := s.router.Group("/api/pools")
	{
		pools.GET("", s.handleGetPools)
		pools.GET("/:pool_id", s.handleGetPool)
		pools.GET("/:pool_id/quote", s.handleQuote)
		pools.GET("/:pool_id/shares/:account", s.handleGetShares)
	}

	s.router.GET("/api/pairs/:asset_x/:asset_y", s.handleGetPair)
	s.router.GET("/api/balances/:denom/:account", s.handleGetBalance)
}
