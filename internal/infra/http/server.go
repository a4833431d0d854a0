package http

import (
	"net/http"
	"time"

	"carmint/internal/config"
	"carmint/internal/domain"
	"carmint/internal/infra/admission"
	"carmint/internal/infra/db"
	"carmint/internal/infra/indexer"
	"carmint/internal/infra/ledger"
	"carmint/internal/infra/ratelimit"
	"carmint/internal/log"
	"carmint/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	mintUC  *usecase.MintAsset
	queryUC *usecase.QueryMetadata

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration

	requestTimeout time.Duration

	depInitErr error
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{cfg: cfg, store: store, r: r, requestTimeout: cfg.RequestTimeout()}
	s.initDeps()
	s.initRateLimit(nil)
	s.routes()
	return s
}

type ServerDeps struct {
	Mint        *usecase.MintAsset
	Query       *usecase.QueryMetadata
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{
		cfg:            cfg,
		r:              r,
		mintUC:         deps.Mint,
		queryUC:        deps.Query,
		requestTimeout: cfg.RequestTimeout(),
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	signer, err := ledger.NewSigner(s.cfg.WalletSigningKeyHex)
	if err != nil {
		s.depInitErr = err
		return
	}
	client := indexer.NewClient(s.cfg.BlockfrostProjectID, s.cfg.BlockfrostServer)

	s.mintUC = &usecase.MintAsset{
		WalletAddress: s.cfg.WalletAddress,
		Policy:        ledger.NewPolicyResolver(),
		UTxOs:         client,
		Assembler:     ledger.NewAssembler(s.cfg.MinFeeA, s.cfg.MinFeeB, s.cfg.MinUTxOValue),
		Signer:        signer,
		Submitter:     client,
		Gate:          admission.NewGate(),
	}
	if s.store != nil && s.store.DB != nil {
		s.mintUC.Receipts = db.NewMintReceiptRepository(s.store.DB)
	}
	s.queryUC = &usecase.QueryMetadata{Querier: client}
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(s.cfg.RateLimitMaxKeys, nil)
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	if s.cfg.RateLimitWindowSeconds > 0 {
		s.rateLimitWindow = time.Duration(s.cfg.RateLimitWindowSeconds) * time.Second
	}
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.store != nil && s.store.DB != nil {
			mode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	api := s.r.Group("/api", s.rateLimit())
	{
		api.POST("/metadata", s.handleMint)
		api.GET("/metadata/:txHash", s.handleMetadataByTx)
		api.GET("/nft/:assetId", s.handleAssetInfo)
	}
}

func (s *Server) Run() error {
	if s.depInitErr != nil {
		return s.depInitErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}

func requestLogger() gin.HandlerFunc {
	logger := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
