package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"carmint/internal/domain"
	"carmint/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type mintResponse struct {
	TxHash    string `json:"txHash"`
	AssetID   string `json:"assetId"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func (s *Server) handleMint(c *gin.Context) {
	if s.mintUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var record domain.InspectionRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout)
	defer cancel()

	resp, err := s.mintUC.Execute(ctx, usecase.MintAssetRequest{Record: record})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mintResponse{
		TxHash:    resp.TxHash,
		AssetID:   resp.AssetID,
		Duplicate: resp.Duplicate,
	})
}

func (s *Server) handleMetadataByTx(c *gin.Context) {
	if s.queryUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout)
	defer cancel()

	entries, err := s.queryUC.ByTx(ctx, c.Param("txHash"))
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.LabeledMetadata{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleAssetInfo(c *gin.Context) {
	if s.queryUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout)
	defer cancel()

	info, err := s.queryUC.Asset(ctx, c.Param("assetId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
			c.Next()
			return
		}
		decision, err := s.rateLimiter.Allow(c.Request.Context(), "ip:"+c.ClientIP(), s.rateLimitRequests, s.rateLimitWindow)
		if err != nil {
			// Limiter outage fails open; requests still carry their
			// per-policy admission gate downstream.
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.ResetAt)/time.Second) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// writeError maps pipeline failures onto the response contract: validation
// errors surface as 400, unknown resources as 404, ledger rejections as 502,
// indexer failures keep their upstream status, everything else is 500.
func writeError(c *gin.Context, err error) {
	var queryErr *domain.QueryError
	if errors.As(err, &queryErr) {
		c.JSON(queryErr.Status, errorResponse{Error: "indexer request failed", Details: queryErr.Message})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRecord), errors.Is(err, domain.ErrInvalidMetadata):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSubmission):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}
