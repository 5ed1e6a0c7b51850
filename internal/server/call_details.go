package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
	"go.uber.org/zap"
)

// CreateCallDetail builds one call detail from a raw usage record and stores it.
func (s *Server) CreateCallDetail(c *gin.Context) {
	var req calldetaildomain.RawUsageRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, &bindingError{err: err})
		return
	}

	ctx := c.Request.Context()
	cd, err := s.creator.CreateCallDetail(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	details := []calldetaildomain.CallDetail{*cd}
	if err := s.store.Insert(ctx, details); err != nil {
		s.log.Error("store call detail failed", zap.String("call_id", cd.CallID), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, details[0])
}

// CreateCallDetails splits one raw ER line and stores every call detail it
// yields, or nothing when any record fails.
func (s *Server) CreateCallDetails(c *gin.Context) {
	var req calldetaildomain.Batch
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, &bindingError{err: err})
		return
	}

	ctx := c.Request.Context()
	details, err := s.creator.CreateCallDetails(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.store.Insert(ctx, details); err != nil {
		s.log.Error("store call details failed", zap.Int("count", len(details)), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, details)
}

func (s *Server) GetCallDetail(c *gin.Context) {
	callID := strings.TrimSpace(c.Param("call_id"))

	cd, err := s.store.FindByCallID(c.Request.Context(), callID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if cd == nil {
		AbortWithError(c, fmt.Errorf("call detail %q: %w", callID, errNotFound))
		return
	}

	respondData(c, http.StatusOK, cd)
}

// CountAccountCallDetails reports how many call details are stored for one
// billing account.
func (s *Server) CountAccountCallDetails(c *gin.Context) {
	ban := strings.TrimSpace(c.Param("ban"))
	if ban == "" {
		AbortWithError(c, &bindingError{err: errors.New("ban is required")})
		return
	}

	count, err := s.store.CountByBAN(c.Request.Context(), ban)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"ban": ban, "count": count})
}
