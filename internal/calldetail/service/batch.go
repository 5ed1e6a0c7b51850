package service

import (
	"context"
	"fmt"
	"strings"

	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
	"go.uber.org/zap"
)

// CreateCallDetails splits one ER line into usage records and builds a call
// detail for each. A rejected line or any failing record aborts the whole
// batch; partial results are never returned.
func (s *Service) CreateCallDetails(ctx context.Context, batch calldetaildomain.Batch) ([]calldetaildomain.CallDetail, error) {
	fields := strings.Split(batch.Record, string(s.delimiter))

	records, err := s.splitter.SplitRawBatch(fields, batch.StartIndex, s.delimiter, batch.ERID)
	if err != nil {
		s.log.Warn("ER batch rejected", zap.Int("erid", batch.ERID), zap.Error(err))
		s.metrics.ObserveBatchRejected()
		return nil, &calldetaildomain.BatchRejectedError{ERID: batch.ERID, Cause: err}
	}

	details := make([]calldetaildomain.CallDetail, 0, len(records))
	for _, rec := range records {
		cd, err := s.CreateCallDetail(ctx, rec, calldetaildomain.WithErrorLog(false))
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.RecordID, err)
		}
		details = append(details, *cd)
	}
	return details, nil
}
