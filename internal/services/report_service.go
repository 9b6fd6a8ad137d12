package services

import (
	"context"
	"fmt"

	"storefront/internal/repositories"
)

// LatestSalesCount is how many recent orders the admin overview shows.
const LatestSalesCount = 6

// ReportService serves the admin overview.
type ReportService struct {
	reportRepo repositories.ReportRepository
}

// NewReportService creates a new ReportService.
func NewReportService(reportRepo repositories.ReportRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

// Overview returns store-wide counts and sales. Admin only.
func (s *ReportService) Overview(ctx context.Context, actor Identity) (*repositories.Overview, Result, error) {
	if !actor.IsAdmin() {
		return nil, fail(ReasonAuthorizationDenied, "administrator role required"), nil
	}
	overview, err := s.reportRepo.Overview(ctx, LatestSalesCount)
	if err != nil {
		return nil, Result{}, fmt.Errorf("failed to build overview: %w", err)
	}
	return overview, succeed("ok"), nil
}
