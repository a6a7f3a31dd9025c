package infringement

import (
	"context"
	"time"

	"github.com/turtacn/HitForge-Discovery/internal/domain/patent"
	"github.com/turtacn/HitForge-Discovery/internal/intelligence/infringe_net"
	appErrors "github.com/turtacn/HitForge-Discovery/pkg/errors"
	commonTypes "github.com/turtacn/HitForge-Discovery/pkg/types/common"
	patentTypes "github.com/turtacn/HitForge-Discovery/pkg/types/patent"
)

// RiskAssessmentService handles infringement risk analysis.
type RiskAssessmentService struct {
	infringeNet infringe_net.InfringementAssessor
	patentRepo  patent.Repository
}

// NewRiskAssessmentService creates a new service.
func NewRiskAssessmentService(assessor infringe_net.InfringementAssessor, repo patent.Repository) *RiskAssessmentService {
	return &RiskAssessmentService{
		infringeNet: assessor,
		patentRepo:  repo,
	}
}

// AssessRisk performs risk assessment for a molecule against a patent.
func (s *RiskAssessmentService) AssessRisk(ctx context.Context, moleculeID commonTypes.ID, patentNumber string) (*patentTypes.InfringementRiskDTO, error) {
	// Stub implementation
	// In a real implementation, this would fetch molecule and patent data,
	// then call the AI model.

	// Example use of types to ensure they are compiled
	_ = commonTypes.GenerateID("")

	return &patentTypes.InfringementRiskDTO{
		Level:      patentTypes.RiskLow,
		Score:      0.1,
		AnalyzedAt: commonTypes.Timestamp(time.Now()),
	}, nil
}

// AnalyzeBatch performs batch risk assessment.
func (s *RiskAssessmentService) AnalyzeBatch(ctx context.Context, moleculeIDs []commonTypes.ID, patentNumbers []string) ([]patentTypes.InfringementRiskDTO, error) {
	// Stub
	return nil, appErrors.NewNotImplemented("batch analysis not implemented")
}
