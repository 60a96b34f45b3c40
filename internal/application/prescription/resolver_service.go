package prescription

import (
	"context"

	"github.com/pharmos/backend/internal/domain/prescription"
	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ResolverService resolves share codes and manages prescriptions
type ResolverService struct {
	repo prescription.Repository
}

// NewResolverService creates a ResolverService
func NewResolverService(repo prescription.Repository) *ResolverService {
	return &ResolverService{repo: repo}
}

// Resolve maps an opaque share code to its active prescription. It
// performs no persistence; claiming the code is a separate, atomic
// operation owned by the checkout pipeline.
func (s *ResolverService) Resolve(ctx context.Context, tenantID uuid.UUID, code string) (*prescription.Prescription, error) {
	if code == "" {
		return nil, shared.ErrShareCodeInvalid
	}
	p, err := s.repo.FindByShareCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, shared.ErrShareCodeInvalid
	}
	return p, nil
}

// Create registers a new prescription with predetermined lines and
// returns it, including the generated share code.
func (s *ResolverService) Create(ctx context.Context, tenantID, patientID uuid.UUID, lines []prescription.Line) (*prescription.Prescription, error) {
	p, err := prescription.NewPrescription(tenantID, patientID, lines)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a prescription with its lines
func (s *ResolverService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*prescription.Prescription, error) {
	return s.repo.FindByIDForTenant(ctx, tenantID, id)
}

// Revoke makes a prescription unusable
func (s *ResolverService) Revoke(ctx context.Context, tenantID, id uuid.UUID) error {
	p, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := p.Revoke(); err != nil {
		return err
	}
	return s.repo.Save(ctx, p)
}
