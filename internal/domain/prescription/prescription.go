package prescription

import (
	"crypto/rand"
	"encoding/base32"
	"time"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PrescriptionStatus represents the lifecycle state of a prescription
type PrescriptionStatus string

const (
	StatusActive  PrescriptionStatus = "ACTIVE"
	StatusExpired PrescriptionStatus = "EXPIRED"
	StatusRevoked PrescriptionStatus = "REVOKED"
)

// Line is one predetermined item/quantity entry on a prescription
type Line struct {
	ID             uuid.UUID
	PrescriptionID uuid.UUID
	MedicineID     uuid.UUID
	Quantity       int64
}

// TableName returns the table name for GORM
func (Line) TableName() string {
	return "prescription_lines"
}

// Prescription maps a patient to a predetermined set of order lines,
// addressable by an opaque share code. A share code is single-use: it is
// claimed atomically by the first checkout that commits against it.
type Prescription struct {
	shared.TenantAggregateRoot
	PatientID uuid.UUID
	ShareCode string `gorm:"uniqueIndex"`
	Status    PrescriptionStatus
	Lines     []Line `gorm:"-"`
	UsedAt    *time.Time
	UsedBy    *uuid.UUID // order that consumed the code
}

// NewPrescription creates an active prescription with a generated share code
func NewPrescription(tenantID, patientID uuid.UUID, lines []Line) (*Prescription, error) {
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "Patient ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "Prescription must contain at least one line")
	}
	for _, line := range lines {
		if line.MedicineID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_MEDICINE", "Prescription line medicine cannot be empty")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Prescription line quantity must be positive")
		}
	}

	p := &Prescription{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PatientID:           patientID,
		ShareCode:           GenerateShareCode(),
		Status:              StatusActive,
	}
	for _, line := range lines {
		p.Lines = append(p.Lines, Line{
			ID:             uuid.New(),
			PrescriptionID: p.ID,
			MedicineID:     line.MedicineID,
			Quantity:       line.Quantity,
		})
	}

	return p, nil
}

// IsActive returns true when the prescription can still be dispensed
func (p *Prescription) IsActive() bool {
	return p.Status == StatusActive && p.UsedAt == nil
}

// Revoke marks the prescription unusable
func (p *Prescription) Revoke() error {
	if p.Status != StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active prescriptions can be revoked")
	}
	p.Status = StatusRevoked
	p.UpdatedAt = time.Now()
	return nil
}

// shareCodeBytes of entropy, base32-encoded without padding (16 chars)
const shareCodeBytes = 10

// GenerateShareCode produces an opaque, URL-safe share code
func GenerateShareCode() string {
	buf := make([]byte, shareCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable
		panic(err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
}
