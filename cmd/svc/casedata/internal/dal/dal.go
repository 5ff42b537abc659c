// Package dal is the data access layer for case records.
package dal

import (
	"context"

	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/models"
)

// DAL stores and reads case records. Failures are *caseerr.Error values:
// DataNotFound for empty reads, DeserializationError for unreadable items,
// and StoreError for everything the backing store rejects.
type DAL interface {
	// Write upserts the record keyed by (PatientID, CaseID), overwriting any existing record.
	Write(ctx context.Context, r *models.CaseRecord) error
	// ReadOne returns the record stored under the exact key.
	ReadOne(ctx context.Context, patientKey, caseID string) (*models.CaseRecord, error)
	// ReadMany returns the payload of every case stored for the patient in store order.
	ReadMany(ctx context.Context, patientKey string) ([]string, error)
}
