package models

import (
	"strings"
	"time"
)

// ExpirationWindow is how long after a write a record is considered live.
const ExpirationWindow = 5 * time.Minute

const keySeparator = "#"

// CaseRecord is a single case stored under a patient. The tenant is not a
// field: it is always the prefix of PatientID (see TenantID).
type CaseRecord struct {
	// PatientID is the composite tenantId#rawPatientId partition key.
	PatientID string `json:"patientId" validate:"required,patientkey"`
	CaseID    string `json:"caseId" validate:"required,notblank"`
	// DataAsJSON is the opaque payload exactly as it was received.
	DataAsJSON string `json:"dataAsJson" validate:"required,notblank"`
	// ExpirationDate is in milliseconds since the Unix epoch.
	ExpirationDate int64 `json:"expirationDate" validate:"required"`
}

// TenantID returns the tenant the record belongs to.
func (r *CaseRecord) TenantID() string {
	return TenantID(r.PatientID)
}

// PatientKey builds the composite patient key for a tenant and raw patient ID.
func PatientKey(tenantID, patientID string) string {
	return tenantID + keySeparator + patientID
}

// TenantID returns the part of a composite patient key before the first
// separator. A key without a separator is returned unchanged.
func TenantID(patientKey string) string {
	if i := strings.Index(patientKey, keySeparator); i >= 0 {
		return patientKey[:i]
	}
	return patientKey
}

// CaseKey is the identifier of a single case used in not found messages.
func CaseKey(patientKey, caseID string) string {
	return patientKey + keySeparator + caseID
}

// ExpirationFor returns the expiration timestamp in epoch millis for a record written at t.
func ExpirationFor(t time.Time) int64 {
	return t.Add(ExpirationWindow).UnixNano() / int64(time.Millisecond)
}

// NewCaseRecord builds the record persisted for a write made at now.
func NewCaseRecord(tenantID, patientID, caseID, dataAsJSON string, now time.Time) *CaseRecord {
	return &CaseRecord{
		PatientID:      PatientKey(tenantID, patientID),
		CaseID:         caseID,
		DataAsJSON:     dataAsJSON,
		ExpirationDate: ExpirationFor(now),
	}
}
