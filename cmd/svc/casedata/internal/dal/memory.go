package dal

import (
	"context"
	"sort"
	"sync"

	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/caseerr"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/models"
	"github.com/sprucehealth/casedata/libs/errors"
)

type memoryDAL struct {
	mu    sync.RWMutex
	cases map[string]map[string]models.CaseRecord
}

// NewMemory returns a DAL that keeps records in process. It follows the same
// key semantics as the DynamoDB table, including ReadMany ordering by caseId,
// and is meant for local development only.
func NewMemory() DAL {
	return &memoryDAL{cases: make(map[string]map[string]models.CaseRecord)}
}

func (m *memoryDAL) Write(ctx context.Context, r *models.CaseRecord) error {
	if r == nil {
		return errors.Trace(caseerr.New(caseerr.ValidationError, "record: is required"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pc := m.cases[r.PatientID]
	if pc == nil {
		pc = make(map[string]models.CaseRecord)
		m.cases[r.PatientID] = pc
	}
	pc[r.CaseID] = *r
	return nil
}

func (m *memoryDAL) ReadOne(ctx context.Context, patientKey, caseID string) (*models.CaseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.cases[patientKey][caseID]
	if !ok {
		return nil, errors.Trace(caseerr.New(caseerr.DataNotFound, models.CaseKey(patientKey, caseID)))
	}
	return &r, nil
}

func (m *memoryDAL) ReadMany(ctx context.Context, patientKey string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pc := m.cases[patientKey]
	if len(pc) == 0 {
		return nil, errors.Trace(caseerr.New(caseerr.DataNotFound, patientKey))
	}
	ids := make([]string, 0, len(pc))
	for id := range pc {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = pc[id].DataAsJSON
	}
	return values, nil
}
