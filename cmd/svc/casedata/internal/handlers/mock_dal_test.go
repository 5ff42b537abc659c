package handlers

import (
	"context"
	"testing"

	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/dal"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/models"
	"github.com/sprucehealth/casedata/libs/testhelpers/mock"
)

type mockDAL struct {
	*mock.Expector
}

var _ dal.DAL = &mockDAL{}

func newMockDAL(t *testing.T) *mockDAL {
	return &mockDAL{&mock.Expector{T: t}}
}

func (m *mockDAL) Write(ctx context.Context, r *models.CaseRecord) error {
	rets := m.Record(r)
	if len(rets) == 0 {
		return nil
	}
	return mock.SafeError(rets[0])
}

func (m *mockDAL) ReadOne(ctx context.Context, patientKey, caseID string) (*models.CaseRecord, error) {
	rets := m.Record(patientKey, caseID)
	if len(rets) == 0 {
		return nil, nil
	}
	r, _ := rets[0].(*models.CaseRecord)
	return r, mock.SafeError(rets[1])
}

func (m *mockDAL) ReadMany(ctx context.Context, patientKey string) ([]string, error) {
	rets := m.Record(patientKey)
	if len(rets) == 0 {
		return nil, nil
	}
	values, _ := rets[0].([]string)
	return values, mock.SafeError(rets[1])
}
