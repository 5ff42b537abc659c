package handlers

import (
	"strings"

	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/caseerr"
)

// Path parameter names
const (
	tenantIDParam  = "tenantId"
	patientIDParam = "patientId"
	caseIDParam    = "caseId"
)

type caseParams struct {
	tenantID  string
	patientID string
	caseID    string
}

// extractParams pulls the identifiers from the path parameters. tenantId and
// patientId must be present as keys, their values are checked separately by
// validateIdentifiers. caseId is optional.
func extractParams(pathParams map[string]string) (*caseParams, error) {
	tenantID, ok := pathParams[tenantIDParam]
	if !ok {
		return nil, caseerr.New(caseerr.MissingParameter, tenantIDParam)
	}
	patientID, ok := pathParams[patientIDParam]
	if !ok {
		return nil, caseerr.New(caseerr.MissingParameter, patientIDParam)
	}
	return &caseParams{
		tenantID:  tenantID,
		patientID: patientID,
		caseID:    pathParams[caseIDParam],
	}, nil
}

func (p *caseParams) validateIdentifiers() error {
	if isBlank(p.tenantID) {
		return caseerr.New(caseerr.MissingParameter, tenantIDParam)
	}
	if isBlank(p.patientID) {
		return caseerr.New(caseerr.MissingParameter, patientIDParam)
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
