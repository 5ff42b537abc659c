// Package handlers turns API Gateway proxy requests into case data reads and
// writes and maps the results back to proxy responses.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/caseerr"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/dal"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/models"
	"github.com/sprucehealth/casedata/libs/awsutil"
	"github.com/sprucehealth/casedata/libs/clock"
	"github.com/sprucehealth/casedata/libs/errors"
	"github.com/sprucehealth/casedata/libs/golog"
)

// Func is the signature accepted by lambda.Start.
type Func func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

var allowedMethods = []string{http.MethodGet, http.MethodOptions, http.MethodPost, http.MethodPut}

// Handler serves case data requests.
type Handler struct {
	dal            dal.DAL
	clk            clock.Clock
	notFoundStatus int
}

// New returns a handler using dl for storage. DataNotFound is answered with
// 400 like every other failure unless notFoundAs404 is set.
func New(dl dal.DAL, clk clock.Clock, notFoundAs404 bool) *Handler {
	h := &Handler{
		dal:            dl,
		clk:            clk,
		notFoundStatus: http.StatusBadRequest,
	}
	if notFoundAs404 {
		h.notFoundStatus = http.StatusNotFound
	}
	return h
}

// Route dispatches on the HTTP method: GET reads, PUT and POST write.
func (h *Handler) Route(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case http.MethodGet:
		return h.Read(ctx, req)
	case http.MethodPut, http.MethodPost:
		return h.Write(ctx, req)
	case http.MethodOptions:
		return allowResponse(http.StatusOK, ""), nil
	}
	requestLogger(ctx, "route").Warningf("Method %q not allowed", req.HTTPMethod)
	return allowResponse(http.StatusMethodNotAllowed, "Method not allowed"), nil
}

// Write stores the request body as the case identified by the path. It
// answers 202 with an empty body on success.
func (h *Handler) Write(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := requestLogger(ctx, "write")
	p, err := extractParams(req.PathParameters)
	if err != nil {
		return h.errorResponse(log, err), nil
	}
	if err := p.validateIdentifiers(); err != nil {
		return h.errorResponse(log, err), nil
	}
	r := models.NewCaseRecord(p.tenantID, p.patientID, p.caseID, req.Body, h.clk.Now())
	if err := models.Validate(r); err != nil {
		return h.errorResponse(log, err), nil
	}
	if err := h.dal.Write(ctx, r); err != nil {
		return h.errorResponse(log, errors.Annotatef(err, "patient=%s case=%s", r.PatientID, r.CaseID)), nil
	}
	log.Debugf("Stored case %s for tenant %s", r.CaseID, r.TenantID())
	return events.APIGatewayProxyResponse{StatusCode: http.StatusAccepted}, nil
}

// Read returns the stored payload of a single case when caseId is set, and
// a JSON array of every payload stored for the patient otherwise. A single
// payload is opaque and is sent without a Content-Type.
func (h *Handler) Read(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := requestLogger(ctx, "read")
	p, err := extractParams(req.PathParameters)
	if err != nil {
		return h.errorResponse(log, err), nil
	}
	log.Debugf("tenantId=%q patientId=%q caseId=%q", p.tenantID, p.patientID, p.caseID)
	if err := p.validateIdentifiers(); err != nil {
		return h.errorResponse(log, err), nil
	}
	patientKey := models.PatientKey(p.tenantID, p.patientID)

	if isBlank(p.caseID) {
		values, err := h.dal.ReadMany(ctx, patientKey)
		if err != nil {
			return h.errorResponse(log, err), nil
		}
		body, err := encodeJSON(values)
		if err != nil {
			return h.errorResponse(log, errors.Trace(err)), nil
		}
		return jsonResponse(http.StatusOK, body), nil
	}

	r, err := h.dal.ReadOne(ctx, patientKey, p.caseID)
	if err != nil {
		return h.errorResponse(log, err), nil
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: r.DataAsJSON}, nil
}

// errorResponse logs the full error and answers with only its kind and message.
func (h *Handler) errorResponse(log golog.Logger, err error) events.APIGatewayProxyResponse {
	e := caseerr.As(err)
	status := http.StatusBadRequest
	if caseerr.Is(err, caseerr.DataNotFound) {
		status = h.notFoundStatus
	}
	switch e.Kind {
	case caseerr.StoreError:
		if code := awsutil.ErrCode(errors.Cause(e.Err)); code != "" {
			log = log.Context("aws_code", code)
		}
		log.Errorf("Request failed: %s", err)
	case caseerr.DeserializationError:
		log.Errorf("Request failed: %s", err)
	default:
		log.Warningf("Request rejected: %s", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       e.Kind.String() + " - " + e.Msg,
	}
}

func jsonResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func allowResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Allow": strings.Join(allowedMethods, ", ")},
		Body:       body,
	}
}

// encodeJSON marshals v without HTML escaping so stored payloads round trip byte for byte.
func encodeJSON(v interface{}) (string, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func requestLogger(ctx context.Context, route string) golog.Logger {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return golog.Context("route", route, "request_id", lc.AwsRequestID)
	}
	return golog.Context("route", route)
}
