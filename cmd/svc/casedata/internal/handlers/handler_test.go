package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/caseerr"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/dal"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/models"
	"github.com/sprucehealth/casedata/libs/awsutil"
	"github.com/sprucehealth/casedata/libs/clock"
	"github.com/sprucehealth/casedata/libs/errors"
	"github.com/sprucehealth/casedata/libs/golog"
	"github.com/sprucehealth/casedata/libs/test"
	"github.com/sprucehealth/casedata/libs/testhelpers/mock"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

const testExpiration = int64(1791979500000)

func pathParams(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func errorResp(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       body,
	}
}

func rawResp(body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: body}
}

func jsonResp(body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func TestWrite(t *testing.T) {
	dl := newMockDAL(t)
	defer mock.FinishAll(dl)
	h := New(dl, clock.NewManaged(testNow), false)

	dl.Expect(mock.NewExpectation(dl.Write, &models.CaseRecord{
		PatientID:      "42#p1",
		CaseID:         "c1",
		DataAsJSON:     `{"x":1}`,
		ExpirationDate: testExpiration,
	}).WithReturns(nil))

	res, err := h.Write(context.Background(), events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", "c1"),
		Body:           `{"x":1}`,
	})
	test.OK(t, err)
	test.Equals(t, events.APIGatewayProxyResponse{StatusCode: http.StatusAccepted}, res)
}

func TestWriteRejectedBeforeStore(t *testing.T) {
	cases := map[string]struct {
		params map[string]string
		body   string
		exp    string
	}{
		"missing tenant key":  {pathParams("patientId", "p1", "caseId", "c1"), "{}", "MissingParameter - tenantId"},
		"missing patient key": {pathParams("tenantId", "42", "caseId", "c1"), "{}", "MissingParameter - patientId"},
		"blank tenant":        {pathParams("tenantId", "  ", "patientId", "p1", "caseId", "c1"), "{}", "MissingParameter - tenantId"},
		"non numeric tenant":  {pathParams("tenantId", "acme", "patientId", "p1", "caseId", "c1"), "{}", "ValidationError - patientId: must have the form tenantId#patientId with a numeric tenantId"},
		"hash in patient":     {pathParams("tenantId", "42", "patientId", "p#1", "caseId", "c1"), "{}", "ValidationError - patientId: must have the form tenantId#patientId with a numeric tenantId"},
		"missing case":        {pathParams("tenantId", "42", "patientId", "p1"), "{}", "ValidationError - caseId: is required"},
		"blank case":          {pathParams("tenantId", "42", "patientId", "p1", "caseId", " "), `{"x":1}`, "ValidationError - caseId: must not be blank"},
		"empty body":          {pathParams("tenantId", "42", "patientId", "p1", "caseId", "c1"), "", "ValidationError - dataAsJson: is required"},
		"blank body":          {pathParams("tenantId", "42", "patientId", "p1", "caseId", "c1"), "   ", "ValidationError - dataAsJson: must not be blank"},
		"blank everything":    {pathParams("tenantId", "42", "patientId", "p1", "caseId", "\t"), "\n", "ValidationError - caseId: must not be blank; dataAsJson: must not be blank"},
	}
	for name, c := range cases {
		// No expectations: any store call fails the test
		dl := newMockDAL(t)
		h := New(dl, clock.NewManaged(testNow), false)
		res, err := h.Write(context.Background(), events.APIGatewayProxyRequest{PathParameters: c.params, Body: c.body})
		test.OK(t, err)
		test.EqualsCase(t, name, errorResp(http.StatusBadRequest, c.exp), res)
		dl.Finish()
	}
}

func TestWriteStoreError(t *testing.T) {
	dl := newMockDAL(t)
	defer mock.FinishAll(dl)
	h := New(dl, clock.NewManaged(testNow), true)

	logs := &bytes.Buffer{}
	prev := golog.Default().Handler()
	golog.Default().SetHandler(golog.WriterHandler(logs, golog.LogfmtFormatter()))
	defer golog.Default().SetHandler(prev)

	storeErr := errors.Trace(caseerr.Wrap(caseerr.StoreError, awsutil.ErrAWS{CodeF: "AccessDeniedException", MessageF: "arn:aws:secret"}, "failed to write case data"))
	dl.Expect(mock.NewExpectationFn(dl.Write, func(params ...interface{}) {}).WithReturns(storeErr))

	res, err := h.Write(context.Background(), events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", "c1"),
		Body:           `{}`,
	})
	test.OK(t, err)
	// Store internals are logged, never returned
	test.Equals(t, errorResp(http.StatusBadRequest, "StoreError - failed to write case data"), res)
	test.Assert(t, strings.Contains(logs.String(), "aws_code=AccessDeniedException"), "expected AWS error code in log: %s", logs.String())
}

func TestReadOne(t *testing.T) {
	dl := newMockDAL(t)
	defer mock.FinishAll(dl)
	h := New(dl, clock.New(), false)

	dl.Expect(mock.NewExpectation(dl.ReadOne, "42#p1", "c1").WithReturns(&models.CaseRecord{
		PatientID:      "42#p1",
		CaseID:         "c1",
		DataAsJSON:     `{"x":1}`,
		ExpirationDate: testExpiration,
	}, nil))

	res, err := h.Read(context.Background(), events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", "c1"),
	})
	test.OK(t, err)
	test.Equals(t, rawResp(`{"x":1}`), res)
}

func TestReadMany(t *testing.T) {
	dl := newMockDAL(t)
	defer mock.FinishAll(dl)
	h := New(dl, clock.New(), false)

	dl.Expect(mock.NewExpectation(dl.ReadMany, "42#p1").WithReturns([]string{`{"x":1}`, `{"a":"<b>&"}`}, nil))

	// A blank caseId reads every case
	res, err := h.Read(context.Background(), events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", " "),
	})
	test.OK(t, err)
	test.Equals(t, jsonResp(`["{\"x\":1}","{\"a\":\"<b>&\"}"]`), res)
}

func TestReadNotFound(t *testing.T) {
	for _, as404 := range []bool{false, true} {
		dl := newMockDAL(t)
		h := New(dl, clock.New(), as404)
		dl.Expect(mock.NewExpectation(dl.ReadOne, "42#p1", "c9").
			WithReturns((*models.CaseRecord)(nil), errors.Trace(caseerr.New(caseerr.DataNotFound, "42#p1#c9"))))
		dl.Expect(mock.NewExpectation(dl.ReadMany, "42#p2").
			WithReturns([]string(nil), errors.Trace(caseerr.New(caseerr.DataNotFound, "42#p2"))))

		status := http.StatusBadRequest
		if as404 {
			status = http.StatusNotFound
		}
		res, err := h.Read(context.Background(), events.APIGatewayProxyRequest{
			PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", "c9"),
		})
		test.OK(t, err)
		test.Equals(t, errorResp(status, "DataNotFound - 42#p1#c9"), res)

		res, err = h.Read(context.Background(), events.APIGatewayProxyRequest{
			PathParameters: pathParams("tenantId", "42", "patientId", "p2"),
		})
		test.OK(t, err)
		test.Equals(t, errorResp(status, "DataNotFound - 42#p2"), res)
		dl.Finish()
	}
}

func TestReadMissingParameter(t *testing.T) {
	dl := newMockDAL(t)
	defer mock.FinishAll(dl)
	h := New(dl, clock.New(), true)

	res, err := h.Read(context.Background(), events.APIGatewayProxyRequest{PathParameters: pathParams("tenantId", "42")})
	test.OK(t, err)
	test.Equals(t, errorResp(http.StatusBadRequest, "MissingParameter - patientId"), res)

	res, err = h.Read(context.Background(), events.APIGatewayProxyRequest{PathParameters: pathParams("tenantId", "", "patientId", "p1")})
	test.OK(t, err)
	test.Equals(t, errorResp(http.StatusBadRequest, "MissingParameter - tenantId"), res)
}

func TestReadDeserializationError(t *testing.T) {
	dl := newMockDAL(t)
	defer mock.FinishAll(dl)
	h := New(dl, clock.New(), true)

	dl.Expect(mock.NewExpectation(dl.ReadOne, "42#p1", "c1").
		WithReturns((*models.CaseRecord)(nil), caseerr.New(caseerr.DeserializationError, "expirationDate is not an integer")))

	res, err := h.Read(context.Background(), events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", "c1"),
	})
	test.OK(t, err)
	test.Equals(t, errorResp(http.StatusBadRequest, "DeserializationError - expirationDate is not an integer"), res)
}

func TestRoute(t *testing.T) {
	dl := newMockDAL(t)
	defer mock.FinishAll(dl)
	h := New(dl, clock.NewManaged(testNow), false)
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})
	params := pathParams("tenantId", "42", "patientId", "p1", "caseId", "c1")

	dl.Expect(mock.NewExpectation(dl.Write, &models.CaseRecord{PatientID: "42#p1", CaseID: "c1", DataAsJSON: "{}", ExpirationDate: testExpiration}))
	res, err := h.Route(ctx, events.APIGatewayProxyRequest{HTTPMethod: "PUT", PathParameters: params, Body: "{}"})
	test.OK(t, err)
	test.Equals(t, http.StatusAccepted, res.StatusCode)

	dl.Expect(mock.NewExpectation(dl.Write, &models.CaseRecord{PatientID: "42#p1", CaseID: "c1", DataAsJSON: "[]", ExpirationDate: testExpiration}))
	res, err = h.Route(ctx, events.APIGatewayProxyRequest{HTTPMethod: "POST", PathParameters: params, Body: "[]"})
	test.OK(t, err)
	test.Equals(t, http.StatusAccepted, res.StatusCode)

	dl.Expect(mock.NewExpectation(dl.ReadOne, "42#p1", "c1").WithReturns(&models.CaseRecord{DataAsJSON: "{}"}, nil))
	res, err = h.Route(ctx, events.APIGatewayProxyRequest{HTTPMethod: "GET", PathParameters: params})
	test.OK(t, err)
	test.Equals(t, rawResp("{}"), res)

	res, err = h.Route(ctx, events.APIGatewayProxyRequest{HTTPMethod: "DELETE", PathParameters: params})
	test.OK(t, err)
	test.Equals(t, events.APIGatewayProxyResponse{
		StatusCode: http.StatusMethodNotAllowed,
		Headers:    map[string]string{"Allow": "GET, OPTIONS, POST, PUT"},
		Body:       "Method not allowed",
	}, res)

	res, err = h.Route(ctx, events.APIGatewayProxyRequest{HTTPMethod: "OPTIONS"})
	test.OK(t, err)
	test.Equals(t, http.StatusOK, res.StatusCode)
}

// Round trip through the in-memory DAL, which shares the DynamoDB key semantics.
func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManaged(testNow)
	h := New(dal.NewMemory(), clk, false)

	res, err := h.Write(ctx, events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", "c1"),
		Body:           `{"x":1}`,
	})
	test.OK(t, err)
	test.Equals(t, http.StatusAccepted, res.StatusCode)
	test.Equals(t, "", res.Body)

	res, err = h.Read(ctx, events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", "c1"),
	})
	test.OK(t, err)
	test.Equals(t, rawResp(`{"x":1}`), res)

	res, err = h.Read(ctx, events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1"),
	})
	test.OK(t, err)
	test.Equals(t, jsonResp(`["{\"x\":1}"]`), res)

	// A blank caseId is refused on write, so reading it back lists the stored cases
	res, err = h.Write(ctx, events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", " "),
		Body:           `{"y":2}`,
	})
	test.OK(t, err)
	test.Equals(t, http.StatusBadRequest, res.StatusCode)
	res, err = h.Read(ctx, events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", " "),
	})
	test.OK(t, err)
	test.Equals(t, jsonResp(`["{\"x\":1}"]`), res)

	// Another case for the same patient does not make an unknown case readable
	res, err = h.Read(ctx, events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", "c2"),
	})
	test.OK(t, err)
	test.Equals(t, errorResp(http.StatusBadRequest, "DataNotFound - 42#p1#c2"), res)

	// A different tenant is a different partition
	res, err = h.Read(ctx, events.APIGatewayProxyRequest{
		PathParameters: pathParams("tenantId", "43", "patientId", "p1"),
	})
	test.OK(t, err)
	test.Equals(t, errorResp(http.StatusBadRequest, "DataNotFound - 43#p1"), res)

	clk.WarpForward(time.Minute)
	for _, c := range []string{"c2", "c3"} {
		res, err = h.Write(ctx, events.APIGatewayProxyRequest{
			PathParameters: pathParams("tenantId", "42", "patientId", "p1", "caseId", c),
			Body:           `{"case":"` + c + `"}`,
		})
		test.OK(t, err)
		test.Equals(t, http.StatusAccepted, res.StatusCode)
	}
	res, err = h.Read(ctx, events.APIGatewayProxyRequest{PathParameters: pathParams("tenantId", "42", "patientId", "p1")})
	test.OK(t, err)
	test.Equals(t, jsonResp(`["{\"x\":1}","{\"case\":\"c2\"}","{\"case\":\"c3\"}"]`), res)
}
