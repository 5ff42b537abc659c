// Package localserver serves the Lambda handler over plain HTTP for local
// development. It plays the part of API Gateway: it matches the routes,
// builds a proxy request with the path parameters, and writes back the proxy
// response.
package localserver

import (
	"io"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/labstack/echo/v4"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/handlers"
	"github.com/sprucehealth/casedata/libs/errors"
	"github.com/sprucehealth/casedata/libs/golog"
)

const (
	casesPath = "/tenants/:tenantId/patients/:patientId/cases"
	casePath  = casesPath + "/:caseId"
)

// New returns an echo server routing case requests to fn.
func New(fn handlers.Func) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	h := proxy(fn)
	e.GET(casesPath, h)
	e.GET(casePath, h)
	e.PUT(casePath, h)
	e.POST(casePath, h)
	return e
}

func proxy(fn handlers.Func) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := proxyRequest(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		res, err := fn(c.Request().Context(), req)
		if err != nil {
			golog.Errorf("Handler returned an error: %s", err)
			return echo.NewHTTPError(http.StatusBadGateway)
		}
		for k, v := range res.Headers {
			c.Response().Header().Set(k, v)
		}
		c.Response().WriteHeader(res.StatusCode)
		_, err = io.WriteString(c.Response(), res.Body)
		return errors.Trace(err)
	}
}

func proxyRequest(c echo.Context) (events.APIGatewayProxyRequest, error) {
	r := c.Request()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayProxyRequest{}, errors.Trace(err)
	}
	params := make(map[string]string, len(c.ParamNames()))
	for i, name := range c.ParamNames() {
		v, err := url.PathUnescape(c.ParamValues()[i])
		if err != nil {
			return events.APIGatewayProxyRequest{}, errors.Trace(err)
		}
		params[name] = v
	}
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	return events.APIGatewayProxyRequest{
		Resource:       c.Path(),
		Path:           r.URL.Path,
		HTTPMethod:     r.Method,
		Headers:        headers,
		PathParameters: params,
		Body:           string(body),
	}, nil
}
