package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/mattfenwick/scan-utils/pkg/command"
	"github.com/mattfenwick/scan-utils/pkg/telemetry"
	"github.com/mattfenwick/scan-utils/pkg/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const scanIdParam = "scan-id"

// HTTPConnector talks to a scan server over its HTTP API
type HTTPConnector struct {
	ServerAddress string
	RestyClient   *resty.Client
}

func NewHTTPConnector(server string) *HTTPConnector {
	restyClient := resty.New()
	restyClient.SetBaseURL(server)
	return &HTTPConnector{
		ServerAddress: server,
		RestyClient:   restyClient,
	}
}

// Connect creates a connector and checks that the server answers
func Connect(ctx context.Context, server string) (*HTTPConnector, error) {
	c := NewHTTPConnector(server)
	info, err := c.GetInfo(ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to connect to scan server at %s", server)
	}
	logrus.Debugf("connected to %s: %s", server, info)
	return c, nil
}

func (c *HTTPConnector) SubmitScan(ctx context.Context, name string, commands []*command.Command) (ScanID, error) {
	response := &SubmitScanResponse{}
	_, err := IssueRequest(ctx, c.RestyClient, "POST", "scan", &SubmitScanRequest{Name: name, Commands: commands}, nil, response)
	if err != nil {
		return NoScanID, err
	}
	return response.ID, nil
}

func (c *HTTPConnector) GetScanInfo(ctx context.Context, id ScanID) (*ScanInfo, error) {
	info := &ScanInfo{}
	_, err := IssueRequest(ctx, c.RestyClient, "GET", "scan", nil, scanIdParams(id), info)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (c *HTTPConnector) GetInfo(ctx context.Context) (string, error) {
	return IssueRequest(ctx, c.RestyClient, "GET", "info", nil, nil, nil)
}

func (c *HTTPConnector) AbortScan(ctx context.Context, id ScanID) error {
	_, err := IssueRequest(ctx, c.RestyClient, "DELETE", "scan", nil, scanIdParams(id), nil)
	return err
}

func (c *HTTPConnector) ListScans(ctx context.Context) ([]*ScanInfo, error) {
	var infos []*ScanInfo
	_, err := IssueRequest(ctx, c.RestyClient, "GET", "scans", nil, nil, &infos)
	return infos, err
}

func (c *HTTPConnector) GetScanData(ctx context.Context, id ScanID) ([]*Sample, error) {
	var samples []*Sample
	_, err := IssueRequest(ctx, c.RestyClient, "GET", "scan/data", nil, scanIdParams(id), &samples)
	return samples, err
}

func scanIdParams(id ScanID) map[string]string {
	return map[string]string{scanIdParam: strconv.FormatInt(int64(id), 10)}
}

func IssueRequest(ctx context.Context, restyClient *resty.Client, verb string, path string, body interface{}, params map[string]string, result interface{}) (string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, fmt.Sprintf("%s %s", verb, path))
	defer span.End()

	respBody, err := issueRequest(ctx, restyClient, verb, path, body, params, result)
	telemetry.RecordEvent(verb, path, err)
	if err != nil {
		span.RecordError(err)
	}
	return respBody, err
}

func issueRequest(ctx context.Context, restyClient *resty.Client, verb string, path string, body interface{}, params map[string]string, result interface{}) (string, error) {
	var err error
	request := restyClient.R().SetContext(ctx)
	if body != nil {
		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			reqBody, err := json.MarshalIndent(body, "", "  ")
			if err != nil {
				return "", errors.Wrapf(err, "unable to marshal json")
			}
			logrus.Tracef("request body: %s", string(reqBody))
		}
		request = request.SetBody(body)
	}
	if result != nil {
		request = request.SetResult(result)
	}
	if params != nil {
		request = request.SetQueryParams(params)
	}

	urlPath := fmt.Sprintf("%s/%s", restyClient.BaseURL, path)
	logrus.Debugf("issuing %s to %s", verb, urlPath)

	var resp *resty.Response
	switch verb {
	case "GET":
		resp, err = request.Get(path)
	case "POST":
		resp, err = request.Post(path)
	case "PUT":
		resp, err = request.Put(path)
	case "DELETE":
		resp, err = request.Delete(path)
	default:
		return "", errors.Errorf("unrecognized http verb %s to %s", verb, path)
	}
	if err != nil {
		return "", errors.Wrapf(err, "unable to issue %s to %s", verb, path)
	}

	respBody, statusCode := resp.String(), resp.StatusCode()
	logrus.Debugf("response code %d from %s to %s", statusCode, verb, urlPath)
	logrus.Tracef("response body: %s", utils.StringPrefix(respBody, 2000))

	if !resp.IsSuccess() {
		return respBody, errors.Errorf("bad status code for %s to path %s: %d, response %s", verb, path, statusCode, respBody)
	}
	return respBody, nil
}
