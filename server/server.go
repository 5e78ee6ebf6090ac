package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gruntwork-io/basics-checker/checks"
	"github.com/gruntwork-io/basics-checker/options"
	commons_errors "github.com/gruntwork-io/go-commons/errors"
	"golang.org/x/sync/singleflight"
)

type httpResponse struct {
	StatusCode  int
	Body        string
	ContentType string
}

// CheckResult is the per-check part of a DetailedResponse.
type CheckResult struct {
	Name        string `json:"name"`
	Passed      bool   `json:"passed"`
	ElapsedTime string `json:"elapsed_time"`
	Error       string `json:"error,omitempty"`
}

// DetailedResponse is the JSON body returned when detailed status is enabled.
type DetailedResponse struct {
	Status      string        `json:"status"`
	Suite       string        `json:"suite"`
	ElapsedTime string        `json:"elapsed_time"`
	Run         int           `json:"run"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Results     []CheckResult `json:"results"`
	Errors      []string      `json:"errors,omitempty"`
}

// StartHttpServer serves the suite outcome on every path of opts.Listener.
// Read, write and idle timeouts are always set so slow clients cannot hold
// connections open.
func StartHttpServer(opts *options.Options) error {
	suite, err := opts.Suite()
	if err != nil {
		return commons_errors.WithStackTrace(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", httpHandler(opts, suite))

	readTimeout := time.Duration(opts.HttpReadTimeout) * time.Second
	if readTimeout == 0 {
		readTimeout = 5 * time.Second
	}

	writeTimeout := time.Duration(opts.HttpWriteTimeout) * time.Second
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	idleTimeout := time.Duration(opts.HttpIdleTimeout) * time.Second
	if idleTimeout == 0 {
		idleTimeout = 15 * time.Second
	}

	srv := &http.Server{
		Addr:         opts.Listener,
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return srv.ListenAndServe()
}

// httpHandler runs the suite for each inbound request. In singleflight mode
// concurrent requests share a single run.
func httpHandler(opts *options.Options, suite checks.Suite) http.HandlerFunc {
	var group singleflight.Group
	runner := opts.Runner()

	return func(w http.ResponseWriter, r *http.Request) {
		var resp *httpResponse
		logger := opts.Logger

		if opts.Singleflight {
			logger.Infof("Received inbound request. Performing singleflight suite run...")

			result, _, shared := group.Do("suite", func() (interface{}, error) {
				logger.Infof("Beginning suite %s...", suite.Name)
				return buildResponse(runner.Run(suite), opts), nil
			})

			if shared {
				logger.Infof("Singleflight suite response was shared between multiple requests.")
			}

			resp = result.(*httpResponse)
		} else {
			logger.Infof("Received inbound request. Beginning suite %s...", suite.Name)
			resp = buildResponse(runner.Run(suite), opts)
		}

		if err := writeHttpResponse(w, resp); err != nil {
			logger.Errorf("Failed to send HTTP response: %v", err)
		}
	}
}

func buildResponse(report *checks.Report, opts *options.Options) *httpResponse {
	logger := opts.Logger

	statusCode := http.StatusOK
	statusText := "OK"
	body := "OK"
	contentType := "text/plain"

	if !report.OK() {
		statusCode = http.StatusGatewayTimeout
		statusText = "At least one check failed"
		body = statusText
	}

	if opts.DetailedStatus {
		contentType = "application/json"
		detailedResp := DetailedResponse{
			Status:      statusText,
			Suite:       report.Suite,
			ElapsedTime: report.Elapsed.String(),
			Run:         report.Run,
			Passed:      report.Passed,
			Failed:      report.Failed,
			Results:     make([]CheckResult, 0, len(report.Results)),
			Errors:      report.Errors(),
		}
		for _, result := range report.Results {
			checkResult := CheckResult{Name: result.Name, Passed: result.Passed, ElapsedTime: result.Elapsed.String()}
			if result.Err != nil {
				checkResult.Error = result.Err.Error()
			}
			detailedResp.Results = append(detailedResp.Results, checkResult)
		}

		jsonBytes, err := json.Marshal(detailedResp)
		if err == nil {
			body = string(jsonBytes)
		} else {
			logger.Warnf("Failed to marshal detailed status JSON: %v", err)
			body = `{"status":"error_marshalling_json"}`
		}
	}

	if statusCode == http.StatusOK {
		logger.Infof("All checks passed. Returning HTTP 200 response.")
	} else {
		logger.Infof("At least one check failed. Returning HTTP 504 response.")
	}

	return &httpResponse{StatusCode: statusCode, Body: body, ContentType: contentType}
}

func writeHttpResponse(w http.ResponseWriter, resp *httpResponse) error {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	} else {
		w.Header().Set("Content-Type", "text/plain")
	}
	w.WriteHeader(resp.StatusCode)
	_, err := w.Write([]byte(resp.Body))
	if err != nil {
		return commons_errors.WithStackTrace(err)
	}
	return nil
}
