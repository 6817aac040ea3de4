package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

type capturedResponseKey struct{}

// capturedResponse holds the body of the single GraphQL response sent under its context.
type capturedResponse struct {
	body []byte
}

type graphQLErrorsEnvelope struct {
	Errors json.RawMessage `json:"errors"`
}

func withResponseCapture(parentContext context.Context) (context.Context, *capturedResponse) {
	capture := &capturedResponse{}
	return context.WithValue(parentContext, capturedResponseKey{}, capture), capture
}

// errorsPayload returns the compacted errors array, or an empty string when the body carried none.
func (capture *capturedResponse) errorsPayload() string {
	if len(capture.body) == 0 {
		return ""
	}

	envelope := graphQLErrorsEnvelope{}
	if decodeError := json.Unmarshal(capture.body, &envelope); decodeError != nil {
		return ""
	}
	trimmedErrors := bytes.TrimSpace(envelope.Errors)
	if len(trimmedErrors) == 0 || bytes.Equal(trimmedErrors, []byte("null")) {
		return ""
	}

	compactedErrors := bytes.Buffer{}
	if compactError := json.Compact(&compactedErrors, trimmedErrors); compactError != nil {
		return string(trimmedErrors)
	}
	return compactedErrors.String()
}

// responseCaptureTransport copies response bodies into the capturedResponse found on the request context.
type responseCaptureTransport struct {
	base http.RoundTripper
}

func (transport *responseCaptureTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	response, roundTripError := transport.base.RoundTrip(request)
	if roundTripError != nil {
		return response, roundTripError
	}

	capture, captureRequested := request.Context().Value(capturedResponseKey{}).(*capturedResponse)
	if !captureRequested {
		return response, nil
	}

	responseBody, readError := io.ReadAll(response.Body)
	_ = response.Body.Close()
	if readError != nil {
		return nil, readError
	}
	capture.body = responseBody
	response.Body = io.NopCloser(bytes.NewReader(responseBody))
	return response, nil
}

func newCapturingHTTPClient(httpClient *http.Client) *http.Client {
	capturingClient := http.Client{}
	if httpClient != nil {
		capturingClient = *httpClient
	}

	baseTransport := capturingClient.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	capturingClient.Transport = &responseCaptureTransport{base: baseTransport}
	return &capturingClient
}
