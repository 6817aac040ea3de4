package githubtest

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

const (
	rsaKeySizeConstant                = 2048
	rsaPrivateKeyPEMTypeConstant      = "RSA PRIVATE KEY"
	routeKeyTemplateConstant          = "%s %s"
	contentTypeHeaderNameConstant     = "Content-Type"
	jsonContentTypeConstant           = "application/json"
	notFoundBodyConstant              = `{"message":"Not Found"}`
	graphQLPathConstant               = "/graphql"
	trailingSlashConstant             = "/"
	unexpectedRequestTemplateConstant = "unexpected request %s %s"
)

// RecordedRequest captures a request received by Server.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Server is an httptest-backed stand-in for the GitHub REST and GraphQL endpoints.
// Routes are matched on method and exact path; unmatched requests receive 404.
// Handlers may read the request body again after it has been recorded.
type Server struct {
	testInstance testing.TB
	server       *httptest.Server
	router       *mux.Router
	mutex        sync.Mutex
	routes       map[string]http.HandlerFunc
	requests     []RecordedRequest
}

// NewServer starts a server that is closed when the test finishes.
func NewServer(testInstance testing.TB) *Server {
	fakeServer := &Server{
		testInstance: testInstance,
		router:       mux.NewRouter(),
		routes:       map[string]http.HandlerFunc{},
	}
	fakeServer.router.NotFoundHandler = http.HandlerFunc(fakeServer.serveUnmatched)
	fakeServer.router.MethodNotAllowedHandler = http.HandlerFunc(fakeServer.serveUnmatched)
	fakeServer.server = httptest.NewServer(http.HandlerFunc(fakeServer.serve))
	testInstance.Cleanup(fakeServer.server.Close)
	return fakeServer
}

// URL returns the server root without a trailing slash.
func (fakeServer *Server) URL() string {
	return fakeServer.server.URL
}

// APIBaseURL returns the REST base URL with a trailing slash.
func (fakeServer *Server) APIBaseURL() string {
	return fakeServer.server.URL + trailingSlashConstant
}

// GraphQLURL returns the GraphQL endpoint URL.
func (fakeServer *Server) GraphQLURL() string {
	return fakeServer.server.URL + graphQLPathConstant
}

// Handle registers handler for method and path, replacing any previous registration.
func (fakeServer *Server) Handle(method string, path string, handler http.HandlerFunc) {
	routeKey := fmt.Sprintf(routeKeyTemplateConstant, method, path)

	fakeServer.mutex.Lock()
	_, routeRegistered := fakeServer.routes[routeKey]
	fakeServer.routes[routeKey] = handler
	fakeServer.mutex.Unlock()

	if !routeRegistered {
		fakeServer.router.HandleFunc(path, fakeServer.dispatch(routeKey)).Methods(method)
	}
}

// Requests returns a copy of every request received so far.
func (fakeServer *Server) Requests() []RecordedRequest {
	fakeServer.mutex.Lock()
	defer fakeServer.mutex.Unlock()
	return append([]RecordedRequest{}, fakeServer.requests...)
}

// RequestsTo returns the recorded requests matching method and path.
func (fakeServer *Server) RequestsTo(method string, path string) []RecordedRequest {
	matchingRequests := []RecordedRequest{}
	for _, recordedRequest := range fakeServer.Requests() {
		if recordedRequest.Method == method && recordedRequest.Path == path {
			matchingRequests = append(matchingRequests, recordedRequest)
		}
	}
	return matchingRequests
}

func (fakeServer *Server) serve(responseWriter http.ResponseWriter, request *http.Request) {
	requestBody, readError := io.ReadAll(request.Body)
	if readError != nil {
		fakeServer.testInstance.Errorf("unable to read request body: %v", readError)
	}
	request.Body = io.NopCloser(bytes.NewReader(requestBody))

	fakeServer.mutex.Lock()
	fakeServer.requests = append(fakeServer.requests, RecordedRequest{
		Method:   request.Method,
		Path:     request.URL.Path,
		RawQuery: request.URL.RawQuery,
		Header:   request.Header.Clone(),
		Body:     requestBody,
	})
	fakeServer.mutex.Unlock()

	fakeServer.router.ServeHTTP(responseWriter, request)
}

func (fakeServer *Server) dispatch(routeKey string) http.HandlerFunc {
	return func(responseWriter http.ResponseWriter, request *http.Request) {
		fakeServer.mutex.Lock()
		handler := fakeServer.routes[routeKey]
		fakeServer.mutex.Unlock()
		handler(responseWriter, request)
	}
}

func (fakeServer *Server) serveUnmatched(responseWriter http.ResponseWriter, request *http.Request) {
	fakeServer.testInstance.Logf(unexpectedRequestTemplateConstant, request.Method, request.URL.Path)
	RespondJSON(http.StatusNotFound, notFoundBodyConstant)(responseWriter, request)
}

// RespondJSON returns a handler writing body with the given status code.
func RespondJSON(statusCode int, body string) http.HandlerFunc {
	return func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set(contentTypeHeaderNameConstant, jsonContentTypeConstant)
		responseWriter.WriteHeader(statusCode)
		_, _ = io.WriteString(responseWriter, body)
	}
}

// GeneratePrivateKeyPEM creates an RSA key and its PKCS#1 PEM encoding.
func GeneratePrivateKeyPEM(testInstance testing.TB) (string, *rsa.PrivateKey) {
	testInstance.Helper()

	privateKey, generationError := rsa.GenerateKey(rand.Reader, rsaKeySizeConstant)
	if generationError != nil {
		testInstance.Fatalf("unable to generate RSA key: %v", generationError)
	}

	encodedKey := pem.EncodeToMemory(&pem.Block{
		Type:  rsaPrivateKeyPEMTypeConstant,
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	return string(encodedKey), privateKey
}
