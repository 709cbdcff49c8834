package support

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/MeKo-Tech/gs1decode/internal/server"
	"github.com/cucumber/godog"
	"github.com/gorilla/websocket"
)

// theServerIsRunning starts the decode server in-process on an httptest listener.
func (testCtx *TestContext) theServerIsRunning() error {
	if testCtx.HTTPTestServer != nil {
		return errors.New("server is already running")
	}

	decodeServer, err := server.NewServer(testCtx.ServerConfig)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	mux := http.NewServeMux()
	decodeServer.SetupRoutes(mux)

	testCtx.DecodeServer = decodeServer
	testCtx.HTTPTestServer = httptest.NewServer(mux)
	return nil
}

func (testCtx *TestContext) theServerDefaultSymbologyIs(symbology string) error {
	testCtx.ServerConfig.DefaultSymbology = symbology
	return nil
}

func (testCtx *TestContext) theServerLanguageIs(lang string) error {
	testCtx.ServerConfig.Language = lang
	return nil
}

func (testCtx *TestContext) rateLimitingAllowsRequestsPerMinute(n int) error {
	testCtx.ServerConfig.RateLimit.Enabled = true
	testCtx.ServerConfig.RateLimit.RequestsPerMinute = n
	testCtx.ServerConfig.RateLimit.RequestsPerHour = n * 60
	testCtx.ServerConfig.RateLimit.MaxCodesPerDay = 100000
	return nil
}

func (testCtx *TestContext) theDailyCodeQuotaIs(n int) error {
	testCtx.ServerConfig.RateLimit.Enabled = true
	if testCtx.ServerConfig.RateLimit.RequestsPerMinute == 0 {
		testCtx.ServerConfig.RateLimit.RequestsPerMinute = 600
		testCtx.ServerConfig.RateLimit.RequestsPerHour = 20000
	}
	testCtx.ServerConfig.RateLimit.MaxCodesPerDay = n
	return nil
}

// GetServerURL returns the base URL of the running server.
func (testCtx *TestContext) GetServerURL() string {
	if testCtx.HTTPTestServer == nil {
		return ""
	}
	return testCtx.HTTPTestServer.URL
}

func (testCtx *TestContext) iGET(endpoint string) error {
	return testCtx.makeHTTPRequest(http.MethodGet, endpoint, "")
}

func (testCtx *TestContext) iPOSTTo(endpoint string, doc *godog.DocString) error {
	return testCtx.makeHTTPRequest(http.MethodPost, endpoint, doc.Content)
}

func (testCtx *TestContext) iSendOPTIONSTo(endpoint string) error {
	return testCtx.makeHTTPRequest(http.MethodOptions, endpoint, "")
}

func (testCtx *TestContext) iGETTimes(endpoint string, times int) error {
	for range times {
		if err := testCtx.iGET(endpoint); err != nil {
			return err
		}
	}
	return nil
}

// makeHTTPRequest makes an HTTP request to the server and records the response.
func (testCtx *TestContext) makeHTTPRequest(method, endpoint, body string) error {
	if testCtx.HTTPTestServer == nil {
		return errors.New("server is not running")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	url := testCtx.GetServerURL() + endpoint

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(respBody)
	testCtx.LastHTTPHeaders = make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			testCtx.LastHTTPHeaders[key] = values[0]
		}
	}
	return nil
}

func (testCtx *TestContext) theResponseStatusShouldBe(expected int) error {
	if testCtx.LastHTTPStatusCode != expected {
		return fmt.Errorf("expected status %d, got %d\nBody: %s",
			expected, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseFieldShouldBe(field, want string) error {
	return checkJSONField(testCtx.LastHTTPResponse, field, want)
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, want string) error {
	got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]
	if got != want {
		return fmt.Errorf("header %s = %q, want %q", name, got, want)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldHaveHeader(name string) error {
	if _, ok := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; !ok {
		return fmt.Errorf("header %s missing", name)
	}
	return nil
}

// iSendOverWebSocket dials /ws/decode, sends one message and stores the reply
// as the last HTTP response so the response steps can inspect it.
func (testCtx *TestContext) iSendOverWebSocket(doc *godog.DocString) error {
	if testCtx.HTTPTestServer == nil {
		return errors.New("server is not running")
	}

	wsURL := "ws" + strings.TrimPrefix(testCtx.GetServerURL(), "http") + "/ws/decode"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}
	defer func() { _ = conn.Close() }()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(doc.Content)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply json.RawMessage
	if err := conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("failed to read reply: %w", err)
	}
	testCtx.LastHTTPResponse = string(reply)
	testCtx.LastHTTPStatusCode = http.StatusSwitchingProtocols
	return nil
}

// RegisterServerSteps registers all server mode step definitions.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	// Server setup
	sc.Step(`^the server is running$`, testCtx.theServerIsRunning)
	sc.Step(`^the server default symbology is "([^"]*)"$`, testCtx.theServerDefaultSymbologyIs)
	sc.Step(`^the server language is "([^"]*)"$`, testCtx.theServerLanguageIs)
	sc.Step(`^rate limiting allows (\d+) requests per minute$`, testCtx.rateLimitingAllowsRequestsPerMinute)
	sc.Step(`^the daily code quota is (\d+)$`, testCtx.theDailyCodeQuotaIs)

	// Requests
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^I GET "([^"]*)" (\d+) times$`, testCtx.iGETTimes)
	sc.Step(`^I POST to "([^"]*)":$`, testCtx.iPOSTTo)
	sc.Step(`^I send OPTIONS to "([^"]*)"$`, testCtx.iSendOPTIONSTo)
	sc.Step(`^I send over the WebSocket:$`, testCtx.iSendOverWebSocket)

	// Responses
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseFieldShouldBe)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
	sc.Step(`^the response should have header "([^"]*)"$`, testCtx.theResponseShouldHaveHeader)
}
