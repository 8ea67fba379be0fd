package e2e

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

// BaseSuite talks to a running server. Scenarios are skipped when no address is configured.
type BaseSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR not set")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header before running fn as a sub-test.
func (s *BaseSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	s.Run(name, fn)
}

// PostJSON sends body to path, attaching the session cookie when given, and
// decodes the answer into out.
func (s *BaseSuite) PostJSON(path string, cookie *http.Cookie, body, out any) *http.Response {
	data, err := json.Marshal(body)
	s.Require().NoError(err)
	req, err := http.NewRequest(http.MethodPost, s.Config.ServerAddr+path, bytes.NewReader(data))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "POST %s [%d] in %v", path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintf(&logBuilder, "\nREQUEST:\n%s\nRESPONSE:\n%s", data, payload)
	}
	s.T().Log(logBuilder.String())

	if out != nil && len(payload) > 0 {
		s.Require().NoError(json.Unmarshal(payload, out))
	}
	return resp
}

// Dial opens the live channel with the session cookie.
func (s *BaseSuite) Dial(cookie *http.Cookie) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.Config.ServerAddr, "http") + "/api/v1/ws"
	header := http.Header{}
	if cookie != nil {
		header.Add("Cookie", (&http.Cookie{Name: cookie.Name, Value: cookie.Value}).String())
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	s.Require().NoError(err, "Failed to open live channel at "+url)
	return conn
}
