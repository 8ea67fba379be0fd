package e2e

import (
	"direct-chat/api"
	"direct-chat/auth"
	"direct-chat/domain"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type testDirectMessageSuite struct {
	BaseSuite
}

func TestDirectMessageSuite(t *testing.T) {
	suite.Run(t, &testDirectMessageSuite{})
}

type account struct {
	user   domain.UserSummary
	cookie *http.Cookie
}

func (s *testDirectMessageSuite) signUp(firstName string) account {
	var body struct {
		User domain.UserSummary `json:"user"`
	}
	resp := s.PostJSON("/api/v1/sign-up", nil, map[string]string{
		"firstName": firstName,
		"lastName":  "E2E",
		"email":     uuid.NewString() + "@e2e.example.com",
		"password":  "ComplexPass123!",
	}, &body)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.CookieName {
			return account{user: body.User, cookie: cookie}
		}
	}
	s.FailNow("session cookie missing")
	return account{}
}

func (s *testDirectMessageSuite) TestLiveDeliveryFlow() {
	var alice, bob account
	var conn *websocket.Conn
	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	s.Step("Step 0: Register both participants", func() {
		alice = s.signUp("Alice")
		bob = s.signUp("Bob")
	})

	s.Step("Step 1: Receiver opens the conversation", func() {
		conn = s.Dial(bob.cookie)
		frame, err := json.Marshal(api.ClientFrame{Type: api.FrameSubscribe, PartnerID: alice.user.ID})
		s.Require().NoError(err)
		s.Require().NoError(conn.WriteMessage(websocket.TextMessage, frame))
		s.Require().Equal(api.FrameSubscribed, s.readType(conn))
	})

	s.Step("Step 2: Sender posts a message", func() {
		resp := s.PostJSON("/api/v1/messages", alice.cookie, map[string]string{
			"receiverId": bob.user.ID,
			"content":    "hello from e2e",
		}, nil)
		s.Require().Equal(http.StatusCreated, resp.StatusCode)
	})

	s.Step("Step 3: Receiver gets the push and the stored history", func() {
		seen := map[string]bool{}
		for !seen["message"] || !seen["notification"] {
			seen[s.readType(conn)] = true
		}

		var history struct {
			Conversation []domain.EnrichedMessage `json:"conversation"`
		}
		resp := s.PostJSON("/api/v1/conversation", bob.cookie, map[string]string{"receiverId": alice.user.ID}, &history)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Require().Len(history.Conversation, 1)
		s.Require().Equal(alice.user, history.Conversation[0].Sender)
	})
}

func (s *testDirectMessageSuite) readType(conn *websocket.Conn) string {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	var frame api.ServerFrame
	s.Require().NoError(json.Unmarshal(data, &frame))
	return frame.Type
}
