// Command listener opens the live channel with a session token and prints
// every push it receives.
package main

import (
	"context"
	"direct-chat/api"
	"direct-chat/auth"
	"direct-chat/domain"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	color.Enable = cfg.Colours

	header := http.Header{}
	header.Add("Cookie", (&http.Cookie{Name: auth.CookieName, Value: cfg.Token}).String())
	conn, resp, err := websocket.DefaultDialer.Dial(cfg.Addr, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("handshake rejected with status %d: %w", resp.StatusCode, err)
		}
		return err
	}
	defer conn.Close()

	if cfg.Partner != "" {
		frame, err := json.Marshal(api.ClientFrame{Type: api.FrameSubscribe, PartnerID: cfg.Partner})
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Println(render(data))
	}
}

type frame struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

func render(data []byte) string {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return color.Red.Sprintf("unreadable frame: %s", data)
	}
	switch f.Type {
	case "message":
		var msg domain.EnrichedMessage
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			return color.Red.Sprintf("unreadable message: %s", f.Data)
		}
		return fmt.Sprintf("%s %s %s",
			color.Gray.Sprint(msg.Timestamp.Local().Format("15:04:05")),
			color.Green.Sprintf("%s %s:", msg.Sender.FirstName, msg.Sender.LastName),
			msg.Content)
	case "notification":
		var n domain.Notification
		if err := json.Unmarshal(f.Data, &n); err != nil {
			return color.Red.Sprintf("unreadable notification: %s", f.Data)
		}
		return color.Yellow.Sprintf("new message from %s: %s", n.Sender.FirstName, n.Content)
	case api.FrameError:
		return color.Red.Sprintf("error: %s", f.Data)
	default:
		return color.Cyan.Sprintf("%s %s", f.Type, f.Channel)
	}
}
