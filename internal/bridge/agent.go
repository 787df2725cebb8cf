// Package bridge keeps an outbound WebSocket open to a public relay so the
// mobile app can reach the home backend without port forwarding.
package bridge

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Config struct {
	PublicWS   string // ws://relay-host/agent
	LocalURL   string // host:port of the local HTTP API
	AgentID    string
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type requestMsg struct {
	Type   string `json:"type"`
	ReqID  string `json:"reqId"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Body   any    `json:"body"`
}

type responseMsg struct {
	Type   string `json:"type"`
	ReqID  string `json:"reqId"`
	Status int    `json:"status"`
	Body   any    `json:"body"`
}

// Start runs the relay loop, reconnecting forever. Call from its own
// goroutine.
func Start(cfg Config) {
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	for {
		run(cfg)
		cfg.Logger.Warn("relay disconnected, reconnecting",
			zap.Duration("retry_delay", cfg.RetryDelay))
		time.Sleep(cfg.RetryDelay)
	}
}

func run(cfg Config) {
	ws, _, err := websocket.DefaultDialer.Dial(cfg.PublicWS, nil)
	if err != nil {
		cfg.Logger.Error("relay dial failed", zap.String("url", cfg.PublicWS), zap.Error(err))
		return
	}
	defer ws.Close()

	if err := ws.WriteJSON(map[string]any{"type": "register", "id": cfg.AgentID}); err != nil {
		cfg.Logger.Error("relay registration failed", zap.Error(err))
		return
	}
	cfg.Logger.Info("relay connected", zap.String("agent_id", cfg.AgentID))

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var req requestMsg
		if err := json.Unmarshal(msg, &req); err != nil || req.Type != "request" {
			continue
		}

		respBody, status := doLocalRequest(cfg.LocalURL, req)
		if err := ws.WriteJSON(responseMsg{
			Type:   "response",
			ReqID:  req.ReqID,
			Status: status,
			Body:   respBody,
		}); err != nil {
			return
		}
	}
}

// doLocalRequest replays a relayed request against the local HTTP API.
func doLocalRequest(base string, req requestMsg) (any, int) {
	bodyBytes, _ := json.Marshal(req.Body)

	httpReq, err := http.NewRequest(req.Method, "http://"+base+req.Path, bytes.NewReader(bodyBytes))
	if err != nil {
		return "bad relayed request", http.StatusBadRequest
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "local request failed", http.StatusInternalServerError
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed any
	json.Unmarshal(raw, &parsed)
	return parsed, resp.StatusCode
}
