package livecookie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const defaultDebugPort = 9222

// fetchDevtoolsCookies is a test seam around the full one-shot protocol call.
var fetchDevtoolsCookies = devtoolsFetchCookies

// debugTarget is one discoverable debugging endpoint. Only targets carrying
// both a connect URL and the "page" type are usable.
type debugTarget struct {
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	Type                 string `json:"type"`
	URL                  string `json:"url"`
}

func (t debugTarget) usable() bool {
	return t.WebSocketDebuggerURL != "" && t.Type == "page"
}

// discoverTargets lists the browser's debugging targets via the local
// discovery endpoint. Every failure here is ErrUnavailable: the caller's
// retry loop treats it as transient.
func discoverTargets(ctx context.Context, port int) ([]debugTarget, error) {
	url := fmt.Sprintf("http://127.0.0.1:%d/json", port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("target discovery on port %d failed (%v): %w", port, err, ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("target discovery returned %s: %w", resp.Status, ErrUnavailable)
	}

	var targets []debugTarget
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, fmt.Errorf("undecodable target list (%v): %w", err, ErrUnavailable)
	}
	return targets, nil
}

func pickTarget(targets []debugTarget) (debugTarget, error) {
	for _, t := range targets {
		if t.usable() {
			return t, nil
		}
	}
	return debugTarget{}, fmt.Errorf("no usable page target: %w", ErrUnavailable)
}

type devtoolsRequest struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

type devtoolsResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// devtoolsSession is a message-correlated request/response channel over one
// websocket connection. Request ids are owned by the session and strictly
// increasing; at most one request is in flight.
type devtoolsSession struct {
	conn   *websocket.Conn
	nextID int64
}

func dialDevtools(ctx context.Context, wsURL string) (*devtoolsSession, error) {
	conn, _, err := websocket.Dial(ctx, wsURL, nil) //nolint:bodyclose // CloseNow handles the handshake body.
	if err != nil {
		return nil, fmt.Errorf("debug channel dial failed (%v): %w", err, ErrUnavailable)
	}
	// Cookie payloads from a loaded profile can exceed the 32 KiB default.
	conn.SetReadLimit(16 << 20)
	return &devtoolsSession{conn: conn}, nil
}

func (s *devtoolsSession) close() {
	_ = s.conn.Close(websocket.StatusNormalClosure, "")
}

// call issues one request and reads frames until the matching response
// arrives. Event notifications (no id, or a stale id) are skipped: only the
// most recently sent, unanswered request id is valid.
func (s *devtoolsSession) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	s.nextID++
	req := devtoolsRequest{ID: s.nextID, Method: method, Params: params}
	if params == nil {
		req.Params = struct{}{}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := s.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return nil, fmt.Errorf("%s write failed (%v): %w", method, err, ErrUnavailable)
	}

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s read failed (%v): %w", method, err, ErrMalformedResponse)
		}

		var resp devtoolsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("%s: undecodable frame (%v): %w", method, err, ErrMalformedResponse)
		}
		if resp.ID != req.ID {
			continue
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("%s: %s: %w", method, resp.Error.Message, ErrProtocol)
		}
		return resp.Result, nil
	}
}

// devtoolsCookie is a cookie record as the browser reports it, already
// decrypted in memory.
type devtoolsCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	Secure   bool    `json:"secure"`
	HTTPOnly bool    `json:"httpOnly"`
	SameSite string  `json:"sameSite"`
}

func (c devtoolsCookie) toCookie(vendor chromiumVendor, strategy Strategy) Cookie {
	sameSite := SameSite(c.SameSite)
	if sameSite == "" {
		sameSite = SameSiteLax
	}
	return Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  int64(c.Expires),
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: sameSite,
		Source: Source{
			Browser:  vendor.browser,
			Strategy: strategy,
		},
	}
}

// devtoolsFetchCookies performs the full one-shot protocol exchange: discover
// a target, open a fresh channel, issue exactly one cookie query, tear the
// channel down. Connections are never pooled or reused across attempts.
func devtoolsFetchCookies(ctx context.Context, port int, method ProtocolMethodVersion) ([]devtoolsCookie, error) {
	targets, err := discoverTargets(ctx, port)
	if err != nil {
		return nil, err
	}
	target, err := pickTarget(targets)
	if err != nil {
		return nil, err
	}

	session, err := dialDevtools(ctx, target.WebSocketDebuggerURL)
	if err != nil {
		return nil, err
	}
	defer session.close()

	var result json.RawMessage
	switch method {
	case MethodNetworkLegacy:
		// Deprecated path: the network layer must be enabled before it will
		// answer a cookie query, and it misses partitioned cookies.
		if _, err := session.call(ctx, "Network.enable", nil); err != nil {
			return nil, err
		}
		result, err = session.call(ctx, "Network.getAllCookies", nil)
	default:
		result, err = session.call(ctx, "Storage.getCookies", nil)
	}
	if err != nil {
		return nil, err
	}

	var payload struct {
		Cookies []devtoolsCookie `json:"cookies"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil, fmt.Errorf("undecodable cookie payload (%v): %w", err, ErrMalformedResponse)
	}
	return payload.Cookies, nil
}
