// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package slack

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chanscribe/chanscribe/internal/logging"
	"github.com/chanscribe/chanscribe/internal/metrics"
)

const (
	handshakeTimeout  = 10 * time.Second
	writeWait         = 10 * time.Second
	readWait          = 60 * time.Second
	pingPeriod        = 30 * time.Second
	maxMessageSize    = 1 << 20 // 1 MB; Slack event payloads are small
	maxReconnectDelay = 32 * time.Second
)

// EnvelopeHandler receives every envelope that carries an envelope_id.
// Handlers must not retain the envelope's raw buffers past the call.
type EnvelopeHandler func(Envelope)

// SocketClient maintains the Socket Mode connection: it fetches a fresh
// websocket URL via apps.connections.open, reads envelopes, hands them to
// the registered handler, and sends acknowledgments on the same connection.
//
// Disconnect frames and read errors trigger reconnection with exponential
// backoff (1s doubling to 32s); Slack refreshes connections periodically,
// so reconnecting is routine rather than exceptional.
type SocketClient struct {
	api     *Client
	handler EnvelopeHandler

	conn    *websocket.Conn
	connMu  sync.RWMutex
	writeMu sync.Mutex // gorilla allows one concurrent writer
}

// NewSocketClient creates a Socket Mode client that dials through api.
// The handler is invoked from the read loop; it must return promptly and
// push heavy work elsewhere (the ingest pipeline's queue does exactly that).
func NewSocketClient(api *Client, handler EnvelopeHandler) *SocketClient {
	return &SocketClient{
		api:     api,
		handler: handler,
	}
}

// Serve connects and processes envelopes until the context is canceled.
// It implements the suture.Service contract: a returned error other than
// ctx.Err() signals an abnormal stop and the supervisor restarts it.
func (c *SocketClient) Serve(ctx context.Context) error {
	reconnectDelay := time.Second

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.connect(ctx); err != nil {
			logging.Error().Err(err).Dur("retry_in", reconnectDelay).Msg("socket mode connect failed")
			metrics.SocketReconnects.Inc()

			select {
			case <-time.After(reconnectDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			reconnectDelay = min(reconnectDelay*2, maxReconnectDelay)
			continue
		}
		reconnectDelay = time.Second

		// readLoop returns when the connection drops or ctx is canceled.
		c.readLoop(ctx)
		c.closeConnection()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn().Msg("socket mode connection lost, reconnecting")
		metrics.SocketReconnects.Inc()
	}
}

// String implements fmt.Stringer for supervisor logging.
func (c *SocketClient) String() string {
	return "socket-listener"
}

// IsConnected reports whether the websocket connection is established.
// The ops readiness endpoint uses this.
func (c *SocketClient) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn != nil
}

// Ack acknowledges an envelope by ID on the live connection. Per the
// Socket Mode contract this must happen before the event is processed;
// the pipeline calls it first.
func (c *SocketClient) Ack(envelopeID string) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(acknowledgment{EnvelopeID: envelopeID})
	if err != nil {
		return fmt.Errorf("marshal acknowledgment: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write acknowledgment: %w", err)
	}

	metrics.EnvelopesAcked.Inc()
	return nil
}

// connect fetches a fresh Socket Mode URL and dials it.
func (c *SocketClient) connect(ctx context.Context) error {
	wsURL, err := c.api.OpenConnection(ctx)
	if err != nil {
		return fmt.Errorf("open socket mode connection: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout:  handshakeTimeout,
		EnableCompression: true,
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial: %w", err)
	}

	conn.SetReadLimit(maxMessageSize)

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	metrics.SocketConnected.Set(1)
	logging.Info().Str("connection_id", uuid.New().String()).Msg("socket mode connected")
	return nil
}

// readLoop reads envelopes until the connection fails, a disconnect frame
// arrives, or ctx is canceled. A per-connection ping goroutine keeps the
// connection alive.
func (c *SocketClient) readLoop(ctx context.Context) {
	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go c.pingLoop(pingCtx)

	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()
	if conn == nil {
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}

		if err := conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			logging.Error().Err(err).Msg("failed to set read deadline")
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info().Msg("socket mode connection closed by peer")
			} else if ctx.Err() == nil {
				logging.Error().Err(err).Msg("socket mode read error")
			}
			return
		}

		if !c.handleFrame(data) {
			return
		}
	}
}

// handleFrame decodes one inbound frame. It returns false when the frame
// requests a disconnect and the connection should be cycled.
func (c *SocketClient) handleFrame(data []byte) bool {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logging.Error().Err(err).Msg("failed to parse socket mode frame")
		return true
	}

	metrics.EnvelopesReceived.WithLabelValues(envelopeTypeLabel(env.Type)).Inc()

	switch env.Type {
	case EnvelopeTypeHello:
		logging.Info().Msg("socket mode hello received")
		return true

	case EnvelopeTypeDisconnect:
		// Slack asks clients to reconnect (e.g. refresh_requested).
		logging.Info().Str("reason", env.Reason).Msg("socket mode disconnect requested")
		return false

	default:
		if env.EnvelopeID == "" {
			logging.Debug().Str("type", env.Type).Msg("ignoring frame without envelope_id")
			return true
		}
		if c.handler != nil {
			c.handler(env)
		}
		return true
	}
}

// pingLoop sends websocket pings so dead connections are detected within
// the read deadline window.
func (c *SocketClient) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()
			if conn == nil {
				return
			}

			c.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				logging.Warn().Err(err).Msg("socket mode ping failed")
				return
			}
		}
	}
}

// closeConnection closes the websocket connection and clears state.
func (c *SocketClient) closeConnection() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}

	c.writeMu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()

	if err := c.conn.Close(); err != nil {
		logging.Debug().Err(err).Msg("error closing socket mode connection")
	}
	c.conn = nil
	metrics.SocketConnected.Set(0)
}

// envelopeTypeLabel maps envelope types to a bounded metric label set.
func envelopeTypeLabel(t string) string {
	switch t {
	case EnvelopeTypeHello, EnvelopeTypeDisconnect, EnvelopeTypeEventsAPI, EnvelopeTypeInteractive:
		return t
	default:
		return "unknown"
	}
}
