package clients

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nft-backend/internal/config"
	"nft-backend/internal/interfaces"
	"nft-backend/internal/metrics"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// NATSClient NATS client publishing mint events
type NATSClient struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSClient connect to NATS server
func NewNATSClient(cfg config.NATSConfig) (*NATSClient, error) {
	connectTimeout := cfg.TimeoutDuration()
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	logrus.Infof("🔌 [NATS] Connecting to %s (timeout %v)", cfg.URL, connectTimeout)

	conn, err := nats.Connect(cfg.URL,
		nats.Name("nft-backend"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logrus.Warnf("⚠️ [NATS] Disconnected: %v", err)
			metrics.NATSConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logrus.Infof("✅ [NATS] Reconnected to %s", nc.ConnectedUrl())
			metrics.NATSConnectionStatus.Set(1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	metrics.NATSConnectionStatus.Set(1)

	return &NATSClient{conn: conn, prefix: strings.Trim(cfg.SubjectPrefix, ".")}, nil
}

var _ interfaces.EventPublisher = (*NATSClient)(nil)

// Subject prefixes subject with the configured namespace
func (c *NATSClient) Subject(subject string) string {
	if c.prefix == "" {
		return subject
	}
	return c.prefix + "." + subject
}

// Publish JSON-encodes payload and publishes it under the prefixed subject
func (c *NATSClient) Publish(subject string, payload interface{}) error {
	full := c.Subject(subject)
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.NATSMessagesPublished.WithLabelValues(full, "error").Inc()
		return fmt.Errorf("failed to marshal NATS payload: %w", err)
	}
	if err := c.conn.Publish(full, data); err != nil {
		metrics.NATSMessagesPublished.WithLabelValues(full, "error").Inc()
		return fmt.Errorf("failed to publish to %s: %w", full, err)
	}
	metrics.NATSMessagesPublished.WithLabelValues(full, "ok").Inc()
	return nil
}

// Healthy reports whether the connection is currently up
func (c *NATSClient) Healthy() error {
	if c.conn == nil || !c.conn.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

// Close drains pending messages and closes the connection
func (c *NATSClient) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		logrus.Warnf("⚠️ [NATS] Drain failed: %v", err)
		c.conn.Close()
	}
}
