package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/jcweaver997/rfe/internal/codec"
	"github.com/jcweaver997/rfe/internal/msg"
)

// MQTTConnector publishes and subscribes whole encoded batches on a
// single topic pair, one for each direction of the link. A peer that
// only speaks MQTT (e.g. a ground station behind a broker) uses this
// instead of a direct socket.
type MQTTConnector struct {
	cm           *autopaho.ConnectionManager
	codec        codec.Codec
	logger       *slog.Logger
	publishTopic string
	inbox        chan []msg.MsgPacket
}

// MQTTConfig configures a broker connection and the topic pair used to
// carry outbound and inbound batches.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	PublishTopic   string
	SubscribeTopic string
}

// NewMQTTConnector connects to cfg.Broker and subscribes to
// cfg.SubscribeTopic. It blocks until the initial connection succeeds,
// ctx expires, or 30 seconds pass; if the connection is not up by then
// it still returns the connector, which keeps retrying in the
// background.
func NewMQTTConnector(ctx context.Context, cfg MQTTConfig, logger *slog.Logger) (*MQTTConnector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	brokerURL, err := url.Parse(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("parse mqtt broker url: %w", err)
	}

	c := &MQTTConnector{
		codec:        codec.New(),
		logger:       logger.With("connector", "mqtt", "broker", cfg.Broker),
		publishTopic: cfg.PublishTopic,
		inbox:        make(chan []msg.MsgPacket, 64),
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: cfg.Username,
		ConnectPassword: []byte(cfg.Password),
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			c.logger.Info("mqtt connected to broker")
			subCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := cm.Subscribe(subCtx, &paho.Subscribe{
				Subscriptions: []paho.SubscribeOptions{
					{Topic: cfg.SubscribeTopic, QoS: 0},
				},
			}); err != nil {
				c.logger.Error("mqtt subscribe failed", "error", err)
			}
		},
		OnConnectError: func(err error) {
			c.logger.Warn("mqtt connection error", "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: cfg.ClientID,
		},
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	c.cm = cm

	cm.AddOnPublishReceived(func(pr autopaho.PublishReceived) (bool, error) {
		pkts, _, err := c.codec.DecodeBatch(pr.Packet.Payload)
		if err != nil {
			c.logger.Warn("dropping malformed mqtt payload", "error", err)
			return true, nil
		}
		select {
		case c.inbox <- pkts:
		default:
			c.logger.Warn("mqtt inbox full, dropping batch")
		}
		return true, nil
	})

	connCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := cm.AwaitConnection(connCtx); err != nil {
		c.logger.Warn("mqtt initial connection timed out, will retry in background", "error", err)
	}

	return c, nil
}

func (c *MQTTConnector) Send(pkts []msg.MsgPacket) {
	if c.cm == nil {
		return
	}
	enc, err := c.codec.EncodeBatch(pkts)
	if err != nil {
		c.logger.Error("failed to encode mqtt batch", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.cm.Publish(ctx, &paho.Publish{
		Topic:   c.publishTopic,
		Payload: enc,
		QoS:     0,
	}); err != nil {
		c.logger.Warn("mqtt publish failed", "error", err)
	}
}

func (c *MQTTConnector) Recv() ([]msg.MsgPacket, bool) {
	select {
	case pkts := <-c.inbox:
		return pkts, true
	default:
		return nil, false
	}
}

// Close disconnects from the broker.
func (c *MQTTConnector) Close() error {
	if c.cm == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.cm.Disconnect(ctx)
}
