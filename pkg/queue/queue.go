/*
 * Copyright 2025 HouseholdIQ, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package queue moves bridge updates between the ingest services and the
// worker daemon over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/models"
)

const (
	// BridgeUpdatesQueue is the durable queue carrying bridge updates.
	BridgeUpdatesQueue = "bridge_updates"

	publishTimeout = 5 * time.Second
)

var ErrChannelClosed = errors.New("queue channel closed")

// Client owns one AMQP connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  logger.Logger
}

// New dials RabbitMQ on the default port and declares the bridge-updates
// queue.
func New(host string, log logger.Logger) (*Client, error) {
	conn, err := amqp.Dial(fmt.Sprintf("amqp://guest:guest@%s:5672/", host))
	if err != nil {
		return nil, fmt.Errorf("dialing rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if _, err := channel.QueueDeclare(BridgeUpdatesQueue, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()

		return nil, fmt.Errorf("declaring queue: %w", err)
	}

	log.Info().Str("host", host).Str("queue", BridgeUpdatesQueue).Msg("connected to RabbitMQ")

	return &Client{conn: conn, channel: channel, logger: log.WithComponent("queue")}, nil
}

// PublishBridgeUpdate sends one update onto the queue. Implements
// bridge.UpdatePublisher.
func (c *Client) PublishBridgeUpdate(ctx context.Context, update *models.BridgeUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encoding bridge update: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, "", BridgeUpdatesQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing bridge update: %w", err)
	}

	return nil
}

// Consume delivers queued updates to handler until ctx is canceled. Handler
// failures nack without requeue so a poison message cannot wedge the queue;
// undecodable payloads are dropped the same way.
func (c *Client) Consume(ctx context.Context, handler func(ctx context.Context, update *models.BridgeUpdate) error) error {
	deliveries, err := c.channel.Consume(BridgeUpdatesQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("starting consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return ErrChannelClosed
			}

			update := &models.BridgeUpdate{}
			if err := json.Unmarshal(delivery.Body, update); err != nil {
				c.logger.Error().Err(err).Msg("dropping undecodable bridge update")
				_ = delivery.Nack(false, false)

				continue
			}

			if err := handler(ctx, update); err != nil {
				c.logger.Error().Err(err).
					Str("ephem_id", update.EphemID).
					Msg("bridge update handler failed")
				_ = delivery.Nack(false, false)

				continue
			}

			_ = delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	if err := c.channel.Close(); err != nil {
		_ = c.conn.Close()

		return err
	}

	return c.conn.Close()
}
