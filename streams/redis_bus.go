package streams

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
)

const (
	streamPrefix = "stream:"
	payloadField = "data"
)

type RedisBusOptions struct {
	MaxLen        int64
	MaxDeliveries int64
	ClaimIdle     time.Duration
}

// RedisBus maps topics to Redis Streams read through consumer groups.
// Unacked messages idle for ClaimIdle are claimed again by the next Consume;
// after MaxDeliveries they move to the dead letter topic.
type RedisBus struct {
	client  *redis.Client
	options RedisBusOptions
	groups  map[string]bool
}

func NewRedisBus(client *redis.Client, options RedisBusOptions) *RedisBus {
	return &RedisBus{client: client, options: options, groups: map[string]bool{}}
}

func DialRedis(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return client, nil
}

func streamKey(topic string) string {
	return streamPrefix + topic
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	args := &redis.XAddArgs{
		Stream: streamKey(topic),
		Values: map[string]interface{}{payloadField: payload},
	}
	if b.options.MaxLen > 0 {
		args.MaxLen = b.options.MaxLen
		args.Approx = true
	}
	return b.client.XAdd(ctx, args).Result()
}

func (b *RedisBus) ensureGroup(ctx context.Context, topic string, group string) error {
	key := topic + "/" + group
	if b.groups[key] {
		return nil
	}
	err := b.client.XGroupCreateMkStream(ctx, streamKey(topic), group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", group, topic, err)
	}
	b.groups[key] = true
	return nil
}

func (b *RedisBus) Consume(ctx context.Context, topic string, group string, consumer string, count int64,
	block time.Duration) ([]interfaces.Message, error) {
	if err := b.ensureGroup(ctx, topic, group); err != nil {
		return nil, err
	}

	reclaimed, err := b.reclaim(ctx, topic, group, consumer, count)
	if err != nil {
		return nil, err
	}
	if len(reclaimed) > 0 {
		return reclaimed, nil
	}

	if block <= 0 {
		block = -1
	}
	result, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{streamKey(topic), ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var messages []interfaces.Message
	for _, stream := range result {
		for _, message := range stream.Messages {
			messages = append(messages, toMessage(topic, message, 1))
		}
	}
	return messages, nil
}

// reclaim claims idle pending messages and dead-letters the exhausted ones
func (b *RedisBus) reclaim(ctx context.Context, topic string, group string, consumer string,
	count int64) ([]interfaces.Message, error) {
	if b.options.ClaimIdle <= 0 {
		return nil, nil
	}
	pending, err := b.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: streamKey(topic),
		Group:  group,
		Idle:   b.options.ClaimIdle,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	deliveries := make(map[string]int64, len(pending))
	var retry []string
	for _, entry := range pending {
		if b.options.MaxDeliveries > 0 && entry.RetryCount >= b.options.MaxDeliveries {
			if err := b.deadLetter(ctx, topic, group, entry.ID); err != nil {
				return nil, err
			}
			continue
		}
		deliveries[entry.ID] = entry.RetryCount + 1
		retry = append(retry, entry.ID)
	}
	if len(retry) == 0 {
		return nil, nil
	}

	claimed, err := b.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   streamKey(topic),
		Group:    group,
		Consumer: consumer,
		MinIdle:  b.options.ClaimIdle,
		Messages: retry,
	}).Result()
	if err != nil {
		return nil, err
	}
	messages := make([]interfaces.Message, 0, len(claimed))
	for _, message := range claimed {
		messages = append(messages, toMessage(topic, message, deliveries[message.ID]))
	}
	return messages, nil
}

func (b *RedisBus) deadLetter(ctx context.Context, topic string, group string, id string) error {
	messages, err := b.client.XRangeN(ctx, streamKey(topic), id, id, 1).Result()
	if err != nil {
		return err
	}
	for _, message := range messages {
		payload := toMessage(topic, message, 0).Payload
		if _, err := b.Publish(ctx, DeadLetter(topic), payload); err != nil {
			return err
		}
	}
	helpers.Logger.WithFields(log.Fields{"topic": topic, "group": group, "id": id}).
		Warnln("Message moved to dead letter topic")
	return b.Ack(ctx, topic, group, id)
}

func (b *RedisBus) Ack(ctx context.Context, topic string, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return b.client.XAck(ctx, streamKey(topic), group, ids...).Err()
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

func toMessage(topic string, message redis.XMessage, deliveries int64) interfaces.Message {
	var payload []byte
	switch value := message.Values[payloadField].(type) {
	case string:
		payload = []byte(value)
	case []byte:
		payload = value
	}
	return interfaces.Message{ID: message.ID, Topic: topic, Payload: payload, Deliveries: deliveries}
}
