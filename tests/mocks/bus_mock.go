package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
)

type BusMock struct {
	mock.Mock
}

func (busMock *BusMock) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	args := busMock.Called(ctx, topic, payload)
	return args.String(0), args.Error(1)
}

func (busMock *BusMock) Consume(ctx context.Context, topic string, group string, consumer string, count int64,
	block time.Duration) ([]interfaces.Message, error) {
	args := busMock.Called(ctx, topic, group, consumer, count, block)
	messages, _ := args.Get(0).([]interfaces.Message)
	return messages, args.Error(1)
}

func (busMock *BusMock) Ack(ctx context.Context, topic string, group string, ids ...string) error {
	return busMock.Called(ctx, topic, group, ids).Error(0)
}

func (busMock *BusMock) Close() error {
	return busMock.Called().Error(0)
}
