// Package kafka runs the membership notification event processor.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/devexchange/orgs-backend/v1/config"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

// MessageHandler processes the value of one consumed message
type MessageHandler interface {
	Handle(ctx context.Context, msg []byte) error
}

// MessageReader is the part of kafka.Reader the processor loop needs
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Dialer returns a dialer with SASL/PLAIN over TLS when credentials are set,
// and a plain dialer for local brokers otherwise.
func Dialer(cfg config.KafkaConfig) *kafka.Dialer {
	if cfg.APIKey != "" && cfg.APISecret != "" {
		return &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			SASLMechanism: plain.Mechanism{Username: cfg.APIKey, Password: cfg.APISecret},
			TLS:           &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
}

// Transport is the writer side counterpart of Dialer
func Transport(cfg config.KafkaConfig) *kafka.Transport {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil
	}
	return &kafka.Transport{
		SASL: plain.Mechanism{Username: cfg.APIKey, Password: cfg.APISecret},
		TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// RunEventProcessor checks the first broker is reachable and then consumes the
// membership topic in the background until ctx is cancelled.
func RunEventProcessor(ctx context.Context, cfg config.KafkaConfig, handler MessageHandler, logger *zap.Logger) error {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	dialer := Dialer(cfg)

	// three attempts, two seconds apart, abandoned when ctx ends
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(2*time.Second), 2), ctx)
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		logger.Info("Kafka connection attempt", zap.Int("attempt", attempt), zap.String("broker", brokers[0]))
		conn, err := dialer.DialContext(ctx, "tcp", brokers[0])
		if err != nil {
			return err
		}
		return conn.Close()
	}, bo, func(err error, wait time.Duration) {
		logger.Warn("Retrying Kafka connection", zap.Duration("wait", wait), zap.Error(err))
	})
	if err != nil {
		return err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	go Consume(ctx, reader, handler, logger)
	return nil
}

// readBackOff paces reads after a failed ReadMessage
var readBackOff = func() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	return bo
}

// Consume reads messages until ctx is done. Handler failures are logged and the
// message is committed anyway, so a poison event cannot block the partition.
// Read failures back off exponentially until a read succeeds again.
func Consume(ctx context.Context, reader MessageReader, handler MessageHandler, logger *zap.Logger) {
	defer reader.Close()
	logger.Info("Kafka event processor started, listening for membership events")

	bo := readBackOff()
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait := bo.NextBackOff()
			logger.Warn("failed to read kafka message", zap.Duration("retry_in", wait), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		bo.Reset()

		if err := handler.Handle(ctx, msg.Value); err != nil {
			logger.Error("membership event dropped",
				zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}
