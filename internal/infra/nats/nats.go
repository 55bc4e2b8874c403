package natsclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/Rinku/config"
	"github.com/sifan077/Rinku/internal/app/model"
)

const defaultConnectTimeout = 5 * time.Second

// Connect opens a NATS connection with JetStream enabled.
func Connect(cfg config.NATSConfig) (*nats.Conn, nats.JetStreamContext, error) {
	opts := []nats.Option{
		nats.Timeout(defaultConnectTimeout),
		nats.Name("rinku"),
	}
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	conn, err := nats.Connect(buildURL(cfg), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("nats: connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("nats: init jetstream: %w", err)
	}

	return conn, js, nil
}

// EnsureBookmarkStream creates the bookmark event stream if it is missing.
func EnsureBookmarkStream(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(model.BookmarkStreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("nats: stream info: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     model.BookmarkStreamName,
		Subjects: []string{model.BookmarkStreamSubjects},
		MaxBytes: model.BookmarkStreamMaxBytes,
	})
	if err != nil {
		return fmt.Errorf("nats: add stream: %w", err)
	}
	return nil
}

func buildURL(cfg config.NATSConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 4222
	}
	return fmt.Sprintf("nats://%s:%d", host, port)
}
