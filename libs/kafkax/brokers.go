package kafkax

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// SplitBrokers turns a comma-separated KAFKA_BROKERS value into a broker
// list, dropping empty entries.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, entry := range strings.Split(raw, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			brokers = append(brokers, entry)
		}
	}
	return brokers
}

// ReadyCheck reports whether the first configured broker accepts a TCP
// connection. Good enough for /readyz; real produce errors still surface
// in the publisher loop.
func ReadyCheck(brokers string) func(context.Context) error {
	return func(ctx context.Context) error {
		list := SplitBrokers(brokers)
		if len(list) == 0 {
			return errors.New("kafka brokers not configured")
		}
		dialer := kafka.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", list[0])
		if err != nil {
			return err
		}
		return conn.Close()
	}
}
