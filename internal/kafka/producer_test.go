package kafka

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestShutdownCloseThenCancel(t *testing.T) {
	// Shutdown order in main is Close, then cancel, then WaitClosed;
	// both paths reach the inbox close and must not collide.
	p := NewProducer([]string{"localhost:9092"}, "orders.test", 4, quietLog())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	p.Close()
	cancel()

	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not shut down")
	}
}

func TestShutdownCancelOnly(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "orders.test", 4, quietLog())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	cancel()
	require.NotPanics(t, p.Close)
	p.WaitClosed()
}
