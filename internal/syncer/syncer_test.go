package syncer

import (
	"context"
	"testing"
)

func TestStartRejectsInvalidCron(t *testing.T) {
	if _, err := Start(context.Background(), "not a cron", nil); err == nil {
		t.Fatal("invalid cron accepted")
	}
}

func TestStartEmptyCronUsesDefault(t *testing.T) {
	cancel, err := Start(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("empty cron must fall back to default: %v", err)
	}
	cancel()
}

func TestStartAndCancel(t *testing.T) {
	cancel, err := Start(context.Background(), DefaultCron, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// canceling must not panic or leak; the goroutine exits on its own
	cancel()
}
