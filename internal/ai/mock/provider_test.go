package mock

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/arjunks/datahound/pkg/models"
)

func TestMockProvider_ReturnsCannedReply(t *testing.T) {
	p := NewMockProvider()
	reply, err := p.Complete(context.Background(), models.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "categories") {
		t.Errorf("unexpected reply: %s", reply)
	}
	if p.Calls != 1 {
		t.Errorf("calls = %d, want 1", p.Calls)
	}
}

func TestFailingProvider(t *testing.T) {
	p := NewFailingProvider("boom")
	_, err := p.Complete(context.Background(), models.CompletionRequest{})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestTimeoutProvider_HonorsContext(t *testing.T) {
	p := NewTimeoutProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Complete(ctx, models.CompletionRequest{})
	if err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}
