package aiclient

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// slowClient simulates a backend where Complete takes measurable time, so
// concurrent callers would overlap if the gateway failed to serialize them.
type slowClient struct {
	inFlight int32
	maxSeen  int32
}

func (c *slowClient) Reset(ctx context.Context) error { return nil }

func (c *slowClient) Complete(ctx context.Context, prompt string, opts Options) (*Response, error) {
	n := atomic.AddInt32(&c.inFlight, 1)
	for {
		cur := atomic.LoadInt32(&c.maxSeen)
		if n <= cur || atomic.CompareAndSwapInt32(&c.maxSeen, cur, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(&c.inFlight, -1)
	return &Response{Content: prompt}, nil
}

func TestLockedGatewaySerializesCompletions(t *testing.T) {
	client := &slowClient{}
	gw := NewLockedGateway(client)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gw.Complete(context.Background(), "hi", Options{})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, client.maxSeen, "no two completions should run concurrently")
}

func TestMockRequiresResetBeforeComplete(t *testing.T) {
	m := NewMock()
	_, err := m.Complete(context.Background(), "hi", Options{})
	require.Error(t, err)

	require.NoError(t, m.Reset(context.Background()))
	resp, err := m.Complete(context.Background(), "hi", Options{})
	require.NoError(t, err)
	require.Contains(t, resp.Content, "hi")
}
