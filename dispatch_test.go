package docmerge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type fakeConn struct {
	mu      sync.Mutex
	sent    []*SendJob
	failOn  map[int]error
	closes  int
	sendErr error
}

func (c *fakeConn) Send(_ context.Context, job *SendJob) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	if err, ok := c.failOn[job.RowIndex]; ok {
		return err
	}
	c.sent = append(c.sent, job)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

type fakeTransport struct {
	conn       *fakeConn
	connectErr error
	connects   int
}

func (t *fakeTransport) Connect(context.Context) (Conn, error) {
	if t.connectErr != nil {
		return nil, t.connectErr
	}
	t.connects++
	return t.conn, nil
}

func (t *fakeTransport) ValidateConfig() error { return nil }

func (t *fakeTransport) Name() string { return "fake" }

func newFakeClient(tr Transport, opts ...Option) *Client {
	cfg := DefaultConfig()
	cfg.Transport.Type = TransportSMTP
	cfg.Dispatch.Delay = 0
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		config:    cfg,
		transport: tr,
		tracer:    otel.Tracer("test"),
	}
}

func makeJobs(n int) []*SendJob {
	jobs := make([]*SendJob, n)
	for i := range jobs {
		jobs[i] = &SendJob{
			To:       fmt.Sprintf("user%d@example.com", i),
			Subject:  "hello",
			Body:     "body",
			RowIndex: i,
		}
	}
	return jobs
}

func TestSendBatch(t *testing.T) {
	t.Parallel()

	t.Run("reuses one connection and closes it", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{}
		tr := &fakeTransport{conn: conn}
		client := newFakeClient(tr)

		result, err := client.SendBatch(context.Background(), makeJobs(3), nil)
		require.NoError(t, err)
		require.Equal(t, 3, result.Total)
		require.Equal(t, 3, result.Sent)
		require.Zero(t, result.Failed)
		require.Equal(t, "fake", result.Transport)

		require.Equal(t, 1, tr.connects)
		require.Equal(t, 1, conn.closes)
		require.Len(t, conn.sent, 3)
	})

	t.Run("isolates per-job failures", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{failOn: map[int]error{2: errors.New("mailbox full")}}
		tr := &fakeTransport{conn: conn}
		client := newFakeClient(tr)

		result, err := client.SendBatch(context.Background(), makeJobs(5), nil)
		require.NoError(t, err)
		require.Equal(t, 4, result.Sent)
		require.Equal(t, 1, result.Failed)
		require.Len(t, result.FailedDetails, 1)

		detail := result.FailedDetails[0]
		require.Equal(t, 2, detail.RowIndex)
		require.Equal(t, "user2@example.com", detail.Email)
		require.Contains(t, detail.Error, "mailbox full")

		// Jobs after the failing one were still attempted.
		require.Len(t, conn.sent, 4)
		require.Equal(t, 1, conn.closes)
	})

	t.Run("connection failure yields one synthetic entry", func(t *testing.T) {
		t.Parallel()

		tr := &fakeTransport{connectErr: errors.New("dial refused")}
		client := newFakeClient(tr)

		// Progress fires per job with a 1-based counter, so no job
		// attempted means no updates at all.
		var updates int
		result, err := client.SendBatch(context.Background(), makeJobs(4),
			func(current, total int, status string) {
				updates++
			})
		require.Error(t, err)
		require.Contains(t, err.Error(), "dial refused")

		require.Equal(t, 4, result.Total)
		require.Zero(t, result.Sent)
		require.Equal(t, 4, result.Failed)
		require.Len(t, result.FailedDetails, 1)
		require.Equal(t, -1, result.FailedDetails[0].RowIndex)
		require.Zero(t, updates)
	})

	t.Run("cancellation skips remaining jobs", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		conn := &fakeConn{}
		client := newFakeClient(&fakeTransport{conn: conn})

		result, err := client.SendBatch(ctx, makeJobs(3), nil)
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, result.Sent)
		require.Equal(t, 3, result.Skipped)
		require.Equal(t, 1, conn.closes)
	})

	t.Run("reports progress with 1-based counter", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{failOn: map[int]error{1: errors.New("boom")}}
		client := newFakeClient(&fakeTransport{conn: conn})

		type update struct {
			current, total int
			status         string
		}
		var updates []update
		_, err := client.SendBatch(context.Background(), makeJobs(3),
			func(current, total int, status string) {
				updates = append(updates, update{current, total, status})
			})
		require.NoError(t, err)

		// SendBatch drains the progress queue before returning.
		require.Len(t, updates, 3)
		for i, u := range updates {
			require.Equal(t, i+1, u.current)
			require.Equal(t, 3, u.total)
		}
		require.Contains(t, updates[0].status, "sent to")
		require.Contains(t, updates[1].status, "failed for")
	})

	t.Run("empty batch connects to nothing", func(t *testing.T) {
		t.Parallel()

		tr := &fakeTransport{conn: &fakeConn{}}
		client := newFakeClient(tr)

		result, err := client.SendBatch(context.Background(), nil, nil)
		require.NoError(t, err)
		require.Zero(t, result.Total)
		require.Zero(t, tr.connects)
	})

	t.Run("no delay after the final job", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{}
		client := newFakeClient(&fakeTransport{conn: conn},
			WithDispatchDelay(3*time.Second))

		start := time.Now()
		result, err := client.SendBatch(context.Background(), makeJobs(1), nil)
		require.NoError(t, err)
		require.Equal(t, 1, result.Sent)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("closed client rejects batches", func(t *testing.T) {
		t.Parallel()

		client := newFakeClient(&fakeTransport{conn: &fakeConn{}})
		require.NoError(t, client.Close())

		_, err := client.SendBatch(context.Background(), makeJobs(1), nil)
		require.ErrorIs(t, err, ErrClientClosed)
	})
}

func TestTestConnection(t *testing.T) {
	t.Parallel()

	t.Run("dials and tears down", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{}
		tr := &fakeTransport{conn: conn}
		client := newFakeClient(tr)

		require.NoError(t, client.TestConnection(context.Background()))
		require.Equal(t, 1, tr.connects)
		require.Equal(t, 1, conn.closes)
		require.Empty(t, conn.sent)
	})

	t.Run("surfaces connection errors", func(t *testing.T) {
		t.Parallel()

		client := newFakeClient(&fakeTransport{connectErr: errors.New("bad credentials")})
		err := client.TestConnection(context.Background())
		require.ErrorContains(t, err, "bad credentials")
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("builds an SMTP client from options", func(t *testing.T) {
		t.Parallel()

		client, err := New(DefaultConfig(),
			WithSMTPAuth("smtp.example.com", "587", "me@example.com", "me", "secret"))
		require.NoError(t, err)
		require.NoError(t, client.Close())
	})

	t.Run("rejects unknown transport types", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Transport.Type = "carrier-pigeon"
		_, err := New(cfg)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("rejects incomplete transport settings", func(t *testing.T) {
		t.Parallel()

		_, err := New(DefaultConfig(), WithTransport(TransportSMTP, TransportSettings{
			"host": "smtp.example.com",
		}))
		require.Error(t, err)
	})
}
