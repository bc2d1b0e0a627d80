package activitylog

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/auctionarena/auction-arena/internal/platform/logging"
	"github.com/auctionarena/auction-arena/internal/usecase"
)

type capturedBatch struct {
	auth   string
	events []usecase.ActivityEvent
}

func TestWebhookPublisher_DeliversBatchOnClose(t *testing.T) {
	var mu sync.Mutex
	var batches []capturedBatch

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var events []usecase.ActivityEvent
		require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&events))

		mu.Lock()
		batches = append(batches, capturedBatch{auth: r.Header.Get("Authorization"), events: events})
		mu.Unlock()

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	publisher, err := NewWebhookPublisher(WebhookConfig{
		URL:           srv.URL,
		Token:         "hook-token",
		FlushInterval: time.Hour,
	}, logging.NewNop())
	require.NoError(t, err)

	publisher.Record(usecase.ActivityEvent{AuctionID: "auc-1", Kind: usecase.ActivitySaleRecorded, PlayerID: "pl-1", Price: 300})
	publisher.Record(usecase.ActivityEvent{AuctionID: "auc-1", Kind: usecase.ActivityUnsoldRecorded, PlayerID: "pl-2"})

	// Close drains the queue, so both events arrive in one batch.
	publisher.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 1)
	require.Equal(t, "Bearer hook-token", batches[0].auth)
	require.Len(t, batches[0].events, 2)
	require.Equal(t, usecase.ActivitySaleRecorded, batches[0].events[0].Kind)
	require.Equal(t, int64(300), batches[0].events[0].Price)
}

func TestWebhookPublisher_FlushesWhenBatchFull(t *testing.T) {
	delivered := make(chan int, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var events []usecase.ActivityEvent
		require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&events))
		delivered <- len(events)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	publisher, err := NewWebhookPublisher(WebhookConfig{
		URL:           srv.URL,
		BatchSize:     2,
		FlushInterval: time.Hour,
	}, logging.NewNop())
	require.NoError(t, err)
	defer publisher.Close()

	publisher.Record(usecase.ActivityEvent{AuctionID: "auc-1", Kind: usecase.ActivitySetStarted, SetID: "set-1"})
	publisher.Record(usecase.ActivityEvent{AuctionID: "auc-1", Kind: usecase.ActivitySetStarted, SetID: "set-2"})

	select {
	case n := <-delivered:
		require.Equal(t, 2, n)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for batch delivery")
	}
}

func TestNewWebhookPublisher_RequiresURL(t *testing.T) {
	_, err := NewWebhookPublisher(WebhookConfig{}, logging.NewNop())
	require.Error(t, err)
}
