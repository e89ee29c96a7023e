package quotation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ytf-quote/internal/catalog"
)

func TestStorePutGetReturnsCopies(t *testing.T) {
	store := NewStore(0)
	q := newTestReducer().New(catalog.SizeXS)
	store.Put(q)

	got, err := store.Get(q.ID)
	require.NoError(t, err)
	got.Items[0].Variant = "mutated"

	again, err := store.Get(q.ID)
	require.NoError(t, err)
	require.Equal(t, "Thin", again.Items[0].Variant)
}

func TestStoreGetMissing(t *testing.T) {
	_, err := NewStore(time.Hour).Get(uuid.New())
	require.ErrorIs(t, err, ErrQuotationNotFound)
}

func TestStoreExpiresLazily(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour)
	store.Now = func() time.Time { return now }
	q := newTestReducer().New(catalog.SizeXS)
	store.Put(q)

	now = now.Add(59 * time.Minute)
	_, err := store.Get(q.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(q.ID)
	require.ErrorIs(t, err, ErrQuotationNotFound)
	require.Equal(t, 0, store.Len())
}

func TestStoreUpdateRefreshesExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour)
	store.Now = func() time.Time { return now }
	q := newTestReducer().New(catalog.SizeXS)
	store.Put(q)

	now = now.Add(50 * time.Minute)
	_, err := store.Update(q.ID, func(q Quotation) (Quotation, error) {
		q.Client.Name = "Acme"
		return q, nil
	})
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	got, err := store.Get(q.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Client.Name)
}

func TestStoreUpdateErrorLeavesDraft(t *testing.T) {
	store := NewStore(0)
	q := newTestReducer().New(catalog.SizeXS)
	store.Put(q)

	boom := errors.New("boom")
	_, err := store.Update(q.ID, func(q Quotation) (Quotation, error) {
		q.Items = nil
		return q, boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Get(q.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
}

func TestStoreUpdateIsAtomic(t *testing.T) {
	r := NewReducer(ReducerConfig{})
	store := NewStore(0)
	q := r.New(catalog.SizeM)
	store.Put(q)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(q.ID, func(q Quotation) (Quotation, error) {
				return r.Apply(q, AddItem{}), nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(q.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 21)
	requireConsistent(t, got)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(0)
	q := newTestReducer().New(catalog.SizeXS)
	store.Put(q)
	store.Delete(q.ID)
	_, err := store.Get(q.ID)
	require.ErrorIs(t, err, ErrQuotationNotFound)
}

func TestStorePutSweepsAbandonedDrafts(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.Now = func() time.Time { return now }
	for i := 0; i < 1000; i++ {
		store.Put(Quotation{ID: uuid.New()})
	}
	require.Equal(t, 1000, store.Len())

	now = now.Add(48 * time.Hour)
	for i := 0; i < 1000; i++ {
		store.Put(Quotation{ID: uuid.New()})
	}
	require.Equal(t, 1000, store.Len())
}

func TestStoreSweepKeepsLiveDrafts(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour)
	store.Now = func() time.Time { return now }
	stale := Quotation{ID: uuid.New()}
	store.Put(stale)

	now = now.Add(30 * time.Minute)
	fresh := Quotation{ID: uuid.New()}
	store.Put(fresh)

	now = now.Add(45 * time.Minute)
	require.Equal(t, 1, store.Sweep())
	require.Equal(t, 1, store.Len())
	_, err := store.Get(fresh.ID)
	require.NoError(t, err)
}

func TestStoreWithoutTTLNeverSweeps(t *testing.T) {
	store := NewStore(0)
	store.Put(Quotation{ID: uuid.New()})
	require.Equal(t, 0, store.Sweep())
	require.Equal(t, 1, store.Len())
}

func TestStoreRunSweepsUntilCancelled(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour)
	store.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store.Put(Quotation{ID: uuid.New()})
	mu.Lock()
	now = now.Add(2 * time.Hour)
	mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
