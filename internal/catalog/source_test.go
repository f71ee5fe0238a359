package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	items []Product
	err   error
}

func (s *countingSource) ListAvailableProducts(context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func TestCachedSource_HitsUpstreamOncePerTTL(t *testing.T) {
	up := &countingSource{items: []Product{{ID: "1", Name: "Espresso", Price: "30000", Available: true}}}
	c := NewCachedSource(up, time.Minute)
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return at }

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := c.ListAvailableProducts(context.Background())
			assert.NoError(t, err)
			assert.Len(t, items, 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, up.calls)

	at = at.Add(2 * time.Minute)
	_, err := c.ListAvailableProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, up.calls, "expired entry goes upstream")

	c.Invalidate()
	_, err = c.ListAvailableProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, up.calls)
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	up := &countingSource{err: errors.New("db down")}
	c := NewCachedSource(up, time.Minute)

	_, err := c.ListAvailableProducts(context.Background())
	require.Error(t, err)

	up.err = nil
	up.items = []Product{{ID: "1"}}
	items, err := c.ListAvailableProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCachedSource_ReturnsCopies(t *testing.T) {
	up := &countingSource{items: []Product{{ID: "1", Name: "Latte"}}}
	c := NewCachedSource(up, time.Minute)

	items, _ := c.ListAvailableProducts(context.Background())
	items[0].Name = "changed"

	again, _ := c.ListAvailableProducts(context.Background())
	assert.Equal(t, "Latte", again[0].Name)
}

func TestProduct_UnitPrice(t *testing.T) {
	assert.Equal(t, int64(25000), Product{Price: "25000.00"}.UnitPrice())
	assert.Equal(t, int64(0), Product{Price: ""}.UnitPrice())
}
