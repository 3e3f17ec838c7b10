package store_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetverse/go-session/store"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := store.NewMemory()
	assert.Empty(t, m.Get())

	require.NoError(t, m.Set("token-1"))
	assert.Equal(t, "token-1", m.Get())

	require.NoError(t, m.Set("token-2"))
	assert.Equal(t, "token-2", m.Get())

	require.NoError(t, m.Clear())
	assert.Empty(t, m.Get())
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := store.NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Set("token")
		}()
		go func() {
			defer wg.Done()
			_ = m.Get()
		}()
	}
	wg.Wait()

	assert.Equal(t, "token", m.Get())
}
