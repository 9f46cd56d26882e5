// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageCache(t *testing.T) {
	cache := newMessageCache(2)

	calls := 0
	create := func() ([]byte, error) {
		calls++
		return []byte("msg"), nil
	}

	msg, added, err := cache.GetOrAdd(1, create)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []byte("msg"), msg)

	msg, added, err = cache.GetOrAdd(1, create)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, []byte("msg"), msg)
	assert.Equal(t, 1, calls)

	// evicts the oldest entry
	cache.GetOrAdd(2, create)
	cache.GetOrAdd(3, create)
	_, added, _ = cache.GetOrAdd(1, create)
	assert.True(t, added)

	_, _, err = cache.GetOrAdd(4, func() ([]byte, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	assert.Equal(t, 2, cache.cache.Len())
}

func TestMessageCacheSize(t *testing.T) {
	assert.NotNil(t, newMessageCache(0))
	assert.NotNil(t, newMessageCache(5000))
}
