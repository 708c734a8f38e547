package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 123456000, time.FixedZone("CET", 3600))

	encoded := EncodeCursor("interaction-42", ts)
	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")
	assert.NotContains(t, encoded, "=")

	cursor, err := DecodeCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "interaction-42", cursor.LastID)
	assert.True(t, ts.Equal(cursor.Timestamp))
}

func TestEncodeCursor_EmptyID(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []string{
		"not base64!!",
		"bm8tc2VwYXJhdG9y",             // "no-separator"
		"bm90LWEtdGltZXxpZA",           // "not-a-time|id"
		"MjAyNC0wMy0wMVQxMDowMDowMFp8", // "2024-03-01T10:00:00Z|"
	}

	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, err := DecodeCursor(tt)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, ClampLimit(0, 20, 100))
	assert.Equal(t, 20, ClampLimit(-5, 20, 100))
	assert.Equal(t, 7, ClampLimit(7, 20, 100))
	assert.Equal(t, 100, ClampLimit(500, 20, 100))
}

type item struct {
	id string
	ts time.Time
}

func itemKey(i item) (string, time.Time) { return i.id, i.ts }

func TestPage(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []item{
		{"c", base.Add(3 * time.Minute)},
		{"b", base.Add(2 * time.Minute)},
		{"a", base.Add(1 * time.Minute)},
	}

	t.Run("more pages", func(t *testing.T) {
		page, next, hasMore := Page(items, 2, itemKey)
		assert.Len(t, page, 2)
		assert.True(t, hasMore)
		assert.Equal(t, EncodeCursor("b", base.Add(2*time.Minute)), next)
	})

	t.Run("last page", func(t *testing.T) {
		page, next, hasMore := Page(items, 3, itemKey)
		assert.Len(t, page, 3)
		assert.False(t, hasMore)
		assert.Empty(t, next)
	})

	t.Run("empty", func(t *testing.T) {
		page, next, hasMore := Page([]item(nil), 3, itemKey)
		assert.Empty(t, page)
		assert.False(t, hasMore)
		assert.Empty(t, next)
	})
}
