package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyStore_SetGetDelete(t *testing.T) {
	store := NewPolicyStore(newTestDB(t))

	requires, err := store.RequiresApproval("SCREEN", "master_data.items", PolicyEdit)
	require.NoError(t, err)
	assert.False(t, requires, "no policy row means no approval needed")

	require.NoError(t, store.Set("SCREEN", "master_data.items", PolicyEdit, true))
	requires, err = store.RequiresApproval("SCREEN", "master_data.items", PolicyEdit)
	require.NoError(t, err)
	assert.True(t, requires)

	// Upsert flips in place rather than duplicating.
	require.NoError(t, store.Set("SCREEN", "master_data.items", PolicyEdit, false))
	requires, err = store.RequiresApproval("SCREEN", "master_data.items", PolicyEdit)
	require.NoError(t, err)
	assert.False(t, requires)

	rows, err := store.List()
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, store.Delete("SCREEN", "master_data.items", PolicyEdit))
	rows, err = store.List()
	require.NoError(t, err)
	assert.Empty(t, rows)
}
