package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

func tempStorePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "bari-foods", "prefs.json")
}

func TestOpen_MissingFileIsFreshStore(t *testing.T) {
	s, err := Open(tempStorePath(t))

	require.NoError(t, err)
	assert.Empty(t, s.Favorites())
	assert.Empty(t, s.LastPaymentMethod())
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	require.ErrorContains(t, err, "parse prefs")
}

func TestToggleFavorite_RoundTripsThroughFile(t *testing.T) {
	path := tempStorePath(t)
	s, err := Open(path)
	require.NoError(t, err)

	on, err := s.ToggleFavorite(3)
	require.NoError(t, err)
	assert.True(t, on)
	on, err = s.ToggleFavorite(1)
	require.NoError(t, err)
	assert.True(t, on)

	// A second store opened on the same path sees the persisted state.
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, reopened.Favorites())
	assert.True(t, reopened.IsFavorite(3))
	assert.False(t, reopened.IsFavorite(99))
}

func TestToggleFavorite_SecondToggleRemoves(t *testing.T) {
	s, err := Open(tempStorePath(t))
	require.NoError(t, err)

	_, err = s.ToggleFavorite(7)
	require.NoError(t, err)
	on, err := s.ToggleFavorite(7)
	require.NoError(t, err)

	assert.False(t, on)
	assert.Empty(t, s.Favorites())
}

func TestSetLastPaymentMethod(t *testing.T) {
	path := tempStorePath(t)
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SetLastPaymentMethod(domain.PaymentUPI))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentUPI, reopened.LastPaymentMethod())
}

func TestSetLastPaymentMethod_RejectsUnknown(t *testing.T) {
	s, err := Open(tempStorePath(t))
	require.NoError(t, err)

	assert.Error(t, s.SetLastPaymentMethod("cheque"))
}
