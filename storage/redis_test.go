package storage_test

import (
	"testing"
	"time"

	longdoc "github.com/MegaGrindStone/go-longdoc"
	"github.com/MegaGrindStone/go-longdoc/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_Progress(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := storage.NewRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer store.Client.Close()

	var _ longdoc.ProgressStore = store

	_, err = store.Progress("doc")
	assert.ErrorIs(t, err, longdoc.ErrProgressNotFound)

	require.NoError(t, store.SaveProgress("doc", 2))
	next, err := store.Progress("doc")
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	raw, err := mr.Get(storage.RedisProgressPrefix + "doc")
	require.NoError(t, err)
	assert.Equal(t, "2", raw)
	assert.Zero(t, mr.TTL(storage.RedisProgressPrefix+"doc"))

	require.NoError(t, store.ResetProgress("doc"))
	_, err = store.Progress("doc")
	assert.ErrorIs(t, err, longdoc.ErrProgressNotFound)
}

func TestRedis_ProgressTTL(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := storage.NewRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer store.Client.Close()
	store.TTL = time.Hour

	require.NoError(t, store.SaveProgress("doc", 5))
	assert.Equal(t, time.Hour, mr.TTL(storage.RedisProgressPrefix+"doc"))

	mr.FastForward(2 * time.Hour)
	_, err = store.Progress("doc")
	assert.ErrorIs(t, err, longdoc.ErrProgressNotFound)
}

func TestRedis_CorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := storage.NewRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer store.Client.Close()

	require.NoError(t, mr.Set(storage.RedisProgressPrefix+"doc", "not a number"))

	_, err = store.Progress("doc")
	assert.ErrorIs(t, err, longdoc.ErrCorruptProgress)
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := storage.NewRedis(addr, "", 0)
	assert.Error(t, err)
}
