package repo

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCatalog(t *testing.T) (*miniredis.Miniredis, *RedisCatalog) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisCatalog(client, "aegis:response_pack")
}

func TestRedisCatalog_Lookup(t *testing.T) {
	mr, cat := newRedisCatalog(t)
	require.NoError(t, mr.Set("aegis:response_pack", packJSON))

	entry, err := cat.Lookup(context.Background(), "GENERATEOTP")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "OTP seed is out of sync.", entry.Diagnosis)
}

func TestRedisCatalog_MissingKeyIsStickyUntilReload(t *testing.T) {
	mr, cat := newRedisCatalog(t)
	ctx := context.Background()

	_, err := cat.Lookup(ctx, "GenerateOTP")
	require.Error(t, err)

	require.NoError(t, mr.Set("aegis:response_pack", packJSON))
	_, err = cat.Lookup(ctx, "GenerateOTP")
	require.Error(t, err, "failed load must not be retried implicitly")

	require.NoError(t, cat.Reload(ctx))
	entry, err := cat.Lookup(ctx, "GenerateOTP")
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestRedisCatalog_MalformedPack(t *testing.T) {
	mr, cat := newRedisCatalog(t)
	require.NoError(t, mr.Set("aegis:response_pack", "not json"))

	_, err := cat.Lookup(context.Background(), "GenerateOTP")
	assert.Error(t, err)
}
