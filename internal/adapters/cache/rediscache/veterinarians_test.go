package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-appointments/internal/adapters/directory/memory"
	"vet-appointments/internal/domain/appointments"
)

type countingDirectory struct {
	*memory.Directory
	vetCalls int
}

func (c *countingDirectory) ListVeterinarians(ctx context.Context) ([]appointments.Veterinarian, error) {
	c.vetCalls++
	return c.Directory.ListVeterinarians(ctx)
}

func setup(t *testing.T) (*Directory, *countingDirectory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingDirectory{Directory: memory.NewDirectory()}
	return New(inner, client, time.Minute, nil), inner, mr
}

func TestListVeterinarians_CachesCatalog(t *testing.T) {
	d, inner, mr := setup(t)
	ctx := context.Background()

	first, err := d.ListVeterinarians(ctx)
	require.NoError(t, err)
	require.Len(t, first, len(memory.DefaultVeterinarians))
	assert.True(t, mr.Exists(veterinariansKey))
	assert.Equal(t, time.Minute, mr.TTL(veterinariansKey))

	second, err := d.ListVeterinarians(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.vetCalls, "second read should come from redis")

	mr.FastForward(2 * time.Minute)
	_, err = d.ListVeterinarians(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.vetCalls, "expired entry should hit the directory")
}

func TestListVeterinarians_CorruptEntryFallsThrough(t *testing.T) {
	d, inner, mr := setup(t)

	require.NoError(t, mr.Set(veterinariansKey, "{not json"))

	items, err := d.ListVeterinarians(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, len(memory.DefaultVeterinarians))
	assert.Equal(t, 1, inner.vetCalls)
}

func TestListVeterinarians_RedisDownServesDirectory(t *testing.T) {
	d, inner, mr := setup(t)
	mr.Close()

	items, err := d.ListVeterinarians(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, len(memory.DefaultVeterinarians))
	assert.Equal(t, 1, inner.vetCalls)
}

func TestInvalidate(t *testing.T) {
	d, inner, mr := setup(t)
	ctx := context.Background()

	_, _ = d.ListVeterinarians(ctx)
	require.NoError(t, d.Invalidate(ctx))
	assert.False(t, mr.Exists(veterinariansKey))

	_, _ = d.ListVeterinarians(ctx)
	assert.Equal(t, 2, inner.vetCalls)
}

func TestOtherOperationsPassThrough(t *testing.T) {
	d, _, _ := setup(t)

	created, err := d.Create(context.Background(), appointments.CreateRequest{
		ClientID: 1, PetID: 1, ServiceID: 1, Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Time: "10:00",
	})
	require.NoError(t, err)

	items, err := d.ListByClient(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
}
