package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/platform/logger"
)

const (
	DefaultTTL = 10 * time.Minute

	veterinariansKey = "vet-appointments:veterinarians"
)

// Directory decora un appointments.Directory cacheando el catálogo de
// veterinarios en Redis. El resto de operaciones pasa directo.
// Si Redis falla se sirve desde el Directorio sin cortar el request.
type Directory struct {
	appointments.Directory

	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func New(inner appointments.Directory, client *redis.Client, ttl time.Duration, log logger.Logger) *Directory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Directory{
		Directory: inner,
		client:    client,
		ttl:       ttl,
		log:       log,
	}
}

type veterinarianEntry struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

func (d *Directory) ListVeterinarians(ctx context.Context) ([]appointments.Veterinarian, error) {
	raw, err := d.client.Get(ctx, veterinariansKey).Bytes()
	switch {
	case err == nil:
		var entries []veterinarianEntry
		if jerr := json.Unmarshal(raw, &entries); jerr == nil {
			return fromEntries(entries), nil
		}
		d.log.Warn("veterinarians cache entry corrupt", nil)
	case errors.Is(err, redis.Nil):
	default:
		d.log.Warn("veterinarians cache read failed", map[string]any{"error": err})
	}

	items, err := d.Directory.ListVeterinarians(ctx)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(toEntries(items))
	if err == nil {
		if serr := d.client.Set(ctx, veterinariansKey, b, d.ttl).Err(); serr != nil {
			d.log.Warn("veterinarians cache write failed", map[string]any{"error": serr})
		}
	}
	return items, nil
}

// Invalidate borra el catálogo cacheado.
func (d *Directory) Invalidate(ctx context.Context) error {
	return d.client.Del(ctx, veterinariansKey).Err()
}

func toEntries(items []appointments.Veterinarian) []veterinarianEntry {
	out := make([]veterinarianEntry, 0, len(items))
	for _, v := range items {
		out = append(out, veterinarianEntry{UserID: v.UserID, Name: v.Name, Specialty: v.Specialty})
	}
	return out
}

func fromEntries(entries []veterinarianEntry) []appointments.Veterinarian {
	out := make([]appointments.Veterinarian, 0, len(entries))
	for _, e := range entries {
		out = append(out, appointments.Veterinarian{UserID: e.UserID, Name: e.Name, Specialty: e.Specialty})
	}
	return out
}
