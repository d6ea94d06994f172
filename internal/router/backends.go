package router

import (
	"context"

	"github.com/redis/go-redis/v9"

	"vet-appointments/internal/adapters/auth/clinicauth"
	"vet-appointments/internal/adapters/cache/rediscache"
	"vet-appointments/internal/adapters/directory/citasapi"
	memdir "vet-appointments/internal/adapters/directory/memory"
	pgdir "vet-appointments/internal/adapters/directory/postgres"
	"vet-appointments/internal/config"
	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/platform/logger"
	"vet-appointments/internal/ports/auth"
)

// OpenDirectory elige el Directorio según config:
// DIRECTORY_URL => API remota, DB_DSN => Postgres, si no => in-memory.
// REDIS_ADDR agrega la cache de veterinarios encima.
// closeFn libera conexiones; nunca es nil.
func OpenDirectory(ctx context.Context, cfg *config.Config, log logger.Logger) (dir appointments.Directory, closeFn func(), err error) {
	closers := make([]func(), 0, 2)
	closeFn = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch {
	case cfg.DirectoryURL != "":
		c, err := citasapi.NewClient(citasapi.Config{
			BaseURL: cfg.DirectoryURL,
			APIKey:  cfg.DirectoryAPIKey,
			Timeout: cfg.DirectoryTimeout,
		})
		if err != nil {
			return nil, closeFn, err
		}
		dir = c
		log.Info("directory: remote api", map[string]any{"url": cfg.DirectoryURL})

	case cfg.DBDSN != "":
		db, err := pgdir.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, closeFn, err
		}
		closers = append(closers, func() { _ = db.Close() })
		dir = pgdir.NewDirectory(db)
		log.Info("directory: postgres", nil)

	default:
		dir = memdir.NewDirectory()
		log.Warn("directory: in-memory (dev)", nil)
	}

	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if perr := rc.Ping(ctx).Err(); perr != nil {
			// sin cache se sigue sirviendo desde el Directorio
			log.Warn("redis unavailable, veterinarian cache disabled", map[string]any{"error": perr})
			_ = rc.Close()
		} else {
			closers = append(closers, func() { _ = rc.Close() })
			dir = rediscache.New(dir, rc, cfg.VetCacheTTL, log)
		}
	}

	return dir, closeFn, nil
}

// OpenAuth arma verifier (JWT_SECRET) y authenticator (AUTH_URL). Ambos opcionales.
func OpenAuth(cfg *config.Config) (auth.AuthVerifier, auth.Authenticator, error) {
	var (
		verifier auth.AuthVerifier
		authn    auth.Authenticator
	)
	if cfg.JWTSecret != "" {
		v, err := clinicauth.NewVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, nil, err
		}
		verifier = v
	}
	if cfg.AuthURL != "" {
		c, err := clinicauth.NewClient(clinicauth.Config{BaseURL: cfg.AuthURL})
		if err != nil {
			return nil, nil, err
		}
		authn = c
	}
	return verifier, authn, nil
}
