package agenda

import (
	"sync"
	"time"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/platform/logger"
	"vet-appointments/internal/ports/auth"
)

// DefaultSessionIdleTTL: sesiones sin uso por más tiempo se descartan.
const DefaultSessionIdleTTL = 30 * time.Minute

// Registry mantiene un Orchestrator por usuario autenticado.
// Las sesiones inactivas por más de IdleTTL se descartan en el próximo Get.
type Registry struct {
	svc      *appointments.Service
	fallback FallbackStrategy
	log      logger.Logger
	metrics  *Metrics
	now      func() time.Time
	idleTTL  time.Duration

	mu     sync.Mutex
	byUser map[string]*session
}

type session struct {
	o        *Orchestrator
	lastSeen time.Time
}

type RegistryOptions struct {
	Fallback FallbackStrategy
	Logger   logger.Logger
	Metrics  *Metrics
	Now      func() time.Time
	// IdleTTL <= 0 => DefaultSessionIdleTTL.
	IdleTTL time.Duration
}

func NewRegistry(svc *appointments.Service, opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultSessionIdleTTL
	}
	return &Registry{
		svc:      svc,
		fallback: opts.Fallback,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		idleTTL:  opts.IdleTTL,
		byUser:   make(map[string]*session),
	}
}

func (r *Registry) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Get devuelve el orquestador de claims; created indica que es nuevo.
// Un claim con ClientID abre la sesión en scope cliente; si no, por rango.
func (r *Registry) Get(claims auth.Claims) (o *Orchestrator, created bool) {
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictIdleLocked(now)

	if s, ok := r.byUser[claims.UserID]; ok {
		s.lastSeen = now
		return s.o, false
	}

	var clientID *int64
	if claims.IsClient() {
		id := *claims.ClientID
		clientID = &id
	}
	o = NewOrchestrator(r.svc, Options{
		ClientID: clientID,
		Fallback: r.fallback,
		Logger:   r.log.With(map[string]any{"user_id": claims.UserID}),
		Metrics:  r.metrics,
		Now:      r.now,
	})
	r.byUser[claims.UserID] = &session{o: o, lastSeen: now}
	return o, true
}

func (r *Registry) evictIdleLocked(now time.Time) {
	for user, s := range r.byUser {
		if now.Sub(s.lastSeen) > r.idleTTL {
			delete(r.byUser, user)
			r.log.Debug("agenda session evicted", map[string]any{"user_id": user})
		}
	}
}

// Drop descarta la sesión del usuario (p.ej. al volver a loguearse).
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}
