package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedBus "github.com/davicafu/hexasalon/shared/platform/bus"
)

// BirthdayScheduler publica birthday.notify para los clientes que cumplen años hoy.
// Puede correr varias veces por día: la clave por año absorbe las repeticiones.
type BirthdayScheduler struct {
	directory  domain.CustomerDirectory
	dispatcher sharedBus.EventDispatcher
	interval   time.Duration
	loc        *time.Location
	log        *zap.Logger
	now        func() time.Time
}

func NewBirthdayScheduler(
	directory domain.CustomerDirectory,
	dispatcher sharedBus.EventDispatcher,
	interval time.Duration,
	loc *time.Location,
	log *zap.Logger,
) *BirthdayScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BirthdayScheduler{
		directory:  directory,
		dispatcher: dispatcher,
		interval:   interval,
		loc:        loc,
		log:        log,
		now:        time.Now,
	}
}

// Start hace una pasada inmediata y luego una por intervalo hasta que se cancele ctx.
func (s *BirthdayScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("🎂 Scheduler de cumpleaños iniciado", zap.Duration("interval", s.interval))
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("🛑 Scheduler de cumpleaños detenido.")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce publica un evento por cliente y devuelve cuántos publicó.
func (s *BirthdayScheduler) RunOnce(ctx context.Context) int {
	today := s.now().In(s.loc)
	customers, err := s.directory.ListBirthdays(ctx, today)
	if err != nil {
		s.log.Warn("⚠️ Error al obtener cumpleaños del día", zap.Error(err))
		return 0
	}
	if len(customers) > 0 {
		s.log.Info("📬 Cumpleaños encontrados", zap.Int("count", len(customers)))
	}

	published := 0
	for _, c := range customers {
		if c.ID == "" {
			continue
		}
		s.dispatcher.Publish(ctx, domain.BirthdayNotify, domain.BirthdayEvent{Customer: c, Date: today})
		published++
	}
	return published
}
