package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/internal/config"
	"github.com/vfg2006/sales-manager-api/pkg/log"
)

// SessionEvicter é implementado por session.Manager
type SessionEvicter interface {
	EvictIdle(idle time.Duration) int
	Len() int
}

// SessionJanitorConfig representa a configuração da limpeza de sessões ociosas
type SessionJanitorConfig struct {
	Interval    time.Duration
	IdleTimeout time.Duration
	Enabled     bool
}

// SessionJanitor encerra periodicamente as sessões sem uso, liberando suas assinaturas
type SessionJanitor struct {
	scheduler *gocron.Scheduler
	config    SessionJanitorConfig
	sessions  SessionEvicter

	runMutex         sync.Mutex
	running          bool
	lastRunStartedAt time.Time
	lastEvicted      int
}

func NewSessionJanitor(sessions SessionEvicter, cfg config.Session) *SessionJanitor {
	janitorConfig := SessionJanitorConfig{
		Interval:    cfg.JanitorInterval,
		IdleTimeout: cfg.IdleTimeout,
		Enabled:     cfg.JanitorEnabled,
	}

	log.L.WithFields(log.Fields{
		"interval":     janitorConfig.Interval.String(),
		"idle_timeout": janitorConfig.IdleTimeout.String(),
		"enabled":      janitorConfig.Enabled,
	}).Info("Configuração da limpeza de sessões carregada")

	return &SessionJanitor{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    janitorConfig,
		sessions:  sessions,
	}
}

// Start agenda a limpeza e para o agendador quando ctx é cancelado
func (j *SessionJanitor) Start(ctx context.Context) error {
	if !j.config.Enabled {
		log.L.Info("Limpeza de sessões desabilitada por configuração")
		return nil
	}

	if j.config.Interval <= 0 || j.config.IdleTimeout <= 0 {
		return errors.Errorf("intervalo e tempo de ociosidade devem ser positivos: %s, %s", j.config.Interval, j.config.IdleTimeout)
	}

	log.L.WithField("interval", j.config.Interval.String()).Info("Iniciando limpeza de sessões ociosas")

	_, err := j.scheduler.Every(j.config.Interval).SingletonMode().Do(j.Run)
	if err != nil {
		return errors.Wrap(err, "erro ao agendar limpeza de sessões")
	}

	j.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		log.L.Info("Parando limpeza de sessões ociosas")
		j.scheduler.Stop()
	}()

	return nil
}

// Run executa uma varredura. Uma varredura em andamento faz a nova ser ignorada.
func (j *SessionJanitor) Run() {
	j.runMutex.Lock()
	if j.running {
		j.runMutex.Unlock()
		log.L.Info("Limpeza de sessões já em andamento, ignorando")
		return
	}
	j.running = true
	j.lastRunStartedAt = time.Now()
	j.runMutex.Unlock()

	defer func() {
		j.runMutex.Lock()
		j.running = false
		j.runMutex.Unlock()
	}()

	evicted := j.sessions.EvictIdle(j.config.IdleTimeout)

	j.runMutex.Lock()
	j.lastEvicted = evicted
	j.runMutex.Unlock()

	if evicted > 0 {
		log.L.WithFields(log.Fields{
			"evicted":   evicted,
			"remaining": j.sessions.Len(),
		}).Info("Sessões ociosas encerradas")
	}
}

// Status retorna o início da última varredura e quantas sessões ela encerrou
func (j *SessionJanitor) Status() (time.Time, int) {
	j.runMutex.Lock()
	defer j.runMutex.Unlock()
	return j.lastRunStartedAt, j.lastEvicted
}
