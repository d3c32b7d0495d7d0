// application/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"subscription-group-bot/pkg/logger"
)

// Период проверки расписания и лимит времени задачи по умолчанию
const (
	defaultTick       = time.Second
	defaultJobTimeout = 5 * time.Minute
)

// Schedule определяет расписание задачи
type Schedule struct {
	// DailyAt: задача запускается раз в день в заданное UTC время
	// Every: задача запускается с заданным интервалом
	kind     scheduleKind
	hour     int
	minute   int
	interval time.Duration
}

type scheduleKind int

const (
	kindDaily    scheduleKind = iota // раз в сутки в HH:MM UTC
	kindInterval                     // каждые N единиц времени
)

// DailyAt создает расписание "каждый день в HH:MM UTC"
func DailyAt(hour, minute int) Schedule {
	return Schedule{kind: kindDaily, hour: hour, minute: minute}
}

// Every создает расписание "каждые N времени"
func Every(d time.Duration) Schedule {
	return Schedule{kind: kindInterval, interval: d}
}

// String описание расписания для логов
func (s Schedule) String() string {
	if s.kind == kindDaily {
		return fmt.Sprintf("ежедневно в %02d:%02d UTC", s.hour, s.minute)
	}
	return "каждые " + s.interval.String()
}

// nextRun вычисляет время следующего запуска относительно now
func (s Schedule) nextRun(now time.Time) time.Time {
	switch s.kind {
	case kindDaily:
		next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, time.UTC)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		return next
	case kindInterval:
		return now.Add(s.interval)
	default:
		return now.Add(24 * time.Hour)
	}
}

// Job описывает одну планируемую задачу
type Job struct {
	Name        string
	Description string
	Schedule    Schedule
	Handler     func(ctx context.Context) error
	// RunOnStart первый запуск сразу при старте планировщика
	RunOnStart bool
	// Timeout лимит одного запуска, по умолчанию 5 минут
	Timeout time.Duration

	mu      sync.Mutex
	nextRun time.Time
	lastRun time.Time
	lastErr error
	runs    int
	running bool
}

// Status возвращает текущее состояние задачи
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		Name:        j.Name,
		Description: j.Description,
		NextRun:     j.nextRun,
		LastRun:     j.lastRun,
		LastErr:     j.lastErr,
		Runs:        j.runs,
		Running:     j.running,
	}
}

// JobStatus снапшот состояния задачи
type JobStatus struct {
	Name        string
	Description string
	NextRun     time.Time
	LastRun     time.Time
	LastErr     error
	Runs        int
	Running     bool
}

// Scheduler управляет фоновыми задачами приложения
type Scheduler struct {
	jobs     []*Job
	mu       sync.RWMutex
	tick     time.Duration
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New создает новый планировщик
func New() *Scheduler {
	return NewWithTick(defaultTick)
}

// NewWithTick создает планировщик с заданным периодом проверки расписания
func NewWithTick(tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = defaultTick
	}
	return &Scheduler{
		tick: tick,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Register добавляет задачу в планировщик.
// Должен вызываться до Start().
func (s *Scheduler) Register(job *Job) error {
	if job.Handler == nil {
		return fmt.Errorf("задача %q без обработчика", job.Name)
	}
	if job.Schedule.kind == kindInterval && job.Schedule.interval <= 0 {
		return fmt.Errorf("задача %q: интервал должен быть положительным", job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	job.mu.Lock()
	if job.RunOnStart {
		job.nextRun = now
	} else {
		job.nextRun = job.Schedule.nextRun(now)
	}
	nextRun := job.nextRun
	job.mu.Unlock()
	s.jobs = append(s.jobs, job)

	logger.Info("📋 [Scheduler] Зарегистрирована задача %q (%s), первый запуск в %s",
		job.Name, job.Schedule, nextRun.Format("2006-01-02 15:04:05 UTC"))
	return nil
}

// Start запускает цикл планировщика в фоновой горутине.
// Отмена ctx прерывает выполняющиеся задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	jobs := len(s.jobs)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	logger.Info("✅ [Scheduler] Запущен (%d задач)", jobs)
}

// Stop останавливает планировщик и ждёт завершения текущих задач
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.RLock()
		cancel := s.cancel
		s.mu.RUnlock()
		if cancel == nil {
			return
		}

		cancel()
		s.wg.Wait()
		logger.Info("🛑 [Scheduler] Остановлен")
	})
}

// Jobs возвращает статус всех задач
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	statuses := make([]JobStatus, len(jobs))
	for i, j := range jobs {
		statuses[i] = j.Status()
	}
	return statuses
}

// loop основной цикл: периодически проверяет, какие задачи нужно запустить
func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	// Первая проверка сразу при старте
	s.checkJobs()

	for {
		select {
		case <-ticker.C:
			s.checkJobs()
		case <-s.ctx.Done():
			return
		}
	}
}

// checkJobs запускает задачи, у которых наступило время.
// Задача, которая еще выполняется, повторно не запускается
func (s *Scheduler) checkJobs() {
	now := s.now()

	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	for _, job := range jobs {
		job.mu.Lock()
		due := !job.running && !now.Before(job.nextRun)
		if due {
			job.running = true
		}
		job.mu.Unlock()

		if due {
			s.wg.Add(1)
			go s.run(job)
		}
	}
}

// run выполняет одну задачу и обновляет её состояние
func (s *Scheduler) run(job *Job) {
	defer s.wg.Done()

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	logger.Debug("▶️  [Scheduler] Запуск задачи %q", job.Name)
	start := time.Now()

	err := s.safeRun(ctx, job)

	elapsed := time.Since(start)

	job.mu.Lock()
	job.lastRun = start
	job.lastErr = err
	job.runs++
	job.running = false
	job.nextRun = job.Schedule.nextRun(s.now())
	nextRun := job.nextRun
	job.mu.Unlock()

	if err != nil {
		logger.Error("❌ [Scheduler] Задача %q завершилась с ошибкой за %v: %v", job.Name, elapsed, err)
	} else {
		logger.Debug("✅ [Scheduler] Задача %q выполнена за %v. Следующий запуск: %s",
			job.Name, elapsed, nextRun.Format("2006-01-02 15:04:05 UTC"))
	}
}

// safeRun превращает панику обработчика в ошибку
func (s *Scheduler) safeRun(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника в задаче %q: %v", job.Name, r)
		}
	}()
	return job.Handler(ctx)
}
