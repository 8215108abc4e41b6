package chaosnet

import (
	"log"
	"sync"
	"time"
)

// Handle - дескриптор запланированной задачи
type Handle struct {
	stop func()
	once sync.Once
}

// Stop отменяет задачу; повторные вызовы безопасны
func (h *Handle) Stop() {
	h.once.Do(h.stop)
}

// scheduler - отменяемый планировщик. Срабатывания таймеров никогда не
// трогают мир напрямую: они доставляются в канал задач и исполняются
// циклом сессии, так что все изменения происходят в одном потоке.
type scheduler struct {
	mu      sync.Mutex
	tasks   chan func()
	handles map[*Handle]struct{}
	closed  bool
}

func createScheduler(buffer int) *scheduler {
	return &scheduler{
		tasks:   make(chan func(), buffer),
		handles: make(map[*Handle]struct{}),
	}
}

// Tasks возвращает канал задач для цикла сессии
func (s *scheduler) Tasks() <-chan func() {
	return s.tasks
}

// Every планирует повторяющуюся задачу с периодом d
func (s *scheduler) Every(d time.Duration, f func()) *Handle {
	stopCh := make(chan struct{})
	h := &Handle{}
	h.stop = func() {
		close(stopCh)
		s.untrack(h)
	}
	if !s.track(h) {
		return h
	}
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.post(f)
			case <-stopCh:
				return
			}
		}
	}()
	return h
}

// After планирует однократную задачу через d
func (s *scheduler) After(d time.Duration, f func()) *Handle {
	h := &Handle{}
	var timer *time.Timer
	h.stop = func() {
		if timer != nil {
			timer.Stop()
		}
		s.untrack(h)
	}
	if !s.track(h) {
		return h
	}
	timer = time.AfterFunc(d, func() {
		s.untrack(h)
		s.post(f)
	})
	return h
}

// Active возвращает количество неотменённых задач
func (s *scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Close отменяет все задачи; дальнейшие планирования игнорируются
func (s *scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	handles := make([]*Handle, 0, len(s.handles))
	for h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()
	for _, h := range handles {
		h.Stop()
	}
}

func (s *scheduler) track(h *Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.handles[h] = struct{}{}
	return true
}

func (s *scheduler) untrack(h *Handle) {
	s.mu.Lock()
	delete(s.handles, h)
	s.mu.Unlock()
}

func (s *scheduler) post(f func()) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	select {
	case s.tasks <- f:
	default:
		log.Println("scheduler: task queue overflow, tick dropped")
	}
}
