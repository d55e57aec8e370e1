package store

import (
	"time"

	"github.com/vfg2006/sales-manager-api/internal/domain"
)

// Notify publica uma notificação com a duração padrão. Há no máximo uma
// notificação pendente: a mais recente substitui a anterior.
func (s *Store) Notify(message string, severity domain.Severity) domain.Notification {
	return s.NotifyFor(message, severity, s.autoHide)
}

// NotifyFor publica uma notificação que some após d. Com d zero ela fica até
// ser dispensada.
func (s *Store) NotifyFor(message string, severity domain.Severity, d time.Duration) domain.Notification {
	var notification domain.Notification

	s.mutate(func(st *State) {
		s.nextNotification++
		id := s.nextNotification
		notification = domain.Notification{
			ID:               id,
			Message:          message,
			Severity:         severity,
			AutoHideDuration: d,
		}

		s.stopHideTimerLocked()
		if d > 0 {
			s.hideTimer = time.AfterFunc(d, func() { s.ClearNotification(id) })
		}

		n := notification
		st.Notification = &n
	})

	return notification
}

// ClearNotification remove a notificação id, se ela ainda for a pendente
func (s *Store) ClearNotification(id uint64) bool {
	s.mu.RLock()
	current := s.state.Notification
	matches := current != nil && current.ID == id
	s.mu.RUnlock()

	if !matches {
		return false
	}

	cleared := false
	s.mutate(func(st *State) {
		if st.Notification != nil && st.Notification.ID == id {
			st.Notification = nil
			cleared = true
		}
	})
	return cleared
}

// DismissNotification remove a notificação pendente, qualquer que seja
func (s *Store) DismissNotification() {
	s.mutate(func(st *State) {
		s.stopHideTimerLocked()
		st.Notification = nil
	})
}

func (s *Store) Notification() *domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Notification == nil {
		return nil
	}
	n := *s.state.Notification
	return &n
}

// stopHideTimerLocked exige s.mu
func (s *Store) stopHideTimerLocked() {
	if s.hideTimer != nil {
		s.hideTimer.Stop()
		s.hideTimer = nil
	}
}
