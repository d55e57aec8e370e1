package domain

import "time"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification é a mensagem transitória exibida pela camada de visualização
type Notification struct {
	ID               uint64        `json:"id"`
	Message          string        `json:"message"`
	Severity         Severity      `json:"severity"`
	AutoHideDuration time.Duration `json:"autoHideDuration"`
}
