package utils

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate aceita tanto uma data simples (2006-01-02) quanto RFC3339
func ParseDate(dateStr string) (*time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		date, err = time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return nil, err
		}
	}

	return &date, nil
}

// TruncateToMicros reduz a precisão ao suportado pelos backends de documentos
func TruncateToMicros(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}
