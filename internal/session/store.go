package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Store хранит сессии; Get всегда возвращает независимую копию
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

func encode(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации сессии: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}
	if s.Answers == nil {
		s.Answers = make(map[int]string)
	}
	if s.Timers == nil {
		s.Timers = make(map[int]time.Time)
	}
	if s.Locked == nil {
		s.Locked = make(map[int]bool)
	}
	return &s, nil
}
