// Package session хранит сессию аутентифицированной кухни.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Session описывает сохранённую личность кухни.
type Session struct {
	Token   string `json:"token"`
	Kitchen string `json:"kitchen"`
	Branch  string `json:"branch"`
}

// Store владеет текущей сессией и её копией на диске. Писатель у сессии один:
// вход, выход и реакция на 401 проходят через Set и Clear.
type Store struct {
	mu      sync.RWMutex
	path    string
	current *Session
}

// NewStore создаёт хранилище сессии в указанном файле и подхватывает
// сохранённую сессию, если файл существует.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Побитый файл равнозначен отсутствию сессии.
		return s, nil
	}
	if sess.Token != "" {
		s.current = &sess
	}
	return s, nil
}

// Set сохраняет сессию в памяти и на диске.
func (s *Store) Set(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	s.current = &sess
	return nil
}

// Clear сбрасывает сессию в памяти и удаляет файл.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Token возвращает токен текущей сессии или пустую строку.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// IsAuthenticated сообщает, есть ли действующая сессия.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Current возвращает копию текущей сессии.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}
