package services

import (
	"errors"

	"toursite/internal/models"
)

var ErrSubscriberNotFound = errors.New("subscriber not found")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type SubscriberAdminStore interface {
	List(limit, offset int) ([]*models.Subscriber, error)
	ListAll() ([]*models.Subscriber, error)
	Count() (int, error)
	Delete(id int64) (bool, error)
}

// SubscriberService — админская сторона: список, удаление, экспорт.
// Записи подписчиков здесь только читаются и удаляются, создаёт их Verify.
type SubscriberService struct {
	Repo SubscriberAdminStore
}

func NewSubscriberService(repo SubscriberAdminStore) *SubscriberService {
	return &SubscriberService{Repo: repo}
}

func (s *SubscriberService) List(limit, offset int) ([]*models.Subscriber, int, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	total, err := s.Repo.Count()
	if err != nil {
		return nil, 0, err
	}
	subs, err := s.Repo.List(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (s *SubscriberService) Delete(id int64) error {
	ok, err := s.Repo.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSubscriberNotFound
	}
	return nil
}

func (s *SubscriberService) Export() ([]*models.Subscriber, error) {
	return s.Repo.ListAll()
}
