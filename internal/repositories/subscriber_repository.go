package repositories

import (
	"database/sql"
	"fmt"

	"toursite/internal/models"
)

type SubscriberRepository struct {
	DB *sql.DB
}

func NewSubscriberRepository(db *sql.DB) *SubscriberRepository {
	return &SubscriberRepository{DB: db}
}

// Create — вставка без перезаписи: email уникален. Возвращает false,
// если адрес уже подписан (конфликт, записи не меняются).
func (r *SubscriberRepository) Create(s *models.Subscriber) (bool, error) {
	const q = `
		INSERT INTO subscribers (email, subscribed_at)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`
	if err := r.DB.QueryRow(q, s.Email, s.SubscribedAt).Scan(&s.ID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("subscriber create: %w", err)
	}
	return true, nil
}

func (r *SubscriberRepository) ExistsByEmail(email string) (bool, error) {
	var exists bool
	if err := r.DB.QueryRow(`SELECT EXISTS (SELECT 1 FROM subscribers WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("subscriber exists: %w", err)
	}
	return exists, nil
}

func (r *SubscriberRepository) List(limit, offset int) ([]*models.Subscriber, error) {
	const q = `
		SELECT id, email, subscribed_at
		FROM subscribers
		ORDER BY subscribed_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("subscriber list: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.SubscribedAt); err != nil {
			return nil, fmt.Errorf("subscriber scan: %w", err)
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

// ListAll — для экспорта админкой (CSV/PDF), в порядке подписки.
func (r *SubscriberRepository) ListAll() ([]*models.Subscriber, error) {
	const q = `
		SELECT id, email, subscribed_at
		FROM subscribers
		ORDER BY subscribed_at ASC
	`
	rows, err := r.DB.Query(q)
	if err != nil {
		return nil, fmt.Errorf("subscriber list all: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.SubscribedAt); err != nil {
			return nil, fmt.Errorf("subscriber scan: %w", err)
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

func (r *SubscriberRepository) Count() (int, error) {
	var c int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM subscribers`).Scan(&c); err != nil {
		return 0, fmt.Errorf("subscriber count: %w", err)
	}
	return c, nil
}

func (r *SubscriberRepository) Delete(id int64) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM subscribers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("subscriber delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("subscriber delete: %w", err)
	}
	return n > 0, nil
}
