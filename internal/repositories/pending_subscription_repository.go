package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"toursite/internal/models"
)

type PendingSubscriptionRepository struct {
	DB *sql.DB
}

func NewPendingSubscriptionRepository(db *sql.DB) *PendingSubscriptionRepository {
	return &PendingSubscriptionRepository{DB: db}
}

// Upsert — одна запись на email: повторная отправка перезаписывает код,
// окно и сбрасывает attempts. Старый код после этого недействителен.
func (r *PendingSubscriptionRepository) Upsert(p *models.PendingSubscription) error {
	const q = `
		INSERT INTO pending_subscriptions (email, code_hash, created_at, expires_at, attempts)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (email) DO UPDATE
		SET code_hash  = EXCLUDED.code_hash,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at,
		    attempts   = 0
	`
	if _, err := r.DB.Exec(q, p.Email, p.CodeHash, p.CreatedAt, p.ExpiresAt); err != nil {
		return fmt.Errorf("pending subscription upsert: %w", err)
	}
	return nil
}

func (r *PendingSubscriptionRepository) GetByEmail(email string) (*models.PendingSubscription, error) {
	const q = `
		SELECT email, code_hash, created_at, expires_at, attempts
		FROM pending_subscriptions
		WHERE email = $1
	`
	row := r.DB.QueryRow(q, email)

	var p models.PendingSubscription
	if err := row.Scan(&p.Email, &p.CodeHash, &p.CreatedAt, &p.ExpiresAt, &p.Attempts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("pending subscription get: %w", err)
	}
	return &p, nil
}

// IncrementAttempts — +1 попытка, возвращает новое значение attempts.
// Запись могла параллельно исчезнуть (успешный verify, уборка) — тогда 0.
func (r *PendingSubscriptionRepository) IncrementAttempts(email string) (int, error) {
	const q = `
		UPDATE pending_subscriptions
		SET attempts = attempts + 1
		WHERE email = $1
		RETURNING attempts
	`
	var attempts int
	if err := r.DB.QueryRow(q, email).Scan(&attempts); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("pending subscription increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *PendingSubscriptionRepository) Delete(email string) error {
	if _, err := r.DB.Exec(`DELETE FROM pending_subscriptions WHERE email = $1`, email); err != nil {
		return fmt.Errorf("pending subscription delete: %w", err)
	}
	return nil
}

// DeleteMatching — удаляет запись только если code_hash не был перезаписан
// повторной отправкой. false означает, что проверенный код уже вытеснен.
func (r *PendingSubscriptionRepository) DeleteMatching(email, codeHash string) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM pending_subscriptions WHERE email = $1 AND code_hash = $2`, email, codeHash)
	if err != nil {
		return false, fmt.Errorf("pending subscription delete matching: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pending subscription delete matching: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired — уборка протухших записей; корректность от неё не зависит.
func (r *PendingSubscriptionRepository) DeleteExpired(before time.Time) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM pending_subscriptions WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("pending subscription delete expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pending subscription delete expired: %w", err)
	}
	return n, nil
}
