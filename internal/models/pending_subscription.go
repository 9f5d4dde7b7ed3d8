package models

import "time"

// OTPTTL — окно действия кода. Единственное место, где задаётся длина окна:
// и сервер (проверка при verify), и обратный отсчёт на клиенте считают от него.
const OTPTTL = 5 * time.Minute

// PendingSubscription — неподтверждённая подписка, одна запись на email.
// Храним только bcrypt-хэш кода (CodeHash), сам код не сохраняется.
type PendingSubscription struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// IsValid reports whether the entry is still verifiable at the given moment.
// The server's evaluation is the only one with binding effect.
func (p *PendingSubscription) IsValid(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}
