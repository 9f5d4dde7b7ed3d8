package services

import (
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"toursite/internal/models"
)

var (
	ErrInvalidEmail      = errors.New("invalid email")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNoPendingRequest  = errors.New("no pending request")
	ErrCodeExpired       = errors.New("code expired")
	ErrCodeInvalid       = errors.New("code invalid")
	ErrTooManyAttempts   = errors.New("too many attempts")
)

// Предел попыток на один выданный код: 6 цифр легко перебираются.
const maxVerifyAttempts = 5

// local@domain, в домене обязательно есть точка
var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	otpRe   = regexp.MustCompile(`^[0-9]{6}$`)
)

type PendingSubscriptionStore interface {
	Upsert(p *models.PendingSubscription) error
	GetByEmail(email string) (*models.PendingSubscription, error)
	IncrementAttempts(email string) (int, error)
	Delete(email string) error
	DeleteMatching(email, codeHash string) (bool, error)
	DeleteExpired(before time.Time) (int64, error)
}

type SubscriberStore interface {
	Create(s *models.Subscriber) (bool, error)
	ExistsByEmail(email string) (bool, error)
}

type CodeMailer interface {
	SendSubscriptionCode(email, code string, expiresAt time.Time) error
}

type SubscriberNotifier interface {
	NotifyNewSubscriber(email string, subscribedAt time.Time)
}

type SubscriptionService struct {
	Pending  PendingSubscriptionStore
	Subs     SubscriberStore
	Mailer   CodeMailer
	Notifier SubscriberNotifier // может быть nil
	OTP      OTPGenerator

	now func() time.Time // подменяется в тестах
}

func NewSubscriptionService(
	pending PendingSubscriptionStore,
	subs SubscriberStore,
	mailer CodeMailer,
	notifier SubscriberNotifier,
) *SubscriptionService {
	return &SubscriptionService{
		Pending:  pending,
		Subs:     subs,
		Mailer:   mailer,
		Notifier: notifier,
		now:      time.Now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestOTP — выдаёт новый код и открывает окно подтверждения. Это же и путь
// повторной отправки: каждый вызов перезаписывает прежний код (он становится
// недействительным) и заново отсчитывает окно.
func (s *SubscriptionService) RequestOTP(email string) (*models.PendingSubscription, error) {
	email = NormalizeEmail(email)
	if !emailRe.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	exists, err := s.Subs.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadySubscribed
	}

	code, hash, err := s.OTP.Generate()
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.PendingSubscription{
		Email:     email,
		CodeHash:  hash,
		CreatedAt: now,
		ExpiresAt: now.Add(models.OTPTTL),
	}
	if err := s.Pending.Upsert(p); err != nil {
		return nil, err
	}

	// Доставка не откатывает запись: письмо может дойти позже,
	// и пользователь всё ещё сможет подтвердить код.
	if err := s.Mailer.SendSubscriptionCode(email, code, p.ExpiresAt); err != nil {
		log.Printf("[subscribe][request] send failed: email=%s err=%v", email, err)
	} else {
		log.Printf("[subscribe][request] code sent: email=%s expires_at=%s", email, p.ExpiresAt.Format(time.RFC3339))
	}
	return p, nil
}

// Verify — сверяет код с актуальной pending-записью. При успехе создаёт
// Subscriber и удаляет запись; повторный verify после успеха получает
// ErrNoPendingRequest.
func (s *SubscriptionService) Verify(email, code string) (*models.Subscriber, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)

	// синтаксически неверный ввод не трогает хранилище
	if !emailRe.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if !otpRe.MatchString(code) {
		return nil, ErrCodeInvalid
	}

	p, err := s.Pending.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoPendingRequest
	}

	attempts, err := s.Pending.IncrementAttempts(email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !p.IsValid(now) {
		// запись остаётся: пользователь должен запросить новый код
		return nil, ErrCodeExpired
	}

	if !s.OTP.Matches(p.CodeHash, code) {
		if attempts >= maxVerifyAttempts {
			_ = s.Pending.Delete(email)
			log.Printf("[subscribe][verify] attempt limit reached: email=%s", email)
			return nil, ErrTooManyAttempts
		}
		return nil, ErrCodeInvalid
	}

	// Забираем запись только если код не был перезаписан повторной отправкой,
	// пока шла проверка хэша: verify не должен пройти по вытесненному коду.
	removed, err := s.Pending.DeleteMatching(email, p.CodeHash)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNoPendingRequest
	}

	sub := &models.Subscriber{Email: email, SubscribedAt: now}
	created, err := s.Subs.Create(sub)
	if err != nil {
		return nil, err
	}
	if !created {
		// гонка: адрес уже подписан другим путём
		return nil, ErrAlreadySubscribed
	}

	if s.Notifier != nil {
		s.Notifier.NotifyNewSubscriber(sub.Email, sub.SubscribedAt)
	}
	log.Printf("[subscribe][verify] OK email=%s", email)
	return sub, nil
}

// SweepExpired — уборка протухших pending-записей. Только гигиена хранилища:
// авторитетная проверка окна всегда выполняется внутри Verify.
func (s *SubscriptionService) SweepExpired() (int64, error) {
	return s.Pending.DeleteExpired(s.now())
}
