// Package services implements the donation and request lifecycles, the
// matcher and order assembly on top of gorm.
//
// Every mutating operation runs in a single transaction. Status changes are
// guarded: the row is only updated while it still holds the status that was
// read, so a transition is applied at most once and side effects such as
// point awards cannot be duplicated by a retry or a concurrent caller.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-rescue-api/apperr"
	"food-rescue-api/metrics"
	"food-rescue-api/models"
	"food-rescue-api/statemachine"

	"gorm.io/gorm"
)

// Services bundles every service over one database handle.
type Services struct {
	Identity  *IdentityService
	Donations *DonationService
	Requests  *RequestService
	Matcher   *Matcher
	Orders    *OrderService
	Stats     *StatsService
}

type Option func(*env)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *env) { e.now = now }
}

func WithHasher(h PasswordHasher) Option {
	return func(e *env) { e.hasher = h }
}

func WithRolePolicy(p RolePolicy) Option {
	return func(e *env) { e.policy = p }
}

// env is the state shared by all services.
type env struct {
	db     *gorm.DB
	now    func() time.Time
	hasher PasswordHasher
	policy RolePolicy
}

func New(db *gorm.DB, opts ...Option) *Services {
	e := &env{
		db:     db,
		now:    time.Now,
		hasher: BcryptHasher{},
		policy: DefaultRolePolicy{},
	}
	for _, opt := range opts {
		opt(e)
	}

	identity := &IdentityService{env: e}
	donations := &DonationService{env: e, identity: identity}
	requests := &RequestService{env: e}
	return &Services{
		Identity:  identity,
		Donations: donations,
		Requests:  requests,
		Matcher:   &Matcher{env: e},
		Orders:    &OrderService{env: e},
		Stats:     &StatsService{env: e},
	}
}

// Ping checks that the database answers.
func (s *Services) Ping(ctx context.Context) error {
	sqlDB, err := s.Identity.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// wrapNotFound converts gorm's not-found error into apperr.ErrNotFound.
func wrapNotFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, apperr.ErrNotFound)
	}
	return fmt.Errorf("load %s %v: %w", what, id, err)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a lower-cased LIKE pattern matching s anywhere.
// Use it with `LOWER(col) LIKE ? ESCAPE '!'`.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// applyTransition moves one row of model from its current status to `to`.
// The update is conditional on the status read inside the same transaction;
// it fails with apperr.ErrNotFound when id is absent and apperr.ErrStaleState
// when the machine does not allow the move or the row changed underneath.
func applyTransition[S ~string](
	tx *gorm.DB,
	m *statemachine.Machine[S],
	model any,
	kind models.EntityKind,
	id uint,
	to S,
	extra map[string]any,
	note string,
	now time.Time,
) (S, error) {
	var cur struct{ Status string }
	if err := tx.Model(model).Select("status").Where("id = ?", id).Take(&cur).Error; err != nil {
		return "", wrapNotFound(err, m.Name(), id)
	}
	from := S(cur.Status)
	if err := m.CanTransition(from, to); err != nil {
		metrics.StaleTransitions.WithLabelValues(m.Name(), string(to)).Inc()
		return from, fmt.Errorf("%s %d: %w", m.Name(), id, err)
	}

	updates := map[string]any{"status": to, "updated_at": now}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(model).Where("id = ? AND status = ?", id, from).Updates(updates)
	if res.Error != nil {
		return from, fmt.Errorf("update %s %d: %w", m.Name(), id, res.Error)
	}
	if res.RowsAffected == 0 {
		metrics.StaleTransitions.WithLabelValues(m.Name(), string(to)).Inc()
		return from, fmt.Errorf("%s %d changed concurrently: %w", m.Name(), id, apperr.ErrStaleState)
	}

	if err := recordChange(tx, kind, id, string(from), string(to), note, now); err != nil {
		return from, err
	}
	return from, nil
}

// history returns the status changes of one record, oldest first.
func (e *env) history(ctx context.Context, kind models.EntityKind, id uint) ([]models.StatusChange, error) {
	var changes []models.StatusChange
	err := e.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", kind, id).
		Order("created_at, id").
		Find(&changes).Error
	return changes, err
}

func recordChange(tx *gorm.DB, kind models.EntityKind, id uint, from, to, note string, now time.Time) error {
	change := models.StatusChange{
		EntityKind: kind,
		EntityID:   id,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		CreatedAt:  now,
	}
	if err := tx.Create(&change).Error; err != nil {
		return fmt.Errorf("record %s %d status change: %w", kind, id, err)
	}
	return nil
}
