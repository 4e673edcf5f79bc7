package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/shopping-mall/internal/domain/models"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileExists     = errors.New("profile already exists")
	ErrNotEnoughPayMoney = errors.New("not enough pay-money")
	ErrResourceLocked    = errors.New("resource is locked, please try again")
)

type ProfileStorage interface {
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetProfileByID(ctx context.Context, id int64) (*models.Profile, error)
	// CreateConsumerProfile создает профиль вместе со строкой consumers одним запросом
	CreateConsumerProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	LockProfileByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Profile, error)
	// DecreasePayMoney списывает сумму, только если баланс не уйдет в минус
	DecreasePayMoney(ctx context.Context, tx *sql.Tx, id int64, amount int64) error
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileStorage {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile := &models.Profile{}
	row := r.db.QueryRowContext(ctx, "SELECT id, email, nickname, pass_hash, pay_money FROM profiles WHERE email = $1", email)
	if err := row.Scan(&profile.ID, &profile.Email, &profile.Nickname, &profile.PassHash, &profile.PayMoney); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) GetProfileByID(ctx context.Context, id int64) (*models.Profile, error) {
	profile := &models.Profile{}
	row := r.db.QueryRowContext(ctx, "SELECT id, email, nickname, pass_hash, pay_money FROM profiles WHERE id = $1", id)
	if err := row.Scan(&profile.ID, &profile.Email, &profile.Nickname, &profile.PassHash, &profile.PayMoney); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) CreateConsumerProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query := `
		WITH p AS (
			INSERT INTO profiles (email, nickname, pass_hash, pay_money) VALUES ($1, $2, $3, $4) RETURNING id
		)
		INSERT INTO consumers (profile_id) SELECT id FROM p RETURNING profile_id`
	var id int64
	err := r.db.QueryRowContext(ctx, query, profile.Email, profile.Nickname, profile.PassHash, profile.PayMoney).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	profile.ID = id
	return profile, nil
}

func (r *profileRepository) LockProfileByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Profile, error) {
	profile := &models.Profile{}

	row := tx.QueryRowContext(ctx, "SELECT id, email, nickname, pass_hash, pay_money FROM profiles WHERE id = $1 FOR UPDATE NOWAIT", id)
	if err := row.Scan(&profile.ID, &profile.Email, &profile.Nickname, &profile.PassHash, &profile.PayMoney); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "55P03" { // lock_not_available
			return nil, fmt.Errorf("%w: %v", ErrResourceLocked, err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) DecreasePayMoney(ctx context.Context, tx *sql.Tx, id int64, amount int64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE profiles SET pay_money = pay_money - $1 WHERE id = $2 AND pay_money >= $1", amount, id)
	if err != nil {
		return fmt.Errorf("failed to decrease pay-money: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotEnoughPayMoney
	}
	return nil
}
