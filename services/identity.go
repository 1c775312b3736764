package services

import (
	"context"
	"fmt"

	"food-rescue-api/apperr"
	"food-rescue-api/metrics"
	"food-rescue-api/models"

	"gorm.io/gorm"
)

// Point values awarded to donors.
const (
	PointsForDonation = 10
	PointsForDelivery = 20
)

// RolePolicy decides whether grantor may create an account with role.
// grantor is nil for self-registration.
type RolePolicy interface {
	CanGrant(grantor *models.User, role models.Role) bool
}

// DefaultRolePolicy lets anyone take a non-admin role. ADMIN needs an admin
// grantor unless AllowSelfAdmin is set.
type DefaultRolePolicy struct {
	AllowSelfAdmin bool
}

func (p DefaultRolePolicy) CanGrant(grantor *models.User, role models.Role) bool {
	if role != models.RoleAdmin {
		return true
	}
	if grantor != nil && grantor.Role == models.RoleAdmin {
		return true
	}
	return p.AllowSelfAdmin
}

// SystemGrantor is the grantor used by operator tooling such as the
// seed-admin command.
var SystemGrantor = &models.User{Name: "system", Role: models.RoleAdmin}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"max=15"`
	Address  string `json:"address" validate:"max=255"`
	Role     string `json:"role" validate:"required"`
}

// IdentityService owns actor records and their point balances.
type IdentityService struct {
	*env
}

// Register creates an account. On any failure nothing is persisted.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput, grantor *models.User) (*models.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanGrant(grantor, role) {
		return nil, fmt.Errorf("register as %s: %w", role, apperr.ErrInvalidRole)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         role,
		Enabled:      true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := exists(tx, &models.User{}, "username = ?", in.Username); err != nil {
			return err
		} else if taken {
			return fmt.Errorf("username %q: %w", in.Username, apperr.ErrDuplicateIdentity)
		}
		if taken, err := exists(tx, &models.User{}, "email = ?", in.Email); err != nil {
			return err
		} else if taken {
			return fmt.Errorf("email %q: %w", in.Email, apperr.ErrDuplicateIdentity)
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the user for a matching username and password.
// Disabled accounts are rejected like a wrong password.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, fmt.Errorf("user %q is disabled: %w", username, apperr.ErrInvalidCredential)
	}
	return user, nil
}

// awardPoints adds delta to the user's balance and appends a ledger row.
// It must run inside the caller's transaction.
func (s *IdentityService) awardPoints(tx *gorm.DB, userID uint, delta int, reason string, donationID *uint) error {
	res := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("award points to user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
	}
	award := models.PointAward{
		UserID:     userID,
		Delta:      delta,
		Reason:     reason,
		DonationID: donationID,
		CreatedAt:  s.now(),
	}
	if err := tx.Create(&award).Error; err != nil {
		return fmt.Errorf("record point award: %w", err)
	}
	return nil
}

func (s *IdentityService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err, "user", id)
	}
	return &user, nil
}

func (s *IdentityService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapNotFound(err, "user", username)
	}
	return &user, nil
}

// FindWithRole loads a user and checks its role.
func (s *IdentityService) FindWithRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	return findWithRole(s.db.WithContext(ctx), id, role)
}

func (s *IdentityService) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Where("role = ?", role).Order("id").Find(&users).Error
	return users, err
}

func (s *IdentityService) ListActiveByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Where("role = ? AND enabled = ?", role, true).Order("id").Find(&users).Error
	return users, err
}

func (s *IdentityService) SetEnabled(ctx context.Context, id uint, enabled bool) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return wrapNotFound(err, "user", id)
		}
		user.Enabled = enabled
		return tx.Model(&user).Update("enabled", enabled).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete hard-removes an account. Records that reference it are left alone.
func (s *IdentityService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func findWithRole(tx *gorm.DB, id uint, role models.Role) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err, "user", id)
	}
	if user.Role != role {
		return nil, fmt.Errorf("user %d is %s, not %s: %w", id, user.Role, role, apperr.ErrInvalidRole)
	}
	return &user, nil
}

func exists(tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func recordPoints(reason string, delta int) {
	metrics.PointsAwarded.WithLabelValues(reason).Add(float64(delta))
}
