package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"food-rescue-api/config"
	"food-rescue-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// testClock advances one millisecond per reading so tracking ids and
// timestamps are distinct and predictable.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

type fixture struct {
	*Services
	db    *gorm.DB
	clock *testClock
	ctx   context.Context
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db, err := config.OpenDB(config.Database{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "services.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	clock := &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)}
	base := []Option{WithClock(clock.Now), WithHasher(BcryptHasher{Cost: bcrypt.MinCost})}
	return &fixture{
		Services: New(db, append(base, opts...)...),
		db:       db,
		clock:    clock,
		ctx:      context.Background(),
	}
}

func (f *fixture) register(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	grantor := (*models.User)(nil)
	if role == models.RoleAdmin {
		grantor = SystemGrantor
	}
	u, err := f.Identity.Register(f.ctx, RegisterInput{
		Name:     username,
		Username: username,
		Email:    username + "@example.org",
		Password: "secret123",
		Role:     string(role),
	}, grantor)
	require.NoError(t, err)
	return u
}

func (f *fixture) donate(t *testing.T, donorID uint, foodType, location string) *models.Donation {
	t.Helper()
	expiry := f.clock.t.Add(48 * time.Hour)
	d, err := f.Donations.Create(f.ctx, donorID, DonationInput{
		FoodType:       foodType,
		Quantity:       5,
		Unit:           "kg",
		ExpiryTime:     &expiry,
		PickupLocation: location,
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) points(t *testing.T, userID uint) int {
	t.Helper()
	u, err := f.Identity.FindByID(f.ctx, userID)
	require.NoError(t, err)
	return u.Points
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%rice%", containsPattern("RICE"))
	assert.Equal(t, "%100!%!_off!!%", containsPattern("100%_off!"))
}
