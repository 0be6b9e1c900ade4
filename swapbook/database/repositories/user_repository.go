package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/swapbook/swapbook/swapbook/config"
	"github.com/swapbook/swapbook/swapbook/database/models"
)

const userEntity = "user"

type UserRepository interface {
	Ensure(ctx context.Context, address string) error
	GetByAddress(ctx context.Context, address string) (*models.User, error)
	LockByAddress(ctx context.Context, address string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	BaseRepository
}

func NewUserRepository(db bun.IDB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db)}
}

// Ensure inserts a directory row for address tagged new_user unless one exists.
func (r *userRepository) Ensure(ctx context.Context, address string) error {
	if address == "" {
		return nil
	}
	ts := now()
	user := &models.User{
		Address:   address,
		Tags:      []string{config.TagNewUser},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	_, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (address) DO NOTHING").
		Exec(ctx)
	return r.HandleErrorWithID("ensure", userEntity, address, err)
}

func (r *userRepository) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	user := new(models.User)
	err := r.db.NewSelect().Model(user).Where("address = ?", address).Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", userEntity, address, err)
	}
	return user, nil
}

func (r *userRepository) LockByAddress(ctx context.Context, address string) (*models.User, error) {
	user := new(models.User)
	err := r.forUpdate(r.db.NewSelect().Model(user).Where("address = ?", address)).Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("lock", userEntity, address, err)
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = now()
	_, err := r.db.NewUpdate().
		Model(user).
		Column("tags", "subname", "updated_at").
		WherePK().
		Exec(ctx)
	return r.HandleErrorWithID("update", userEntity, user.Address, err)
}
