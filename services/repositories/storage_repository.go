package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/lac-hong-legacy/learning_hub/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageRepository persists key/value storage items.
type StorageRepository struct {
	BaseRepository
}

func NewStorageRepository(db *gorm.DB) *StorageRepository {
	return &StorageRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// GetItem returns nil without error when the key has no row.
func (r *StorageRepository) GetItem(ctx context.Context, key string) (*model.StorageItem, error) {
	var item model.StorageItem
	err := r.WithContext(ctx).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *StorageRepository) PutItem(ctx context.Context, key, value string) error {
	now := time.Now()
	item := model.StorageItem{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return r.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&item).Error
}

func (r *StorageRepository) DeleteItem(ctx context.Context, key string) error {
	return r.WithContext(ctx).Where("key = ?", key).Delete(&model.StorageItem{}).Error
}

func (r *StorageRepository) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := r.WithContext(ctx).Model(&model.StorageItem{}).Count(&count).Error
	return count, err
}
