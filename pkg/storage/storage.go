package storage

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/mdolezal/sreality-alert/pkg/model"

	// import for the database driver
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// ErrNotFound is returned when a listing id is not present.
var ErrNotFound = errors.New("listing not found")

// ErrDuplicate is returned when an insert hits the hash_id unique index.
var ErrDuplicate = errors.New("listing already exists")

// Storage is the main storage medium. It is constructed explicitly and passed
// to the crawler and the API, there is no package-level handle.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens the sqlite database at path and migrates the schema.
func NewStorage(path string) (*Storage, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(&model.Listing{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// CloseDB closes the created db connection.
func (s *Storage) CloseDB() error {
	return s.db.Close()
}

// Exists checks whether a listing with the given upstream hash id is stored.
func (s *Storage) Exists(hashID int64) (bool, error) {
	var count int
	err := s.db.Model(&model.Listing{}).Where("hash_id = ?", hashID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking hash_id %d: %w", hashID, err)
	}
	return count > 0, nil
}

// InsertBatch stores the given listings in a single transaction and returns
// the ones that actually landed. A unique index violation on hash_id means a
// concurrent run got there first; the listing is skipped, not an error.
func (s *Storage) InsertBatch(listings []*model.Listing) ([]model.Listing, error) {
	inserted := make([]model.Listing, 0, len(listings))
	if len(listings) == 0 {
		return inserted, nil
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("starting transaction: %w", tx.Error)
	}

	for _, listing := range listings {
		if err := tx.Create(listing).Error; err != nil {
			if isUniqueViolation(err) {
				continue
			}
			tx.Rollback()
			return nil, fmt.Errorf("inserting listing %d: %w", listing.HashID, err)
		}
		inserted = append(inserted, *listing)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing batch: %w", err)
	}

	return inserted, nil
}

// Insert stores a single listing. Returns ErrDuplicate when the hash id is
// already present.
func (s *Storage) Insert(listing *model.Listing) error {
	if err := s.db.Create(listing).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting listing %d: %w", listing.HashID, err)
	}
	return nil
}

// FindByID fetches one listing by its internal id.
func (s *Storage) FindByID(id uint) (*model.Listing, error) {
	var listing model.Listing
	err := s.db.Where("id = ?", id).First(&listing).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding listing %d: %w", id, err)
	}
	return &listing, nil
}

// Filter narrows QueryFiltered results. Nil fields are ignored, numeric
// bounds are inclusive.
type Filter struct {
	MinPrice   *int
	MaxPrice   *int
	MinSize    *int
	MaxSize    *int
	HasGarage  *bool
	RoomLayout *string
}

// QueryFiltered returns listings matching the filter, newest first.
func (s *Storage) QueryFiltered(f Filter, offset, limit int) ([]model.Listing, error) {
	db := s.db.Model(&model.Listing{})

	if f.MinPrice != nil {
		db = db.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinSize != nil {
		db = db.Where("size_sqm >= ?", *f.MinSize)
	}
	if f.MaxSize != nil {
		db = db.Where("size_sqm <= ?", *f.MaxSize)
	}
	if f.HasGarage != nil {
		db = db.Where("has_garage = ?", *f.HasGarage)
	}
	if f.RoomLayout != nil {
		db = db.Where("room_layout = ?", *f.RoomLayout)
	}

	listings := make([]model.Listing, 0)
	err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	return listings, nil
}

// QueryCreatedAfter returns listings created after cutoff, newest first.
func (s *Storage) QueryCreatedAfter(cutoff time.Time) ([]model.Listing, error) {
	listings := make([]model.Listing, 0)
	err := s.db.Where("created_at >= ?", cutoff).Order("created_at desc").Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("querying recent listings: %w", err)
	}
	return listings, nil
}

// Stats holds the aggregate numbers over all stored listings.
type Stats struct {
	TotalListings        int     `json:"total_apartments"`
	AveragePrice         float64 `json:"average_price"`
	AverageSize          float64 `json:"average_size"`
	ApartmentsWithGarage int     `json:"apartments_with_garage"`
}

// Stats computes count, average price, average size over listings that have a
// size, and the garage count. Averages are 0 for an empty store.
func (s *Storage) Stats() (*Stats, error) {
	stats := &Stats{}

	row := s.db.Model(&model.Listing{}).Select(
		"count(*), " +
			"coalesce(avg(price), 0), " +
			"coalesce(avg(size_sqm), 0), " +
			"coalesce(sum(case when has_garage then 1 else 0 end), 0)").Row()

	if err := row.Scan(&stats.TotalListings, &stats.AveragePrice, &stats.AverageSize, &stats.ApartmentsWithGarage); err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}

	stats.AveragePrice = round2(stats.AveragePrice)
	stats.AverageSize = round2(stats.AverageSize)
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
