package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"phishing-detection-api/models"

	"golang.org/x/net/publicsuffix"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidURL   = errors.New("url must be an absolute http or https URL")
	ErrNotFound     = errors.New("not found")
	ErrInvalidScore = errors.New("confidence must be between 0 and 1")
)

// BlacklistEntry is the input of an upsert.
type BlacklistEntry struct {
	URL        string
	IsPhishing bool
	Confidence float64
	Source     string
}

// BlacklistEvent is published on ChannelBlacklist after a change.
type BlacklistEvent struct {
	Action     string    `json:"action"`
	URL        string    `json:"url"`
	Domain     string    `json:"domain"`
	IsPhishing bool      `json:"is_phishing"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

type BlacklistService struct {
	db    *gorm.DB
	cache *CacheService
}

func NewBlacklistService(db *gorm.DB, cache *CacheService) *BlacklistService {
	return &BlacklistService{db: db, cache: cache}
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}

// RegistrableDomain returns the eTLD+1 of raw's host, or the bare host when
// the public suffix list cannot place it (IP addresses, single labels).
func RegistrableDomain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// Lookup returns the entry stored for exactly raw, or nil.
func (s *BlacklistService) Lookup(ctx context.Context, raw string) (*models.URLBlacklist, error) {
	var entry models.URLBlacklist
	err := s.db.WithContext(ctx).Where("url = ?", raw).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup blacklist: %w", err)
	}
	return &entry, nil
}

// Upsert inserts the entry or updates the row with the same URL.
func (s *BlacklistService) Upsert(ctx context.Context, e BlacklistEntry) (*models.URLBlacklist, error) {
	if err := ValidateURL(e.URL); err != nil {
		return nil, err
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return nil, ErrInvalidScore
	}

	row := models.URLBlacklist{
		URL:        e.URL,
		Domain:     RegistrableDomain(e.URL),
		IsPhishing: e.IsPhishing,
		Confidence: e.Confidence,
		Source:     e.Source,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"domain", "is_phishing", "confidence", "source", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert blacklist: %w", err)
	}

	stored, err := s.Lookup(ctx, e.URL)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("upsert blacklist: row for %s vanished", e.URL)
	}
	s.publish(ctx, "upsert", stored)
	return stored, nil
}

func (s *BlacklistService) List(ctx context.Context, limit, offset int) ([]models.URLBlacklist, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.URLBlacklist{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count blacklist: %w", err)
	}
	var rows []models.URLBlacklist
	err := s.db.WithContext(ctx).
		Order("updated_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list blacklist: %w", err)
	}
	return rows, total, nil
}

func (s *BlacklistService) Delete(ctx context.Context, id uint) error {
	var entry models.URLBlacklist
	if err := s.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find blacklist entry: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&entry).Error; err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	s.publish(ctx, "delete", &entry)
	return nil
}

func (s *BlacklistService) publish(ctx context.Context, action string, e *models.URLBlacklist) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Publish(ctx, ChannelBlacklist, BlacklistEvent{
		Action:     action,
		URL:        e.URL,
		Domain:     e.Domain,
		IsPhishing: e.IsPhishing,
		Source:     e.Source,
		Timestamp:  time.Now().UTC(),
	})
}
