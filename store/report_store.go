package store

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/kahenya/sales-crm/models"
)

const (
	topClientsLimit = 10
	topSellersLimit = 3
)

// TopClient is one ranked group in the best-clients report.
type TopClient struct {
	Total  float64       `json:"total"`
	Client models.Client `json:"client"`
}

// TopSeller is one ranked group in the best-sellers report.
type TopSeller struct {
	Total  float64     `json:"total"`
	Seller models.User `json:"seller"`
}

type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

type totalGroup struct {
	GroupID uint
	Total   float64
}

// TopClients groups completed orders by client and sums their totals. The
// limit is applied to the grouped rows before sorting, so with more than ten
// qualifying clients the report ranks an arbitrary ten of them rather than
// the true top ten. That matches the production report this replaces; see
// DESIGN.md before changing it.
func (s *ReportStore) TopClients(ctx context.Context) ([]TopClient, error) {
	groups, err := s.completedTotals(ctx, "client_id", topClientsLimit)
	if err != nil {
		return nil, err
	}
	report := make([]TopClient, 0, len(groups))
	for _, g := range groups {
		// A client deleted after its orders completed leaves the group
		// with a zero-value record, like an empty join.
		var client models.Client
		err := s.db.WithContext(ctx).First(&client, g.GroupID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		report = append(report, TopClient{Total: g.Total, Client: client})
	}
	return report, nil
}

// TopSellers is the same report shape grouped by seller, limited to three.
func (s *ReportStore) TopSellers(ctx context.Context) ([]TopSeller, error) {
	groups, err := s.completedTotals(ctx, "seller_id", topSellersLimit)
	if err != nil {
		return nil, err
	}
	report := make([]TopSeller, 0, len(groups))
	for _, g := range groups {
		var seller models.User
		err := s.db.WithContext(ctx).First(&seller, g.GroupID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		report = append(report, TopSeller{Total: g.Total, Seller: seller})
	}
	return report, nil
}

func (s *ReportStore) completedTotals(ctx context.Context, column string, limit int) ([]totalGroup, error) {
	var groups []totalGroup
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select(column+" AS group_id, SUM(total) AS total").
		Where("status = ?", models.StatusCompleted).
		Group(column).
		Limit(limit).
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	// Sort after the limit has already cut the group list.
	sort.Slice(groups, func(i, j int) bool { return groups[i].Total > groups[j].Total })
	return groups, nil
}
