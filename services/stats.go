package services

import (
	"context"
	"sort"
	"strings"

	"go-storefront/apperrors"
	"go-storefront/models"
	"go-storefront/utils"
)

// StatsService computes read-only dashboards.
type StatsService struct {
	users    UserStore
	products ProductStore
	reviews  ReviewStore
	orders   OrderStore
}

// NewStatsService creates a StatsService.
func NewStatsService(users UserStore, products ProductStore, reviews ReviewStore, orders OrderStore) *StatsService {
	return &StatsService{users: users, products: products, reviews: reviews, orders: orders}
}

// UserStats summarises the payments, reviews and purchases of the user
// registered with email.
func (s *StatsService) UserStats(ctx context.Context, email string) (*models.UserStats, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.Validation("Email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}

	total, err := s.orders.SumAmount(ctx, email)
	if err != nil {
		return nil, err
	}
	reviewCount, err := s.reviews.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	productIDs, err := s.orders.DistinctProductIDs(ctx, email)
	if err != nil {
		return nil, err
	}

	return &models.UserStats{
		TotalPayments:          utils.FormatAmount(total),
		TotalReviews:           reviewCount,
		TotalPurchasedProducts: len(productIDs),
	}, nil
}

// AdminStats summarises the whole store.
func (s *StatsService) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	var (
		stats models.AdminStats
		err   error
	)

	if stats.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalReviews, err = s.reviews.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalEarnings, err = s.orders.SumAmount(ctx, ""); err != nil {
		return nil, err
	}

	monthly, err := s.orders.MonthlyEarnings(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(monthly, func(i, j int) bool {
		if monthly[i].Year != monthly[j].Year {
			return monthly[i].Year < monthly[j].Year
		}
		return monthly[i].Month < monthly[j].Month
	})

	stats.MonthlyEarnings = make([]models.MonthlyEarningsEntry, 0, len(monthly))
	for _, m := range monthly {
		stats.MonthlyEarnings = append(stats.MonthlyEarnings, models.MonthlyEarningsEntry{
			Month:    m.Month,
			Year:     m.Year,
			Earnings: utils.FormatAmount(m.Total),
		})
	}
	return &stats, nil
}
