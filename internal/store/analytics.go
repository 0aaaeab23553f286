package store

import (
	"cmp"
	"slices"

	"github.com/fekuna/omnipos-storefront/internal/model"
)

const (
	topN               = 5
	lowStockThreshold  = 5
	recentOrdersLength = 5
)

type Analytics struct {
	TotalRevenue      float64          `json:"totalRevenue"`
	TotalOrders       int              `json:"totalOrders"`
	TotalCustomers    int              `json:"totalCustomers"`
	TotalProducts     int              `json:"totalProducts"`
	AverageOrderValue float64          `json:"averageOrderValue"`
	OrdersByStatus    map[string]int   `json:"ordersByStatus"`
	TopProducts       []model.Product  `json:"topProducts"`
	TopCustomers      []model.Customer `json:"topCustomers"`
	RecentOrders      []model.Order    `json:"recentOrders"`
	LowStock          []model.Product  `json:"lowStock"`
}

// GetAnalytics aggregates over the in-memory collections. Cancelled orders
// are counted but do not contribute revenue.
func (s *Store) GetAnalytics() Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := Analytics{
		TotalOrders:    len(s.orders),
		TotalCustomers: len(s.customers),
		TotalProducts:  len(s.products),
		OrdersByStatus: make(map[string]int),
	}

	billable := 0
	for _, o := range s.orders {
		a.OrdersByStatus[o.Status]++
		if o.Status == model.OrderStatusCancelled {
			continue
		}
		a.TotalRevenue += o.Total
		billable++
	}
	if billable > 0 {
		a.AverageOrderValue = a.TotalRevenue / float64(billable)
	}

	a.TopProducts = topBy(s.products, func(x, y model.Product) int { return cmp.Compare(y.Sales, x.Sales) })
	a.TopCustomers = topBy(s.customers, func(x, y model.Customer) int { return cmp.Compare(y.TotalSpent, x.TotalSpent) })

	recent := slices.Clone(tail(s.orders, recentOrdersLength))
	slices.Reverse(recent)
	a.RecentOrders = recent

	a.LowStock = []model.Product{}
	for _, p := range s.products {
		if p.Stock <= lowStockThreshold {
			a.LowStock = append(a.LowStock, p)
		}
	}
	return a
}

func topBy[T any](list []T, cmpFn func(a, b T) int) []T {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, cmpFn)
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	return sorted
}
