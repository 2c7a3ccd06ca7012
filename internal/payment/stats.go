// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"slices"
	"strings"

	"github.com/taibuivan/edura/internal/money"
)

// monthLayout formats the month buckets of [Stats].
const monthLayout = "2006-01"

// MonthlyIncome is the confirmed revenue of one calendar month.
type MonthlyIncome struct {
	Month   string       `json:"month"` // "2026-01"
	Revenue money.Amount `json:"revenue"`
	Count   int          `json:"count"`
}

// Stats summarises payments for the income dashboard.
type Stats struct {
	TotalRevenue money.Amount    `json:"total_revenue"`
	ByStatus     map[Status]int  `json:"by_status"`
	Monthly      []MonthlyIncome `json:"monthly"`
}

/*
Summarize builds income statistics.

Only successful payments count as revenue; they are bucketed by the month they
were paid in (creation month when the paid date is unknown). Months are sorted
ascending.
*/
func Summarize(payments []Payment) Stats {
	stats := Stats{
		ByStatus: map[Status]int{StatusPending: 0, StatusSuccess: 0, StatusFailed: 0},
		Monthly:  []MonthlyIncome{},
	}

	buckets := map[string]*MonthlyIncome{}
	for _, payment := range payments {
		stats.ByStatus[payment.Status]++
		if payment.Status != StatusSuccess {
			continue
		}

		stats.TotalRevenue += payment.Amount

		when := payment.CreatedAt
		if payment.PaidAt != nil {
			when = *payment.PaidAt
		}
		month := when.Format(monthLayout)

		bucket, ok := buckets[month]
		if !ok {
			bucket = &MonthlyIncome{Month: month}
			buckets[month] = bucket
		}
		bucket.Revenue += payment.Amount
		bucket.Count++
	}

	for _, bucket := range buckets {
		stats.Monthly = append(stats.Monthly, *bucket)
	}
	slices.SortFunc(stats.Monthly, func(a, b MonthlyIncome) int { return strings.Compare(a.Month, b.Month) })

	return stats
}
