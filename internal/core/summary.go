package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"category"`
	Amount Money  `json:"amount"`
}

// SortByName orders category buckets by name so output is reproducible.
func SortByName(list []CategoryAmount) {
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
}

// SumAmounts adds up all buckets.
func SumAmounts(list []CategoryAmount) Money {
	var total Money
	for _, c := range list {
		total = total.Add(c.Amount)
	}
	return total
}
