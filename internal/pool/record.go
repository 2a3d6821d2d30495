package pool

import "sort"

// Record is one liquidity-pool metrics row, scoped to a single network.
// Numeric fields are always concrete values: the loading layer coerces
// missing or unparseable source values to zero before a Record is built,
// so sorting and arithmetic never see NaN.
type Record struct {
	Pair      string  `json:"pair"`
	DEX       string  `json:"dex"`
	Tier      float64 `json:"tier"`
	APY24h    float64 `json:"apy_24h"`
	TVL       float64 `json:"tvl"`
	Volume24h float64 `json:"volume24h"`
	Fees24h   float64 `json:"fees24h"`
}

// Pairs returns the distinct pair identifiers present in records, sorted.
func Pairs(records []Record) []string {
	seen := make(map[string]bool, len(records))
	pairs := make([]string, 0, len(records))
	for _, r := range records {
		if r.Pair == "" || seen[r.Pair] {
			continue
		}
		seen[r.Pair] = true
		pairs = append(pairs, r.Pair)
	}
	sort.Strings(pairs)
	return pairs
}

// ForPair returns the records for the given pair, preserving source order.
func ForPair(records []Record, pair string) []Record {
	var out []Record
	for _, r := range records {
		if r.Pair == pair {
			out = append(out, r)
		}
	}
	return out
}

// SortByAPY sorts records by 24h APY, highest first. Stable for ties.
func SortByAPY(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].APY24h > records[j].APY24h
	})
}
