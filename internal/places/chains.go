package places

// chainConfig describes one store chain the portal offers for check-ins.
// Priority 1 chains are queried first; search terms are tried in order until
// one returns results.
type chainConfig struct {
	Chain       string
	Keyword     string
	Icon        string
	Category    string
	Priority    int
	SearchTerms []string
}

// storeChains is the focused chain set for fast check-ins.
func storeChains() []chainConfig {
	return []chainConfig{
		{Chain: "Target", Keyword: "Target", Icon: "🎯", Category: "Department", Priority: 1,
			SearchTerms: []string{"Target", "Target Store", "Target Superstore"}},
		{Chain: "Walmart", Keyword: "Walmart", Icon: "🏪", Category: "Superstore", Priority: 1,
			SearchTerms: []string{"Walmart", "Walmart Supercenter"}},
		{Chain: "BJs", Keyword: "BJ's Wholesale Club", Icon: "🛒", Category: "Wholesale", Priority: 1,
			SearchTerms: []string{"BJ's", "BJ's Wholesale"}},
		{Chain: "Best Buy", Keyword: "Best Buy", Icon: "🔌", Category: "Electronics", Priority: 1,
			SearchTerms: []string{"Best Buy", "BestBuy"}},
	}
}

// Categories lists the distinct store categories the provider searches.
func Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range storeChains() {
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		out = append(out, c.Category)
	}
	return out
}
