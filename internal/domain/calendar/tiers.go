package calendar

// DefaultTiers is the configured prize tier table, in draw order. Weights are
// relative shares of the per-day win probability: on a winning draw the tier
// is picked by walking this list cumulatively, so order is significant.
func DefaultTiers() []Tier {
	return []Tier{
		{Type: "MYSTERY_BRONZE", Name: "Mystery Box Bronze", Description: "Mystery Box Bronze - find out what's inside!", Weight: 0.027},
		{Type: "MYSTERY_SILVER", Name: "Mystery Box Silver", Description: "Mystery Box Silver - find out what's inside!", Weight: 0.0135},
		{Type: "MYSTERY_GOLD", Name: "Mystery Box Gold", Description: "Mystery Box Gold - find out what's inside!", Weight: 0.0068},
		{Type: "MYSTERY_PLATINUM", Name: "Mystery Box Platinum", Description: "Mystery Box Platinum - find out what's inside!", Weight: 0.0027},
	}
}

// TierByType looks up a tier by its type code within the given table.
func TierByType(tiers []Tier, tierType string) (Tier, bool) {
	for _, t := range tiers {
		if t.Type == tierType {
			return t, true
		}
	}
	return Tier{}, false
}
