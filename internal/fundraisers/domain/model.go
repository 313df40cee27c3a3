package domain

import "time"

const (
	DonorIndividual = "individual"
	DonorCompany    = "company"
)

// Fundraiser aggregates its donations; Raised always equals the sum of
// the recorded donation amounts.
type Fundraiser struct {
	ID            string     `json:"_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Goal          float64    `json:"goal"`
	Raised        float64    `json:"raised"`
	CreatedBy     string     `json:"createdBy"`
	CreatedByName string     `json:"createdByName"`
	Donations     []Donation `json:"donations"`
	Progress      int        `json:"progress"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Donation is immutable once recorded.
type Donation struct {
	UserID    string    `json:"userId"`
	DonorType string    `json:"donorType"`
	Name      string    `json:"name,omitempty"`
	Amount    float64   `json:"amount"`
	DonatedAt time.Time `json:"donatedAt"`
}

// LeaderboardEntry is one (label, total) ranking row.
type LeaderboardEntry struct {
	Label string  `json:"_id"`
	Total float64 `json:"total"`
}

// Leaderboard carries both rankings, each sorted descending by total.
// Ties follow store order and are not stable across calls.
type Leaderboard struct {
	MostDonated []LeaderboardEntry `json:"mostDonated"`
	MostRaised  []LeaderboardEntry `json:"mostRaised"`
}

// ProgressPercent is the capped percentage shown next to a fundraiser.
func ProgressPercent(raised, goal float64) int {
	if goal <= 0 {
		return 0
	}
	p := int(raised/goal*100 + 0.5)
	if p > 100 {
		return 100
	}
	return p
}
