package review

// Review represents a product review. The aggregator only consumes the
// moderation flag; the rating rides along for completeness.
type Review struct {
	ID       string `json:"id"`
	Approved bool   `json:"approved"`
	Rating   int    `json:"rating"`
}
