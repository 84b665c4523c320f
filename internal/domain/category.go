package domain

// UncategorizedName is the reserved fallback category. Oracle results naming
// a category outside the local vocabulary resolve to this instead of failing
// the batch.
const UncategorizedName = "Uncategorized"

// Category is one entry of the fixed classification vocabulary. The set is
// reference data: sync and categorization read it but never modify it.
type Category struct {
	ID       string
	Name     string
	Parent   string
	Icon     string
	Color    string
	IsActive bool
}
