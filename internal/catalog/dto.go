package catalog

// UncategorizedName is the sentinel category assigned when an item's category
// reference does not resolve.
const UncategorizedName = "Uncategorized"

// WineVariation is one purchasable bottle format of a wine.
type WineVariation struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PriceCents     int64  `json:"price_cents"`
	AvailableCount int    `json:"available_count"`
	Varietal       string `json:"varietal"`
	Sweetness      string `json:"sweetness"`
	Color          string `json:"color"`
}

// WineRecord is the flat view of one catalog item. It is recomputed on every
// fetch and never persisted; TotalInventory is always derived from Variations.
type WineRecord struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CategoryName   string          `json:"category_name"`
	ImageURL       string          `json:"image_url"`
	Description    string          `json:"description"`
	Varietal       string          `json:"varietal"`
	Sweetness      string          `json:"sweetness"`
	Color          string          `json:"color"`
	Variations     []WineVariation `json:"variations"`
	TotalInventory int             `json:"total_inventory"`
}

// SkipCause classifies why a raw catalog object was excluded from the
// normalized output.
type SkipCause string

const (
	SkipMissingItemPayload      SkipCause = "missing_item_payload"
	SkipMissingCategoryPayload  SkipCause = "missing_category_payload"
	SkipMissingImagePayload     SkipCause = "missing_image_payload"
	SkipMissingVariationPayload SkipCause = "missing_variation_payload"
	SkipNoVariations            SkipCause = "no_variations"
)

// SkipReason records one excluded object. Skips are informational, never
// fatal: a single malformed object must not block the rest of the catalog.
type SkipReason struct {
	ObjectID string    `json:"object_id"`
	Cause    SkipCause `json:"cause"`
}

// NormalizedCatalog is the full output of one normalization pass.
type NormalizedCatalog struct {
	Wines               []WineRecord `json:"wines"`
	AvailableCategories []string     `json:"available_categories"`
	TotalItems          int          `json:"total_items"`
	Skipped             []SkipReason `json:"skipped,omitempty"`
}
