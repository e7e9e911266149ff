package catalog

import (
	"github.com/merlotworks/wineclub-backend/pkg/square"
)

// Normalize flattens the raw catalog object graph into wine records. It is a
// pure function: no I/O, no caching, and byte-for-byte deterministic for
// identical input. Wine order follows input item order; category order follows
// first discovery during the category pass. Malformed objects are folded into
// Skipped instead of aborting the pass.
func Normalize(raw []square.Object) NormalizedCatalog {
	out := NormalizedCatalog{
		Wines:               []WineRecord{},
		AvailableCategories: []string{},
	}

	categories := make(map[string]string)
	for _, obj := range raw {
		if obj.Type != square.ObjectTypeCategory {
			continue
		}
		if obj.CategoryData == nil || obj.CategoryData.Name == "" {
			out.Skipped = append(out.Skipped, SkipReason{ObjectID: obj.ID, Cause: SkipMissingCategoryPayload})
			continue
		}
		if _, seen := categories[obj.ID]; seen {
			continue
		}
		categories[obj.ID] = obj.CategoryData.Name
		out.AvailableCategories = append(out.AvailableCategories, obj.CategoryData.Name)
	}

	images := make(map[string]string)
	for _, obj := range raw {
		if obj.Type != square.ObjectTypeImage {
			continue
		}
		if obj.ImageData == nil || obj.ImageData.URL == "" {
			out.Skipped = append(out.Skipped, SkipReason{ObjectID: obj.ID, Cause: SkipMissingImagePayload})
			continue
		}
		images[obj.ID] = obj.ImageData.URL
	}

	for _, obj := range raw {
		if obj.Type != square.ObjectTypeItem {
			continue
		}
		if obj.ItemData == nil {
			out.Skipped = append(out.Skipped, SkipReason{ObjectID: obj.ID, Cause: SkipMissingItemPayload})
			continue
		}

		wine := WineRecord{
			ID:           obj.ID,
			Name:         obj.ItemData.Name,
			CategoryName: resolveCategory(obj.ItemData, categories),
			ImageURL:     resolveImage(obj.ItemData, images),
			Description:  obj.ItemData.Description,
			Varietal:     square.Attribute(obj.CustomAttributeValues, "varietal"),
			Sweetness:    square.Attribute(obj.CustomAttributeValues, "sweetness"),
			Color:        square.Attribute(obj.CustomAttributeValues, "color"),
			Variations:   []WineVariation{},
		}

		for _, v := range obj.ItemData.Variations {
			if v.ItemVariationData == nil {
				out.Skipped = append(out.Skipped, SkipReason{ObjectID: v.ID, Cause: SkipMissingVariationPayload})
				continue
			}
			variation := WineVariation{
				ID:             v.ID,
				Name:           v.ItemVariationData.Name,
				AvailableCount: v.AvailableCount,
				Varietal:       attributeWithFallback(v.CustomAttributeValues, "varietal", wine.Varietal),
				Sweetness:      attributeWithFallback(v.CustomAttributeValues, "sweetness", wine.Sweetness),
				Color:          attributeWithFallback(v.CustomAttributeValues, "color", wine.Color),
			}
			if v.ItemVariationData.PriceMoney != nil {
				variation.PriceCents = v.ItemVariationData.PriceMoney.Amount
			}
			wine.Variations = append(wine.Variations, variation)
			wine.TotalInventory += variation.AvailableCount
		}

		// An item with no purchasable unit is dropped entirely, not emitted
		// as a partial record.
		if len(wine.Variations) == 0 {
			out.Skipped = append(out.Skipped, SkipReason{ObjectID: obj.ID, Cause: SkipNoVariations})
			continue
		}

		out.Wines = append(out.Wines, wine)
	}

	out.TotalItems = len(out.Wines)
	return out
}

// resolveCategory returns the name of the item's first referenced category,
// or the Uncategorized sentinel when the reference is absent or dangling.
func resolveCategory(item *square.ItemData, categories map[string]string) string {
	id := item.CategoryID
	if len(item.Categories) > 0 {
		id = item.Categories[0].ID
	}
	if name, ok := categories[id]; ok {
		return name
	}
	return UncategorizedName
}

func resolveImage(item *square.ItemData, images map[string]string) string {
	if len(item.ImageIDs) == 0 {
		return ""
	}
	return images[item.ImageIDs[0]]
}

// attributeWithFallback prefers the variation-level attribute value and falls
// back to the item-level value, then to the empty string.
func attributeWithFallback(values map[string]square.CustomAttributeValue, name, fallback string) string {
	if v := square.Attribute(values, name); v != "" {
		return v
	}
	return fallback
}
