package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
)

// Catalog object type tags as returned by /v2/catalog/list.
const (
	ObjectTypeItem     = "ITEM"
	ObjectTypeCategory = "CATEGORY"
	ObjectTypeImage    = "IMAGE"
)

// Object is one entry of the raw catalog graph: a tagged union whose payload
// field matches Type. Unknown types pass through untouched and are ignored by
// the normalizer.
type Object struct {
	Type                  string                          `json:"type"`
	ID                    string                          `json:"id"`
	ItemData              *ItemData                       `json:"item_data,omitempty"`
	CategoryData          *CategoryData                   `json:"category_data,omitempty"`
	ImageData             *ImageData                      `json:"image_data,omitempty"`
	CustomAttributeValues map[string]CustomAttributeValue `json:"custom_attribute_values,omitempty"`
}

// ItemData is the payload of an ITEM object.
type ItemData struct {
	Name        string      `json:"name"`
	Description string      `json:"description_plaintext"`
	CategoryID  string      `json:"category_id"`
	Categories  []ObjectRef `json:"categories,omitempty"`
	ImageIDs    []string    `json:"image_ids"`
	Variations  []Variation `json:"variations"`
}

// ObjectRef is a bare reference to another catalog object.
type ObjectRef struct {
	ID string `json:"id"`
}

// CategoryData is the payload of a CATEGORY object.
type CategoryData struct {
	Name string `json:"name"`
}

// ImageData is the payload of an IMAGE object.
type ImageData struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Variation is one purchasable unit of an item, with the stock count merged in
// from the inventory API.
type Variation struct {
	ID                    string                          `json:"id"`
	ItemVariationData     *ItemVariationData              `json:"item_variation_data"`
	CustomAttributeValues map[string]CustomAttributeValue `json:"custom_attribute_values,omitempty"`
	AvailableCount        int                             `json:"-"`
}

// ItemVariationData carries the display name and price of a variation.
type ItemVariationData struct {
	Name       string `json:"name"`
	PriceMoney *Money `json:"price_money"`
}

// Money is a minor-currency-unit amount.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CustomAttributeValue holds one custom attribute (varietal, sweetness, color).
// Square keys the map by an opaque definition id; Name carries the
// human-assigned attribute name.
type CustomAttributeValue struct {
	Name        string `json:"name"`
	StringValue string `json:"string_value"`
}

// Attribute resolves a custom attribute by key or (case-insensitive) name.
func Attribute(values map[string]CustomAttributeValue, name string) string {
	if len(values) == 0 {
		return ""
	}
	if v, ok := values[name]; ok {
		return v.StringValue
	}
	// Name matches resolve by the lowest key so ties are deterministic.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(values[k].Name, name) {
			return values[k].StringValue
		}
	}
	return ""
}

type catalogListResponse struct {
	Objects []Object `json:"objects"`
	Cursor  string   `json:"cursor"`
}

type inventoryCountsRequest struct {
	CatalogObjectIDs []string `json:"catalog_object_ids"`
	LocationIDs      []string `json:"location_ids,omitempty"`
}

type inventoryCountsResponse struct {
	Counts []struct {
		CatalogObjectID string `json:"catalog_object_id"`
		State           string `json:"state"`
		Quantity        string `json:"quantity"`
	} `json:"counts"`
}

// ListCatalog fetches the full catalog object list (items, categories, images)
// and merges IN_STOCK inventory counts onto each variation. A single page is
// assumed sufficient; the cursor is not followed. Every call is a full,
// independent refetch.
func (c *Client) ListCatalog(ctx context.Context) ([]Object, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	c.log(ctx, "request", "list_catalog", nil)

	var page catalogListResponse
	endpoint := "/v2/catalog/list?types=" + strings.Join([]string{ObjectTypeItem, ObjectTypeCategory, ObjectTypeImage}, "%2C")
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		c.log(ctx, "error", "list_catalog", map[string]any{"error": err.Error()})
		return nil, err
	}

	if err := c.mergeInventoryCounts(ctx, page.Objects); err != nil {
		c.log(ctx, "error", "list_catalog", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "list_catalog", map[string]any{"objects": len(page.Objects)})
	return page.Objects, nil
}

func (c *Client) mergeInventoryCounts(ctx context.Context, objects []Object) error {
	var variationIDs []string
	for i := range objects {
		if objects[i].ItemData == nil {
			continue
		}
		for _, v := range objects[i].ItemData.Variations {
			if v.ID != "" {
				variationIDs = append(variationIDs, v.ID)
			}
		}
	}
	if len(variationIDs) == 0 {
		return nil
	}

	req := inventoryCountsRequest{CatalogObjectIDs: variationIDs}
	if c.locationID != "" {
		req.LocationIDs = []string{c.locationID}
	}
	var resp inventoryCountsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v2/inventory/counts/batch-retrieve", req, &resp); err != nil {
		return err
	}

	counts := make(map[string]int, len(resp.Counts))
	for _, count := range resp.Counts {
		if count.State != "" && count.State != "IN_STOCK" {
			continue
		}
		qty, err := strconv.ParseFloat(count.Quantity, 64)
		if err != nil {
			continue
		}
		counts[count.CatalogObjectID] += int(qty)
	}

	for i := range objects {
		if objects[i].ItemData == nil {
			continue
		}
		for j := range objects[i].ItemData.Variations {
			v := &objects[i].ItemData.Variations[j]
			v.AvailableCount = counts[v.ID]
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode square request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build square request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Square-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "square request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read square response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := domainCodeForStatus(resp.StatusCode)
		return pkgerrors.New(code, fmt.Sprintf("square %s %s returned %d", method, path, resp.StatusCode)).
			WithDetails(map[string]any{"body": string(raw)})
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode square response")
	}
	return nil
}
