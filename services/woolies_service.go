// services/woolies_service.go
//
// Woolworths search client with full normalization: every product card is
// mapped to a source-agnostic NormalizedProduct ready to upsert into the
// catalog (see ProductService.SaveProduct).
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	wooliesSearchURL = "https://www.woolworths.com.au/apis/ui/Search/products"
	wooliesCacheTTL  = 12 * time.Hour
	defaultCurrency  = "AUD"
)

// NutrientValue is a parsed amount such as "44.0mg" → {44.0, "mg"}.
type NutrientValue struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit,omitempty"`
}

// NutritionNode holds one nutrient's per-100 and per-serving readings.
type NutritionNode struct {
	Label      string         `json:"label"`
	Per100     *NutrientValue `json:"per_100,omitempty"`
	PerServing *NutrientValue `json:"per_serving,omitempty"`
}

// NormalizedProduct is the universal product shape shared by the Woolworths
// normalizer, the FatSecret enricher and the catalog save path.
type NormalizedProduct struct {
	Barcode     string `json:"barcode,omitempty"`
	Stockcode   string `json:"stockcode,omitempty"`
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Description string `json:"description,omitempty"`
	Size        string `json:"size,omitempty"`

	PriceCurrent *float64 `json:"price_current,omitempty"`
	PriceWas     *float64 `json:"price_was,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	IsOnSpecial  bool     `json:"is_on_special"`

	CupPriceValue *float64 `json:"cup_price_value,omitempty"`
	CupPriceUnit  string   `json:"cup_price_unit,omitempty"`

	Category        string `json:"category,omitempty"`
	Subcategory     string `json:"subcategory,omitempty"`
	CountryOfOrigin string `json:"country_of_origin,omitempty"`

	Ingredients      string   `json:"ingredients,omitempty"`
	AllergensRaw     string   `json:"allergens_raw,omitempty"`
	AllergensPresent []string `json:"allergens_present,omitempty"`
	FreeFromClaims   []string `json:"free_from_claims,omitempty"`
	DietaryTags      []string `json:"dietary_tags,omitempty"`
	DietaryTagSlugs  []string `json:"dietary_tags_slugs,omitempty"`

	NutritionBasis   string   `json:"nutrition_basis,omitempty"` // per_100g | per_100ml
	ServingSizeValue *float64 `json:"serving_size_value,omitempty"`
	ServingSizeUnit  string   `json:"serving_size_unit,omitempty"`
	ServingsPerPack  *float64 `json:"servings_per_pack,omitempty"`

	ImageURL   string `json:"image_url,omitempty"`
	ProductURL string `json:"product_url,omitempty"`
	HealthStar string `json:"health_star,omitempty"`
	IsInStock  bool   `json:"is_in_stock"`

	PrimarySource string `json:"primary_source"`

	Nutrition map[string]*NutritionNode `json:"nutrition,omitempty"`

	Enrichment *EnrichmentInfo `json:"enrichment,omitempty"`
}

type WooliesService struct {
	searchURL string
	client    *http.Client
	cache     *redis.Client
	log       *zap.Logger
}

func NewWooliesService() *WooliesService {
	return &WooliesService{
		searchURL: wooliesSearchURL,
		client:    &http.Client{Timeout: 20 * time.Second},
		cache:     config.Redis,
		log:       config.Log,
	}
}

// ------------------------------------------------------------------
// String + unit normalization
// ------------------------------------------------------------------

var (
	htmlTagRe     = regexp.MustCompile(`(?s)<.*?>`)
	numericUnitRe = regexp.MustCompile(`^\s*([\d.]+)\s*([a-zA-Zμµ]+)\s*$`)
	bareNumberRe  = regexp.MustCompile(`^\s*([\d.]+)\s*$`)
	mlSizeRe      = regexp.MustCompile(`(?:\b|^)\d+(?:\.\d+)?\s*(?:ml|l)\b`)
)

func stripHTML(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

var unitNormalisation = map[string]string{
	"kj": "kJ", "kjoules": "kJ",
	"kcal": "kcal",
	"g":    "g",
	"mg":   "mg",
	"μg":   "mcg", "µg": "mcg", "ug": "mcg", "mcg": "mcg",
	"ml": "ml",
	"l":  "l",
}

func canonUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return ""
	}
	if c, ok := unitNormalisation[u]; ok {
		return c
	}
	return u
}

var cupPriceUnitNormalisation = map[string]string{
	"100G":  "100g",
	"100ML": "100ml",
	"1KG":   "1kg",
	"1L":    "1l",
}

func canonCupUnit(u string) string {
	if u == "" {
		return ""
	}
	if c, ok := cupPriceUnitNormalisation[strings.ToUpper(strings.TrimSpace(u))]; ok {
		return c
	}
	return strings.ToLower(strings.TrimSpace(u))
}

// CleanNumericUnit parses "44.0mg" → {44.0, mg} and "<1g" → {1.0, g} (the
// "<1" reading is coerced to 1). Bare numbers come back unitless.
func CleanNumericUnit(value string) NutrientValue {
	v := strings.TrimSpace(value)
	if v == "" {
		return NutrientValue{}
	}
	v = strings.TrimPrefix(v, "<")

	if m := numericUnitRe.FindStringSubmatch(v); m != nil {
		num, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return NutrientValue{Unit: canonUnit(m[2])}
		}
		return NutrientValue{Value: &num, Unit: canonUnit(m[2])}
	}
	if m := bareNumberRe.FindStringSubmatch(v); m != nil {
		num, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return NutrientValue{}
		}
		return NutrientValue{Value: &num}
	}
	return NutrientValue{}
}

// ParseServingSize parses "250.0 ML" → {250.0, ml}.
func ParseServingSize(value string) NutrientValue {
	v := strings.TrimSpace(value)
	if v == "" {
		return NutrientValue{}
	}
	if m := numericUnitRe.FindStringSubmatch(v); m != nil {
		num, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return NutrientValue{Unit: strings.ToLower(m[2])}
		}
		return NutrientValue{Value: &num, Unit: strings.ToLower(m[2])}
	}
	return NutrientValue{}
}

// ------------------------------------------------------------------
// Nutrition normalization
// ------------------------------------------------------------------

// humanLabelMap matches the leading part of a raw NIP row name.
var humanLabelMap = []struct{ prefix, label string }{
	{"fat, total", "Fat (Total)"},
	{"fat total", "Fat (Total)"},
	{"saturated", "Fat (Saturated)"},
	{"carbohydrate, total", "Carbohydrate (Total)"},
	{"carbohydrate total", "Carbohydrate (Total)"},
	{"sugars", "Carbohydrate (Sugars)"},
	{"dietary fibre", "Fibre"},
	{"fiber", "Fibre"},
	{"sodium", "Sodium"},
	{"protein", "Protein"},
	{"energy", "Energy"},
	{"cholesterol", "Cholesterol"},
	{"trans", "Trans Fat"},
	{"monounsaturated", "Mono Fat"},
	{"polyunsaturated", "Poly Fat"},
	{"potassium", "Potassium"},
	{"calcium", "Calcium"},
}

var offKeyMap = map[string]string{
	"Energy":                 "energy-kj",
	"Protein":                "proteins",
	"Fat (Total)":            "fat",
	"Fat (Saturated)":        "fat-saturated",
	"Carbohydrate (Total)":   "carbohydrates",
	"Carbohydrate (Sugars)":  "carbohydrates-sugars",
	"Fibre":                  "fiber",
	"Sodium":                 "sodium",
	"Cholesterol":            "cholesterol",
	"Trans Fat":              "trans-fat",
	"Mono Fat":               "monounsaturated-fat",
	"Poly Fat":               "polyunsaturated-fat",
	"Potassium":              "potassium",
	"Calcium":                "calcium",
}

// defaultNutrientUnits fills missing units when the retailer omits them.
var defaultNutrientUnits = map[string]string{
	"energy-kj":           "kJ",
	"proteins":            "g",
	"fat":                 "g",
	"fat-saturated":       "g",
	"carbohydrates":       "g",
	"carbohydrates-sugars": "g",
	"fiber":               "g",
	"sodium":              "mg",
	"cholesterol":         "mg",
	"monounsaturated-fat": "g",
	"polyunsaturated-fat": "g",
	"trans-fat":           "g",
	"potassium":           "mg",
	"calcium":             "mg",
}

func normalizeLabel(raw string) string {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "–—- "))
	for _, e := range humanLabelMap {
		if strings.HasPrefix(s, e.prefix) {
			return e.label
		}
	}
	return strings.TrimSpace(raw)
}

func offKey(label string) string {
	if k, ok := offKeyMap[label]; ok {
		return k
	}
	return strings.ReplaceAll(strings.ToLower(label), " ", "-")
}

type nipAttribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type nipPayload struct {
	Attributes []nipAttribute `json:"Attributes"`
}

// ParseNIPAttributes turns the raw nutrition-information-panel JSON blob into
// per-nutrient nodes bucketed per_100 / per_serving.
func ParseNIPAttributes(nipJSON string) map[string]*NutritionNode {
	nutrition := make(map[string]*NutritionNode)
	if nipJSON == "" {
		return nutrition
	}

	var data nipPayload
	if err := json.Unmarshal([]byte(nipJSON), &data); err != nil {
		return nutrition
	}

	for _, attr := range data.Attributes {
		canon := normalizeLabel(attr.Name)
		key := offKey(canon)

		nameLC := strings.ToLower(attr.Name)
		var bucket string
		switch {
		case strings.Contains(nameLC, "per 100"):
			bucket = "per_100"
		case strings.Contains(nameLC, "per serve"), strings.Contains(nameLC, "per serv"):
			bucket = "per_serving"
		default:
			continue
		}

		parsed := CleanNumericUnit(attr.Value)
		if parsed.Unit == "" {
			parsed.Unit = defaultNutrientUnits[key]
		}

		node := nutrition[key]
		if node == nil {
			node = &NutritionNode{Label: canon}
			nutrition[key] = node
		}
		if bucket == "per_100" {
			node.Per100 = &parsed
		} else {
			node.PerServing = &parsed
		}
	}

	// prune rows with no readings at all
	for k, node := range nutrition {
		if node.Per100 == nil && node.PerServing == nil {
			delete(nutrition, k)
		}
	}
	return nutrition
}

// canonKeyMap folds the verbose per-100/per-serve NIP slugs into one
// canonical key per nutrient.
var canonKeyMap = map[string]string{
	"carbohydrate-quantity-per-100g---total---nip":          "carbohydrates",
	"carbohydrate-quantity-per-serve---total---nip":         "carbohydrates",
	"fat-quantity-per-100g---total---nip":                   "fat",
	"fat-quantity-per-serve---total---nip":                  "fat",
	"fat-saturated-quantity-per-100g---total---nip":         "fat-saturated",
	"fat-saturated-quantity-per-serve---total---nip":        "fat-saturated",
	"fat-trans-quantity-per-100g---total---nip":             "trans-fat",
	"fat-trans-quantity-per-serve---total---nip":            "trans-fat",
	"fat-polyunsaturated-quantity-per-100g---total---nip":   "polyunsaturated-fat",
	"fat-polyunsaturated-quantity-per-serve---total---nip":  "polyunsaturated-fat",
	"fat-monounsaturated-quantity-per-100g---total---nip":   "monounsaturated-fat",
	"fat-monounsaturated-quantity-per-serve---total---nip":  "monounsaturated-fat",
	"protein-quantity-per-100g---total---nip":               "protein",
	"protein-quantity-per-serve---total---nip":              "protein",
	"proteins":                                              "protein",
	"fibre-quantity-per-100g---total---nip":                 "fiber",
	"fibre-quantity-per-serve---total---nip":                "fiber",
	"sugars-quantity-per-100g---total---nip":                "carbohydrates-sugars",
	"sugars-quantity-per-serve---total---nip":               "carbohydrates-sugars",
}

var labelCleanupMap = map[string]string{
	"Fat Saturated Quantity Per 100g - Total - NIP": "Saturated Fat",
	"Fat Saturated Quantity Per Serve - Total - NIP": "Saturated Fat",
	"Fat Quantity Per 100g - Total - NIP":            "Fat",
	"Fat Quantity Per Serve - Total - NIP":           "Fat",
	"Carbohydrate Quantity Per 100g - Total - NIP":   "Carbohydrate",
	"Carbohydrate Quantity Per Serve - Total - NIP":  "Carbohydrate",
	"Protein Quantity Per 100g - Total - NIP":        "Protein",
	"Protein Quantity Per Serve - Total - NIP":       "Protein",
	"Sugars Quantity Per 100g - Total - NIP":         "Sugars",
	"Sugars Quantity Per Serve - Total - NIP":        "Sugars",
	"Fibre Quantity Per 100g - Total - NIP":          "Fibre",
	"Fibre Quantity Per Serve - Total - NIP":         "Fibre",
}

// CanonicaliseNutrition merges verbose keys, cleans labels, derives kcal from
// kJ and prunes empty nodes.
func CanonicaliseNutrition(nutrition map[string]*NutritionNode) map[string]*NutritionNode {
	out := make(map[string]*NutritionNode, len(nutrition))
	for key, node := range nutrition {
		if node == nil {
			continue
		}
		k := key
		if canon, ok := canonKeyMap[key]; ok {
			k = canon
		}

		label := node.Label
		if clean, ok := labelCleanupMap[label]; ok {
			label = clean
		}

		merged := out[k]
		if merged == nil {
			merged = &NutritionNode{Label: label}
			out[k] = merged
		}
		if node.Per100 != nil {
			merged.Per100 = node.Per100
		}
		if node.PerServing != nil {
			merged.PerServing = node.PerServing
		}
	}

	if kj, ok := out["energy-kj"]; ok && kj.Per100 != nil && kj.Per100.Value != nil {
		kcal := math.Round(*kj.Per100.Value / 4.184)
		out["energy-kcal"] = &NutritionNode{
			Label:  "Energy (kcal)",
			Per100: &NutrientValue{Value: &kcal, Unit: "kcal"},
		}
	}

	for k, node := range out {
		if node.Per100 == nil && node.PerServing == nil {
			delete(out, k)
		}
	}
	return out
}

// ------------------------------------------------------------------
// Allergens & claims
// ------------------------------------------------------------------

var knownAllergens = []string{
	"milk", "egg", "soy", "wheat", "gluten", "peanut", "tree_nut", "fish", "shellfish", "sesame",
}

func normaliseTag(t string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(t)), " ")
}

// SplitAllergensAndClaims reads free-text allergen and lifestyle statements
// into structured lists: allergens present, "x free" claims and dietary tags.
func SplitAllergensAndClaims(allergenText, lifestyleText string) (present, freeFrom, dietaryTags []string) {
	seenPresent := map[string]bool{}
	seenFree := map[string]bool{}

	if allergenText != "" {
		for _, t := range strings.Split(strings.ReplaceAll(allergenText, ";", ","), ",") {
			tl := normaliseTag(strings.ToLower(t))
			if tl == "" {
				continue
			}
			if strings.Contains(tl, "contains") {
				for _, a := range knownAllergens {
					if strings.Contains(tl, strings.ReplaceAll(a, "_", " ")) && !seenPresent[a] {
						seenPresent[a] = true
						present = append(present, a)
					}
				}
			}
			if strings.Contains(tl, "free") && !seenFree[tl] {
				seenFree[tl] = true
				freeFrom = append(freeFrom, tl)
			}
		}
	}

	seenTag := map[string]bool{}
	if lifestyleText != "" {
		for _, t := range strings.Split(lifestyleText, ",") {
			tag := normaliseTag(t)
			if tag != "" && !seenTag[tag] {
				seenTag[tag] = true
				dietaryTags = append(dietaryTags, tag)
			}
		}
	}
	return present, freeFrom, dietaryTags
}

// GuessNutritionBasis decides per_100g vs per_100ml: drinks (ml serving unit
// or a ml/l package size) are per_100ml.
func GuessNutritionBasis(packageSize, servingUnit string) string {
	su := strings.ToLower(servingUnit)
	if su == "ml" || su == "l" {
		return "per_100ml"
	}
	if packageSize != "" && mlSizeRe.MatchString(strings.ToLower(packageSize)) {
		return "per_100ml"
	}
	return "per_100g"
}

// ------------------------------------------------------------------
// Woolworths search
// ------------------------------------------------------------------

type wooliesAttributes struct {
	NutritionalInformation       string `json:"nutritionalinformation"`
	HealthStarRating             string `json:"healthstarrating"`
	AllergyStatement             string `json:"allergystatement"`
	AllergenContains             string `json:"allergencontains"`
	LifestyleAndDietaryStatement string `json:"lifestyleanddietarystatement"`
	Ingredients                  string `json:"ingredients"`
	SapCategoryName              string `json:"sapcategoryname"`
	SapSubCategoryName           string `json:"sapsubcategoryname"`
	CountryOfOrigin              string `json:"countryoforigin"`
}

type wooliesProduct struct {
	Barcode            string            `json:"Barcode"`
	Stockcode          int64             `json:"Stockcode"`
	DisplayName        string            `json:"DisplayName"`
	Name               string            `json:"Name"`
	Brand              string            `json:"Brand"`
	Description        string            `json:"Description"`
	PackageSize        string            `json:"PackageSize"`
	Price              *float64          `json:"Price"`
	InstorePrice       *float64          `json:"InstorePrice"`
	WasPrice           *float64          `json:"WasPrice"`
	IsOnSpecial        bool              `json:"IsOnSpecial"`
	InstoreIsOnSpecial bool              `json:"InstoreIsOnSpecial"`
	CupPrice           *float64          `json:"CupPrice"`
	CupMeasure         string            `json:"CupMeasure"`
	LargeImageFile     string            `json:"LargeImageFile"`
	MediumImageFile    string            `json:"MediumImageFile"`
	SmallImageFile     string            `json:"SmallImageFile"`
	IsInStock          bool              `json:"IsInStock"`
	AdditionalAttrs    wooliesAttributes `json:"AdditionalAttributes"`
}

type wooliesSearchResponse struct {
	Products []struct {
		Products []wooliesProduct `json:"Products"`
	} `json:"Products"`
}

// Search queries Woolworths and returns normalized, de-duplicated products.
// Results are cached for 12 hours when Redis is wired.
func (s *WooliesService) Search(ctx context.Context, query string) ([]NormalizedProduct, error) {
	cacheKey := "woolies:" + strings.ToLower(query)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached []NormalizedProduct
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	data, err := s.getWithRetry(ctx, query, 3)
	if err != nil {
		return nil, err
	}

	var results []NormalizedProduct
	for _, bucket := range data.Products {
		for _, p := range bucket.Products {
			norm := NormalizeWooliesItem(p)
			if norm.Name != "" {
				results = append(results, norm)
			}
		}
	}

	// de-duplicate by barcode/stockcode; drop unidentified items
	seen := map[string]bool{}
	deduped := make([]NormalizedProduct, 0, len(results))
	for _, r := range results {
		key := r.Barcode
		if key == "" {
			key = r.Stockcode
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(deduped); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, wooliesCacheTTL).Err(); err != nil {
				s.log.Warn("search cache write failed", zap.Error(err))
			}
		}
	}
	return deduped, nil
}

func (s *WooliesService) getWithRetry(ctx context.Context, query string, retries int) (*wooliesSearchResponse, error) {
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		u := fmt.Sprintf("%s?searchTerm=%s", s.searchURL, url.QueryEscape(query))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Woolworths request: %w", err)
		}
		// Endpoint rejects non-browser user agents.
		req.Header.Set("User-Agent",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to call Woolworths search: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read Woolworths response: %w", err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("woolworths search error %d: %s", resp.StatusCode, string(body))
			continue
		}

		var data wooliesSearchResponse
		if err := json.Unmarshal(body, &data); err != nil {
			lastErr = fmt.Errorf("failed to parse Woolworths JSON: %w", err)
			continue
		}
		return &data, nil
	}
	return nil, lastErr
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// NormalizeWooliesItem maps one raw Woolworths product card to the universal
// normalized shape.
func NormalizeWooliesItem(p wooliesProduct) NormalizedProduct {
	attrs := p.AdditionalAttrs
	nutrition := ParseNIPAttributes(attrs.NutritionalInformation)

	// serving info lives in the same NIP blob
	var servingSize NutrientValue
	var servingsPerPack *float64
	if attrs.NutritionalInformation != "" {
		var nip nipPayload
		if err := json.Unmarshal([]byte(attrs.NutritionalInformation), &nip); err == nil {
			for _, a := range nip.Attributes {
				nameLC := strings.ToLower(a.Name)
				if strings.HasPrefix(nameLC, "serving size") && servingSize.Value == nil {
					servingSize = ParseServingSize(a.Value)
				}
				if strings.HasPrefix(nameLC, "servings per pack") && servingsPerPack == nil {
					if f, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64); err == nil {
						servingsPerPack = &f
					}
				}
			}
		}
	}

	allergensText := attrs.AllergyStatement
	if allergensText == "" {
		allergensText = attrs.AllergenContains
	}
	allergensPresent, freeFromClaims, dietaryTags := SplitAllergensAndClaims(allergensText, attrs.LifestyleAndDietaryStatement)

	name := p.DisplayName
	if name == "" {
		name = p.Name
	}
	price := p.InstorePrice
	if price == nil {
		price = p.Price
	}
	imageURL := p.LargeImageFile
	if imageURL == "" {
		imageURL = p.MediumImageFile
	}
	if imageURL == "" {
		imageURL = p.SmallImageFile
	}

	item := NormalizedProduct{
		Barcode:          p.Barcode,
		Name:             name,
		Brand:            p.Brand,
		Description:      stripHTML(p.Description),
		Size:             p.PackageSize,
		PriceCurrent:     price,
		PriceWas:         p.WasPrice,
		Currency:         defaultCurrency,
		IsOnSpecial:      p.IsOnSpecial || p.InstoreIsOnSpecial,
		CupPriceValue:    p.CupPrice,
		CupPriceUnit:     canonCupUnit(p.CupMeasure),
		Category:         attrs.SapCategoryName,
		Subcategory:      attrs.SapSubCategoryName,
		CountryOfOrigin:  attrs.CountryOfOrigin,
		Ingredients:      attrs.Ingredients,
		AllergensRaw:     allergensText,
		AllergensPresent: allergensPresent,
		FreeFromClaims:   freeFromClaims,
		DietaryTags:      dietaryTags,
		NutritionBasis:   GuessNutritionBasis(p.PackageSize, servingSize.Unit),
		ServingSizeValue: servingSize.Value,
		ServingSizeUnit:  servingSize.Unit,
		ServingsPerPack:  servingsPerPack,
		ImageURL:         imageURL,
		HealthStar:       attrs.HealthStarRating,
		IsInStock:        p.IsInStock,
		PrimarySource:    "woolworths",
	}

	if p.Stockcode != 0 {
		item.Stockcode = strconv.FormatInt(p.Stockcode, 10)
		item.ProductURL = fmt.Sprintf("https://www.woolworths.com.au/shop/productdetails/%d", p.Stockcode)
		if item.Barcode == "" {
			item.Barcode = item.Stockcode
		}
	}

	for _, t := range item.DietaryTags {
		item.DietaryTagSlugs = append(item.DietaryTagSlugs, strings.ReplaceAll(strings.ToLower(t), " ", "-"))
	}

	// back-calc missing per_100 from per_serving where serving size is known
	if servingSize.Value != nil && *servingSize.Value > 0 &&
		(servingSize.Unit == "g" || servingSize.Unit == "ml") {
		factor := 100.0 / *servingSize.Value
		for key, node := range nutrition {
			if (node.Per100 == nil || node.Per100.Value == nil) &&
				node.PerServing != nil && node.PerServing.Value != nil {
				v := roundTo(*node.PerServing.Value*factor, 2)
				unit := node.PerServing.Unit
				if unit == "" {
					unit = defaultNutrientUnits[key]
				}
				node.Per100 = &NutrientValue{Value: &v, Unit: unit}
			}
		}
	}

	nutrition = CanonicaliseNutrition(nutrition)

	// rounding policy: energy 0 dp, everything else 2 dp
	for k, node := range nutrition {
		for _, nv := range []*NutrientValue{node.Per100, node.PerServing} {
			if nv == nil || nv.Value == nil {
				continue
			}
			if k == "energy-kj" || k == "energy-kcal" {
				v := math.Round(*nv.Value)
				nv.Value = &v
			} else {
				v := roundTo(*nv.Value, 2)
				nv.Value = &v
			}
		}
	}
	item.Nutrition = nutrition

	return item
}
