// services/fatsecret_service.go
//
// FatSecret OAuth2 client (client-credentials flow with token caching and
// 401 refresh) plus the enrichment pass that fills nutrient facts the
// retailer search left empty.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"

	"go.uber.org/zap"
)

const (
	fatsecretTokenURL = "https://oauth.fatsecret.com/connect/token"
	fatsecretNLPURL   = "https://platform.fatsecret.com/rest/natural-language-processing/v1"
)

// fatsecretCanonMap translates FatSecret nutrient keys into the canonical
// keys the Woolworths normalizer emits.
var fatsecretCanonMap = map[string]string{
	"calories":            "energy-kcal",
	"carbohydrate":        "carbohydrates",
	"protein":             "protein",
	"fat":                 "fat",
	"saturated_fat":       "fat-saturated",
	"polyunsaturated_fat": "polyunsaturated-fat",
	"monounsaturated_fat": "monounsaturated-fat",
	"cholesterol":         "cholesterol",
	"sodium":              "sodium",
	"potassium":           "potassium",
	"fiber":               "fiber",
	"sugar":               "carbohydrates-sugars",
	"vitamin_a":           "vitamin-a",
	"vitamin_c":           "vitamin-c",
	"calcium":             "calcium",
	"iron":                "iron",
}

// FoodProvenance records which FatSecret food a nutrient reading came from.
type FoodProvenance struct {
	FoodID        string `json:"food_id,omitempty"`
	FoodEntryName string `json:"food_entry_name,omitempty"`
	FoodName      string `json:"food_name,omitempty"`
	FoodType      string `json:"food_type,omitempty"`
	FoodURL       string `json:"food_url,omitempty"`
}

// EnrichmentInfo is attached to a normalized product after enrichment.
type EnrichmentInfo struct {
	SourceFoods []FoodProvenance `json:"source_foods"`
	Method      string           `json:"method"`
	Timestamp   time.Time        `json:"timestamp"`
}

type FatSecretService struct {
	clientID     string
	clientSecret string
	tokenURL     string
	nlpURL       string
	client       *http.Client
	log          *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewFatSecretService() *FatSecretService {
	return &FatSecretService{
		clientID:     os.Getenv("FATSECRET_CLIENT_ID"),
		clientSecret: os.Getenv("FATSECRET_CLIENT_SECRET"),
		tokenURL:     fatsecretTokenURL,
		nlpURL:       fatsecretNLPURL,
		client:       &http.Client{Timeout: 20 * time.Second},
		log:          config.Log,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

func (s *FatSecretService) fetchNewToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	// request full scopes, the server issues the entitled subset
	form.Set("scope", "basic premier nlp")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call FatSecret token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fatsecret token error %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("failed to parse token JSON: %w", err)
	}

	expires := tok.ExpiresIn
	if expires <= 0 {
		expires = 3500
	}

	s.mu.Lock()
	s.accessToken = tok.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(expires-60) * time.Second)
	s.mu.Unlock()

	return tok.AccessToken, nil
}

func (s *FatSecretService) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		tok := s.accessToken
		s.mu.Unlock()
		return tok, nil
	}
	s.mu.Unlock()
	return s.fetchNewToken(ctx)
}

type NLPResult struct {
	FoodResponse []struct {
		FoodID        json.Number `json:"food_id"`
		FoodEntryName string      `json:"food_entry_name"`
		Eaten         struct {
			TotalNutritionalContent map[string]string `json:"total_nutritional_content"`
		} `json:"eaten"`
		Food struct {
			FoodID   json.Number `json:"food_id"`
			FoodName string      `json:"food_name"`
			FoodType string      `json:"food_type"`
			FoodURL  string      `json:"food_url"`
		} `json:"food"`
	} `json:"food_response"`
}

// AnalyzeMealText runs FatSecret's natural-language endpoint over a free-text
// meal or product description.
func (s *FatSecretService) AnalyzeMealText(ctx context.Context, text string) (*NLPResult, error) {
	payload := map[string]interface{}{
		"user_input":        text,
		"include_food_data": true,
		"region":            "US",
		"language":          "en",
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal NLP payload: %w", err)
	}

	do := func(token string) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.nlpURL, bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("failed to create NLP request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		return s.client.Do(req)
	}

	tok, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := do(tok)
	if err != nil {
		return nil, fmt.Errorf("failed to call FatSecret NLP: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// expired token, refresh and retry once
		resp.Body.Close()
		tok, err = s.fetchNewToken(ctx)
		if err != nil {
			return nil, err
		}
		resp, err = do(tok)
		if err != nil {
			return nil, fmt.Errorf("failed to call FatSecret NLP: %w", err)
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read NLP response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fatsecret NLP error %d: %s", resp.StatusCode, string(body))
	}

	var out NLPResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse NLP JSON: %w", err)
	}
	return &out, nil
}

// ExtractNutrients folds an NLP response into canonical per-100 nodes plus
// provenance of the matched foods. Unmapped or non-numeric readings are
// skipped.
func ExtractNutrients(data *NLPResult) (map[string]*NutritionNode, []FoodProvenance) {
	nutrients := make(map[string]*NutritionNode)
	var provenance []FoodProvenance

	if data == nil {
		return nutrients, provenance
	}

	for _, entry := range data.FoodResponse {
		foodID := entry.FoodID.String()
		if foodID == "" {
			foodID = entry.Food.FoodID.String()
		}
		provenance = append(provenance, FoodProvenance{
			FoodID:        foodID,
			FoodEntryName: entry.FoodEntryName,
			FoodName:      entry.Food.FoodName,
			FoodType:      entry.Food.FoodType,
			FoodURL:       entry.Food.FoodURL,
		})

		for k, v := range entry.Eaten.TotalNutritionalContent {
			canonKey, ok := fatsecretCanonMap[k]
			if !ok {
				continue
			}
			val, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}

			unit := defaultNutrientUnits[canonKey]
			if unit == "" {
				unit = "g"
			}
			node := nutrients[canonKey]
			if node == nil {
				node = &NutritionNode{Label: canonKey}
				nutrients[canonKey] = node
			}
			node.Per100 = &NutrientValue{Value: &val, Unit: unit}
		}
	}
	return nutrients, provenance
}

// EnrichProduct patches missing or empty per-100 nutrition on a normalized
// product using the FatSecret NLP reading of its name. Existing readings are
// never overwritten.
func (s *FatSecretService) EnrichProduct(ctx context.Context, product *NormalizedProduct) error {
	name := product.Name
	if name == "" {
		name = product.Description
	}
	if name == "" {
		return nil
	}

	data, err := s.AnalyzeMealText(ctx, name)
	if err != nil {
		return err
	}

	fsNutrients, provenance := ExtractNutrients(data)
	if len(fsNutrients) == 0 {
		s.log.Debug("no FatSecret nutrients found", zap.String("product", name))
		return nil
	}

	if product.Nutrition == nil {
		product.Nutrition = make(map[string]*NutritionNode)
	}

	var added []string
	for key, node := range fsNutrients {
		existing := product.Nutrition[key]
		if existing == nil || existing.Per100 == nil {
			product.Nutrition[key] = node
			added = append(added, key)
		}
	}

	product.Enrichment = &EnrichmentInfo{
		SourceFoods: provenance,
		Method:      "fatsecret_nlp",
		Timestamp:   time.Now().UTC(),
	}

	s.log.Info("product enriched from FatSecret",
		zap.String("product", name),
		zap.Strings("added_keys", added))
	return nil
}
