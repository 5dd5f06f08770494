package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nlpFixture = `{
	"food_response": [
		{
			"food_id": 12345,
			"food_entry_name": "1 cup greek yoghurt",
			"eaten": {
				"total_nutritional_content": {
					"calories": "150",
					"protein": "9.6",
					"sodium": "45",
					"sugar": "4.1",
					"weird_key": "1",
					"fat": "not-a-number"
				}
			},
			"food": {
				"food_id": 12345,
				"food_name": "Greek Yoghurt",
				"food_type": "Generic",
				"food_url": "https://www.fatsecret.com/calories-nutrition/generic/greek-yoghurt"
			}
		}
	]
}`

func newTestFatSecret(t *testing.T, tokenURL, nlpURL string) *FatSecretService {
	t.Helper()
	return &FatSecretService{
		clientID:     "id",
		clientSecret: "secret",
		tokenURL:     tokenURL,
		nlpURL:       nlpURL,
		client:       &http.Client{Timeout: 5 * time.Second},
		log:          zap.NewNop(),
	}
}

func TestAnalyzeMealTextTokenCaching(t *testing.T) {
	var tokenCalls int
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-1", "expires_in": 3600, "token_type": "Bearer",
		}))
	}))
	defer tokenSrv.Close()

	nlpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "greek yoghurt", payload["user_input"])
		_, _ = w.Write([]byte(nlpFixture))
	}))
	defer nlpSrv.Close()

	svc := newTestFatSecret(t, tokenSrv.URL, nlpSrv.URL)
	ctx := context.Background()

	data, err := svc.AnalyzeMealText(ctx, "greek yoghurt")
	require.NoError(t, err)
	require.Len(t, data.FoodResponse, 1)
	assert.Equal(t, "12345", data.FoodResponse[0].FoodID.String())

	// second call reuses the cached token
	_, err = svc.AnalyzeMealText(ctx, "greek yoghurt")
	require.NoError(t, err)
	assert.Equal(t, 1, tokenCalls)
}

func TestAnalyzeMealTextRefreshesOn401(t *testing.T) {
	var tokenCalls int
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok", "expires_in": 3600,
		}))
	}))
	defer tokenSrv.Close()

	var nlpCalls int
	nlpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nlpCalls++
		if nlpCalls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(nlpFixture))
	}))
	defer nlpSrv.Close()

	svc := newTestFatSecret(t, tokenSrv.URL, nlpSrv.URL)
	// pre-seed a token the server will reject
	svc.accessToken = "stale"
	svc.tokenExpiry = time.Now().Add(time.Hour)

	data, err := svc.AnalyzeMealText(context.Background(), "toast")
	require.NoError(t, err)
	require.Len(t, data.FoodResponse, 1)
	assert.Equal(t, 2, nlpCalls)
	assert.Equal(t, 1, tokenCalls, "refreshed exactly once")
}

func TestExtractNutrients(t *testing.T) {
	var data NLPResult
	require.NoError(t, json.Unmarshal([]byte(nlpFixture), &data))

	nutrients, provenance := ExtractNutrients(&data)

	require.Len(t, provenance, 1)
	assert.Equal(t, "12345", provenance[0].FoodID)
	assert.Equal(t, "Greek Yoghurt", provenance[0].FoodName)

	// mapped numeric keys only: weird_key unmapped, fat unparseable
	require.Contains(t, nutrients, "energy-kcal")
	assert.Equal(t, 150.0, *nutrients["energy-kcal"].Per100.Value)
	require.Contains(t, nutrients, "protein")
	assert.Equal(t, 9.6, *nutrients["protein"].Per100.Value)
	require.Contains(t, nutrients, "sodium")
	assert.Equal(t, "mg", nutrients["sodium"].Per100.Unit)
	require.Contains(t, nutrients, "carbohydrates-sugars")
	assert.NotContains(t, nutrients, "weird_key")
	assert.NotContains(t, nutrients, "fat")

	empty, prov := ExtractNutrients(nil)
	assert.Empty(t, empty)
	assert.Empty(t, prov)
}

func TestEnrichProductFillsOnlyMissing(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok", "expires_in": 3600,
		}))
	}))
	defer tokenSrv.Close()
	nlpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(nlpFixture))
	}))
	defer nlpSrv.Close()

	svc := newTestFatSecret(t, tokenSrv.URL, nlpSrv.URL)

	existing := 11.0
	product := &NormalizedProduct{
		Name: "Greek Yoghurt 1kg",
		Nutrition: map[string]*NutritionNode{
			"protein": {
				Label:  "Protein",
				Per100: &NutrientValue{Value: &existing, Unit: "g"},
			},
		},
	}

	require.NoError(t, svc.EnrichProduct(context.Background(), product))

	// retailer reading wins, gaps are filled
	assert.Equal(t, 11.0, *product.Nutrition["protein"].Per100.Value)
	require.Contains(t, product.Nutrition, "energy-kcal")
	assert.Equal(t, 150.0, *product.Nutrition["energy-kcal"].Per100.Value)

	require.NotNil(t, product.Enrichment)
	assert.Equal(t, "fatsecret_nlp", product.Enrichment.Method)
	require.Len(t, product.Enrichment.SourceFoods, 1)
	assert.Equal(t, "Greek Yoghurt", product.Enrichment.SourceFoods[0].FoodName)
}

func TestEnrichProductNoName(t *testing.T) {
	svc := newTestFatSecret(t, "http://unused", "http://unused")
	product := &NormalizedProduct{}
	require.NoError(t, svc.EnrichProduct(context.Background(), product))
	assert.Nil(t, product.Enrichment)
}
