package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pageza/mealsearch/backend/internal/types"
)

// maxResponseBytes caps how much of an upstream body is read
const maxResponseBytes = 4 << 20

// mealDBResponse is the envelope every TheMealDB v1 endpoint returns.
// Meals is null when nothing matched.
type mealDBResponse struct {
	Meals []mealDBMeal `json:"meals"`
}

type mealDBMeal struct {
	IDMeal          string  `json:"idMeal"`
	StrMeal         *string `json:"strMeal"`
	StrMealThumb    *string `json:"strMealThumb"`
	StrInstructions *string `json:"strInstructions"`
}

func (m mealDBMeal) toRecipe() types.Recipe {
	return types.Recipe{
		ID:           m.IDMeal,
		Name:         m.StrMeal,
		ImageURL:     m.StrMealThumb,
		Instructions: m.StrInstructions,
	}
}

// MealDBClient talks to the TheMealDB JSON API
type MealDBClient struct {
	baseURL *url.URL
	client  *http.Client
}

// NewMealDBClient creates a client rooted at baseURL. connectTimeout bounds
// dialing and the TLS handshake, readTimeout bounds waiting for the response.
func NewMealDBClient(baseURL string, connectTimeout, readTimeout time.Duration) (*MealDBClient, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be absolute", baseURL)
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
	}

	return &MealDBClient{
		baseURL: u,
		client: &http.Client{
			Transport: transport,
			Timeout:   connectTimeout + readTimeout,
		},
	}, nil
}

// SearchRecipes returns every recipe whose name matches query. A query with
// no matches yields an empty, non-nil slice.
func (c *MealDBClient) SearchRecipes(ctx context.Context, query string) ([]types.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	resp, err := c.get(ctx, "search", "search.php", url.Values{"s": {query}})
	if err != nil {
		return nil, err
	}

	recipes := make([]types.Recipe, 0, len(resp.Meals))
	for _, meal := range resp.Meals {
		recipes = append(recipes, meal.toRecipe())
	}
	log.Printf("[MealDBClient] search %q returned %d recipes", query, len(recipes))
	return recipes, nil
}

// LookupRecipe fetches a single recipe by its id
func (c *MealDBClient) LookupRecipe(ctx context.Context, id string) (*types.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRecipeNotFound
	}

	resp, err := c.get(ctx, "lookup", "lookup.php", url.Values{"i": {id}})
	if err != nil {
		return nil, err
	}
	if len(resp.Meals) == 0 {
		return nil, ErrRecipeNotFound
	}

	recipe := resp.Meals[0].toRecipe()
	return &recipe, nil
}

// RandomRecipe fetches one random recipe
func (c *MealDBClient) RandomRecipe(ctx context.Context) (*types.Recipe, error) {
	resp, err := c.get(ctx, "random", "random.php", nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Meals) == 0 {
		return nil, ErrRecipeNotFound
	}

	recipe := resp.Meals[0].toRecipe()
	return &recipe, nil
}

func (c *MealDBClient) get(ctx context.Context, op, endpoint string, params url.Values) (*mealDBResponse, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: endpoint})
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[MealDBClient] %s request failed: %v", op, err)
		return nil, &NetworkError{Op: op, URL: u.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, URL: u.String(), Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[MealDBClient] %s request failed with status %d", op, resp.StatusCode)
		return nil, &NetworkError{Op: op, URL: u.String(), StatusCode: resp.StatusCode}
	}

	var result mealDBResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ParseError{Op: op, Err: err}
	}
	return &result, nil
}
