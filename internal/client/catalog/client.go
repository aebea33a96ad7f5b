// Package catalog reads recipes from TheCocktailDB public API.
//
// Only three endpoints are used: random.php, search.php?s= and lookup.php?i=.
// The client does no retries and no caching.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/easydrink/internal/client/models"
	"github.com/dmitrijs2005/easydrink/internal/logging"
	"golang.org/x/sync/errgroup"
)

const DefaultBaseURL = "https://www.thecocktaildb.com/api/json/v1/1"

type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// New returns a client for baseURL. A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client, log logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, log: log}
}

// RandomBatch is the result of RandomDrinks. Failed counts the requests that
// produced nothing.
type RandomBatch struct {
	Drinks []models.Drink
	Failed int
}

// envelope is the upstream response shape. "drinks" is null, or sometimes a
// string, when nothing matched.
type envelope struct {
	Drinks json.RawMessage `json:"drinks"`
}

func decodeDrinks[T any](env envelope) ([]T, error) {
	raw := bytes.TrimSpace(env.Drinks)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("catalog: decode drinks: %w", err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog %s: decode: %w", path, err)
	}
	return nil
}

// RandomDrinks issues count random.php requests concurrently. Results keep
// request order with duplicate IDs removed. Failed requests are dropped and
// counted; the batch is never nil.
func (c *Client) RandomDrinks(ctx context.Context, count int) *RandomBatch {
	batch := &RandomBatch{Drinks: []models.Drink{}}
	if count <= 0 {
		return batch
	}

	slots := make([]*models.Drink, count)
	var (
		mu     sync.Mutex
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			var env envelope
			err := c.get(gctx, "random.php", nil, &env)
			var drinks []models.Drink
			if err == nil {
				drinks, err = decodeDrinks[models.Drink](env)
			}
			if err != nil || len(drinks) == 0 {
				if err != nil {
					c.log.Warn(gctx, "random drink request failed", "error", err)
				}
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			slots[i] = &drinks[0]
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{}, count)
	for _, d := range slots {
		if d == nil {
			continue
		}
		if _, dup := seen[d.IDDrink]; dup {
			continue
		}
		seen[d.IDDrink] = struct{}{}
		batch.Drinks = append(batch.Drinks, *d)
	}
	batch.Failed = failed
	return batch
}

// SearchDrinks looks recipes up by name. An empty term yields an empty result
// without touching the network.
func (c *Client) SearchDrinks(ctx context.Context, term string) ([]models.Drink, error) {
	if strings.TrimSpace(term) == "" {
		return []models.Drink{}, nil
	}

	var env envelope
	if err := c.get(ctx, "search.php", url.Values{"s": {term}}, &env); err != nil {
		return []models.Drink{}, err
	}
	drinks, err := decodeDrinks[models.Drink](env)
	if err != nil {
		return []models.Drink{}, err
	}
	if drinks == nil {
		return []models.Drink{}, nil
	}
	return drinks, nil
}

// DrinkByID returns nil, nil when the catalog has no recipe with that id.
func (c *Client) DrinkByID(ctx context.Context, id string) (*models.DrinkDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}

	var env envelope
	if err := c.get(ctx, "lookup.php", url.Values{"i": {id}}, &env); err != nil {
		return nil, err
	}
	details, err := decodeDrinks[models.DrinkDetail](env)
	if err != nil || len(details) == 0 {
		return nil, err
	}
	return &details[0], nil
}
