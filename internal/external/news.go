package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/monocle-dev/carbontrack/internal/types"
)

type NewsClient struct {
	cfg    Config
	client *http.Client
}

func NewNewsClient(cfg Config) *NewsClient {
	return &NewsClient{cfg: cfg, client: newHTTPClient(cfg.Timeout)}
}

// Latest returns recent newsdata.io articles mentioning city.
func (n *NewsClient) Latest(ctx context.Context, city string) ([]types.NewsArticle, error) {
	query := url.Values{}
	query.Set("apikey", n.cfg.NewsKey)
	query.Set("q", city)

	var resp types.NewsDataResponse

	if err := getJSON(ctx, n.client, joinURL(n.cfg.NewsURL, "/api/1/latest")+"?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}

	articles := make([]types.NewsArticle, 0, len(resp.Results))

	for _, result := range resp.Results {
		articles = append(articles, types.NewsArticle{
			Title:       orDefault(result.Title, "No Title"),
			Description: orDefault(result.Description, "No Description"),
			Link:        orDefault(result.Link, "#"),
			ImageURL:    result.ImageURL,
		})
	}

	return articles, nil
}

func orDefault(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
