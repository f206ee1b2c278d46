package finnhub

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	xhttp "FinCast/pkg/http"
)

// RESTClient fetches spot quotes over the Finnhub REST API. Used to seed
// history for symbols with no stored observations yet.
type RESTClient struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
}

// NewRESTClient creates a Finnhub REST client.
func NewRESTClient(apiKey, baseURL string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// quote response schema: c = current price, t = unix seconds.
type fhQuote struct {
	Current   float64 `json:"c"`
	Timestamp int64   `json:"t"`
}

// Quote fetches the current quote for symbol.
func (c *RESTClient) Quote(ctx context.Context, symbol string) (*models.Observation, error) {
	var q fhQuote
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/quote",
		QueryParams: map[string]string{
			"symbol": symbol,
			"token":  c.apiKey,
		},
	}, &q)
	if err != nil {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	if q.Current == 0 {
		return nil, fmt.Errorf("finnhub quote %s: empty quote", symbol)
	}

	ts := time.Unix(q.Timestamp, 0)
	if q.Timestamp == 0 {
		ts = time.Now()
	}
	return &models.Observation{
		Symbol:    symbol,
		Price:     q.Current,
		Timestamp: ts,
	}, nil
}
