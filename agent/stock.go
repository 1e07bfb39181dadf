package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hupe1980/agentrouter/backend"
	"github.com/hupe1980/agentrouter/core"
)

// Quote is a point-in-time market quote for a symbol.
type Quote struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// QuoteProvider fetches current market data for a ticker symbol.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// YahooQuoteProvider fetches quotes from the public Yahoo Finance chart
// endpoint.
type YahooQuoteProvider struct {
	client *resty.Client
}

var _ QuoteProvider = (*YahooQuoteProvider)(nil)

// NewYahooQuoteProvider constructs a provider with a configured resty client.
func NewYahooQuoteProvider() *YahooQuoteProvider {
	client := resty.New().
		SetBaseURL("https://query1.finance.yahoo.com").
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "agentrouter")
	return &YahooQuoteProvider{client: client}
}

// Quote implements QuoteProvider.
func (p *YahooQuoteProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var out struct {
		Chart struct {
			Result []struct {
				Meta struct {
					Symbol             string  `json:"symbol"`
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					Currency           string  `json:"currency"`
				} `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote %s: status %d", symbol, resp.StatusCode())
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("quote %s: no result", symbol)
	}

	meta := out.Chart.Result[0].Meta
	return &Quote{Symbol: meta.Symbol, Price: meta.RegularMarketPrice, Currency: meta.Currency}, nil
}

// StockAgent is the stock information specialist. Before the completion call
// it extracts ticker symbols from the input and injects current quotes into
// the prompt so the model grounds its answer in live data. Quote failures
// degrade to a plain completion.
type StockAgent struct {
	*ModelAgent
	quotes QuoteProvider
}

var _ core.Agent = (*StockAgent)(nil)

// NewStockAgent creates the stock specialist backed by the given quote
// provider (nil falls back to Yahoo Finance).
func NewStockAgent(b backend.Backend, quotes QuoteProvider, optFns ...func(o *ModelAgentOptions)) *StockAgent {
	if quotes == nil {
		quotes = NewYahooQuoteProvider()
	}
	fns := append([]func(o *ModelAgentOptions){func(o *ModelAgentOptions) {
		o.Description = "Provides stock information, market analysis and price lookups."
		o.Instruction = `You are a stock information assistant specialized in financial analysis. Your role is to:

1. Provide current stock information using the quote data supplied with the request
2. Compare stocks based on key metrics like price, market cap and dividend yield
3. Offer market overviews and insights on market trends
4. Provide basic analysis on stock movements

When quote data is supplied, prefer it over any other source. This is not financial advice and you should say so for investment questions.`
	}}, optFns...)

	return &StockAgent{
		ModelAgent: NewModelAgent("Stock Agent", b, fns...),
		quotes:     quotes,
	}
}

// Respond implements core.Agent with quote enrichment.
func (a *StockAgent) Respond(ctx context.Context, req core.Request) (*core.Response, error) {
	var quoted []string
	for _, symbol := range ExtractSymbols(req.Input) {
		q, err := a.quotes.Quote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: agent %s: %w", core.ErrAgentExecution, a.Name(), ctx.Err())
			}
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%s: %.2f %s", q.Symbol, q.Price, q.Currency))
	}

	var extra string
	if len(quoted) > 0 {
		extra = "Current quotes: " + strings.Join(quoted, "; ")
	}

	resp, err := a.complete(ctx, req, extra)
	if err != nil {
		return nil, err
	}
	out := a.buildResponse(resp)
	if len(quoted) > 0 {
		out.Metadata["quotes"] = quoted
	}
	return out, nil
}

var (
	dollarSymbolRe = regexp.MustCompile(`\$([A-Za-z]{1,5})\b`)
	bareSymbolRe   = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

	// Frequent all-caps tokens that are not tickers.
	symbolStopwords = map[string]bool{
		"I": true, "A": true, "OK": true, "USA": true, "US": true, "EU": true,
		"CEO": true, "IPO": true, "ETF": true, "AI": true, "PE": true, "USD": true,
	}
)

// ExtractSymbols pulls candidate ticker symbols from free text. "$aapl"
// style references always qualify; bare tokens must be 2-5 uppercase letters
// and not a common abbreviation. Order of first appearance is preserved,
// duplicates dropped.
func ExtractSymbols(input string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(sym string) {
		sym = strings.ToUpper(sym)
		if !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}

	for _, m := range dollarSymbolRe.FindAllStringSubmatch(input, -1) {
		add(m[1])
	}
	for _, m := range bareSymbolRe.FindAllString(input, -1) {
		if !symbolStopwords[m] {
			add(m)
		}
	}
	return out
}
