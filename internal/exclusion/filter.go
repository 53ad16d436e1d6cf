// Package exclusion screens out tokens that aren't meaningfully
// "memecoins": stablecoins, LP/staking derivatives, wrapped/bridged
// assets, and known protocol tokens.
package exclusion

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sawpanic/memescan/internal/model"
)

// Filter holds a static address blocklist and a set of name/ticker
// patterns compiled once at construction.
type Filter struct {
	blocklist map[model.TokenAddress]struct{}
	patterns  []*regexp.Regexp
}

var defaultPatterns = []string{
	`usd$`,
	`(?i)usdt|usdc|busd|dai|frax|tusd|usdd`,
	`(?i)^w[a-z]{2,6}$`, // wrapped-asset prefixes like wBTC, wETH
	`(?i)^b[a-z]{2,6}$`, // bridged-asset prefixes
	`/`,
	`-lp-`,
	`(?i)uniswap|raydium|orca|jupiter|serum`,
}

// DefaultBlocklist is the static address blocklist of well-known Solana
// stablecoin mints, wrapped/bridged assets, and LP/staking derivatives,
// kept here rather than in config since
// these addresses don't vary per deployment.
func DefaultBlocklist() []model.TokenAddress {
	return []model.TokenAddress{
		// Solana stablecoins
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", // USDC
		"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", // USDT
		"9vMJfxuKxXBoEa7rM12mYLMwTacLMLDJqHozw96WQL8i", // USDH
		// Wrapped/bridged assets
		"So11111111111111111111111111111111111111112", // wrapped SOL
		"7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj", // wrapped stSOL
		// LP/staking derivatives
		"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", // mSOL (Marinade staked SOL)
		"jSo1ivQkFt7Rxn6qD9RRvV9VsTrX1S7m9KBqE4W4xXh", // jitoSOL (Jito staked SOL)
	}
}

func New(blocklist []model.TokenAddress) *Filter {
	f := &Filter{blocklist: make(map[model.TokenAddress]struct{}, len(blocklist))}
	for _, a := range blocklist {
		f.blocklist[a] = struct{}{}
	}
	for _, p := range defaultPatterns {
		f.patterns = append(f.patterns, regexp.MustCompile(p))
	}
	return f
}

// IsExcluded reports whether m should be dropped from the pipeline before
// any scoring work happens.
func (f *Filter) IsExcluded(m *model.TokenMetrics) bool {
	if m == nil {
		return false
	}
	if _, ok := f.blocklist[m.Address]; ok {
		return true
	}

	combined := strings.ToLower(m.Ticker + " " + m.Name)
	for _, p := range f.patterns {
		if p.MatchString(combined) {
			return true
		}
	}

	return f.looksLikeStablecoin(m, combined)
}

var stableKeyword = regexp.MustCompile(`(?i)usd|stable|peg|dollar`)

func (f *Filter) looksLikeStablecoin(m *model.TokenMetrics, combined string) bool {
	if m.Price.IsZero() {
		return false
	}
	lower := decimal.NewFromFloat(0.95)
	upper := decimal.NewFromFloat(1.05)
	if m.Price.LessThan(lower) || m.Price.GreaterThan(upper) {
		return false
	}
	return stableKeyword.MatchString(combined)
}
