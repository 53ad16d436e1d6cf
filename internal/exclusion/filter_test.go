package exclusion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/memescan/internal/model"
)

func TestFilter_BlocksKnownStablecoinTicker(t *testing.T) {
	f := New(nil)
	m := &model.TokenMetrics{Address: "a", Ticker: "USDC", Name: "USD Coin", Price: decimal.NewFromFloat(1.0)}
	assert.True(t, f.IsExcluded(m))
}

func TestFilter_BlocksLPTokenPattern(t *testing.T) {
	f := New(nil)
	m := &model.TokenMetrics{Address: "b", Ticker: "SOL/USDC-LP-1", Name: "SOL/USDC LP"}
	assert.True(t, f.IsExcluded(m))
}

func TestFilter_BlocksStablecoinByPriceBandHeuristic(t *testing.T) {
	f := New(nil)
	m := &model.TokenMetrics{Address: "c", Ticker: "STBL", Name: "Definitely Stable Dollar", Price: decimal.NewFromFloat(1.02)}
	assert.True(t, f.IsExcluded(m))
}

func TestFilter_AllowsOrdinaryMemecoin(t *testing.T) {
	f := New(nil)
	m := &model.TokenMetrics{Address: "d", Ticker: "PEPE2", Name: "Pepe Two", Price: decimal.NewFromFloat(0.00002)}
	assert.False(t, f.IsExcluded(m))
}

func TestFilter_BlocksStaticBlocklistAddress(t *testing.T) {
	f := New([]model.TokenAddress{"blocked-addr"})
	m := &model.TokenMetrics{Address: "blocked-addr", Ticker: "XYZ", Name: "Xyz"}
	assert.True(t, f.IsExcluded(m))
}

func TestFilter_DefaultBlocklist_BlocksKnownMintAddress(t *testing.T) {
	f := New(DefaultBlocklist())
	m := &model.TokenMetrics{Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Ticker: "WEIRD", Name: "Not actually USDC by name"}
	assert.True(t, f.IsExcluded(m))
}
