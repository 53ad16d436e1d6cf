package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/providers/dexagg"
)

func TestSocialBonus_FullyVerifiedProfile_CapsAt25(t *testing.T) {
	info := dexagg.TokenInfo{
		HasPaidProfile: true,
		BoostCount:     10,
		Description:    "a token",
		Links: dexagg.SocialLinks{
			Twitter: "https://x.com/foo", Telegram: "https://t.me/foo",
			Website: "https://foo.xyz", Discord: "https://discord.gg/foo",
		},
	}
	assert.Equal(t, 25.0, SocialBonus(info))
}

func TestSocialBonus_NoPresence_Zero(t *testing.T) {
	assert.Equal(t, 0.0, SocialBonus(dexagg.TokenInfo{}))
}

func TestSocialBonus_TwitterOnly(t *testing.T) {
	info := dexagg.TokenInfo{Links: dexagg.SocialLinks{Twitter: "https://x.com/foo"}}
	assert.Equal(t, 7.0, SocialBonus(info))
}

func TestApplySocialBonus_CapsAdjustedTotalAt100(t *testing.T) {
	out := &model.OnChainScore{Total: 90}
	ApplySocialBonus(out, 25)
	assert.Equal(t, 25.0, out.SocialBonus)
	assert.Equal(t, 100.0, out.AdjustedTotal)
}

func TestApplySocialBonus_BelowCapAddsDirectly(t *testing.T) {
	out := &model.OnChainScore{Total: 50}
	ApplySocialBonus(out, 10)
	assert.Equal(t, 60.0, out.AdjustedTotal)
}
