package score

import (
	"strings"

	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/providers/dexagg"
)

const maxSocialBonus = 25.0

// SocialBonus derives a 0..25 bonus from verified social presence and
// listing completeness, added on top of OnChainScore.Total to produce
// AdjustedTotal.
func SocialBonus(info dexagg.TokenInfo) float64 {
	bonus := 0.0
	if strings.TrimSpace(info.Links.Twitter) != "" {
		bonus += 7
	}
	if strings.TrimSpace(info.Links.Telegram) != "" {
		bonus += 4
	}
	if strings.TrimSpace(info.Links.Website) != "" {
		bonus += 3
	}
	if strings.TrimSpace(info.Links.Discord) != "" {
		bonus += 1
	}
	if info.HasPaidProfile {
		bonus += 5
	}
	boostBonus := float64(info.BoostCount)
	if boostBonus > 3 {
		boostBonus = 3
	}
	bonus += boostBonus
	if strings.TrimSpace(info.Description) != "" {
		bonus += 2
	}

	if bonus < 0 {
		bonus = 0
	}
	if bonus > maxSocialBonus {
		bonus = maxSocialBonus
	}
	return bonus
}

// ApplySocialBonus sets s.SocialBonus and s.AdjustedTotal, capping the
// adjusted total at 100.
func ApplySocialBonus(s *model.OnChainScore, bonus float64) {
	s.SocialBonus = bonus
	adjusted := s.Total + bonus
	if adjusted > 100 {
		adjusted = 100
	}
	s.AdjustedTotal = adjusted
}
