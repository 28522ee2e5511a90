// Package quiz turns scent quiz votes into fragrance recommendations.
package quiz

import (
	"strings"

	"github.com/coteroyale/storefront/internal/models"
)

// MaxWinners caps how many fragrances are recommended.
const MaxWinners = 2

// tieOrder is the order tied families are listed in.
var tieOrder = []models.FragranceType{models.FragranceTerra, models.FragranceAqua, models.FragranceIgnis}

func count(v models.Votes, t models.FragranceType) int {
	switch t {
	case models.FragranceTerra:
		return v.Terra
	case models.FragranceIgnis:
		return v.Ignis
	case models.FragranceAqua:
		return v.Aqua
	}
	return 0
}

// Winners returns the families with the most votes, at most MaxWinners of them, each
// matched to the first product whose title mentions the family name.
func Winners(votes models.Votes, products []models.ProductRecord) []models.Winner {
	top := max(votes.Terra, votes.Ignis, votes.Aqua)

	winners := make([]models.Winner, 0, MaxWinners)
	for _, t := range tieOrder {
		if len(winners) == MaxWinners {
			break
		}
		if count(votes, t) != top {
			continue
		}

		w := models.Winner{FragranceType: t, Title: string(t)}
		if p, ok := match(t, products); ok {
			if p.Title != "" {
				w.Title = p.Title
			}
			w.UID = p.UID
		}
		winners = append(winners, w)
	}
	return winners
}

func match(t models.FragranceType, products []models.ProductRecord) (models.ProductRecord, bool) {
	needle := strings.ToLower(string(t))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			return p, true
		}
	}
	return models.ProductRecord{}, false
}
