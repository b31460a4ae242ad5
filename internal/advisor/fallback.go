package advisor

import (
	"strings"

	"github.com/centavoapp/centavo/internal/model"
)

// keywordRule maps merchant keywords found in a description to keywords
// looked up in the user's own category names.
type keywordRule struct {
	triggers []string
	targets  []string
}

// Curated merchant dictionary, ordered by specificity. Health before
// supermarkets so "farmacity" never lands in groceries.
var keywordRules = []keywordRule{
	{
		triggers: []string{"farmacia", "farmacity", "osde", "swiss", "doctor"},
		targets:  []string{"salud", "farmacia"},
	},
	{
		triggers: []string{"coto", "carrefour", "jumbo", "dia%", "vea", "vital", "changomas", "super"},
		targets:  []string{"supermercado", "comida", "alimentos"},
	},
	{
		triggers: []string{"uber", "cabify", "didi", "ypf", "shell", "axion", "peaje"},
		targets:  []string{"transporte", "auto", "movilidad"},
	},
	{
		triggers: []string{"rappi", "pedidos", "mcdonald", "burger", "starbucks", "cafe", "mostaza", "tostado"},
		targets:  []string{"salidas", "delivery", "comida", "restaurantes"},
	},
	{
		triggers: []string{"zara", "nike", "adidas", "shopping", "prune", "sporting", "dexter", "moov"},
		targets:  []string{"ropa", "vestimenta", "compras"},
	},
	{
		triggers: []string{"edesur", "edenor", "metrogas", "movistar", "personal", "claro", "fibertel", "telecentro", "flow"},
		targets:  []string{"servicios", "hogar", "luz", "gas"},
	},
	{
		triggers: []string{"netflix", "spotify", "youtube", "prime", "hbo", "steam"},
		targets:  []string{"suscripciones", "ocio"},
	},
}

// FallbackCategory classifies a description against the user's categories
// without the oracle: first an exact category-name substring match, then the
// curated keyword rules, else 0 (uncategorized). Deterministic by
// construction.
func FallbackCategory(description string, categories []model.Category) int64 {
	desc := strings.ToLower(description)

	for _, c := range categories {
		if strings.Contains(desc, strings.ToLower(c.Name)) {
			return c.ID
		}
	}

	for _, rule := range keywordRules {
		if !containsAny(desc, rule.triggers) {
			continue
		}
		if id := categoryByKeywords(categories, rule.targets); id != 0 {
			return id
		}
		// The rule matched but the user has no matching category.
		return 0
	}

	return 0
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func categoryByKeywords(categories []model.Category, keywords []string) int64 {
	for _, c := range categories {
		name := strings.ToLower(c.Name)
		for _, k := range keywords {
			if strings.Contains(name, k) {
				return c.ID
			}
		}
	}
	return 0
}
