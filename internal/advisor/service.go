// Package advisor provides AI-assisted categorization and spending advice
// with a deterministic keyword fallback when no oracle is configured or the
// oracle misbehaves.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/service"
)

// maxCategorizeBatch caps how many descriptions go into a single oracle
// prompt.
const maxCategorizeBatch = 50

// Service answers categorization and advice questions for a user.
type Service struct {
	store  service.Storage
	client Client
}

// NewService creates an advisor service. client may be nil, in which case
// only the keyword fallback is used for categorization and MonthlyAdvice
// reports unavailability.
func NewService(store service.Storage, client Client) *Service {
	return &Service{store: store, client: client}
}

// CategorizeDescriptions maps each description to a category ID owned by the
// user. The oracle is consulted when configured; on any oracle failure the
// whole batch falls back to keyword matching, so the method itself never
// fails for oracle reasons. A 0 in the result means uncategorized.
func (s *Service) CategorizeDescriptions(ctx context.Context, userID int64, descriptions []string) ([]int64, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	if len(descriptions) == 0 {
		return nil, nil
	}

	if s.client != nil {
		// The oracle sees at most one batch; overflow rows take the
		// keyword path.
		batch := descriptions
		if len(batch) > maxCategorizeBatch {
			batch = batch[:maxCategorizeBatch]
		}
		oracleIDs, err := s.categorizeWithOracle(ctx, categories, batch)
		if err == nil {
			ids := make([]int64, len(descriptions))
			copy(ids, oracleIDs)
			for i := len(batch); i < len(descriptions); i++ {
				ids[i] = FallbackCategory(descriptions[i], categories)
			}
			return ids, nil
		}
		slog.Warn("oracle categorization failed, using keyword fallback",
			"error", err,
			"descriptions", len(descriptions))
	}

	ids := make([]int64, len(descriptions))
	for i, d := range descriptions {
		ids[i] = FallbackCategory(d, categories)
	}
	return ids, nil
}

func (s *Service) categorizeWithOracle(ctx context.Context, categories []model.Category, descriptions []string) ([]int64, error) {
	valid := make(map[int64]bool, len(categories))
	var catList strings.Builder
	for _, c := range categories {
		valid[c.ID] = true
		fmt.Fprintf(&catList, "%d:%s\n", c.ID, c.Name)
	}

	prompt := fmt.Sprintf(`Sos un clasificador de movimientos bancarios argentinos.
Categorías disponibles (id:nombre):
%s
Asigná a cada descripción el id de la categoría más probable, o 0 si ninguna aplica.
Respondé SOLO con un array JSON de números, uno por descripción, en el mismo orden.

Descripciones:
%s`, catList.String(), strings.Join(descriptions, " | "))

	raw, err := s.client.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ids, err := parseIDArray(raw)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(descriptions) {
		return nil, fmt.Errorf("oracle returned %d ids for %d descriptions", len(ids), len(descriptions))
	}
	for i, id := range ids {
		if id != 0 && !valid[id] {
			ids[i] = 0
		}
	}
	return ids, nil
}

// parseIDArray extracts a JSON number array from an oracle reply, tolerating
// markdown code fences around it.
func parseIDArray(raw string) ([]int64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var ids []int64
	if err := json.Unmarshal([]byte(cleaned), &ids); err != nil {
		return nil, fmt.Errorf("parsing oracle reply: %w", err)
	}
	return ids, nil
}

// MonthlyAdvice produces a short narrative about the user's spending in the
// given month. It requires a configured oracle; failures surface as
// Unavailable so callers can tell the user to retry.
func (s *Service) MonthlyAdvice(ctx context.Context, userID int64, year int, month time.Month) (string, error) {
	if s.client == nil {
		return "", common.Unavailablef("no advisor provider configured")
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	transactions, err := s.store.ListTransactionsByPeriod(ctx, userID, start, end)
	if err != nil {
		return "", fmt.Errorf("listing transactions: %w", err)
	}
	if len(transactions) == 0 {
		return "No hay movimientos registrados este mes, así que no hay nada para analizar todavía.", nil
	}

	var income, expense model.Money
	byCategory := make(map[string]model.Money)
	for _, t := range transactions {
		if t.Type == model.TypeIncome {
			income = income.Add(t.Amount)
			continue
		}
		expense = expense.Add(t.Amount)
		name := t.CategoryName
		if name == "" {
			name = "Otros"
		}
		byCategory[name] = byCategory[name].Add(t.Amount)
	}

	var breakdown strings.Builder
	for name, amount := range byCategory {
		fmt.Fprintf(&breakdown, "- %s: %s\n", name, amount)
	}

	prompt := fmt.Sprintf(`Sos un asesor financiero personal argentino, directo y amable.
Resumen de %s %d:
Ingresos: %s
Gastos: %s
Gastos por categoría:
%s
Escribí un párrafo corto (máximo 4 oraciones) con una observación concreta y un consejo accionable. Sin saludos ni encabezados.`,
		strings.ToLower(start.Month().String()), year, income, expense, breakdown.String())

	advice, err := s.client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(advice), nil
}
