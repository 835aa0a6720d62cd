package query

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// Param describes one tool argument.
type Param struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolDefinition describes a tool for the assistant calling it.
type ToolDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  map[string]Param `json:"parameters"`
}

type tool struct {
	def  ToolDefinition
	call func(ctx context.Context, args json.RawMessage) (any, error)
}

type userArgs struct {
	UsuarioID string `json:"usuarioId" validate:"required"`
}

type tripArgs struct {
	ViagemID string `json:"viagemId" validate:"required,uuid"`
}

type statusArgs struct {
	UsuarioID string `json:"usuarioId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=planejada em_andamento finalizada cancelada"`
}

type stopTypeArgs struct {
	ViagemID string `json:"viagemId" validate:"required,uuid"`
	Tipo     string `json:"tipo" validate:"required"`
}

var (
	usuarioParam = Param{Type: "string", Description: "Id of the user; must be the caller.", Required: true}
	viagemParam  = Param{Type: "string", Description: "Id of one of the caller's trips.", Required: true}
)

func (s *Service) registry() map[string]tool {
	tools := []tool{
		{
			def: ToolDefinition{
				Name:        "listar_viagens",
				Description: "Lists the user's trips, most recent first.",
				Parameters:  map[string]Param{"usuarioId": usuarioParam},
			},
			call: bind(s, func(ctx context.Context, a userArgs) (any, error) {
				return s.listTrips(ctx, a.UsuarioID, "")
			}),
		},
		{
			def: ToolDefinition{
				Name:        "calcular_relatorio_custos",
				Description: "Totals a trip's costs by category and by day.",
				Parameters:  map[string]Param{"viagemId": viagemParam},
			},
			call: bind(s, s.costReport),
		},
		{
			def: ToolDefinition{
				Name:        "calcular_estatisticas_viagem",
				Description: "Computes the statistics block of a trip as it would be exported.",
				Parameters:  map[string]Param{"viagemId": viagemParam},
			},
			call: bind(s, s.tripStatistics),
		},
		{
			def: ToolDefinition{
				Name:        "sugerir_otimizacao_rota",
				Description: "Suggests a shorter visiting order for the trip's stops (nearest neighbour).",
				Parameters:  map[string]Param{"viagemId": viagemParam},
			},
			call: bind(s, s.suggestRoute),
		},
		{
			def: ToolDefinition{
				Name:        "analisar_padroes_gastos",
				Description: "Analyses spending across all of the user's trips.",
				Parameters:  map[string]Param{"usuarioId": usuarioParam},
			},
			call: bind(s, s.spendingPatterns),
		},
		{
			def: ToolDefinition{
				Name:        "buscar_viagens_por_status",
				Description: "Lists the user's trips with the given status.",
				Parameters: map[string]Param{
					"usuarioId": usuarioParam,
					"status": {
						Type: "string", Description: "Trip status.", Required: true,
						Enum: []string{domain.TripStatusPlanned, domain.TripStatusInProgress, domain.TripStatusFinished, domain.TripStatusCancelled},
					},
				},
			},
			call: bind(s, func(ctx context.Context, a statusArgs) (any, error) {
				return s.listTrips(ctx, a.UsuarioID, a.Status)
			}),
		},
		{
			def: ToolDefinition{
				Name:        "buscar_paradas_por_tipo",
				Description: "Lists the trip's stops of one type, e.g. combustivel.",
				Parameters: map[string]Param{
					"viagemId": viagemParam,
					"tipo":     {Type: "string", Description: "Stop type, compared case-insensitively.", Required: true},
				},
			},
			call: bind(s, s.stopsByType),
		},
	}

	m := make(map[string]tool, len(tools))
	for _, t := range tools {
		m[t.def.Name] = t
	}
	return m
}

// bind decodes and validates the JSON arguments before calling f.
func bind[A any](s *Service, f func(context.Context, A) (any, error)) func(context.Context, json.RawMessage) (any, error) {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args A
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("%w: arguments must be a JSON object: %v", domain.ErrValidation, err)
			}
		}
		if err := s.validate.Validate(args); err != nil {
			return nil, err
		}
		return f(ctx, args)
	}
}

// Tools lists every tool, sorted by name.
func (s *Service) Tools() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(s.tools))
	for _, t := range s.tools {
		defs = append(defs, t.def)
	}
	slices.SortFunc(defs, func(a, b ToolDefinition) int { return cmp.Compare(a.Name, b.Name) })
	return defs
}

// CallTool runs the named tool with args, a JSON object.
// Returns domain.ErrNotFound for an unknown tool and domain.ErrValidation
// for arguments that do not decode or validate.
func (s *Service) CallTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	t, ok := s.tools[name]
	if !ok {
		return nil, fmt.Errorf("query.Service.CallTool: %w: unknown tool %q", domain.ErrNotFound, name)
	}
	out, err := t.call(ctx, args)
	if err != nil {
		callsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("query.Service.CallTool: %s: %w", name, err)
	}
	callsTotal.WithLabelValues(name, "ok").Inc()
	return out, nil
}

// TripSummary is the listing form of a trip.
type TripSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Status       string `json:"status"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	DurationDays int    `json:"durationDays"`
}

// listTrips returns the user's trips, filtered by status when it is set.
func (s *Service) listTrips(ctx context.Context, usuarioID, status string) ([]TripSummary, error) {
	if _, err := ownUser(ctx, usuarioID); err != nil {
		return nil, err
	}
	trips, err := s.repos.Trips.ListByOwner(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	out := []TripSummary{}
	for _, t := range trips {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, TripSummary{
			ID:           t.ID.String(),
			Name:         t.Name,
			StartDate:    tripfile.FormatDate(t.StartDate),
			EndDate:      tripfile.FormatDate(t.EndDate),
			Status:       t.Status,
			Origin:       t.Origin,
			Destination:  t.Destination,
			DurationDays: t.DurationDays(),
		})
	}
	return out, nil
}

// TripStatistics is the answer of calcular_estatisticas_viagem.
type TripStatistics struct {
	TripID     string              `json:"tripId"`
	Name       string              `json:"name"`
	Statistics tripfile.Statistics `json:"statistics"`
}

func (s *Service) tripStatistics(ctx context.Context, a tripArgs) (any, error) {
	agg, err := s.aggregate(ctx, a.ViagemID, tripfile.DefaultExportOptions())
	if err != nil {
		return nil, err
	}
	return TripStatistics{TripID: agg.Trip.ID, Name: agg.Trip.Name, Statistics: *agg.Statistics}, nil
}

func (s *Service) stopsByType(ctx context.Context, a stopTypeArgs) (any, error) {
	agg, err := s.aggregate(ctx, a.ViagemID, tripfile.ExportOptions{IncludeStops: true})
	if err != nil {
		return nil, err
	}
	tipo := strings.TrimSpace(a.Tipo)
	out := []tripfile.StopRecord{}
	for _, st := range agg.Stops {
		if strings.EqualFold(st.Type, tipo) {
			out = append(out, st)
		}
	}
	return out, nil
}

// CategoryTotal is the spend of one cost category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// DayTotal is the spend attached to one day; DayNumber 0 collects costs
// without a day.
type DayTotal struct {
	DayID     string  `json:"dayId,omitempty"`
	DayNumber int     `json:"dayNumber"`
	Date      string  `json:"date,omitempty"`
	Total     float64 `json:"total"`
}

// CostReport is the answer of calcular_relatorio_custos.
type CostReport struct {
	TripID        string          `json:"tripId"`
	Total         float64         `json:"total"`
	Count         int             `json:"count"`
	Currencies    []string        `json:"currencies"`
	ByCategory    []CategoryTotal `json:"byCategory"`
	ByDay         []DayTotal      `json:"byDay"`
	AveragePerDay float64         `json:"averagePerDay"`
}

func (s *Service) costReport(ctx context.Context, a tripArgs) (any, error) {
	agg, err := s.aggregate(ctx, a.ViagemID, tripfile.ExportOptions{IncludeCosts: true, IncludeDays: true})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	currencies := []string{}
	byDay := make(map[string]decimal.Decimal)
	for _, c := range agg.Costs {
		amount := decimal.NewFromFloat(c.Amount)
		total = total.Add(amount)
		byDay[c.DayID] = byDay[c.DayID].Add(amount)
		if c.Currency != "" && !slices.Contains(currencies, c.Currency) {
			currencies = append(currencies, c.Currency)
		}
	}
	slices.Sort(currencies)

	report := CostReport{
		TripID:     agg.Trip.ID,
		Total:      total.InexactFloat64(),
		Count:      len(agg.Costs),
		Currencies: currencies,
		ByCategory: byCategory(agg.Costs, total),
		ByDay:      []DayTotal{},
	}
	for _, d := range agg.Days {
		if sum, ok := byDay[d.ID]; ok {
			report.ByDay = append(report.ByDay, DayTotal{DayID: d.ID, DayNumber: d.DayNumber, Date: d.Date, Total: sum.InexactFloat64()})
			delete(byDay, d.ID)
		}
	}
	// Costs without a day, or pointing at a day that no longer exists.
	rest := decimal.Zero
	for _, sum := range byDay {
		rest = rest.Add(sum)
	}
	if !rest.IsZero() {
		report.ByDay = append(report.ByDay, DayTotal{Total: rest.InexactFloat64()})
	}
	if days := agg.Statistics.TripDurationDays; days > 0 {
		report.AveragePerDay = total.Div(decimal.NewFromInt(int64(days))).Round(2).InexactFloat64()
	}
	return report, nil
}

// byCategory totals costs per category, largest first.
func byCategory(costs []tripfile.CostRecord, total decimal.Decimal) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, c := range costs {
		cat := c.Category
		if cat == "" {
			cat = "outros"
		}
		sums[cat] = sums[cat].Add(decimal.NewFromFloat(c.Amount))
		counts[cat]++
	}

	out := make([]CategoryTotal, 0, len(sums))
	for cat, sum := range sums {
		ct := CategoryTotal{Category: cat, Total: sum.InexactFloat64(), Count: counts[cat]}
		if !total.IsZero() {
			ct.Percent = sum.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
		out = append(out, ct)
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// TripSpend is the total of one trip in a spending analysis.
type TripSpend struct {
	TripID string  `json:"tripId"`
	Name   string  `json:"name"`
	Total  float64 `json:"total"`
}

// SpendingPatterns is the answer of analisar_padroes_gastos.
type SpendingPatterns struct {
	UserID           string          `json:"userId"`
	Trips            int             `json:"trips"`
	Total            float64         `json:"total"`
	AveragePerTrip   float64         `json:"averagePerTrip"`
	AveragePerDay    float64         `json:"averagePerDay"`
	TopCategory      string          `json:"topCategory,omitempty"`
	ByCategory       []CategoryTotal `json:"byCategory"`
	MostExpensive    *TripSpend      `json:"mostExpensive,omitempty"`
	TripsWithoutCost int             `json:"tripsWithoutCost"`
}

func (s *Service) spendingPatterns(ctx context.Context, a userArgs) (any, error) {
	user, err := ownUser(ctx, a.UsuarioID)
	if err != nil {
		return nil, err
	}
	trips, err := s.repos.Trips.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	costs := make([][]domain.Cost, len(trips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, t := range trips {
		g.Go(func() error {
			cs, err := s.repos.Costs.ListByTrip(gctx, t.ID)
			if err != nil {
				return fmt.Errorf("costs of trip %s: %w", t.ID, err)
			}
			costs[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := SpendingPatterns{UserID: user.ID, Trips: len(trips), ByCategory: []CategoryTotal{}}
	var (
		all   []tripfile.CostRecord
		total = decimal.Zero
		days  int
		best  decimal.Decimal
	)
	for i, t := range trips {
		tripTotal := decimal.Zero
		for _, c := range costs[i] {
			tripTotal = tripTotal.Add(decimal.NewFromFloat(c.Amount))
			all = append(all, tripfile.CostRecord{Category: c.Category, Amount: c.Amount})
		}
		if len(costs[i]) == 0 {
			out.TripsWithoutCost++
		}
		total = total.Add(tripTotal)
		days += t.DurationDays()
		if len(costs[i]) > 0 && (out.MostExpensive == nil || tripTotal.GreaterThan(best)) {
			best = tripTotal
			out.MostExpensive = &TripSpend{TripID: t.ID.String(), Name: t.Name, Total: tripTotal.InexactFloat64()}
		}
	}

	out.Total = total.InexactFloat64()
	out.ByCategory = byCategory(all, total)
	if len(out.ByCategory) > 0 {
		out.TopCategory = out.ByCategory[0].Category
	}
	if len(trips) > 0 {
		out.AveragePerTrip = total.Div(decimal.NewFromInt(int64(len(trips)))).Round(2).InexactFloat64()
	}
	if days > 0 {
		out.AveragePerDay = total.Div(decimal.NewFromInt(int64(days))).Round(2).InexactFloat64()
	}
	return out, nil
}
