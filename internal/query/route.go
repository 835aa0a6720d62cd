package query

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"github.com/andes-trip-manager/backend/internal/tripfile"
)

const earthRadiusKm = 6371.0

// RouteStop is a stop as placed in a route.
type RouteStop struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Order     int      `json:"order"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// RouteSuggestion is the answer of sugerir_otimizacao_rota. Stops without
// coordinates cannot be placed and are listed apart.
type RouteSuggestion struct {
	TripID              string      `json:"tripId"`
	CurrentOrder        []RouteStop `json:"currentOrder"`
	SuggestedOrder      []RouteStop `json:"suggestedOrder"`
	CurrentDistanceKm   float64     `json:"currentDistanceKm"`
	SuggestedDistanceKm float64     `json:"suggestedDistanceKm"`
	SavingKm            float64     `json:"savingKm"`
	WithoutCoordinates  []RouteStop `json:"withoutCoordinates"`
}

func (s *Service) suggestRoute(ctx context.Context, a tripArgs) (any, error) {
	agg, err := s.aggregate(ctx, a.ViagemID, tripfile.ExportOptions{IncludeStops: true})
	if err != nil {
		return nil, err
	}

	out := RouteSuggestion{TripID: agg.Trip.ID, CurrentOrder: []RouteStop{}, WithoutCoordinates: []RouteStop{}}
	for _, st := range agg.Stops {
		rs := RouteStop{ID: st.ID, Name: st.Name, Order: st.Order, Latitude: st.Latitude, Longitude: st.Longitude}
		if st.Latitude == nil || st.Longitude == nil {
			out.WithoutCoordinates = append(out.WithoutCoordinates, rs)
			continue
		}
		out.CurrentOrder = append(out.CurrentOrder, rs)
	}

	out.SuggestedOrder = nearestNeighbour(out.CurrentOrder)
	current, suggested := routeLength(out.CurrentOrder), routeLength(out.SuggestedOrder)
	out.CurrentDistanceKm = round2(current)
	out.SuggestedDistanceKm = round2(suggested)
	out.SavingKm = round2(current - suggested)
	return out, nil
}

// nearestNeighbour keeps the first stop as the start and then always visits
// the closest unvisited stop; ties go to the earlier stop. Orders in the
// result are renumbered from 1.
func nearestNeighbour(stops []RouteStop) []RouteStop {
	out := make([]RouteStop, 0, len(stops))
	if len(stops) == 0 {
		return out
	}
	visited := make([]bool, len(stops))
	cur := 0
	for range stops {
		visited[cur] = true
		next := stops[cur]
		next.Order = len(out) + 1
		out = append(out, next)

		best, bestDist := -1, math.Inf(1)
		for j := range stops {
			if visited[j] {
				continue
			}
			if d := distanceKm(stops[cur], stops[j]); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best < 0 {
			break
		}
		cur = best
	}
	return out
}

func routeLength(stops []RouteStop) float64 {
	total := 0.0
	for i := 1; i < len(stops); i++ {
		total += distanceKm(stops[i-1], stops[i])
	}
	return total
}

func distanceKm(a, b RouteStop) float64 {
	return haversineKm(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
}

// haversineKm is the great-circle distance between two points in degrees.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
