package report

import (
	"sort"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// HistoryRow is one season joined with its plot.
type HistoryRow struct {
	SeasonID     string             `json:"season_id"`
	Crop         string             `json:"crop"`
	Year         int                `json:"year"`
	PlotID       string             `json:"plot_id"`
	PlotName     string             `json:"plot_name"`
	AreaHectares float64            `json:"area_hectares"`
	YieldSacks   float64            `json:"yield_sacks"`
	Status       types.SeasonStatus `json:"status"`
}

// YieldPerHectare returns sacks per hectare, or 0 when the plot has no area.
func (r HistoryRow) YieldPerHectare() float64 {
	if r.AreaHectares <= 0 {
		return 0
	}
	return r.YieldSacks / r.AreaHectares
}

// SeasonHistory joins seasons with their plots, keeping the season order.
// A season whose plot is missing gets an empty name and zero area.
func SeasonHistory(seasons []*types.Season, plots []*types.Plot) []HistoryRow {
	byID := make(map[string]*types.Plot, len(plots))
	for _, p := range plots {
		byID[p.PlotID] = p
	}
	rows := make([]HistoryRow, 0, len(seasons))
	for _, s := range seasons {
		row := HistoryRow{
			SeasonID:   s.SeasonID,
			Crop:       s.Crop,
			Year:       s.StartYear,
			PlotID:     s.PlotID,
			YieldSacks: s.YieldSacks(),
			Status:     s.Status,
		}
		if p, ok := byID[s.PlotID]; ok {
			row.PlotName = p.Name
			row.AreaHectares = p.AreaHectares
		}
		rows = append(rows, row)
	}
	return rows
}

// FilterHistory keeps harvested rows matching crop and plot. An empty crop
// or plot matches everything; plot matches either the plot name or its ID.
func FilterHistory(rows []HistoryRow, crop, plot string) []HistoryRow {
	out := []HistoryRow{}
	for _, r := range rows {
		if r.Status != types.SeasonHarvested {
			continue
		}
		if crop != "" && r.Crop != crop {
			continue
		}
		if plot != "" && r.PlotName != plot && r.PlotID != plot {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TrendPoint is the average yield per hectare of one crop in one year.
type TrendPoint struct {
	Crop            string  `json:"crop"`
	Year            int     `json:"year"`
	Seasons         int     `json:"seasons"`
	YieldPerHectare float64 `json:"yield_per_hectare"`
}

// YieldTrend groups rows by crop and year and averages their yield per
// hectare. Points are sorted by crop, then year.
func YieldTrend(rows []HistoryRow) []TrendPoint {
	type key struct {
		crop string
		year int
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)
	for _, r := range rows {
		k := key{r.Crop, r.Year}
		sums[k] += r.YieldPerHectare()
		counts[k]++
	}

	points := make([]TrendPoint, 0, len(sums))
	for k, sum := range sums {
		points = append(points, TrendPoint{
			Crop:            k.crop,
			Year:            k.year,
			Seasons:         counts[k],
			YieldPerHectare: sum / float64(counts[k]),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Crop != points[j].Crop {
			return points[i].Crop < points[j].Crop
		}
		return points[i].Year < points[j].Year
	})
	return points
}

// CropTotal is the total yield of one crop in sacks.
type CropTotal struct {
	Crop  string  `json:"crop"`
	Sacks float64 `json:"sacks"`
}

// ProductionByCrop sums sacks per crop, smallest total first. Equal totals
// are ordered by crop name.
func ProductionByCrop(rows []HistoryRow) []CropTotal {
	sums := make(map[string]float64)
	for _, r := range rows {
		sums[r.Crop] += r.YieldSacks
	}
	totals := make([]CropTotal, 0, len(sums))
	for crop, sacks := range sums {
		totals = append(totals, CropTotal{Crop: crop, Sacks: sacks})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Sacks != totals[j].Sacks {
			return totals[i].Sacks < totals[j].Sacks
		}
		return totals[i].Crop < totals[j].Crop
	})
	return totals
}
