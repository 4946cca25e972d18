package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/auth"
	"github.com/monocle-dev/carbontrack/internal/models"
	"github.com/monocle-dev/carbontrack/internal/store"
	"github.com/monocle-dev/carbontrack/internal/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type LeaderboardRow struct {
	Rank           int     `json:"rank"`
	Name           string  `json:"name"`
	City           string  `json:"city"`
	CarbonEmission float64 `json:"carbon_emission"`
	Entries        int64   `json:"entries"`
	IsCurrentUser  bool    `json:"is_current_user"`
}

// LeaderboardRows ranks standings as returned by the store: positional
// 1-based ranks, ties left in query order.
func LeaderboardRows(standings []store.Standing, session *auth.Session) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(standings))

	for idx, standing := range standings {
		name, city := standing.Name, standing.City
		current := session != nil && session.UserID != 0 && session.UserID == standing.UserID

		if current {
			if session.Name != "" {
				name = session.Name
			}
			if session.City != "" {
				city = session.City
			}
		}

		if name == "" {
			name = "Anonymous"
		}
		if city == "" {
			city = "Unknown"
		}

		rows = append(rows, LeaderboardRow{
			Rank:           idx + 1,
			Name:           name,
			City:           city,
			CarbonEmission: round2(standing.AvgEmission),
			Entries:        standing.EntriesCount,
			IsCurrentUser:  current,
		})
	}

	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (h *Handler) Leaderboard(ctx *gin.Context) {
	standings, err := h.store.Leaderboard(ctx.Request.Context())

	if err != nil {
		h.serverError(ctx, err, "failed to load leaderboard")
		return
	}

	h.render(ctx, http.StatusOK, "leaderboard.html", gin.H{
		"Leaderboard": LeaderboardRows(standings, utils.GetSession(ctx)),
	})
}

type HistoryPoint struct {
	Date           time.Time `json:"date"`
	CarbonEmission float64   `json:"carbon_emission"`
}

type HistorySummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Latest float64 `json:"latest"`
	// Change is the latest value minus the first one.
	Change float64 `json:"change"`
}

type History struct {
	Points  []HistoryPoint `json:"points"`
	Summary HistorySummary `json:"summary"`
}

// NewHistory builds the chart series and its summary from chronological
// entries.
func NewHistory(entries []models.LeaderboardEntry) History {
	history := History{Points: make([]HistoryPoint, 0, len(entries))}

	if len(entries) == 0 {
		return history
	}

	values := make([]float64, len(entries))

	for i, entry := range entries {
		values[i] = entry.CarbonEmission
		history.Points = append(history.Points, HistoryPoint{Date: entry.DateRecorded, CarbonEmission: entry.CarbonEmission})
	}

	history.Summary = HistorySummary{
		Count:  len(values),
		Mean:   round2(stat.Mean(values, nil)),
		Min:    round2(floats.Min(values)),
		Max:    round2(floats.Max(values)),
		Latest: round2(values[len(values)-1]),
		Change: round2(values[len(values)-1] - values[0]),
	}

	if len(values) > 1 {
		history.Summary.StdDev = round2(stat.StdDev(values, nil))
	}

	return history
}

func (h *Handler) Visualize(ctx *gin.Context) {
	session := utils.GetSession(ctx)

	if !session.Authenticated() {
		h.flashRedirect(ctx, "You need to be logged in to view your emission history.", "/login")
		return
	}

	entries, err := h.store.History(ctx.Request.Context(), session.UserID)

	if err != nil {
		h.serverError(ctx, err, "failed to load history")
		return
	}

	if len(entries) == 0 {
		ctx.String(http.StatusOK, "No data available for Visualization!")
		return
	}

	h.render(ctx, http.StatusOK, "visualize.html", gin.H{
		"History": NewHistory(entries),
	})
}

func (h *Handler) HistoryAPI(ctx *gin.Context) {
	session := utils.GetSession(ctx)

	entries, err := h.store.History(ctx.Request.Context(), session.UserID)

	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	ctx.JSON(http.StatusOK, NewHistory(entries))
}
