package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

type DashboardHandler struct {
	db *sqlx.DB
}

func NewDashboardHandler(db *sqlx.DB) *DashboardHandler { return &DashboardHandler{db: db} }

type weightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

type dashboardResponse struct {
	ReferenceDate   string        `json:"reference_date"`
	LatestWeight    *float64      `json:"latest_weight,omitempty"`
	WeightTrend     []weightPoint `json:"weight_trend"`
	WalksThisWeek   int           `json:"walks_this_week"`
	WalksThisMonth  int           `json:"walks_this_month"`
	KmThisWeek      float64       `json:"km_this_week"`
	KmThisMonth     float64       `json:"km_this_month"`
	MinutesThisWeek int           `json:"minutes_this_week"`
}

// Get aggregates recent weight and walk activity for the dashboard view.
// Accepts optional query param local_date=YYYY-MM-DD to use as "today".
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	refDateStr := r.URL.Query().Get("local_date")
	var refDate time.Time
	var err error
	if refDateStr == "" {
		if err = h.db.QueryRowx("SELECT CURRENT_DATE").Scan(&refDate); err != nil {
			http.Error(w, "could not determine current date", http.StatusInternalServerError)
			return
		}
	} else {
		refDate, err = time.Parse("2006-01-02", refDateStr)
		if err != nil {
			http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	resp := dashboardResponse{ReferenceDate: refDate.Format("2006-01-02")}

	var latest float64
	if err := h.db.QueryRowx(`
		SELECT weight FROM weight_entries
		WHERE user_id=$1 AND entry_date <= $2
		ORDER BY entry_date DESC, id DESC LIMIT 1`, userID, refDate).Scan(&latest); err == nil {
		resp.LatestWeight = &latest
	}

	walkAgg := `
		SELECT
			COALESCE(COUNT(*) FILTER (WHERE entry_date >= date_trunc('week', $2::timestamp)::date AND entry_date <= $2), 0) AS walks_week,
			COALESCE(COUNT(*) FILTER (WHERE date_trunc('month', entry_date) = date_trunc('month', $2::date)), 0) AS walks_month,
			COALESCE(SUM(distance_km) FILTER (WHERE entry_date >= date_trunc('week', $2::timestamp)::date AND entry_date <= $2), 0) AS km_week,
			COALESCE(SUM(distance_km) FILTER (WHERE date_trunc('month', entry_date) = date_trunc('month', $2::date)), 0) AS km_month,
			COALESCE(SUM(duration_min) FILTER (WHERE entry_date >= date_trunc('week', $2::timestamp)::date AND entry_date <= $2), 0) AS minutes_week
		FROM walk_entries
		WHERE user_id = $1`
	if err := h.db.QueryRowx(walkAgg, userID, refDate).Scan(
		&resp.WalksThisWeek, &resp.WalksThisMonth,
		&resp.KmThisWeek, &resp.KmThisMonth, &resp.MinutesThisWeek,
	); err != nil {
		http.Error(w, "could not fetch aggregates", http.StatusInternalServerError)
		return
	}

	trendRows, err := h.db.Queryx(`
		SELECT entry_date, weight FROM weight_entries
		WHERE user_id=$1 AND entry_date > $2::date - INTERVAL '30 days' AND entry_date <= $2
		ORDER BY entry_date, id`, userID, refDate)
	if err != nil {
		http.Error(w, "could not fetch trend", http.StatusInternalServerError)
		return
	}
	defer trendRows.Close()
	trend := []weightPoint{}
	for trendRows.Next() {
		var d time.Time
		var wt float64
		if err := trendRows.Scan(&d, &wt); err == nil {
			trend = append(trend, weightPoint{Date: d.Format("2006-01-02"), Weight: wt})
		}
	}
	resp.WeightTrend = trend

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
