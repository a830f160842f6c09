package viewer

import (
	"errors"
	"net/http"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/domain"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/series"
)

// handleChart renders one series as a PNG: a line for daily values, dots
// for the irregularly sampled instantaneous readings.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	key, ok := s.seriesRequest(w, r)
	if !ok {
		return
	}

	sr, err := s.store.Load(key)
	if errors.Is(err, series.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no data for station "+key.SiteNumber+" parameter "+key.ParameterCode)
		return
	}
	if err != nil {
		s.logger.Error("series load failed", "key", key.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load series")
		return
	}

	column := r.URL.Query().Get("column")
	if column == "" {
		column = sr.DefaultColumn()
	}

	readings, err := sr.Points(column)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(readings) < 2 {
		// The chart library needs a range; the UI shows its own empty state.
		writeError(w, http.StatusNotFound, "not enough readings to chart")
		return
	}

	xs := make([]time.Time, len(readings))
	ys := make([]float64, len(readings))
	for i, reading := range readings {
		xs[i] = reading.Timestamp
		ys[i] = reading.Value
	}

	style := chart.Style{StrokeWidth: 2}
	if key.Kind == domain.KindInstantaneous {
		style = chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
		}
	}

	graph := chart.Chart{
		Title:  s.params.Label(key.ParameterCode),
		Width:  900,
		Height: 400,
		XAxis: chart.XAxis{
			Name:           "Date/Time",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: chart.YAxis{
			Name: column,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    column,
				XValues: xs,
				YValues: ys,
				Style:   style,
			},
		},
	}

	start := time.Now()
	w.Header().Set("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, w); err != nil {
		s.logger.Error("chart render failed", "key", key.String(), "error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.ChartRenderDuration.Observe(time.Since(start).Seconds())
	}
}
