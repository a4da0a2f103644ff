package dashboard

// ChartSeries is a plot-ready projection of one entity's session history.
type ChartSeries struct {
	Labels []string
	Values []float64
}

// ProjectSeries maps the session history for an entity into a chart series.
// The second return is false when no points exist for the entity. Labels are
// the snapshots captured when each point was recorded; they are never
// recomputed here.
func ProjectSeries(store *SessionStore, entityKey string) (ChartSeries, bool) {
	points := store.SeriesFor(entityKey)
	if len(points) == 0 {
		return ChartSeries{}, false
	}

	series := ChartSeries{
		Labels: make([]string, 0, len(points)),
		Values: make([]float64, 0, len(points)),
	}
	for _, p := range points {
		series.Labels = append(series.Labels, p.TimeLabel)
		series.Values = append(series.Values, p.Value)
	}
	return series, true
}
