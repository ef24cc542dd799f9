package monitor

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	GamesCreated   prometheus.Counter
	MovesPlayed    prometheus.Counter
	PlayersCreated prometheus.Counter
	ActiveGames    prometheus.Gauge
}

func NewMetrics(registerer prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		GamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Total number of games created",
		}),
		MovesPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_played_total",
			Help:      "Total number of accepted moves",
		}),
		PlayersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_created_total",
			Help:      "Total number of players created",
		}),
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Number of games currently in progress",
		}),
	}

	registerer.MustRegister(
		m.GamesCreated,
		m.MovesPlayed,
		m.PlayersCreated,
		m.ActiveGames,
	)

	return m
}
