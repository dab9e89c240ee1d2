package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TapsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taps_processed_total",
			Help: "Total taps accepted by the server",
		},
	)
	GamesPlayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minigames_played_total",
			Help: "Total mini-game rounds played",
		},
		[]string{"game", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(TapsProcessed)
	prometheus.MustRegister(GamesPlayed)
}
