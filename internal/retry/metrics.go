package retry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "andes",
	Subsystem: "retry",
	Name:      "attempts_total",
	Help:      "Operation attempts made by the retry runner, by outcome and error kind.",
}, []string{"status", "kind"})
