package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK    = "ok"
	statusError = "error"
	statusNoOp  = "noop"
)

var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stakepool_ledger_operations_total",
			Help: "Total number of ledger operations by outcome",
		},
		[]string{"op", "status"},
	)

	ContributedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stakepool_ledger_contributed_total",
			Help: "Total value contributed into pool custody",
		},
	)

	FeesCollectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stakepool_ledger_fees_collected_total",
			Help: "Total fee value deposited into pool custody",
		},
	)

	RewardsPaidTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stakepool_ledger_rewards_paid_total",
			Help: "Total reward value paid out to stakers",
		},
	)

	RecordsAcceptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stakepool_ledger_records_accepted_total",
			Help: "Total number of record batches accepted",
		},
	)

	PoolTotalStaked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stakepool_pool_total_staked",
			Help: "Shares currently staked in the pool",
		},
	)

	PoolUndistributed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stakepool_pool_undistributed_fees",
			Help: "Collected fees not yet paid out as rewards",
		},
	)
)

func observeOp(op, status string) {
	OperationsTotal.WithLabelValues(op, status).Inc()
}

func observeEvent(ev *Event) {
	switch ev.Kind {
	case EventContribute:
		ContributedTotal.Add(float64(ev.Amount))
	case EventFeeDeposit:
		FeesCollectedTotal.Add(float64(ev.Amount))
	case EventBatchAccepted:
		FeesCollectedTotal.Add(float64(ev.Amount))
		RecordsAcceptedTotal.Inc()
	}
	if ev.Reward > 0 {
		RewardsPaidTotal.Add(float64(ev.Reward))
	}
}

func setPoolGauges(p *Pool) {
	PoolTotalStaked.Set(float64(p.TotalStaked))
	PoolUndistributed.Set(float64(p.Undistributed()))
}
