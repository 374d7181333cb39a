package recap

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/notify"
	"github.com/duitapp/ledger/internal/services"
	"github.com/duitapp/ledger/pkg/logger"
	"github.com/duitapp/ledger/pkg/prom"
	"github.com/duitapp/ledger/pkg/worker"
)

const daysPerMonth = 30

type UserRepository interface {
	ListWithChatID(ctx context.Context, afterID int64, limit int) ([]*model.User, error)
}

type GoalRepository interface {
	InflateTargets(ctx context.Context, userID int64, factor float64) error
}

type ScheduledMessageRepository interface {
	ListDue(ctx context.Context, userID int64, cutoff time.Time) ([]*model.ScheduledMessage, error)
	MarkSent(ctx context.Context, id int64) error
}

type TransactionRepository interface {
	SumPaymentMethodExpense(ctx context.Context, userID int64, method string, from, to time.Time) (float64, error)
}

type StatsService interface {
	MonthlySummary(ctx context.Context, userID int64, year int, month time.Month) (*services.MonthlySummary, error)
	DailySummary(ctx context.Context, userID int64, day time.Time) (*services.MonthlySummary, error)
	NetWorth(ctx context.Context, userID int64) (*services.NetWorth, error)
}

type Options struct {
	PageSize               int
	Workers                int
	DailyAllowanceFallback float64
	IdleCashThreshold      float64
	CashBurnThreshold      float64
	InflationFactor        float64
	DeliverTimeout         time.Duration
}

// Report is the outcome of one run. Processed counts every user seen,
// Delivered and Failed partition them.
type Report struct {
	Processed int64
	Delivered int64
	Failed    int64
}

// Job builds and delivers the daily recap for every user with a linked
// chat. Users are mutually isolated: one user failing, panicking or
// timing out never stops the run. On the first day of a month every goal
// target is indexed for inflation before the digests go out.
type Job struct {
	users    UserRepository
	goals    GoalRepository
	messages ScheduledMessageRepository
	txns     TransactionRepository
	stats    StatsService
	sink     notify.Sink
	opts     Options
	now      func() time.Time
}

func NewJob(users UserRepository, goals GoalRepository, messages ScheduledMessageRepository, txns TransactionRepository, stats StatsService, sink notify.Sink, opts Options) *Job {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.DeliverTimeout <= 0 {
		opts.DeliverTimeout = 10 * time.Second
	}
	return &Job{
		users:    users,
		goals:    goals,
		messages: messages,
		txns:     txns,
		stats:    stats,
		sink:     sink,
		opts:     opts,
		now:      time.Now,
	}
}

// Run iterates every chat-linked user page by page, fanning the work out
// to the pool. It returns once the last user has been handled. The error
// covers pagination only: per-user failures land in the report instead.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	runDay := j.now().UTC()

	pool := worker.NewPool(j.opts.Workers, j.opts.PageSize, func(workerIndex int, job any) {
		j.processUser(ctx, job.(*model.User), runDay, report)
	})
	pool.Start()

	afterID := int64(0)
	var pageErr error
	for {
		page, err := j.users.ListWithChatID(ctx, afterID, j.opts.PageSize)
		if err != nil {
			pageErr = err
			break
		}
		if len(page) == 0 {
			break
		}
		for _, u := range page {
			pool.Enqueue(u)
		}
		afterID = page[len(page)-1].ID
	}

	pool.Close()

	logger.Info("recap run finished",
		"processed", atomic.LoadInt64(&report.Processed),
		"delivered", atomic.LoadInt64(&report.Delivered),
		"failed", atomic.LoadInt64(&report.Failed))
	return report, pageErr
}

// processUser is the per-user error boundary. Every exit path is counted
// exactly once.
func (j *Job) processUser(ctx context.Context, user *model.User, runDay time.Time, report *Report) {
	atomic.AddInt64(&report.Processed, 1)

	fail := func(stage string, err error) {
		atomic.AddInt64(&report.Failed, 1)
		prom.ObserveRecapUser("failed")
		logger.Warn("recap user failed", "user_id", user.ID, "stage", stage, "error", err)
	}

	if runDay.Day() == 1 && j.opts.InflationFactor > 1 {
		if err := j.goals.InflateTargets(ctx, user.ID, j.opts.InflationFactor); err != nil {
			fail("inflation", err)
			return
		}
	}

	digest, err := j.buildDigest(ctx, user.ID, runDay)
	if err != nil {
		fail("build", err)
		return
	}

	deliverCtx, cancel := context.WithTimeout(ctx, j.opts.DeliverTimeout)
	defer cancel()

	start := time.Now()
	err = j.sink.Deliver(deliverCtx, *user.ChatID, digest.Render())
	prom.ObserveRecapDeliverDuration(time.Since(start).Seconds())
	if err != nil {
		fail("deliver", err)
		return
	}

	// Reminders are consumed only once their digest actually went out.
	// The guarded status flip keeps a concurrent run from re-sending.
	for _, r := range digest.Reminders {
		if err := j.messages.MarkSent(ctx, r.ID); err != nil {
			logger.Warn("reminder flip failed", "user_id", user.ID, "message_id", r.ID, "error", err)
		}
	}

	atomic.AddInt64(&report.Delivered, 1)
	prom.ObserveRecapUser("delivered")
}

func (j *Job) buildDigest(ctx context.Context, userID int64, runDay time.Time) (*Digest, error) {
	today, err := j.stats.DailySummary(ctx, userID, runDay)
	if err != nil {
		return nil, err
	}

	month, err := j.stats.MonthlySummary(ctx, userID, runDay.Year(), runDay.Month())
	if err != nil {
		return nil, err
	}

	allowance := month.Income / daysPerMonth
	if allowance <= 0 {
		allowance = j.opts.DailyAllowanceFallback
	}

	var idleCash bool
	if j.opts.IdleCashThreshold > 0 {
		worth, err := j.stats.NetWorth(ctx, userID)
		if err != nil {
			return nil, err
		}
		idleCash = worth.CashBalance > j.opts.IdleCashThreshold
	}

	var cashBurn bool
	if j.opts.CashBurnThreshold > 0 {
		from, to := services.DayWindow(runDay)
		cashSpent, err := j.txns.SumPaymentMethodExpense(ctx, userID, "cash", from, to)
		if err != nil {
			return nil, err
		}
		cashBurn = cashSpent > j.opts.CashBurnThreshold
	}

	reminders, err := j.messages.ListDue(ctx, userID, runDay)
	if err != nil {
		return nil, err
	}

	return &Digest{
		Date:           runDay,
		TodayIncome:    today.Income,
		TodayExpense:   today.Expense,
		DailyAllowance: allowance,
		Surplus:        allowance - today.Expense,
		IdleCash:       idleCash,
		CashBurn:       cashBurn,
		Reminders:      reminders,
	}, nil
}
