package recap

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/repository"
	"github.com/duitapp/ledger/internal/services"
	"github.com/duitapp/ledger/pkg/pg"
)

func newTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// the workers hit the database concurrently; a single connection keeps
	// the in-memory store shared and serialized
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&repository.UserEntity{},
		&repository.CategoryEntity{},
		&repository.TransactionEntity{},
		&repository.BudgetEntity{},
		&repository.GoalEntity{},
		&repository.BillEntity{},
		&repository.InvestmentEntity{},
		&repository.DebtEntity{},
		&repository.ScheduledMessageEntity{},
		&repository.UserSettingsEntity{},
		&repository.MerchantMappingEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	v := reflect.ValueOf(pgDB).Elem()
	for _, name := range []string{"read", "write"} {
		f := v.FieldByName(name)
		f = reflect.NewAt(f.Type(), f.Addr().UnsafePointer()).Elem()
		f.Set(reflect.ValueOf(db))
	}
	return pgDB
}

type captureSink struct {
	mu         sync.Mutex
	deliveries map[int64]string
	failChatID int64
}

func newCaptureSink() *captureSink {
	return &captureSink{deliveries: make(map[int64]string)}
}

func (s *captureSink) Deliver(ctx context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failChatID != 0 && chatID == s.failChatID {
		return errors.New("gateway down")
	}
	s.deliveries[chatID] = text
	return nil
}

func (s *captureSink) get(chatID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.deliveries[chatID]
	return text, ok
}

type jobFixture struct {
	db       *pg.DB
	users    *repository.UserRepository
	txns     *repository.TransactionRepository
	goals    *repository.GoalRepository
	messages *repository.ScheduledMessageRepository
	sink     *captureSink
	job      *Job
}

func newJobFixture(t *testing.T, opts Options) *jobFixture {
	db := newTestDB(t)
	f := &jobFixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		txns:     repository.NewTransactionRepository(db),
		goals:    repository.NewGoalRepository(db),
		messages: repository.NewScheduledMessageRepository(db),
		sink:     newCaptureSink(),
	}

	stats := services.NewStatsService(f.txns,
		repository.NewBudgetRepository(db),
		f.goals,
		repository.NewInvestmentRepository(db))

	f.job = NewJob(f.users, f.goals, f.messages, f.txns, stats, f.sink, opts)
	return f
}

func (f *jobFixture) addGhost(t *testing.T, chatID int64) *model.User {
	u, err := f.users.CreateGhost(context.Background(), chatID, "")
	require.NoError(t, err)
	return u
}

func TestJob_Run(t *testing.T) {
	f := newJobFixture(t, Options{PageSize: 2, Workers: 2, DailyAllowanceFallback: 50})
	ctx := context.Background()
	today := f.job.now().UTC()

	u1 := f.addGhost(t, 101)
	f.addGhost(t, 102)
	f.addGhost(t, 103)

	// web-only user must not be visited
	email := "web@example.com"
	_, err := f.users.Create(ctx, &model.User{Email: &email, PasswordHash: "x"})
	require.NoError(t, err)

	_, err = f.txns.Create(ctx, &model.Transaction{
		UserID: u1.ID, CategoryID: 1, Type: model.TransactionTypeIncome,
		Amount: 3000, Description: "salary", OccurredAt: today,
	})
	require.NoError(t, err)
	_, err = f.txns.Create(ctx, &model.Transaction{
		UserID: u1.ID, CategoryID: 1, Type: model.TransactionTypeExpense,
		Amount: 40, Description: "lunch", OccurredAt: today,
	})
	require.NoError(t, err)

	reminder, err := f.messages.Create(ctx, &model.ScheduledMessage{
		UserID: u1.ID, Payload: "pay rent", ScheduledAt: today.Add(-time.Hour),
	})
	require.NoError(t, err)

	report, err := f.job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Processed)
	assert.Equal(t, int64(3), report.Delivered)
	assert.Zero(t, report.Failed)

	t.Run("digest carries the day's figures and the reminder", func(t *testing.T) {
		text, ok := f.sink.get(101)
		require.True(t, ok)
		assert.Contains(t, text, "Income today: 3000")
		assert.Contains(t, text, "Spent today: 40")
		assert.Contains(t, text, "Daily allowance: 100")
		assert.Contains(t, text, "60 under your allowance")
		assert.Contains(t, text, "pay rent")
	})

	t.Run("reminder is consumed", func(t *testing.T) {
		err := f.messages.MarkSent(ctx, reminder.ID)
		assert.ErrorIs(t, err, repository.ErrScheduledMessageNotFound)
	})

	t.Run("second run does not repeat the reminder", func(t *testing.T) {
		_, err := f.job.Run(ctx)
		require.NoError(t, err)
		text, _ := f.sink.get(101)
		assert.NotContains(t, text, "pay rent")
	})
}

func TestJob_Run_FailureIsolation(t *testing.T) {
	f := newJobFixture(t, Options{DailyAllowanceFallback: 50})
	ctx := context.Background()

	f.addGhost(t, 201)
	f.addGhost(t, 202)
	f.addGhost(t, 203)
	f.sink.failChatID = 202

	report, err := f.job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Processed)
	assert.Equal(t, int64(2), report.Delivered)
	assert.Equal(t, int64(1), report.Failed)

	_, ok := f.sink.get(201)
	assert.True(t, ok)
	_, ok = f.sink.get(203)
	assert.True(t, ok)
}

func TestJob_Run_AllowanceFallback(t *testing.T) {
	f := newJobFixture(t, Options{DailyAllowanceFallback: 75})
	f.addGhost(t, 301)

	_, err := f.job.Run(context.Background())
	require.NoError(t, err)

	text, ok := f.sink.get(301)
	require.True(t, ok)
	assert.Contains(t, text, "Daily allowance: 75")
}

func TestJob_Run_FirstOfMonthInflation(t *testing.T) {
	f := newJobFixture(t, Options{DailyAllowanceFallback: 50, InflationFactor: 1.005})
	ctx := context.Background()

	u := f.addGhost(t, 401)
	goal, err := f.goals.Create(ctx, &model.Goal{UserID: u.ID, Name: "bike", TargetAmount: 333})
	require.NoError(t, err)

	f.job.now = func() time.Time {
		return time.Date(2025, time.June, 1, 7, 0, 0, 0, time.UTC)
	}

	report, err := f.job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Delivered)

	got, err := f.goals.GetByID(ctx, u.ID, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 335.0, got.TargetAmount) // 333 * 1.005 rounded up

	t.Run("mid-month run leaves targets alone", func(t *testing.T) {
		f.job.now = func() time.Time {
			return time.Date(2025, time.June, 15, 7, 0, 0, 0, time.UTC)
		}
		_, err := f.job.Run(ctx)
		require.NoError(t, err)

		got, err := f.goals.GetByID(ctx, u.ID, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, 335.0, got.TargetAmount)
	})
}

func TestDigest_Render_Flags(t *testing.T) {
	d := &Digest{
		Date:           time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		TodayExpense:   120,
		DailyAllowance: 100,
		Surplus:        -20,
		IdleCash:       true,
		CashBurn:       true,
	}
	text := d.Render()
	assert.Contains(t, text, "20 over your allowance")
	assert.Contains(t, text, "idle cash")
	assert.Contains(t, text, "cash spending")
}
