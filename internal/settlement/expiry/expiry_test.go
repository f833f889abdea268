package expiry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-settlement/internal/settlement/compensation"
	"go-settlement/internal/settlement/data"
	"go-settlement/internal/settlement/ledger"
	"go-settlement/internal/settlement/settlementtest"
	"go-settlement/internal/settlement/statemachine"
	"go-settlement/pkg/delayqueue"
	"go-settlement/pkg/logging"
)

type fakeProducer struct {
	job   delayqueue.Job
	delay time.Duration
}

func (p *fakeProducer) Enqueue(_ context.Context, job delayqueue.Job, delay time.Duration) (bool, error) {
	p.job = job
	p.delay = delay
	return true, nil
}

type jobRecorder struct {
	mux      sync.Mutex
	outcomes []string
}

func (r *jobRecorder) Job(_ string, outcome string) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *jobRecorder) Transition(data.EntityKind, string, string) {}
func (r *jobRecorder) Compensation(string, error)                 {}

type failingExpirer struct {
	err error
}

func (e failingExpirer) ExpireDeposit(context.Context, string) (statemachine.Outcome, error) {
	return statemachine.Outcome{}, e.err
}

func TestScheduleDepositExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		expiredAt time.Time
		wantDelay time.Duration
	}{
		{name: "future", expiredAt: now.Add(time.Minute), wantDelay: time.Minute},
		{name: "past clamps to zero", expiredAt: now.Add(-time.Hour), wantDelay: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			producer := &fakeProducer{}
			s := NewScheduler(producer, logging.NewNopLogger())
			s.now = func() time.Time { return now }

			require.NoError(t, s.ScheduleDepositExpiry(context.Background(), "DEP-7", test.expiredAt))

			assert.Equal(t, test.wantDelay, producer.delay)
			assert.Equal(t, "expire-deposit:DEP-7", producer.job.ID)
			assert.Equal(t, JobType, producer.job.Type)
			assert.JSONEq(t, `{"depositId":"DEP-7"}`, string(producer.job.Payload))
		})
	}
}

func TestHandlerErrors(t *testing.T) {
	job := delayqueue.Job{ID: JobID("DEP-1"), Type: JobType, Payload: json.RawMessage(`{"depositId":"DEP-1"}`)}

	h := NewHandler(failingExpirer{err: statemachine.ErrNotFoundOrAlreadyProcessed}, logging.NewNopLogger())
	require.NoError(t, h.Handle(context.Background(), job))

	h = NewHandler(failingExpirer{err: errors.New("db down")}, logging.NewNopLogger())
	require.Error(t, h.Handle(context.Background(), job))

	bad := job
	bad.Payload = json.RawMessage(`{"deposit":"DEP-1"}`)
	require.ErrorIs(t, h.Handle(context.Background(), bad), ErrBadPayload)
}

type harness struct {
	store     *settlementtest.Store
	machine   *statemachine.Machine
	queue     *delayqueue.Queue
	scheduler *Scheduler
	consumer  *Consumer
	recorder  *jobRecorder
	now       time.Time
}

func newHarness(t *testing.T, expirer Expirer) *harness {
	t.Helper()
	h := &harness{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return h.now }
	logger := logging.NewNopLogger()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	h.queue = delayqueue.New(client, delayqueue.Config{Prefix: "test", MaxAttempts: 2}, delayqueue.WithClock(clock))

	h.store = settlementtest.NewStore()
	h.recorder = &jobRecorder{}
	l := ledger.New(h.store, h.store, logger)
	engine := compensation.New(h.store, h.store, l, h.recorder, logger)
	h.machine = statemachine.New(h.store, h.store, l, engine, h.recorder, logger, statemachine.WithClock(clock))
	if expirer == nil {
		expirer = h.machine
	}

	h.scheduler = NewScheduler(h.queue, logger)
	h.scheduler.now = clock
	h.consumer = NewConsumer(
		ConsumerConfig{RetryDelays: []time.Duration{time.Second, 5 * time.Second}},
		h.queue,
		NewHandler(expirer, logger),
		h.recorder,
		logger,
	)
	return h
}

func (h *harness) createDeposit(t *testing.T) {
	t.Helper()
	h.store.AddUser(1, 0)
	d := h.store.AddDeposit(data.Deposit{
		DepositID:      "DEP-50",
		UserID:         1,
		Provider:       "paygate",
		AmountPay:      50000,
		AmountReceived: 50000,
		ExpiredAt:      h.now.Add(60 * time.Second),
	})
	require.NoError(t, h.scheduler.ScheduleDepositExpiry(context.Background(), d.DepositID, d.ExpiredAt))
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	jobs, err := h.queue.Claim(context.Background(), 10)
	require.NoError(t, err)
	for _, job := range jobs {
		require.NoError(t, h.consumer.Process(context.Background(), job))
	}
}

func (h *harness) pay(t *testing.T) error {
	t.Helper()
	_, err := h.machine.ApplyDepositEvent(context.Background(), statemachine.DepositEvent{
		DepositID: "DEP-50",
		Provider:  "paygate",
		Target:    data.DepositCompleted,
		Source:    statemachine.SourceProvider,
	})
	return err
}

func TestPaidDepositIgnoresLaterExpiry(t *testing.T) {
	h := newHarness(t, nil)
	h.createDeposit(t)

	h.now = h.now.Add(30 * time.Second)
	h.drain(t)
	require.NoError(t, h.pay(t))

	h.now = h.now.Add(30 * time.Second)
	h.drain(t)

	assert.Equal(t, data.DepositCompleted, h.store.Deposit("DEP-50").Status)
	assert.Equal(t, int64(50000), h.store.User(1).Balance)
	assert.Equal(t, []string{"done"}, h.recorder.outcomes)
	pending, err := h.queue.Pending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestExpiredDepositRejectsLatePayment(t *testing.T) {
	h := newHarness(t, nil)
	h.createDeposit(t)

	h.now = h.now.Add(60 * time.Second)
	h.drain(t)
	err := h.pay(t)

	require.ErrorIs(t, err, statemachine.ErrNotFoundOrAlreadyProcessed)
	assert.Equal(t, data.DepositExpired, h.store.Deposit("DEP-50").Status)
	assert.Zero(t, h.store.User(1).Balance)
	assert.Empty(t, h.store.AllMutations(1))
}

func TestFailedExpiryIsRetriedThenBuried(t *testing.T) {
	h := newHarness(t, failingExpirer{err: errors.New("db down")})
	h.createDeposit(t)

	h.now = h.now.Add(60 * time.Second)
	h.drain(t)
	h.now = h.now.Add(time.Second)
	h.drain(t)

	assert.Equal(t, []string{"retry", "dead"}, h.recorder.outcomes)
	dead, err := h.queue.Dead(context.Background())
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "expire-deposit:DEP-50", dead[0].ID)
}

func TestUnknownJobTypeIsDropped(t *testing.T) {
	h := newHarness(t, nil)

	err := h.consumer.Process(context.Background(), delayqueue.Job{ID: "x", Type: "send-email"})

	require.NoError(t, err)
	assert.Equal(t, []string{"dropped"}, h.recorder.outcomes)
}
