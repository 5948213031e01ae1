package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/repository"
	"shift-calendar/backend/internal/series"
)

var errStoreDown = errors.New("存储不可用")

// ── Mock SlotStore ──

// flakyStore 包装内存存储，可按需让读写失败
type flakyStore struct {
	repository.SlotStore
	failGet bool
	failPut bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{SlotStore: repository.NewMemoryStore()}
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet {
		return nil, errStoreDown
	}
	return s.SlotStore.Get(ctx, key)
}

func (s *flakyStore) Put(ctx context.Context, key string, value []byte) error {
	if s.failPut {
		return errStoreDown
	}
	return s.SlotStore.Put(ctx, key, value)
}

// ── Mock Notifier ──

type recordingNotifier struct {
	mu        sync.Mutex
	reminders []Reminder
	err       error
}

func (n *recordingNotifier) Notify(_ context.Context, r Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, r)
	return n.err
}

func (n *recordingNotifier) received() []Reminder {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Reminder(nil), n.reminders...)
}

// ── Mock Publisher ──

type mockPublisher struct {
	exchange string
	key      string
	msgs     []amqp.Publishing
	err      error
}

func (p *mockPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.exchange = exchange
	p.key = key
	p.msgs = append(p.msgs, msg)
	return nil
}

// ── Mock MailSender ──

type mockMailSender struct {
	msgs []*mail.Msg
	err  error
}

func (m *mockMailSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, messages...)
	return nil
}

// ── 测试环境 ──

var testNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

// testEnv 基于内存槽位存储的完整服务环境
type testEnv struct {
	store    *flakyStore
	repo     *repository.Repository
	shifts   *ShiftStore
	engine   *series.Engine
	settings SettingsService
	logger   *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newFlakyStore()
	logger := zap.NewNop()
	repo := repository.NewRepository(store, logger)

	settings := NewSettingsService(repo, "it", logger)
	if err := settings.Load(context.Background()); err != nil {
		t.Fatalf("加载设置失败: %v", err)
	}
	return &testEnv{
		store:    store,
		repo:     repo,
		shifts:   NewShiftStore(repo.Shift),
		engine:   series.NewEngine(series.WithIDFunc(seqIDs()), series.WithClock(fixedClock)),
		settings: settings,
		logger:   logger,
	}
}

// seed 直接写入班次集合
func (e *testEnv) seed(t *testing.T, shifts ...model.ShiftInstance) {
	t.Helper()
	if err := e.repo.Shift.ReplaceAll(context.Background(), shifts); err != nil {
		t.Fatalf("写入班次失败: %v", err)
	}
}

// stored 读取当前持久化的班次集合
func (e *testEnv) stored(t *testing.T) []model.ShiftInstance {
	t.Helper()
	shifts, err := e.repo.Shift.List(context.Background())
	if err != nil {
		t.Fatalf("读取班次失败: %v", err)
	}
	return shifts
}

func (e *testEnv) shiftService() ShiftService {
	return NewShiftService(e.repo, e.shifts, e.settings, e.engine, e.logger)
}

func findShift(shifts []model.ShiftInstance, id string) (model.ShiftInstance, bool) {
	return series.Find(shifts, id)
}

func shiftOnDate(shifts []model.ShiftInstance, date string) (model.ShiftInstance, bool) {
	for _, s := range shifts {
		if s.Date == date {
			return s, true
		}
	}
	return model.ShiftInstance{}, false
}

// dailySeries 构造 from..to 的每日系列（id 为 <prefix>-<日期>）
func dailySeries(prefix, recurrenceID, typeID string, days ...string) []model.ShiftInstance {
	rule := model.RecurrenceRule{Frequency: model.FrequencyDaily, Interval: 1, EndDate: days[len(days)-1]}
	out := make([]model.ShiftInstance, 0, len(days))
	for _, d := range days {
		r := rule
		out = append(out, model.ShiftInstance{
			ID:             prefix + "-" + d,
			Date:           d,
			TypeID:         typeID,
			StartTime:      "07:00",
			EndTime:        "15:00",
			Priority:       model.PriorityMedium,
			RecurrenceID:   recurrenceID,
			RecurrenceRule: &r,
			OriginalDate:   days[0],
		})
	}
	return out
}

func ptrTime(t time.Time) *time.Time { return &t }
