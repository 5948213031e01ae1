package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
)

func setupTestReminderService(t *testing.T, notifier Notifier) (ReminderService, *testEnv) {
	env := newTestEnv(t)
	svc := NewReminderService(env.shifts, env.repo.ShiftType, env.settings, notifier, time.Second, env.logger,
		WithReminderClock(fixedClock), WithReminderLocation(time.UTC))
	return svc, env
}

func TestReminderService_Scan_FiresDueAndClears(t *testing.T) {
	n := &recordingNotifier{}
	svc, env := setupTestReminderService(t, n)
	env.seed(t,
		model.ShiftInstance{ID: "due", Date: "2024-06-01", TypeID: "mattina", ReminderDateTime: ptrTime(testNow.Add(-time.Minute))},
		model.ShiftInstance{ID: "exact", Date: "2024-06-02", TypeID: "sconosciuto", ReminderDateTime: ptrTime(testNow)},
		model.ShiftInstance{ID: "later", Date: "2024-06-03", TypeID: "notte", ReminderDateTime: ptrTime(testNow.Add(time.Hour))},
		model.ShiftInstance{ID: "none", Date: "2024-06-04", TypeID: "notte"},
	)

	fired, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan 应成功: %v", err)
	}
	if fired != 2 {
		t.Fatalf("期望触发 2 条提醒，实际 %d", fired)
	}

	got := n.received()
	if len(got) != 2 {
		t.Fatalf("期望投递 2 条，实际 %d", len(got))
	}
	if got[0].Title != "Promemoria Turno" {
		t.Errorf("期望意大利语标题，实际 %s", got[0].Title)
	}
	want := `È ora per il tuo turno "Mattina" del 01/06/2024 alle 09:29.`
	if got[0].Body != want {
		t.Errorf("正文不正确\n期望 %s\n实际 %s", want, got[0].Body)
	}
	if got[1].Body != `È ora per il tuo turno "Unknown" del 02/06/2024 alle 09:30.` {
		t.Errorf("未知类型应显示 Unknown，实际 %s", got[1].Body)
	}

	stored := env.stored(t)
	for _, id := range []string{"due", "exact"} {
		s, _ := findShift(stored, id)
		if s.ReminderDateTime != nil {
			t.Errorf("%s 的提醒应已清除", id)
		}
	}
	later, _ := findShift(stored, "later")
	if later.ReminderDateTime == nil {
		t.Error("未到期的提醒不应清除")
	}

	// 再次扫描不会重复触发
	if again, _ := svc.Scan(context.Background()); again != 0 {
		t.Errorf("已清除的提醒不应再次触发，实际 %d", again)
	}
}

func TestReminderService_Scan_English(t *testing.T) {
	n := &recordingNotifier{}
	svc, env := setupTestReminderService(t, n)
	lang := "en"
	if _, err := env.settings.Update(context.Background(), &dto.UpdateSettingsRequest{Language: &lang}); err != nil {
		t.Fatalf("更新语言失败: %v", err)
	}
	env.seed(t, model.ShiftInstance{ID: "due", Date: "2024-06-01", TypeID: "notte", ReminderDateTime: ptrTime(testNow)})

	if _, err := svc.Scan(context.Background()); err != nil {
		t.Fatalf("Scan 应成功: %v", err)
	}
	got := n.received()
	if len(got) != 1 || got[0].Title != "Shift Reminder" {
		t.Fatalf("期望英文提醒，实际 %+v", got)
	}
	if got[0].Body != `It's time for your "Notte" shift on 06/01/2024 at 09:30 AM.` {
		t.Errorf("英文正文不正确: %s", got[0].Body)
	}
}

func TestReminderService_Scan_DeliveryFailureStillClears(t *testing.T) {
	n := &recordingNotifier{err: errors.New("投递失败")}
	svc, env := setupTestReminderService(t, n)
	env.seed(t, model.ShiftInstance{ID: "due", Date: "2024-06-01", TypeID: "mattina", ReminderDateTime: ptrTime(testNow)})

	fired, err := svc.Scan(context.Background())
	if err != nil || fired != 1 {
		t.Fatalf("投递失败不应影响扫描结果: fired=%d err=%v", fired, err)
	}
	s, _ := findShift(env.stored(t), "due")
	if s.ReminderDateTime != nil {
		t.Error("投递失败时提醒也应清除")
	}
}

func TestReminderService_Scan_NothingDueDoesNotWrite(t *testing.T) {
	svc, env := setupTestReminderService(t, &recordingNotifier{})
	env.seed(t, model.ShiftInstance{ID: "later", Date: "2024-06-03", TypeID: "notte", ReminderDateTime: ptrTime(testNow.Add(time.Hour))})
	env.store.failPut = true

	fired, err := svc.Scan(context.Background())
	if err != nil || fired != 0 {
		t.Errorf("无到期提醒时不应写入存储: fired=%d err=%v", fired, err)
	}
}

func TestReminderService_Run_StopsOnCancel(t *testing.T) {
	n := &recordingNotifier{}
	env := newTestEnv(t)
	env.seed(t, model.ShiftInstance{ID: "due", Date: "2024-06-01", TypeID: "mattina", ReminderDateTime: ptrTime(testNow)})
	svc := NewReminderService(env.shifts, env.repo.ShiftType, env.settings, n, 10*time.Millisecond, zap.NewNop(),
		WithReminderClock(fixedClock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(n.received()) == 0 {
		select {
		case <-deadline:
			t.Fatal("提醒扫描未在期限内触发")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("取消后 Run 应退出")
	}
}
