package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/repository"
)

func strPtr(s string) *string { return &s }

// ── Load 测试 ──

func TestSettingsService_Load_Defaults(t *testing.T) {
	env := newTestEnv(t)

	cur := env.settings.Current()
	if cur.ViewMode != "grid" || cur.WeekStartsOn != "monday" || cur.Theme != "light" {
		t.Errorf("默认设置不正确: %+v", cur)
	}
	if cur.Language != "it" {
		t.Errorf("期望默认语言 it，实际 %s", cur.Language)
	}
	if len(cur.ActiveFilters) != len(model.DefaultShiftTypes()) {
		t.Errorf("默认应显示全部类型，实际 %v", cur.ActiveFilters)
	}
	if cur.ListFilters.Status != "all" {
		t.Errorf("期望列表状态过滤 all，实际 %s", cur.ListFilters.Status)
	}
}

func TestSettingsService_Load_DefaultLanguageFromConfig(t *testing.T) {
	repo := repository.NewRepository(repository.NewMemoryStore(), zap.NewNop())
	svc := NewSettingsService(repo, "en", zap.NewNop())
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if got := svc.Current().Language; got != "en" {
		t.Errorf("槽位缺失时应使用配置的默认语言 en，实际 %s", got)
	}
}

func TestSettingsService_Load_PersistedValues(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, model.SlotViewMode, []byte("list"))
	_ = store.Put(ctx, model.SlotTheme, []byte("dark"))
	_ = store.Put(ctx, model.SlotActiveFilters, []byte(`["notte"]`))

	repo := repository.NewRepository(store, zap.NewNop())
	svc := NewSettingsService(repo, "it", zap.NewNop())
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}

	cur := svc.Current()
	if cur.ViewMode != "list" || cur.Theme != "dark" {
		t.Errorf("应读取已保存的设置，实际 %+v", cur)
	}
	if len(cur.ActiveFilters) != 1 || cur.ActiveFilters[0] != "notte" {
		t.Errorf("期望 activeFilters=[notte]，实际 %v", cur.ActiveFilters)
	}
}

func TestSettingsService_Load_StoreError(t *testing.T) {
	store := newFlakyStore()
	store.failGet = true
	repo := repository.NewRepository(store, zap.NewNop())
	svc := NewSettingsService(repo, "it", zap.NewNop())

	if err := svc.Load(context.Background()); !errors.Is(err, errStoreDown) {
		t.Errorf("期望存储错误，实际: %v", err)
	}
	// 加载失败时仍保有默认值
	if svc.Current().ViewMode != "grid" {
		t.Error("加载失败时应保留默认设置")
	}
}

// ── Update 测试 ──

func TestSettingsService_Update_Partial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.settings.Update(ctx, &dto.UpdateSettingsRequest{
		Language: strPtr("en"),
		ListFilters: &dto.ListFiltersDTO{
			Start:      "2024-01-01",
			Priorities: []string{"high"},
		},
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Language != "en" {
		t.Errorf("期望语言 en，实际 %s", resp.Language)
	}
	if resp.ViewMode != "grid" {
		t.Errorf("未提交的字段应保持不变，实际 viewMode=%s", resp.ViewMode)
	}
	if resp.ListFilters.Status != "all" {
		t.Errorf("未提交状态时应为 all，实际 %s", resp.ListFilters.Status)
	}

	// 重新加载后仍然生效
	reloaded := NewSettingsService(env.repo, "it", zap.NewNop())
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	cur := reloaded.Current()
	if cur.Language != "en" || cur.ListFilters.DateRange.Start != "2024-01-01" {
		t.Errorf("更新应已持久化，实际 %+v", cur)
	}
	if len(cur.ListFilters.Priorities) != 1 || cur.ListFilters.Priorities[0] != model.PriorityHigh {
		t.Errorf("期望优先级过滤 [high]，实际 %v", cur.ListFilters.Priorities)
	}
}

func TestSettingsService_Update_StoreErrorKeepsState(t *testing.T) {
	env := newTestEnv(t)
	env.store.failPut = true

	_, err := env.settings.Update(context.Background(), &dto.UpdateSettingsRequest{Theme: strPtr("dark")})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("期望存储错误，实际: %v", err)
	}
	if env.settings.Current().Theme != "light" {
		t.Error("写入失败时内存中的设置不应改变")
	}
}

func TestSettingsService_CurrentIsCopy(t *testing.T) {
	env := newTestEnv(t)

	cur := env.settings.Current()
	cur.ActiveFilters[0] = "modificato"
	if env.settings.Current().ActiveFilters[0] == "modificato" {
		t.Error("Current 返回的切片不应与内部状态共享")
	}
}

// ── 类型过滤维护 ──

func TestSettingsService_RetainAndAddActiveFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.settings.RetainActiveFilters(ctx, []string{"mattina", "notte", "nuovo"}); err != nil {
		t.Fatalf("RetainActiveFilters 应成功: %v", err)
	}
	got := env.settings.Current().ActiveFilters
	if len(got) != 2 || got[0] != "mattina" || got[1] != "notte" {
		t.Errorf("期望 [mattina notte]，实际 %v", got)
	}

	if err := env.settings.AddActiveFilter(ctx, "ferie"); err != nil {
		t.Fatalf("AddActiveFilter 应成功: %v", err)
	}
	if err := env.settings.AddActiveFilter(ctx, "ferie"); err != nil {
		t.Fatalf("重复添加应成功: %v", err)
	}
	got = env.settings.Current().ActiveFilters
	if len(got) != 3 || got[2] != "ferie" {
		t.Errorf("期望 [mattina notte ferie]，实际 %v", got)
	}
}

func TestSettingsService_Update_CustomThemesMerge(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.settings.Update(context.Background(), &dto.UpdateSettingsRequest{
		CustomThemes: &dto.CustomThemesDTO{Dark: dto.ThemeColorsDTO{PrimaryColor: "#ff0000"}},
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.CustomThemes.Dark.PrimaryColor != "#ff0000" {
		t.Errorf("期望暗色主色 #ff0000，实际 %s", resp.CustomThemes.Dark.PrimaryColor)
	}
	if resp.CustomThemes.Dark.BgColor != "#121212" {
		t.Errorf("未提交的颜色应保留，实际 %s", resp.CustomThemes.Dark.BgColor)
	}
	if resp.CustomThemes.Light.PrimaryColor != "#4a90e2" {
		t.Errorf("亮色主题不应变化，实际 %s", resp.CustomThemes.Light.PrimaryColor)
	}
}
