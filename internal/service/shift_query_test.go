package service

import (
	"strings"
	"testing"

	"shift-calendar/backend/internal/model"
)

func ids(shifts []model.ShiftInstance) string {
	out := make([]string, len(shifts))
	for i, s := range shifts {
		out[i] = s.ID
	}
	return strings.Join(out, ",")
}

func querySample() []model.ShiftInstance {
	return []model.ShiftInstance{
		{ID: "a", Date: "2024-05-03", TypeID: "mattina", Priority: model.PriorityLow},
		{ID: "b", Date: "2024-05-01", TypeID: "notte", Priority: model.PriorityHigh, IsCompleted: true},
		{ID: "c", Date: "2024-05-02", TypeID: "mattina"},
		{ID: "d", Date: "2024-05-04", TypeID: "rimosso", Priority: model.PriorityMedium},
		{ID: "e", Date: "2024-04-30", TypeID: "notte", Priority: model.PriorityHigh},
	}
}

func TestFilterByTypes(t *testing.T) {
	shifts := querySample()

	if got := ids(filterByTypes(shifts, []string{"mattina", "notte"}, 2)); got != "a,b,c,d,e" {
		t.Errorf("激活全部类型时不应过滤，实际 %s", got)
	}
	if got := ids(filterByTypes(shifts, []string{"notte"}, 2)); got != "b,e" {
		t.Errorf("期望 b,e，实际 %s", got)
	}
	if got := filterByTypes(shifts, nil, 2); len(got) != 0 {
		t.Errorf("未激活任何类型时应为空，实际 %s", ids(got))
	}
}

func TestApplyListFilters(t *testing.T) {
	shifts := querySample()
	cases := []struct {
		name string
		f    model.ListFilters
		want string
	}{
		{"全部", model.ListFilters{Status: "all"}, "a,b,c,d,e"},
		{"已完成", model.ListFilters{Status: "completed"}, "b"},
		{"未完成", model.ListFilters{Status: "incomplete"}, "a,c,d,e"},
		{"优先级不匹配缺省值", model.ListFilters{Priorities: []model.Priority{model.PriorityLow, model.PriorityMedium}}, "a,d"},
		{"日期范围闭区间", model.ListFilters{DateRange: model.DateRange{Start: "2024-05-01", End: "2024-05-03"}}, "a,b,c"},
		{"组合条件", model.ListFilters{
			Status:     "incomplete",
			Priorities: []model.Priority{model.PriorityHigh},
			DateRange:  model.DateRange{End: "2024-05-31"},
		}, "e"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(applyListFilters(shifts, tc.f)); got != tc.want {
				t.Errorf("期望 %s，实际 %s", tc.want, got)
			}
		})
	}
}

func TestSortShifts(t *testing.T) {
	cases := []struct {
		name string
		key  string
		desc bool
		want string
	}{
		{"日期升序", SortByDate, false, "e,b,c,a,d"},
		{"日期降序", SortByDate, true, "d,a,c,b,e"},
		// 同优先级保持原顺序；缺省优先级与 low 同级
		{"优先级升序为高优先级在前", SortByPriority, false, "b,e,d,a,c"},
		{"优先级降序", SortByPriority, true, "a,c,d,b,e"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shifts := querySample()
			sortShifts(shifts, tc.key, tc.desc)
			if got := ids(shifts); got != tc.want {
				t.Errorf("期望 %s，实际 %s", tc.want, got)
			}
		})
	}
}
