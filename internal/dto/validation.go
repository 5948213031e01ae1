package dto

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 向 gin 的校验引擎注册自定义规则：
//   - ymd  日期 YYYY-MM-DD
//   - ym   月份 YYYY-MM
//   - hhmm 时刻 HH:MM（24 小时制）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	rules := map[string]validator.Func{
		"ymd":  layoutRule("2006-01-02"),
		"ym":   layoutRule("2006-01"),
		"hhmm": layoutRule("15:04"),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func layoutRule(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		t, err := time.Parse(layout, s)
		return err == nil && t.Format(layout) == s
	}
}
