package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/recurrence"
	"shift-calendar/backend/internal/repository"
	"shift-calendar/backend/internal/series"
)

var ErrInvalidICS = errors.New("ICS 文件无法解析")

// ImportService ICS 导入业务接口
type ImportService interface {
	// ImportICS 将日历中的事件导入为 typeID 类型的班次
	ImportICS(ctx context.Context, typeID string, r io.Reader) (*dto.ImportICSResponse, error)
	// ImportICSFromURL 从 http(s):// 或 webcal:// 地址获取日历后导入
	ImportICSFromURL(ctx context.Context, typeID, url string) (*dto.ImportICSResponse, error)
}

type importService struct {
	store  *ShiftStore
	repo   *repository.Repository
	engine *series.Engine
	loc    *time.Location
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例。loc 为班次时间所在时区。
func NewImportService(repo *repository.Repository, store *ShiftStore, engine *series.Engine, loc *time.Location, logger *zap.Logger) ImportService {
	return &importService{store: store, repo: repo, engine: engine, loc: loc, logger: logger}
}

func (s *importService) ImportICSFromURL(ctx context.Context, typeID, url string) (*dto.ImportICSResponse, error) {
	body, err := FetchICSContent(url)
	if err != nil {
		s.logger.Warn("获取远程日历失败", zap.String("url", url), zap.Error(err))
		return nil, ErrInvalidICS
	}
	defer body.Close()
	return s.ImportICS(ctx, typeID, body)
}

// ImportICS 全部事件在一次存储更新中导入。
// 单次事件与现有班次重复时跳过；重复事件按系列保存，EXDATE 对应的实例随后删除。
func (s *importService) ImportICS(ctx context.Context, typeID string, r io.Reader) (*dto.ImportICSResponse, error) {
	types, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return nil, err
	}
	if _, ok := model.ShiftTypeIndex(types)[typeID]; !ok {
		return nil, ErrShiftTypeNotFound
	}

	events, skipped, err := parseICS(r, s.loc)
	if err != nil {
		s.logger.Warn("解析 ICS 失败", zap.Error(err))
		return nil, ErrInvalidICS
	}

	resp := &dto.ImportICSResponse{Skipped: skipped}
	_, err = s.store.Mutate(ctx, func(shifts []model.ShiftInstance) (*series.Result, error) {
		cur := shifts
		var changed []model.ShiftInstance
		for _, ev := range events {
			d := series.Draft{
				Date:            ev.Date,
				TypeID:          typeID,
				StartTime:       ev.StartTime,
				EndTime:         ev.EndTime,
				Notes:           ev.Notes,
				ShiftChangeMemo: ev.ShiftChangeMemo,
				Priority:        ev.Priority,
				IsCompleted:     ev.IsCompleted,
				Recurrence:      ev.Rule,
			}
			isSeries := recurrence.Usable(ev.Rule, ev.Date)
			if !isSeries && series.IsDuplicate(cur, d.Date, d.TypeID, d.StartTime, d.EndTime, "") {
				resp.Skipped++
				continue
			}

			res, err := s.engine.Save(cur, nil, d)
			if err != nil {
				resp.Skipped++
				continue
			}
			cur = res.Shifts
			added := res.Changed

			if isSeries {
				resp.Series++
				if cur, added, err = s.dropExDates(cur, added, ev.ExDates); err != nil {
					return nil, err
				}
			}
			changed = append(changed, added...)
		}
		resp.Created = len(changed)
		if len(changed) == 0 {
			return nil, nil
		}
		return &series.Result{Shifts: cur, Changed: changed}, nil
	})
	if err != nil {
		s.logger.Error("导入 ICS 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("ICS 导入完成",
		zap.String("type_id", typeID),
		zap.Int("created", resp.Created),
		zap.Int("series", resp.Series),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// dropExDates 删除新系列中落在 EXDATE 上的实例
func (s *importService) dropExDates(shifts, generated []model.ShiftInstance, exDates map[string]bool) ([]model.ShiftInstance, []model.ShiftInstance, error) {
	if len(exDates) == 0 {
		return shifts, generated, nil
	}
	kept := generated[:0:0]
	for _, g := range generated {
		if !exDates[g.Date] {
			kept = append(kept, g)
			continue
		}
		res, err := s.engine.Delete(shifts, g.ID, series.ScopeThisInstance)
		if err != nil {
			return nil, nil, err
		}
		shifts = res.Shifts
	}
	return shifts, kept, nil
}
