package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/series"
)

// ── 附件模块业务错误 ──

var (
	ErrDocumentNotFound   = errors.New("附件不存在")
	ErrAttachmentTooLarge = errors.New("附件超过大小上限")
	ErrEmptyAttachment    = errors.New("附件内容为空")
)

const genericMIME = "application/octet-stream"

// DocumentFile 解码后的附件
type DocumentFile struct {
	Name string
	Type string
	Data []byte
}

// DocumentService 班次附件业务接口
//
// 附件以 data URL 内联保存在班次实例中，只属于被操作的那一个实例。
type DocumentService interface {
	Add(ctx context.Context, shiftID, name, contentType string, data []byte) (*model.Document, error)
	Remove(ctx context.Context, shiftID, docID string) error
	Get(ctx context.Context, shiftID, docID string) (*DocumentFile, error)
}

type documentService struct {
	store    *ShiftStore
	maxBytes int64
	logger   *zap.Logger
}

// NewDocumentService 创建 DocumentService 实例
func NewDocumentService(store *ShiftStore, maxBytes int64, logger *zap.Logger) DocumentService {
	return &documentService{store: store, maxBytes: maxBytes, logger: logger}
}

// ────────────────────── Add ──────────────────────

func (s *documentService) Add(ctx context.Context, shiftID, name, contentType string, data []byte) (*model.Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAttachment
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrAttachmentTooLarge
	}

	// 客户端未声明类型时按内容识别
	if contentType == "" || strings.HasPrefix(contentType, genericMIME) {
		contentType = mimetype.Detect(data).String()
	}
	doc := model.Document{
		ID:      uuid.NewString(),
		Name:    name,
		Type:    contentType,
		Content: encodeDataURL(contentType, data),
	}

	_, err := s.store.Mutate(ctx, func(shifts []model.ShiftInstance) (*series.Result, error) {
		out := model.CloneShifts(shifts)
		for i := range out {
			if out[i].ID == shiftID {
				out[i].Documents = append(out[i].Documents, doc)
				return &series.Result{Shifts: out, Changed: []model.ShiftInstance{out[i]}}, nil
			}
		}
		return nil, ErrShiftNotFound
	})
	if err != nil {
		if !errors.Is(err, ErrShiftNotFound) {
			s.logger.Error("保存附件失败", zap.String("shift_id", shiftID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("附件已添加",
		zap.String("shift_id", shiftID),
		zap.String("doc_id", doc.ID),
		zap.String("type", doc.Type),
		zap.Int("bytes", len(data)),
	)
	return &doc, nil
}

// ────────────────────── Remove ──────────────────────

func (s *documentService) Remove(ctx context.Context, shiftID, docID string) error {
	_, err := s.store.Mutate(ctx, func(shifts []model.ShiftInstance) (*series.Result, error) {
		out := model.CloneShifts(shifts)
		for i := range out {
			if out[i].ID != shiftID {
				continue
			}
			docs := out[i].Documents[:0:0]
			for _, d := range out[i].Documents {
				if d.ID != docID {
					docs = append(docs, d)
				}
			}
			if len(docs) == len(out[i].Documents) {
				return nil, ErrDocumentNotFound
			}
			out[i].Documents = docs
			return &series.Result{Shifts: out, Changed: []model.ShiftInstance{out[i]}}, nil
		}
		return nil, ErrShiftNotFound
	})
	if err != nil && !errors.Is(err, ErrShiftNotFound) && !errors.Is(err, ErrDocumentNotFound) {
		s.logger.Error("删除附件失败", zap.String("shift_id", shiftID), zap.Error(err))
	}
	return err
}

// ────────────────────── Get ──────────────────────

func (s *documentService) Get(ctx context.Context, shiftID, docID string) (*DocumentFile, error) {
	shifts, err := s.store.Snapshot(ctx)
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}
	inst, ok := series.Find(shifts, shiftID)
	if !ok {
		return nil, ErrShiftNotFound
	}
	for _, d := range inst.Documents {
		if d.ID != docID {
			continue
		}
		mime, data, err := decodeDataURL(d.Content)
		if err != nil {
			s.logger.Warn("附件内容无法解码", zap.String("doc_id", docID), zap.Error(err))
			return nil, err
		}
		if d.Type != "" {
			mime = d.Type
		}
		return &DocumentFile{Name: d.Name, Type: mime, Data: data}, nil
	}
	return nil, ErrDocumentNotFound
}

// ── data URL ──

func encodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// decodeDataURL 仅支持 base64 编码的 data URL
func decodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("不是 data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL 缺少内容")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data URL 不是 base64 编码")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("解码 data URL 失败: %w", err)
	}
	if mime == "" {
		mime = genericMIME
	}
	return mime, data, nil
}
