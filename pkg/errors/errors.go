package errors

import "errors"

// ErrSlotNotFound 存储槽位不存在（从未写入）
var ErrSlotNotFound = errors.New("存储槽位不存在")
