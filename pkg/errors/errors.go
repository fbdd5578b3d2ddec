package errors

import "errors"

// ErrSlugTaken 同一日期下 slug 已被占用（唯一索引冲突）
var ErrSlugTaken = errors.New("同一天内已存在相同 slug 的课程")
