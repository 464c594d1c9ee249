package logger

import "go.uber.org/zap"

// 业务日志字段，保持各处字段名一致

func Username(name string) zap.Field { return zap.String("username", name) }

func Actor(name string) zap.Field { return zap.String("actor", name) }

func GroupID(id uint) zap.Field { return zap.Uint("group_id", id) }

func RequestID(id uint) zap.Field { return zap.Uint("request_id", id) }

func MessageID(id int64) zap.Field { return zap.Int64("message_id", id) }

func Field(name string) zap.Field { return zap.String("field", name) }

func Status(status string) zap.Field { return zap.String("status", status) }

func Count(n int) zap.Field { return zap.Int("count", n) }
