package api

import "Attune/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	CheckInHandler *handler.CheckInHandler
	MetricHandler  *handler.MetricHandler
	InsightHandler *handler.InsightHandler
}
