package report

import (
	"go.uber.org/zap"

	"sitecrawl/internal/crawler"
)

// Console logs engine events as they happen.
type Console struct {
	logger *zap.Logger
}

func NewConsole(logger *zap.Logger) *Console {
	return &Console{logger: logger}
}

func (c *Console) PageQueued(row int, url string) {
	c.logger.Debug("queued", zap.Int("row", row), zap.String("url", url))
}

func (c *Console) PageResult(res crawler.PageResult) {
	fields := []zap.Field{
		zap.Int("row", res.Row),
		zap.String("url", res.URL),
		zap.String("verdict", string(res.Verdict)),
	}
	if res.Failed() {
		c.logger.Warn("page failed", append(fields, zap.Error(res.Err))...)
		return
	}
	if len(res.Issues) > 0 {
		kinds := make([]string, len(res.Issues))
		for i, is := range res.Issues {
			kinds[i] = string(is.Kind)
		}
		fields = append(fields, zap.Strings("issues", kinds))
	}
	c.logger.Info("page", append(fields, zap.String("title", res.Page.Title))...)
}

func (c *Console) Progress(done, total int) {
	c.logger.Debug("progress", zap.Int("done", done), zap.Int("total", total))
}
