package main

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// scheduleRefresh starts a cron that sends refreshMsg on schedule. An empty schedule
// returns a nil cron.
func scheduleRefresh(schedule string, loc *time.Location, send func(tea.Msg), log *zap.Logger) (*cron.Cron, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return nil, nil
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(schedule, func() {
		log.Debug("scheduled refresh")
		send(refreshMsg{})
	}); err != nil {
		return nil, err
	}
	c.Start()
	log.Info("refresh scheduled", zap.String("schedule", schedule))
	return c, nil
}
