// Package day prints the quests due on one date.
package day

import (
	"context"
	"errors"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/calendar"
	"tableflip.dev/questlog/pkg/filter"
	"tableflip.dev/questlog/pkg/printers"
	"tableflip.dev/questlog/pkg/stats"
)

// Day lists Date's quests narrowed by Filter. Date defaults to today.
type Day struct {
	Service *app.Service
	Date    string
	Filter  filter.DayFilter
	ShowID  bool
	JSON    bool
}

func (n *Day) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show day, no service")
	}
	now := n.Service.Engine.Now()
	if n.Date == "" || n.Date == "today" {
		n.Date = calendar.TodayISO(now)
	}
	quests, err := n.Service.Day(ctx, n.Date, n.Filter)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(struct {
			Date   string           `json:"date"`
			Filter filter.DayFilter `json:"filter"`
			Stats  stats.DayStats   `json:"stats"`
			Quests any              `json:"quests"`
		}{n.Date, n.Filter, stats.ForDay(quests, now), quests})
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Now: now}
	pp.Day(n.Date, quests)
	return nil
}
