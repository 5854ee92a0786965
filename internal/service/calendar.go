package service

import (
	"context"
	"fmt"
	"time"

	"github.com/grimoireapp/grimoire-server/internal/domain"
	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
)

// CalendarDay is one date cell of the month grid.
type CalendarDay struct {
	Date       string `json:"date"`
	Day        int    `json:"day"`
	IsToday    bool   `json:"is_today"`
	State      string `json:"state"`
	Status     string `json:"status"`
	IsLocked   bool   `json:"is_locked"`
	Score      int    `json:"score"`
	HasBlog    bool   `json:"has_blog"`
	HasContent bool   `json:"has_content"`
	Tags       string `json:"tags"`
	Snapshot   string `json:"snapshot"`
	BlogText   string `json:"blog_text"`
	Footnotes  string `json:"footnotes"`
}

// CalendarMonth is a month grid. Weeks start on Monday and slots outside
// the month are nil.
type CalendarMonth struct {
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	MonthName string           `json:"month_name"`
	PrevYear  int              `json:"prev_year"`
	PrevMonth int              `json:"prev_month"`
	NextYear  int              `json:"next_year"`
	NextMonth int              `json:"next_month"`
	Today     string           `json:"today"`
	Weeks     [][]*CalendarDay `json:"cal_data"`
}

// Days returns the month's non-padding cells in date order.
func (m *CalendarMonth) Days() []*CalendarDay {
	var days []*CalendarDay
	for _, week := range m.Weeks {
		for _, d := range week {
			if d != nil {
				days = append(days, d)
			}
		}
	}
	return days
}

// Calendar builds the grid for a month. A zero year or month selects the current one.
func (s *DayService) Calendar(ctx context.Context, userID int64, year, month int) (*CalendarMonth, error) {
	today := s.Today()
	if year == 0 {
		year = today.Year
	}
	if month == 0 {
		month = int(today.Month)
	}
	if year < 1 || year > 9999 {
		return nil, domainerrors.Validation("Year must be between 1 and 9999.")
	}
	if month < 1 || month > 12 {
		return nil, domainerrors.Validation("Month must be between 1 and 12.")
	}

	first := domain.Date{Year: year, Month: time.Month(month), Day: 1}
	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	last := first.AddDays(daysInMonth - 1)

	logs, err := s.store.ListDayLogs(ctx, userID, first, last)
	if err != nil {
		return nil, fmt.Errorf("list day logs: %w", err)
	}
	byDate := make(map[domain.Date]*domain.DayLog, len(logs))
	for _, l := range logs {
		byDate[l.Date] = l
	}

	// Monday is column 0.
	offset := (int(first.Weekday()) + 6) % 7
	var weeks [][]*CalendarDay
	week := make([]*CalendarDay, offset, 7)
	for i := range daysInMonth {
		d := first.AddDays(i)
		cell, err := s.calendarDay(d, today, byDate[d])
		if err != nil {
			return nil, err
		}
		week = append(week, cell)
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]*CalendarDay, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, nil)
		}
		weeks = append(weeks, week)
	}

	prev := first.AddDays(-1)
	next := last.AddDays(1)
	return &CalendarMonth{
		Year:      year,
		Month:     month,
		MonthName: time.Month(month).String(),
		PrevYear:  prev.Year,
		PrevMonth: int(prev.Month),
		NextYear:  next.Year,
		NextMonth: int(next.Month),
		Today:     today.String(),
		Weeks:     weeks,
	}, nil
}

func (s *DayService) calendarDay(d, today domain.Date, log *domain.DayLog) (*CalendarDay, error) {
	state := domain.LockStateOf(d, today, s.start)
	cell := &CalendarDay{
		Date:     d.String(),
		Day:      d.Day,
		IsToday:  d.Equal(today),
		State:    state.String(),
		Status:   state.Label(),
		IsLocked: !state.CanEdit(),
		Snapshot: "{}",
	}
	if log == nil {
		return cell, nil
	}

	snapshot, err := domain.EncodeSnapshot(log.Snapshot)
	if err != nil {
		return nil, err
	}
	cell.Score = log.Score
	cell.HasBlog = log.HasBlog
	cell.HasContent = log.HasContent()
	cell.Tags = domain.EncodeTagList(log.Tags)
	cell.Snapshot = snapshot
	cell.BlogText = log.BlogText
	cell.Footnotes = log.Footnotes
	return cell, nil
}
