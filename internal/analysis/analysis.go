// Package analysis computes the dashboard chart series: thirty-day user
// growth, message peak hours over the last day, and violation type counts.
package analysis

import (
	"fmt"
	"time"

	"anonychat/backend/internal/models"
	"anonychat/backend/internal/storage"
	"anonychat/backend/internal/userstore"
)

const growthDays = 30

// Series is one chart: parallel labels and values.
type Series struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// Analytics is the full chart payload for the dashboard.
type Analytics struct {
	UserGrowth     Series `json:"userGrowth"`
	PeakHours      Series `json:"peakHours"`
	ViolationTypes Series `json:"violationTypes"`
}

// Service reads from the user mirror and storage on demand; nothing is
// cached between calls.
type Service struct {
	Users   *userstore.Store
	Storage storage.Storage
}

// NewService wires an analytics service.
func NewService(users *userstore.Store, s storage.Storage) *Service {
	return &Service{Users: users, Storage: s}
}

// Calculate builds all chart series. Storage errors degrade the affected
// series to zeros rather than failing the whole payload.
func (s *Service) Calculate() Analytics {
	now := time.Now()
	return Analytics{
		UserGrowth:     s.userGrowth(now),
		PeakHours:      s.peakHours(now),
		ViolationTypes: s.violationTypes(),
	}
}

// userGrowth counts signups per day over the last thirty days.
func (s *Service) userGrowth(now time.Time) Series {
	perDay := make(map[string]int)
	cutoff := now.AddDate(0, 0, -growthDays)
	for _, u := range s.Users.All() {
		if u.JoinedAt.After(cutoff) {
			perDay[u.JoinedAt.Format("2006-01-02")]++
		}
	}

	out := Series{
		Labels: make([]string, 0, growthDays),
		Data:   make([]int, 0, growthDays),
	}
	for i := growthDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		out.Labels = append(out.Labels, day.Format("02 Jan"))
		out.Data = append(out.Data, perDay[day.Format("2006-01-02")])
	}
	return out
}

// peakHours buckets the last day's transcript entries by hour of day.
func (s *Service) peakHours(now time.Time) Series {
	out := Series{
		Labels: make([]string, 24),
		Data:   make([]int, 24),
	}
	for i := range out.Labels {
		out.Labels[i] = fmt.Sprintf("%02d:00", i)
	}

	entries, err := s.Storage.TranscriptSince(now.Add(-24 * time.Hour))
	if err != nil {
		return out
	}
	for _, e := range entries {
		out.Data[e.Timestamp.Hour()]++
	}
	return out
}

func (s *Service) violationTypes() Series {
	out := Series{
		Labels: []string{models.ViolationProfanity, models.ViolationReport},
		Data:   make([]int, 2),
	}
	violations, err := s.Storage.Violations()
	if err != nil {
		return out
	}
	for _, v := range violations {
		switch v.Type {
		case models.ViolationProfanity:
			out.Data[0]++
		case models.ViolationReport:
			out.Data[1]++
		}
	}
	return out
}
