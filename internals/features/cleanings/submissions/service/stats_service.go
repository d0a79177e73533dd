// internals/features/cleanings/submissions/service/stats_service.go
package service

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"cleantrack_backend/internals/features/cleanings/submissions/dto"
	"cleantrack_backend/internals/features/cleanings/submissions/model"
)

// ErrInvalidDays: the days query parameter is not a non-negative integer.
var ErrInvalidDays = errors.New("days must be a non-negative integer")

const defaultStatsDays = 30

// ParseDays validates the ?days= query value. Absent means the 30-day default;
// anything that is not a non-negative integer is a client error.
func ParseDays(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultStatsDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, ErrInvalidDays
	}
	return days, nil
}

// StatsService derives roll-up statistics over the submission set. All
// queries run against an already ownership-scoped base query so the numbers
// never include rows the caller may not see.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

func (s *StatsService) window(days int) (start, end time.Time) {
	end = DateOnly(time.Now().UTC())
	start = end.AddDate(0, 0, -days)
	return start, end
}

// loadWindow fetches submissions in [today-days, today] with everything the
// completion-rate and per-location breakdowns need.
func (s *StatsService) loadWindow(base *gorm.DB, days int) ([]model.SubmissionModel, error) {
	start, end := s.window(days)
	var submissions []model.SubmissionModel
	err := base.
		Where("date BETWEEN ? AND ?", start, end).
		Preload("TaskRatings").
		Preload("Location").
		Preload("Staff").
		Order("date DESC").
		Find(&submissions).Error
	return submissions, err
}

func avgCompletionRate(submissions []model.SubmissionModel) float64 {
	if len(submissions) == 0 {
		return 0
	}
	total := 0
	for i := range submissions {
		total += submissions[i].CompletionRate()
	}
	avg := float64(total) / float64(len(submissions))
	return math.Round(avg*100) / 100
}

func distinctStaff(submissions []model.SubmissionModel) int64 {
	seen := map[uint]struct{}{}
	for i := range submissions {
		seen[submissions[i].StaffID] = struct{}{}
	}
	return int64(len(seen))
}

// LocationStats aggregates one location's submissions over a trailing window.
func (s *StatsService) LocationStats(base *gorm.DB, locationID uint, days int) (dto.LocationStatsResponse, error) {
	scoped := base.Where("location_id = ?", locationID)
	submissions, err := s.loadWindow(scoped, days)
	if err != nil {
		return dto.LocationStatsResponse{}, err
	}

	recent := submissions
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return dto.LocationStatsResponse{
		SubmissionCount:   int64(len(submissions)),
		AvgCompletionRate: avgCompletionRate(submissions),
		StaffCount:        distinctStaff(submissions),
		RecentSubmissions: dto.ToSubmissionListResponses(recent),
	}, nil
}

// GlobalStats aggregates the caller-visible submission set over a trailing
// window, including the per-location breakdown ordered by count descending.
func (s *StatsService) GlobalStats(base *gorm.DB, days int) (dto.GlobalStatsResponse, error) {
	submissions, err := s.loadWindow(base, days)
	if err != nil {
		return dto.GlobalStatsResponse{}, err
	}

	counts := map[string]int64{}
	for i := range submissions {
		counts[submissions[i].Location.Name]++
	}
	byLocation := make([]dto.LocationCount, 0, len(counts))
	for name, count := range counts {
		byLocation = append(byLocation, dto.LocationCount{LocationName: name, Count: count})
	}
	sort.Slice(byLocation, func(i, j int) bool {
		if byLocation[i].Count != byLocation[j].Count {
			return byLocation[i].Count > byLocation[j].Count
		}
		return byLocation[i].LocationName < byLocation[j].LocationName
	})

	return dto.GlobalStatsResponse{
		SubmissionCount:       int64(len(submissions)),
		AvgCompletionRate:     avgCompletionRate(submissions),
		ActiveUsers:           distinctStaff(submissions),
		SubmissionsByLocation: byLocation,
	}, nil
}
