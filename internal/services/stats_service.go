package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/terraincognita07/medport/internal/models"
)

// StatsService aggregates the event history per medication.
type StatsService struct {
	events EventHistoryReader
}

type MedicationStats struct {
	MedicationID uint
	Name         string
	Taken        int
	Snoozed      int
	LastTakenAt  *time.Time
}

func NewStatsService(events EventHistoryReader) *StatsService {
	return &StatsService{events: events}
}

// BuildMedicationStats counts acknowledgements and snoozes in [from, to),
// ordered by medication id.
func (service *StatsService) BuildMedicationStats(ctx context.Context, from *time.Time, to *time.Time) ([]MedicationStats, error) {
	events, err := service.events.ListEventHistory(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load event history: %w", err)
	}

	byMedication := make(map[uint]*MedicationStats)
	for _, event := range events {
		medicationID, name, _ := describeEventReminder(event)
		stats, ok := byMedication[medicationID]
		if !ok {
			stats = &MedicationStats{MedicationID: medicationID, Name: name}
			byMedication[medicationID] = stats
		}

		switch event.Kind {
		case models.EventAcknowledged:
			stats.Taken++
			if stats.LastTakenAt == nil || event.OccurredAt.After(*stats.LastTakenAt) {
				occurred := event.OccurredAt
				stats.LastTakenAt = &occurred
			}
		case models.EventSnoozed:
			stats.Snoozed++
		}
	}

	result := make([]MedicationStats, 0, len(byMedication))
	for _, stats := range byMedication {
		result = append(result, *stats)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MedicationID < result[j].MedicationID
	})
	return result, nil
}
