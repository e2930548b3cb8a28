package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/terraincognita07/medport/internal/i18n"
	"github.com/terraincognita07/medport/internal/schedule"
	"github.com/terraincognita07/medport/internal/services"
)

// DueOptions control the one-shot due check.
type DueOptions struct {
	// At defaults to the source clock when zero.
	At           time.Time
	MedicationID *uint
	Language     string
	Location     *time.Location
}

// RunDueCommand prints the reminders that are due or snoozed at the given
// instant. Reminders with a broken schedule are skipped and reported in a
// trailing warning line.
func RunDueCommand(ctx context.Context, out io.Writer, source services.DueSource, messages *i18n.Manager, options DueOptions) error {
	if options.Location == nil {
		options.Location = time.UTC
	}
	at := options.At
	if at.IsZero() {
		at = source.Now()
	}

	due, err := source.DueReminders(ctx, at, options.MedicationID)
	var ruleErr *schedule.InvalidRuleError
	if err != nil && (due == nil || !errors.As(err, &ruleErr)) {
		return fmt.Errorf("due check failed: %w", err)
	}

	stamp := at.In(options.Location).Format("2006-01-02 15:04")
	if len(due) == 0 {
		fmt.Fprintln(out, messages.Translatef(options.Language, "cli.due.none", stamp))
	} else {
		fmt.Fprintln(out, messages.Translatef(options.Language, "cli.due.header", stamp))
		for _, evaluation := range due {
			fmt.Fprintln(out, "  "+dueRow(messages, options, evaluation))
		}
	}

	if err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
	}
	return nil
}

func dueRow(messages *i18n.Manager, options DueOptions, evaluation services.ReminderEvaluation) string {
	name := fmt.Sprintf("medication %d", evaluation.Reminder.MedicationID)
	if evaluation.Reminder.Medication != nil {
		name = evaluation.Reminder.Medication.Name
	}
	scheduled := "-"
	if evaluation.Occurrence != nil {
		scheduled = evaluation.Occurrence.In(options.Location).Format("15:04")
	}
	return messages.Translatef(options.Language, "cli.due.row", evaluation.Reminder.ID, name, evaluation.State.String(), scheduled)
}
