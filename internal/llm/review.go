package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/daybook/internal/summary"
	"github.com/javiermolinar/daybook/internal/task"
)

const reviewSystemPrompt = `You are a minimalist planning coach. Reply with JSON only, no markdown. Be extremely concise.`

const reviewPromptTemplate = `Review this week of time blocks and reply with exactly this JSON shape:

{"theme": "2-4 word theme", "observations": ["..."], "next_week": ["..."]}

Rules:
- At most 3 observations and 2 next_week actions
- Keep each entry under 70 characters
- Be specific with days, times and durations from the data
- Flag days planned beyond their awake time and work that was dropped

Data format: each block is "HH:MM-HH:MM  [status]  title  (group)".

%s`

// Review is a model's short assessment of a week.
type Review struct {
	Theme        string   `json:"theme"`
	Observations []string `json:"observations"`
	NextWeek     []string `json:"next_week"`
}

// Reviewer asks a model to review a week summary.
type Reviewer struct {
	client Client
}

// NewReviewer creates a Reviewer backed by client.
func NewReviewer(client Client) *Reviewer {
	return &Reviewer{client: client}
}

// ReviewWeek sends the week's blocks and totals to the model. groupNames maps
// group ids to display names.
func (r *Reviewer) ReviewWeek(ctx context.Context, week *summary.WeekSummary, groupNames map[string]string) (*Review, error) {
	prompt := fmt.Sprintf(reviewPromptTemplate, formatWeekData(week, groupNames))

	var review Review
	err := r.client.ChatJSON(ctx, []Message{
		{Role: RoleSystem, Content: reviewSystemPrompt},
		{Role: RoleUser, Content: prompt},
	}, &review)
	if err != nil {
		return nil, fmt.Errorf("reviewing week: %w", err)
	}
	if strings.TrimSpace(review.Theme) == "" && len(review.Observations) == 0 {
		return nil, fmt.Errorf("reviewing week: model returned an empty review")
	}
	return &review, nil
}

// formatWeekData renders the week day by day in the summary's timezone.
func formatWeekData(week *summary.WeekSummary, groupNames map[string]string) string {
	loc, err := time.LoadLocation(week.Timezone)
	if err != nil {
		loc = time.UTC
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Week: %s - %s (%s)\n",
		week.Start.Format("Mon Jan 2"), week.End.Format("Mon Jan 2, 2006"), week.Timezone)

	byDay := make(map[string][]*task.Task)
	for _, t := range week.Tasks {
		key := t.ScheduledStart.In(loc).Format("2006-01-02")
		byDay[key] = append(byDay[key], t)
	}

	for _, ds := range week.Stats.Days {
		fmt.Fprintf(&sb, "\n%s  awake %dm, planned %dm, done %dm\n",
			ds.Date.Format("Mon Jan 2"), ds.AvailableMinutes, ds.PlannedMinutes, ds.CompletedMinutes)
		for _, t := range byDay[ds.Date.Format("2006-01-02")] {
			group := "no group"
			if t.GroupID != nil {
				if name, ok := groupNames[*t.GroupID]; ok {
					group = name
				}
			}
			fmt.Fprintf(&sb, "  %s-%s  [%s]  %s  (%s)\n",
				t.ScheduledStart.In(loc).Format("15:04"),
				t.ScheduledEnd.In(loc).Format("15:04"),
				t.Status, t.Title, group)
		}
	}

	fmt.Fprintf(&sb, "\nTotals: awake %dm, planned %dm, done %dm, cancelled %d, rescheduled %d\n",
		week.Stats.AvailableMinutes, week.Stats.PlannedMinutes, week.Stats.CompletedMinutes,
		week.Stats.CancelledBlocks, week.Stats.RescheduledBlocks)
	return sb.String()
}
