package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sla-insights/aggregate"
	"sla-insights/formatter"
	"sla-insights/models"
	"sla-insights/query"
)

// filterFlags binds the dashboard filters shared by several commands.
type filterFlags struct {
	queue      string
	caseType   string
	risk       string
	skill      string
	automation string
	day        int
	hour       int
	search     string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.queue, "queue", "", "Only cases in this queue")
	fs.StringVar(&f.caseType, "case-type", "", "Only cases of this type")
	fs.StringVar(&f.risk, "risk", "", "Only cases at this risk level (High|Medium|Low)")
	fs.StringVar(&f.skill, "skill", "", "Only cases handled at this agent skill level")
	fs.StringVar(&f.automation, "automation-level", "", "Only cases at this automation level")
	fs.IntVar(&f.day, "day", -1, "Only cases arriving on this weekday (0=Sunday)")
	fs.IntVar(&f.hour, "hour", -1, "Only cases arriving in this hour (0-23)")
	fs.StringVar(&f.search, "search", "", "Case-insensitive search over id, type, queue, bottleneck and action")
}

func (f *filterFlags) filters() (query.Filters, error) {
	out := query.Filters{
		QueueName:       f.queue,
		CaseType:        f.caseType,
		RiskLevel:       f.risk,
		AgentSkillLevel: f.skill,
		AutomationLevel: f.automation,
		Search:          f.search,
	}
	if f.day >= 0 {
		if f.day >= aggregate.DaysPerWeek {
			return out, fmt.Errorf("day must be between 0 and 6 (got %d)", f.day)
		}
		day := f.day
		out.DayOfWeek = &day
	}
	if f.hour >= 0 {
		if f.hour >= aggregate.HoursPerDay {
			return out, fmt.Errorf("hour must be between 0 and 23 (got %d)", f.hour)
		}
		hour := f.hour
		out.ArrivalHour = &hour
	}
	return out, nil
}

// selectCases loads the repository and applies the filter flags.
func (a *app) selectCases(cmd *cobra.Command, f *filterFlags) ([]models.Case, error) {
	filters, err := f.filters()
	if err != nil {
		return nil, err
	}
	repo, err := a.load(cmd.Context())
	if err != nil {
		return nil, err
	}
	return query.Filter(repo.All(), filters), nil
}

func newCasesCmd(a *app) *cobra.Command {
	var (
		filters  filterFlags
		sortBy   string
		desc     bool
		page     int
		pageSize int
		format   string
	)

	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List, search and sort cases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := formatter.ValidateFormat(format, formatter.TextFormat, formatter.JSONFormat, formatter.CSVFormat); err != nil {
				return err
			}
			cases, err := a.selectCases(cmd, &filters)
			if err != nil {
				return err
			}

			if sortBy != "" {
				field, err := query.ParseField(sortBy)
				if err != nil {
					return err
				}
				dir := query.Ascending
				if desc {
					dir = query.Descending
				}
				cases = query.Sort(cases, field, dir)
			}

			total := len(cases)
			if pageSize == 0 {
				pageSize = a.cfg.Report.PageSize
			}
			if page > 0 && pageSize > 0 {
				cases = query.Page(cases, page, pageSize)
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatter.CSVFormat:
				return formatter.WriteCasesCSV(out, cases)
			case formatter.JSONFormat:
				s, err := formatter.FormatJSON(cases)
				if err != nil {
					return err
				}
				fmt.Fprint(out, s)
			default:
				fmt.Fprint(out, formatter.FormatCasesText(cases))
				if page > 0 && pageSize > 0 {
					fmt.Fprintf(out, "page %d of %d (%d cases)\n", page, query.PageCount(total, pageSize), total)
				}
			}
			return nil
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort field, e.g. predicted_sla_risk, queue_depth, case_id")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().IntVar(&page, "page", 0, "1-based page to show (0 = all)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Cases per page (0 = config report.page_size)")
	cmd.Flags().StringVar(&format, "format", formatter.TextFormat, "Output format: text|json|csv")
	return cmd
}
