package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/models"
	"github.com/noah-isme/uniplanner-api/internal/seed"
)

type evaluateOptions struct {
	catalogPath string
	approved    []string
	inProgress  []string
	semester    int
	asJSON      bool
	lenient     bool
	policy      curriculum.Policy
}

func newEvaluateCmd() *cobra.Command {
	opts := evaluateOptions{policy: curriculum.DefaultPolicy()}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Print the prerequisite map for a record",
		Long: `Evaluate loads a catalog (the built-in pensum when --catalog is omitted),
replays the given approved and in-progress codes through the selection
rules and prints every course with its status.

Example:
  pensumctl evaluate --approved 167390,167392 --in-progress 167394
  pensumctl evaluate --catalog pensum.json --approved A1 --semester 2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.OutOrStdout(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.catalogPath, "catalog", "", "JSON file with an array of courses")
	flags.StringSliceVar(&opts.approved, "approved", nil, "approved course codes")
	flags.StringSliceVar(&opts.inProgress, "in-progress", nil, "in-progress course codes")
	flags.IntVar(&opts.semester, "semester", 0, "only print this semester")
	flags.BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	flags.BoolVar(&opts.lenient, "lenient", false, "skip the selection rules and evaluate the codes as given")
	flags.StringVar(&opts.policy.FreeElectiveCode, "free-elective-code", curriculum.DefaultFreeElectiveCode, "free elective marker code")
	flags.IntVar(&opts.policy.FreeElectiveCap, "free-elective-cap", curriculum.DefaultFreeElectiveCap, "free elective credit cap")
	return cmd
}

func runEvaluate(out io.Writer, opts evaluateOptions) error {
	courses, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}
	catalog := models.CoursesToCurriculum(courses)
	if err := curriculum.ValidateCatalog(catalog); err != nil {
		return err
	}
	index := curriculum.Build(catalog, opts.policy.WithDefaults().FreeElectiveCode)

	state := curriculum.NewState(opts.approved, opts.inProgress)
	if !opts.lenient {
		session, err := curriculum.Replay(index, opts.policy, curriculum.SubmissionPayload{
			Approved:   opts.approved,
			InProgress: opts.inProgress,
		})
		if err != nil {
			return fmt.Errorf("record rejected: %w", err)
		}
		state = session.State()
	}

	progress := curriculum.Summarize(state, index)
	semesters := curriculum.Overview(state, index)
	if opts.semester > 0 {
		filtered := semesters[:0]
		for _, s := range semesters {
			if s.Semester == opts.semester {
				filtered = append(filtered, s)
			}
		}
		semesters = filtered
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(models.SemaforoView{Progress: progress, Semesters: semesters})
	}
	return printTable(out, progress, semesters)
}

func loadCatalog(path string) ([]models.Course, error) {
	if path == "" {
		return seed.Pensum()
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var courses []models.Course
	if err := json.Unmarshal(body, &courses); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return courses, nil
}

func printTable(out io.Writer, progress curriculum.Progress, semesters []curriculum.SemesterView) error {
	fmt.Fprintf(out, "Progress %.1f%%  approved %d/%d  credits %d/%d  in progress %d  available %d  blocked %d\n\n",
		progress.CompletionPercent, progress.Approved, progress.TotalCourses,
		progress.ApprovedCredits, progress.TotalCredits,
		progress.InProgress, progress.Available, progress.Blocked)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEM\tCODE\tNAME\tCR\tSTATUS\tDETAIL")
	for _, s := range semesters {
		for _, c := range s.Courses {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", s.Semester, c.Code, c.Name, c.Credits, c.Kind, detail(c.Status))
		}
	}
	return tw.Flush()
}

func detail(st curriculum.Status) string {
	if st.Reason == nil {
		return ""
	}
	switch st.Reason.Kind {
	case curriculum.BlockInsufficientCredits:
		if sf := st.Reason.InsufficientCredits; sf != nil {
			return fmt.Sprintf("needs %d credits (has %d)", sf.Required, sf.Have)
		}
	case curriculum.BlockMissingPrerequisites:
		return "missing " + strings.Join(st.Reason.MissingPrerequisites, ", ")
	}
	return string(st.Reason.Kind)
}
