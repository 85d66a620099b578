package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/goliatone/go-gamerdb/command"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/goliatone/go-gamerdb/query"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: strings.ToLower(strings.TrimSpace(format)), w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(toView(data))
		return
	}
	o.printText(data)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []types.Platform:
		o.printPlatforms(v)
	case []types.ProfileItem:
		o.printProfile(v)
	case query.UsersForResult:
		o.printUsersFor(v)
	case []command.BulkImportResult:
		o.printImport(v)
	case types.ActivityPage:
		o.printActivity(v)
	case types.ActivityStats:
		o.printStats(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(toView(data))
	}
}

func (o *Output) table() *tabwriter.Writer {
	return tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
}

func (o *Output) printPlatforms(platforms []types.Platform) {
	if len(platforms) == 0 {
		fmt.Fprintln(o.w, "No platforms")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tNAME\tICON")
	for _, p := range platforms {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", p.ID, p.Name, p.IconRef)
	}
	_ = tw.Flush()
}

func (o *Output) printProfile(items []types.ProfileItem) {
	if len(items) == 0 {
		fmt.Fprintln(o.w, "No platforms have been added")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "PLATFORM\tGAMERTAG")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\n", item.PlatformName, item.Gamertag)
	}
	_ = tw.Flush()
}

func (o *Output) printUsersFor(result query.UsersForResult) {
	fmt.Fprintf(o.w, "%s (%d members)\n", result.Platform.DisplayName(), len(result.Members))
	tw := o.table()
	for _, member := range result.Members {
		fmt.Fprintf(tw, "%d\t%s\n", member.MemberID, member.Gamertag)
	}
	_ = tw.Flush()
}

func (o *Output) printImport(results []command.BulkImportResult) {
	counts := map[string]int{}
	tw := o.table()
	fmt.Fprintln(tw, "#\tKIND\tNAME\tMEMBER\tSTATUS\tERROR")
	for _, r := range results {
		counts[r.Status]++
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		member := ""
		if r.MemberID != 0 {
			member = fmt.Sprint(r.MemberID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.Index, r.Kind, r.Name, member, r.Status, errText)
	}
	_ = tw.Flush()
	fmt.Fprintln(o.w, summarizeCounts(counts))
}

func (o *Output) printActivity(page types.ActivityPage) {
	tw := o.table()
	fmt.Fprintln(tw, "WHEN\tGUILD\tACTOR\tVERB\tOBJECT\tCHANNEL")
	for _, r := range page.Records {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s:%s\t%s\n",
			humanize.Time(r.OccurredAt), r.GuildID, r.ActorID, r.Verb, r.ObjectType, r.ObjectID, r.Channel)
	}
	_ = tw.Flush()
	fmt.Fprintf(o.w, "%s of %s records\n", humanize.Comma(int64(len(page.Records))), humanize.Comma(int64(page.Total)))
}

func (o *Output) printStats(stats types.ActivityStats) {
	verbs := make([]string, 0, len(stats.ByVerb))
	for verb := range stats.ByVerb {
		verbs = append(verbs, verb)
	}
	sort.Strings(verbs)
	tw := o.table()
	for _, verb := range verbs {
		fmt.Fprintf(tw, "%s\t%d\n", verb, stats.ByVerb[verb])
	}
	fmt.Fprintf(tw, "total\t%s\n", humanize.Comma(int64(stats.Total)))
	_ = tw.Flush()
}

func summarizeCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, statusColor(k)(fmt.Sprintf("%s=%d", k, counts[k])))
	}
	return strings.Join(parts, " ")
}

// statusColor is a no-op when stdout is not a terminal.
func statusColor(status string) func(a ...any) string {
	switch status {
	case command.ImportStatusFailed:
		return color.New(color.FgRed).SprintFunc()
	case command.ImportStatusSkipped:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}

type importResultView struct {
	Index    int    `json:"index"`
	Kind     string `json:"kind"`
	Name     string `json:"name,omitempty"`
	MemberID int64  `json:"member_id,omitempty"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// toView converts values whose fields do not encode well.
func toView(data any) any {
	results, ok := data.([]command.BulkImportResult)
	if !ok {
		return data
	}
	views := make([]importResultView, 0, len(results))
	for _, r := range results {
		view := importResultView{
			Index:    r.Index,
			Kind:     r.Kind,
			Name:     r.Name,
			MemberID: r.MemberID,
			Status:   r.Status,
		}
		if r.Err != nil {
			view.Error = r.Err.Error()
		}
		views = append(views, view)
	}
	return views
}
