package cleaner

import (
	"fmt"
	"io"
	"strconv"

	"dj-cleaner/core/reconcile"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// ConsolePresenter writes human readable run results.
type ConsolePresenter struct {
	out io.Writer
}

var _ reconcile.Presenter = (*ConsolePresenter)(nil)

// NewConsolePresenter creates a presenter writing to out.
func NewConsolePresenter(out io.Writer) *ConsolePresenter {
	return &ConsolePresenter{out: out}
}

// PresentClean prints the number of deleted objects.
func (p *ConsolePresenter) PresentClean(res reconcile.Result) {
	n := humanize.Comma(int64(res.Deleted))
	if res.DryRun {
		fmt.Fprintf(p.out, "Would delete %s objects from external storage.\n", n)
		return
	}
	fmt.Fprintf(p.out, "Deleted %s objects from external storage.\n", n)
}

// RenderSummary prints one table row per run outcome.
func (p *ConsolePresenter) RenderSummary(outcomes []Outcome) {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader([]string{"#", "Run", "Schema", "Store", "Found", "Referenced", "Deleted", "Warnings", "Status"})
	table.SetAutoWrapText(false)

	for _, o := range outcomes {
		status := "ok"
		if o.Result.DryRun {
			status = "dry-run"
		}
		row := []string{
			strconv.Itoa(o.Index),
			o.Run.Label(),
			o.Run.Schema,
			o.Run.Store,
			humanize.Comma(int64(o.Result.Found)),
			humanize.Comma(int64(o.Result.Referenced)),
			humanize.Comma(int64(o.Result.Deleted)),
			strconv.Itoa(len(o.Result.Warnings)),
			status,
		}
		if o.Err != nil {
			row = []string{strconv.Itoa(o.Index), o.Run.Label(), o.Run.Schema, o.Run.Store, "-", "-", "-", "-", "failed"}
		}
		table.Append(row)
	}

	table.Render()
}
