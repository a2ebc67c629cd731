package printer

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/gofish-bot/atom-shell-fetch/models"
	"github.com/gofish-bot/atom-shell-fetch/output"
)

func newTable(w io.Writer, columns ...interface{}) table.Table {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New(columns...)
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	if w != nil {
		tbl.WithWriter(w)
	}
	return tbl
}

// Entries prints what was written for one download.
func Entries(w io.Writer, written []output.Written) {
	tbl := newTable(w, "Path", "Size", "Mode")

	var total int64
	for _, e := range written {
		size := ""
		if !e.Mode.IsDir() {
			size = humanize.Bytes(uint64(e.Size))
		}
		total += e.Size
		tbl.AddRow(e.Path, size, e.Mode.String())
	}
	tbl.AddRow(fmt.Sprintf("%d entries", len(written)), humanize.Bytes(uint64(total)), "")

	tbl.Print()
}

// Releases prints the releases of the repository and their assets.
func Releases(w io.Writer, releases []models.Release) {
	tbl := newTable(w, "Tag", "Assets", "Status")

	for _, rel := range releases {
		status := ""
		if rel.Prerelease {
			status = "Prerelease"
		}
		tbl.AddRow(rel.TagName, len(rel.Assets), status)
	}

	tbl.Print()
}
