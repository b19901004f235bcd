package graphing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"DockerStats/pkg/exporting"
	"DockerStats/pkg/utils"
)

// Summary is shown above the charts.
type Summary struct {
	Hostname string
	Kernel   string
	Cycles   int
	Charts   int
	First    time.Time
	Last     time.Time
}

var summaryTemplate = template.Must(template.New("summary").Parse(`
<div class="summary" style="font-family:sans-serif;padding:12px 24px;border-bottom:1px solid #ddd">
  <h2 style="margin:0 0 6px 0">{{.Hostname}}</h2>
  <div>kernel {{.Kernel}} &middot; {{.Cycles}} cycles &middot; {{.Charts}} metrics</div>
  <div>{{.First.Format "2006-01-02 15:04:05"}} to {{.Last.Format "2006-01-02 15:04:05"}}</div>
</div>
`))

func summarize(records []exporting.Record, charts int) Summary {
	s := Summary{Cycles: len(records), Charts: charts}
	if len(records) == 0 {
		return s
	}
	last := records[len(records)-1]
	s.Hostname = utils.FormatValue(last[exporting.ColumnHostname])
	s.Kernel = utils.FormatValue(last[exporting.ColumnKernel])
	s.First = time.UnixMilli(timestampOf(records[0]))
	s.Last = time.UnixMilli(timestampOf(last))
	return s
}

// injectSummary places the summary block right after <body>.
func injectSummary(page string, s Summary) (string, error) {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return strings.Replace(page, "<body>", "<body>\n"+buf.String(), 1), nil
}
