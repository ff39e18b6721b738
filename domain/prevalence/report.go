package prevalence

import (
	"fmt"
	"strconv"
)

// Column names shared by every report writer.
const (
	ColPosition         = "Position"
	ColAA               = "AA"
	ColMaxNaiveTotal    = "Max Naive Total"
	ColMaxNaiveCases    = "Max Naive Cases"
	ColMaxNaivePrev     = "Max Naive Prev"
	ColMaxNaiveSubtype  = "Max Naive Subtype"
	ColPValue           = "P Value"
	ColFoldChange       = "Fold Change"
	ColSelected         = "Selected"
	subtypeNaiveTotal   = "# Naive (%s)"
	subtypeNaiveCases   = "# Naive Cases (%s)"
	subtypeNaivePrev    = "Naive Prev (%s)"
	subtypeTreatedTotal = "# Treated (%s)"
	subtypeTreatedCases = "# Treated Cases (%s)"
	subtypeTreatedPrev  = "Treated Prev (%s)"
)

// Header returns the report columns for a layout.
func Header(l Layout) []string {
	h := []string{
		ColPosition, ColAA,
		fmt.Sprintf(subtypeNaiveTotal, SubtypeAll),
		fmt.Sprintf(subtypeNaiveCases, SubtypeAll),
		fmt.Sprintf(subtypeNaivePrev, SubtypeAll),
		fmt.Sprintf(subtypeTreatedTotal, SubtypeAll),
		fmt.Sprintf(subtypeTreatedCases, SubtypeAll),
		fmt.Sprintf(subtypeTreatedPrev, SubtypeAll),
	}
	if l.Subtypes {
		for _, st := range l.ReportedSubtypes() {
			h = append(h,
				fmt.Sprintf(subtypeNaivePrev, st),
				fmt.Sprintf(subtypeNaiveTotal, st),
			)
		}
		h = append(h, ColMaxNaiveTotal, ColMaxNaiveCases, ColMaxNaivePrev, ColMaxNaiveSubtype)
	}
	h = append(h, ColPValue, ColFoldChange)
	if l.FlagSelection {
		h = append(h, ColSelected)
	}
	return h
}

// Record renders a finalized row in Header(l) order. Buckets that were never
// written render as empty cells.
func Record(r *SummaryRow, l Layout) []string {
	rec := make([]string, 0, len(Header(l)))
	rec = append(rec, strconv.Itoa(r.Position), r.AA)
	rec = append(rec, bucketCells(r, CohortNaive, SubtypeAll)...)
	rec = append(rec, bucketCells(r, CohortTreated, SubtypeAll)...)
	if l.Subtypes {
		for _, st := range l.ReportedSubtypes() {
			if b, ok := r.Bucket(CohortNaive, st); ok {
				rec = append(rec, b.PercentCell(), strconv.Itoa(b.Total))
			} else {
				rec = append(rec, "", "")
			}
		}
		rec = append(rec,
			strconv.Itoa(r.Max.Total),
			strconv.Itoa(r.Max.Cases),
			r.Max.PercentCell(),
			r.Max.Subtype,
		)
	}
	ev := r.Evaluation()
	rec = append(rec, FormatFloat(ev.PValue), FormatFloat(ev.FoldChange))
	if l.FlagSelection {
		rec = append(rec, strconv.FormatBool(ev.Selected))
	}
	return rec
}

// bucketCells renders total, cases, prevalence of a bucket.
func bucketCells(r *SummaryRow, c Cohort, subtype string) []string {
	b, ok := r.Bucket(c, subtype)
	if !ok {
		return []string{"", "", ""}
	}
	return []string{strconv.Itoa(b.Total), strconv.Itoa(b.Cases), b.PercentCell()}
}

// Table is a rendered report.
type Table struct {
	Header  []string   `json:"header"`
	Records [][]string `json:"rows"`
}

// Render renders rows in order.
func Render(rows []*SummaryRow, l Layout) Table {
	t := Table{Header: Header(l), Records: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Records = append(t.Records, Record(r, l))
	}
	return t
}
