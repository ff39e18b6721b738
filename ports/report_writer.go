package ports

import "rxprev/domain/prevalence"

// ReportWriter serializes a rendered report.
type ReportWriter interface {
	WriteReport(t prevalence.Table) error
}
