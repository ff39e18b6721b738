package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rxprev/domain/core"
	"rxprev/domain/prevalence"
	"rxprev/internal/errors"
	"rxprev/ports"

	"github.com/jmoiron/sqlx"
)

// createdAtLayout is fixed width so that text ordering matches time ordering.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// RunRepositoryImpl implements RunRepository on PostgreSQL or SQLite
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

type runRecord struct {
	ID            string `db:"id"`
	Gene          string `db:"gene"`
	Test          string `db:"test"`
	MajorSubtypes string `db:"major_subtypes"`
	Subtypes      bool   `db:"subtypes"`
	FlagSelection bool   `db:"flag_selection"`
	Source        string `db:"source"`
	Fingerprint   string `db:"fingerprint"`
	CreatedAt     string `db:"created_at"`
	RowCount      int    `db:"row_count"`
}

type rowRecord struct {
	RunID      string `db:"run_id"`
	Ordinal    int    `db:"ordinal"`
	Position   int    `db:"position"`
	AA         string `db:"aa"`
	MaxPercent string `db:"max_percent"`
	MaxTotal   int    `db:"max_total"`
	MaxCases   int    `db:"max_cases"`
	MaxSubtype string `db:"max_subtype"`
	Test       string `db:"test"`
	PValue     string `db:"p_value"`
	FoldChange string `db:"fold_change"`
	OddsRatio  string `db:"odds_ratio"`
	Degenerate bool   `db:"degenerate"`
	Selected   bool   `db:"selected"`
}

type bucketRecord struct {
	RunID   string `db:"run_id"`
	Ordinal int    `db:"ordinal"`
	Cohort  string `db:"cohort"`
	Subtype string `db:"subtype"`
	Cases   int    `db:"cases"`
	Total   int    `db:"total"`
	Percent string `db:"percent"`
}

// SaveRun stores the run header, its rows and their buckets in one transaction
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, run *prevalence.Run) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO runs (
			id, gene, test, major_subtypes, subtypes, flag_selection,
			source, fingerprint, created_at, row_count
		) VALUES (
			:id, :gene, :test, :major_subtypes, :subtypes, :flag_selection,
			:source, :fingerprint, :created_at, :row_count
		)`, toRunRecord(run))
	if err != nil {
		return errors.DatabaseError("failed to insert run "+run.ID.String(), err)
	}

	for i, row := range run.Rows {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO run_rows (
				run_id, ordinal, position, aa, max_percent, max_total, max_cases, max_subtype,
				test, p_value, fold_change, odds_ratio, degenerate, selected
			) VALUES (
				:run_id, :ordinal, :position, :aa, :max_percent, :max_total, :max_cases, :max_subtype,
				:test, :p_value, :fold_change, :odds_ratio, :degenerate, :selected
			)`, toRowRecord(run.ID, i, row)); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert row %s", row.Key), err)
		}

		for _, b := range toBucketRecords(run.ID, i, row) {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO run_buckets (run_id, ordinal, cohort, subtype, cases, total, percent)
				VALUES (:run_id, :ordinal, :cohort, :subtype, :cases, :total, :percent)`, b); err != nil {
				return errors.DatabaseError(fmt.Sprintf("failed to insert bucket %s/%s of row %s", b.Cohort, b.Subtype, row.Key), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit run", err)
	}
	return nil
}

// GetRun loads a run with its rows in report order
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*prevalence.Run, error) {
	var rec runRecord
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		SELECT id, gene, test, major_subtypes, subtypes, flag_selection,
		       source, fingerprint, created_at, row_count
		FROM runs WHERE id = ?`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("run "+id.String(), core.ErrRunNotFound)
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load run", err)
	}

	run, err := fromRunRecord(rec)
	if err != nil {
		return nil, err
	}

	var rows []rowRecord
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT run_id, ordinal, position, aa, max_percent, max_total, max_cases, max_subtype,
		       test, p_value, fold_change, odds_ratio, degenerate, selected
		FROM run_rows WHERE run_id = ? ORDER BY ordinal`), id.String()); err != nil {
		return nil, errors.DatabaseError("failed to load run rows", err)
	}

	var buckets []bucketRecord
	if err := r.db.SelectContext(ctx, &buckets, r.db.Rebind(`
		SELECT run_id, ordinal, cohort, subtype, cases, total, percent
		FROM run_buckets WHERE run_id = ? ORDER BY ordinal`), id.String()); err != nil {
		return nil, errors.DatabaseError("failed to load run buckets", err)
	}
	byOrdinal := make(map[int][]bucketRecord, len(rows))
	for _, b := range buckets {
		byOrdinal[b.Ordinal] = append(byOrdinal[b.Ordinal], b)
	}

	run.Rows = make([]*prevalence.SummaryRow, 0, len(rows))
	for _, rr := range rows {
		row, err := fromRowRecord(rr, byOrdinal[rr.Ordinal])
		if err != nil {
			return nil, errors.DatabaseError(fmt.Sprintf("corrupt row %d of run %s", rr.Ordinal, id), err)
		}
		run.Rows = append(run.Rows, row)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, gene string, limit int) ([]prevalence.RunInfo, error) {
	query := `
		SELECT id, gene, test, major_subtypes, subtypes, flag_selection,
		       source, fingerprint, created_at, row_count
		FROM runs`
	var args []interface{}
	if gene != "" {
		query += ` WHERE gene = ?`
		args = append(args, gene)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var records []runRecord
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	infos := make([]prevalence.RunInfo, 0, len(records))
	for _, rec := range records {
		createdAt, err := time.Parse(createdAtLayout, rec.CreatedAt)
		if err != nil {
			return nil, errors.DatabaseError("corrupt created_at of run "+rec.ID, err)
		}
		infos = append(infos, prevalence.RunInfo{
			ID:          core.RunID(rec.ID),
			Gene:        rec.Gene,
			Test:        rec.Test,
			Source:      rec.Source,
			Fingerprint: core.Hash(rec.Fingerprint),
			CreatedAt:   core.NewTimestamp(createdAt),
			RowCount:    rec.RowCount,
		})
	}
	return infos, nil
}

func toRunRecord(run *prevalence.Run) runRecord {
	return runRecord{
		ID:            run.ID.String(),
		Gene:          run.Gene,
		Test:          run.Test,
		MajorSubtypes: strings.Join(run.Layout.MajorSubtypes, ","),
		Subtypes:      run.Layout.Subtypes,
		FlagSelection: run.Layout.FlagSelection,
		Source:        run.Source,
		Fingerprint:   run.Fingerprint.String(),
		CreatedAt:     run.CreatedAt.Time().UTC().Format(createdAtLayout),
		RowCount:      len(run.Rows),
	}
}

func fromRunRecord(rec runRecord) (*prevalence.Run, error) {
	createdAt, err := time.Parse(createdAtLayout, rec.CreatedAt)
	if err != nil {
		return nil, errors.DatabaseError("corrupt created_at of run "+rec.ID, err)
	}
	var majors []string
	if rec.MajorSubtypes != "" {
		majors = strings.Split(rec.MajorSubtypes, ",")
	}
	return &prevalence.Run{
		ID:   core.RunID(rec.ID),
		Gene: rec.Gene,
		Test: rec.Test,
		Layout: prevalence.Layout{
			MajorSubtypes: majors,
			Subtypes:      rec.Subtypes,
			FlagSelection: rec.FlagSelection,
		},
		Source:      rec.Source,
		Fingerprint: core.Hash(rec.Fingerprint),
		CreatedAt:   core.NewTimestamp(createdAt),
	}, nil
}

func toRowRecord(id core.RunID, ordinal int, row *prevalence.SummaryRow) rowRecord {
	ev := row.Evaluation()
	return rowRecord{
		RunID:      id.String(),
		Ordinal:    ordinal,
		Position:   row.Position,
		AA:         row.AA,
		MaxPercent: prevalence.FormatPercentNumber(row.Max.Percent, row.Max.Integral),
		MaxTotal:   row.Max.Total,
		MaxCases:   row.Max.Cases,
		MaxSubtype: row.Max.Subtype,
		Test:       ev.Test,
		PValue:     prevalence.FormatFloat(ev.PValue),
		FoldChange: prevalence.FormatFloat(ev.FoldChange),
		OddsRatio:  prevalence.FormatFloat(ev.OddsRatio),
		Degenerate: ev.Degenerate,
		Selected:   ev.Selected,
	}
}

func toBucketRecords(id core.RunID, ordinal int, row *prevalence.SummaryRow) []bucketRecord {
	var records []bucketRecord
	for _, cohort := range []prevalence.Cohort{prevalence.CohortNaive, prevalence.CohortTreated} {
		for _, subtype := range row.Subtypes(cohort) {
			b, _ := row.Bucket(cohort, subtype)
			records = append(records, bucketRecord{
				RunID:   id.String(),
				Ordinal: ordinal,
				Cohort:  string(cohort),
				Subtype: subtype,
				Cases:   b.Cases,
				Total:   b.Total,
				Percent: prevalence.FormatPercentNumber(b.Percent, b.Integral),
			})
		}
	}
	return records
}

func fromRowRecord(rec rowRecord, buckets []bucketRecord) (*prevalence.SummaryRow, error) {
	row := prevalence.NewSummaryRow(prevalence.Key{Position: rec.Position, AA: rec.AA})

	maxPercent, maxIntegral, err := prevalence.ParsePercentNumber(rec.MaxPercent)
	if err != nil {
		return nil, err
	}
	row.Max = prevalence.MaxSubtype{
		Percent:  maxPercent,
		Total:    rec.MaxTotal,
		Cases:    rec.MaxCases,
		Subtype:  rec.MaxSubtype,
		Integral: maxIntegral,
	}

	for _, b := range buckets {
		percent, integral, err := prevalence.ParsePercentNumber(b.Percent)
		if err != nil {
			return nil, err
		}
		row.SetBucket(prevalence.Cohort(b.Cohort), b.Subtype, prevalence.Bucket{
			Cases:    b.Cases,
			Total:    b.Total,
			Percent:  percent,
			Integral: integral,
		})
	}

	ev := prevalence.Evaluation{
		Test:       rec.Test,
		Degenerate: rec.Degenerate,
		Selected:   rec.Selected,
	}
	for _, f := range []struct {
		text string
		dst  *float64
	}{
		{rec.PValue, &ev.PValue},
		{rec.FoldChange, &ev.FoldChange},
		{rec.OddsRatio, &ev.OddsRatio},
	} {
		v, err := strconv.ParseFloat(f.text, 64)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	row.Finalize(ev)
	return row, nil
}
