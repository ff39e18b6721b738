package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rxprev/domain/core"
	"rxprev/domain/prevalence"
	"rxprev/internal"
	"rxprev/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader reads observations from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// ReadObservations implements ports.ObservationReader
func (r *DataReader) ReadObservations(ctx context.Context) (*prevalence.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("%s file not readable: %s", strings.ToUpper(r.fileType), r.filePath), err)
	}

	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	observations, err := ToObservations(data)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", r.filePath)
	}
	return &prevalence.Batch{
		Source:       r.filePath,
		Fingerprint:  core.NewHash(raw),
		Observations: observations,
	}, nil
}

// ReadData reads the header row and data rows of the file
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, errors.InvalidInput("unsupported file type: "+r.fileType, core.ErrUnsupportedSource)
	}
}

// readExcelData reads Sheet1 of a workbook
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.IOError("failed to open Excel file", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, errors.IOError("failed to read "+SheetName, err)
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)",
		SheetName, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads CSV data
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.IOError("failed to open CSV file", err)
	}
	defer file.Close()

	startTime := time.Now()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.InvalidInput("failed to parse CSV file", err)
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	if len(rows) == 0 {
		return nil, errors.InvalidInput(strings.ToUpper(r.fileType)+" file has no header row", core.ErrMalformedObservation)
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Debug("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}

// ToObservations converts sheet rows into observations. Every required
// column must be present in the header; each cell must parse.
func ToObservations(data *ExcelData) ([]prevalence.Observation, error) {
	present := make(map[string]bool, len(data.Headers))
	for _, h := range data.Headers {
		present[h] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return nil, errors.InvalidInput("missing column "+col, core.NewMalformedObservationError(0, col, "is missing"))
		}
	}

	observations := make([]prevalence.Observation, 0, len(data.Rows))
	for i, row := range data.Rows {
		o, err := toObservation(i, row)
		if err != nil {
			return nil, errors.InvalidInput("failed to convert row", err)
		}
		observations = append(observations, o)
	}
	return observations, nil
}

func toObservation(index int, row RawRowData) (prevalence.Observation, error) {
	o := prevalence.Observation{
		Gene:    row[ColumnGene],
		AA:      row[ColumnAA],
		Cohort:  prevalence.Cohort(row[ColumnRxType]),
		Subtype: row[ColumnSubtype],
	}
	for _, field := range []struct {
		name string
		dst  *int
	}{
		{ColumnPosition, &o.Position},
		{ColumnCount, &o.Count},
		{ColumnTotal, &o.Total},
	} {
		v, err := strconv.Atoi(row[field.name])
		if err != nil {
			return o, core.NewMalformedObservationError(index, field.name, "must be an integer")
		}
		*field.dst = v
	}
	fraction, err := strconv.ParseFloat(row[ColumnPercent], 64)
	if err != nil {
		return o, core.NewMalformedObservationError(index, ColumnPercent, "must be a number")
	}
	o.Fraction = fraction
	o.IntegralFraction = prevalence.IsIntegerLiteral(row[ColumnPercent])
	return o, nil
}
