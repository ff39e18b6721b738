package excel

// RawRowData represents a row of raw sheet data as column-value pairs
type RawRowData map[string]string

// ExcelData represents the complete sheet
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Observation columns expected in a tabular source
const (
	ColumnGene     = "gene"
	ColumnPosition = "position"
	ColumnAA       = "aa"
	ColumnRxType   = "rx_type"
	ColumnSubtype  = "subtype"
	ColumnCount    = "count"
	ColumnTotal    = "total"
	ColumnPercent  = "percent"
)

// RequiredColumns lists every column an observation sheet must carry.
var RequiredColumns = []string{
	ColumnGene, ColumnPosition, ColumnAA, ColumnRxType,
	ColumnSubtype, ColumnCount, ColumnTotal, ColumnPercent,
}

// SheetName is the sheet read from and written to workbooks.
const SheetName = "Sheet1"
