package dto

// ExportTarget selects which projection an export produces.
type ExportTarget string

const (
	ExportWB   ExportTarget = "wb"
	ExportOzon ExportTarget = "ozon"
	ExportFull ExportTarget = "full"
)

func ParseExportTarget(s string) (ExportTarget, bool) {
	switch ExportTarget(s) {
	case ExportWB, ExportOzon, ExportFull:
		return ExportTarget(s), true
	}
	return "", false
}

// ExportSheet is a flat tabular projection ready for file serialization.
// Cells are already rendered as strings; empty string renders an absent value.
type ExportSheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// LowStockItem is one line of the low-stock report.
type LowStockItem struct {
	Barcode    string `json:"barcode"`
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	StockTotal int    `json:"stock_total"`
}
