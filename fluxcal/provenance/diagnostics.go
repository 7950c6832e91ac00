package provenance

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Diagnostic holds one standard's fit set and accepted fit.
type Diagnostic struct {
	Standard   string
	Wavelength []float64
	Observed   []float64
	Fit        []float64
	Residual   []float64
}

func (d Diagnostic) columns() [4][]float64 {
	return [4][]float64{d.Wavelength, d.Observed, d.Fit, d.Residual}
}

// DiagnosticsName returns sens_fits_<YYYY-MM-DDTHH:MM>.txt.
func DiagnosticsName(t time.Time) string {
	return "sens_fits_" + t.Format(TimestampLayout) + ".txt"
}

// WriteDiagnostics writes a space-delimited matrix with four columns per
// standard (wavelength, observed, fit, residual). Shorter columns are
// padded with zeros to the longest one. The header lists the standards.
func WriteDiagnostics(w io.Writer, set []Diagnostic) error {
	bw := bufio.NewWriter(w)

	names := make([]string, len(set))
	rows := 0
	for i, d := range set {
		names[i] = "'" + d.Standard + "'"
		for _, col := range d.columns() {
			rows = max(rows, len(col))
		}
	}
	fmt.Fprintf(bw, "# [%s]\n", strings.Join(names, ", "))
	fmt.Fprintln(bw, "# Set of four columns correspond to wavelength, observed flux, polynomial fit,")
	fmt.Fprintln(bw, "# and residuals for each standard listed above.")
	fmt.Fprintln(bw, "# You will probably need to strip zeros from the bottoms of some columns.")

	fields := make([]string, 0, 4*len(set))
	for r := range rows {
		fields = fields[:0]
		for _, d := range set {
			for _, col := range d.columns() {
				v := 0.0
				if r < len(col) {
					v = col[r]
				}
				fields = append(fields, fmt.Sprintf("%f", v))
			}
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, " ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteDiagnosticsFile appends the diagnostics table to
// DiagnosticsName(t) in dir and returns its path.
func WriteDiagnosticsFile(dir string, t time.Time, set []Diagnostic) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	path := filepath.Join(dir, DiagnosticsName(t))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return "", err
	}
	if err := WriteDiagnostics(f, set); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

// WorkbookSheet is the sheet name used by WriteDiagnosticsWorkbook.
const WorkbookSheet = "sens_fits"

// WriteDiagnosticsWorkbook writes the same table as an .xlsx workbook:
// a header row naming standard and column, then unpadded data columns.
func WriteDiagnosticsWorkbook(path string, set []Diagnostic) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), WorkbookSheet); err != nil {
		return err
	}
	labels := [4]string{"wavelength", "observed", "fit", "residual"}
	for i, d := range set {
		for k, col := range d.columns() {
			colIdx := 4*i + k + 1
			cell, err := excelize.CoordinatesToCellName(colIdx, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(WorkbookSheet, cell, d.Standard+" "+labels[k]); err != nil {
				return err
			}
			for r, v := range col {
				cell, err := excelize.CoordinatesToCellName(colIdx, r+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(WorkbookSheet, cell, v); err != nil {
					return err
				}
			}
		}
	}
	return f.SaveAs(path)
}
