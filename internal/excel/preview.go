package excel

import (
	"os"
	"path/filepath"

	"github.com/parthpandya1729/giarecon/internal/model"
	"github.com/parthpandya1729/giarecon/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// Preview opens a local workbook and reports its first sheet, header columns
// and data row count. Agents use this to author custom field mappings against
// the actual column names before uploading.
func Preview(path string) (*model.WorkbookPreview, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.PreconditionWrap(errors.ErrFileNotFound, "file not found: "+path)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.IO(err, "failed to open workbook: "+path)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.IO(nil, "workbook has no sheets: "+path)
	}

	sheetName := sheets[0]
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, errors.IO(err, "failed to read rows from "+sheetName)
	}

	preview := &model.WorkbookPreview{
		Success: true,
		Sheet:   sheetName,
		Columns: []string{},
	}
	if absPath, err := filepath.Abs(path); err == nil {
		preview.FilePath = absPath
	} else {
		preview.FilePath = path
	}

	if len(rows) > 0 {
		preview.Columns = rows[0]
		preview.RowCount = len(rows) - 1
	}
	return preview, nil
}
