package visux

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	assert := require.New(t)

	records, err := ReadCSV(strings.NewReader("age, height,city\n10,140.5,Boston\n\n20,175,\n30\n"))
	assert.NoError(err)
	assert.Equal([]string{`age`, `height`, `city`}, records.Features)
	assert.Len(records.Records, 3)

	assert.Equal(`Boston`, records.Records[0][`city`])
	assert.Nil(records.Records[1][`city`])
	assert.Nil(records.Records[2][`height`])
	assert.Contains(records.Records[2], `city`)

	ages, err := toFloats(`age`, records.Columns()[`age`])
	assert.NoError(err)
	assert.Equal([]float64{10, 20, 30}, ages)

	heights, err := toFloats(`height`, records.Columns()[`height`])
	assert.NoError(err)
	assert.Equal([]float64{140.5, 175}, heights)

	xs, ys, err := toFloatPairs(`age`, records.Columns()[`age`], `height`, records.Columns()[`height`])
	assert.NoError(err)
	assert.Equal([]float64{10, 20}, xs)
	assert.Equal([]float64{140.5, 175}, ys)
}

func TestReadCSVHeaderErrors(t *testing.T) {
	assert := require.New(t)

	_, err := ReadCSV(strings.NewReader(``))
	assert.True(IsValidationError(err))

	_, err = ReadCSV(strings.NewReader("a,,c\n1,2,3\n"))
	assert.True(IsValidationError(err))

	_, err = ReadCSV(strings.NewReader("a,b,a\n1,2,3\n"))
	assert.True(IsValidationError(err))
}

func TestReadXLSX(t *testing.T) {
	assert := require.New(t)
	path := filepath.Join(t.TempDir(), `people.xlsx`)

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)

	assert.NoError(book.SetSheetRow(sheet, `A1`, &[]interface{}{`age`, `height`, `city`}))
	assert.NoError(book.SetSheetRow(sheet, `A2`, &[]interface{}{10, 140, `Boston`}))
	assert.NoError(book.SetSheetRow(sheet, `A3`, &[]interface{}{20, 175, `Denver`}))
	assert.NoError(book.SaveAs(path))
	assert.NoError(book.Close())

	records, err := LoadRecordSet(path)
	assert.NoError(err)
	assert.Equal([]string{`age`, `height`, `city`}, records.Features)
	assert.Len(records.Records, 2)
	assert.Equal(`Denver`, records.Records[1][`city`])

	heights, err := toFloats(`height`, records.Columns()[`height`])
	assert.NoError(err)
	assert.Equal([]float64{140, 175}, heights)
}

func TestLoadRecordSet(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()

	path := filepath.Join(dir, `people.CSV`)
	assert.NoError(os.WriteFile(path, []byte("x,y\n1,2\n3,4\n"), 0644))

	records, err := LoadRecordSet(path)
	assert.NoError(err)
	assert.Len(records.Records, 2)

	_, err = LoadRecordSet(filepath.Join(dir, `people.json`))
	assert.True(IsValidationError(err))

	_, err = LoadRecordSet(filepath.Join(dir, `missing.csv`))
	assert.Error(err)
}
