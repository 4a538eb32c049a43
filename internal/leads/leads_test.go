package leads

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/practice-intel/internal/model"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "Name,NPI,Practice,Location\nGreg White,1234567890,Pure Dental,\"Buffalo, NY\"\nJane Doe,,,\n")

	got, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Lead{
		Name:     "Greg White",
		NPI:      "1234567890",
		Practice: "Pure Dental",
		Location: "Buffalo, NY",
	}, got[0])
	assert.Equal(t, "Jane Doe", got[1].Name)
}

func TestLoadCSV_HeaderAliases(t *testing.T) {
	path := writeCSV(t, "Provider Name,NPI Number,Organization,City\nGreg White,1234567890,Pure Dental,Buffalo\n")

	got, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pure Dental", got[0].Practice)
	assert.Equal(t, "Buffalo", got[0].Location)
}

func TestLoadCSV_MissingNameColumn(t *testing.T) {
	path := writeCSV(t, "NPI,Practice\n1234567890,Pure Dental\n")

	_, err := LoadCSV(path)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestLoadCSV_SkipsBlankNames(t *testing.T) {
	path := writeCSV(t, "Name,NPI\nGreg White,1234567890\n,9999999999\n")

	got, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLoadXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"Name", "NPI", "Practice", "Location"} {
		header.AddCell().SetString(h)
	}
	row := sheet.AddRow()
	for _, v := range []string{"Greg White", "1234567890", "Pure Dental", "Buffalo, NY"} {
		row.AddCell().SetString(v)
	}

	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.Save(path))

	got, err := LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Greg White", got[0].Name)
	assert.Equal(t, "Buffalo, NY", got[0].Location)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("leads.pdf")
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}
