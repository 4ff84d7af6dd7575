package sheets

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", CSV, false},
		{"csv", CSV, false},
		{" XLSX ", XLSX, false},
		{"pdf", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if tc.wantErr {
				assert.Equal(t, ErrUnsupportedFormat, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	f, err := FormatOf("students.XLSX")
	require.NoError(t, err)
	assert.Equal(t, XLSX, f)
	_, err = FormatOf("students")
	assert.Equal(t, ErrUnsupportedFormat, err)
}

func TestWriteRead(t *testing.T) {
	header := []string{"Roll_Number", "Name", "Year"}
	rows := [][]string{
		{"21BD1A0501", "Asha Rao", "2"},
		{"21BD1A0502", "Ravi, Kumar", "3"},
	}
	want := []map[string]string{
		{"roll_number": "21BD1A0501", "name": "Asha Rao", "year": "2"},
		{"roll_number": "21BD1A0502", "name": "Ravi, Kumar", "year": "3"},
	}

	for _, f := range []Format{CSV, XLSX} {
		t.Run(string(f), func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, Write(buf, f, "Members", header, rows))

			got, err := Read(buf, f)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRead_skipsBlankRows(t *testing.T) {
	in := "\uFEFFroll_number, name\n21BD1A0501, Asha\n,\n21BD1A0502,Ravi\n"
	got, err := Read(strings.NewReader(in), CSV)
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{
		{"roll_number": "21BD1A0501", "name": "Asha"},
		{"roll_number": "21BD1A0502", "name": "Ravi"},
	}, got)
}
