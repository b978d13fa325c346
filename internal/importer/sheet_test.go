package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/aguacoop/aguacoop/internal/importer"
)

var (
	meterA = uuid.MustParse("6f1c2b9e-3d0a-4f6e-9b1a-1c2d3e4f5a6b")
	meterB = uuid.MustParse("0a9b8c7d-6e5f-4a3b-2c1d-0e9f8a7b6c5d")
)

func TestParse_Planilla(t *testing.T) {
	csv := `Cooperativa de Agua;Zona Norte
Ruta;3

Medidor;Socio;Lectura anterior;Lectura actual;Observación
` + meterA.String() + `;Rosa Quispe;100;1.114,5;Fuga en cañería
` + meterB.String() + `;Juan Mamani;40;52;
;;;;
`

	sheet, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "planilla", sheet.Profile)
	assert.Empty(t, sheet.Issues)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, meterA, sheet.Rows[0].MeterID)
	assert.True(t, sheet.Rows[0].CurrentValue.Equal(decimal.RequireFromString("1114.5")))
	assert.Equal(t, "Fuga en cañería", sheet.Rows[0].Note)
	assert.Equal(t, 5, sheet.Rows[0].Line)

	assert.Equal(t, meterB, sheet.Rows[1].MeterID)
	assert.True(t, sheet.Rows[1].CurrentValue.Equal(decimal.NewFromInt(52)))
}

func TestParse_Export(t *testing.T) {
	csv := "meter_id,current_reading,note\n" + meterA.String() + ",250.75,ok\n"

	sheet, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "export", sheet.Profile)
	require.Len(t, sheet.Rows, 1)
	assert.True(t, sheet.Rows[0].CurrentValue.Equal(decimal.RequireFromString("250.75")))
}

func TestParse_Latin1(t *testing.T) {
	csv := "Medidor;Lectura actual;Observación\n" + meterA.String() + ";12;Señor ausente\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(csv))
	require.NoError(t, err)

	sheet, err := importer.Parse(bytes.NewReader(latin1))
	require.NoError(t, err)

	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Señor ausente", sheet.Rows[0].Note)
}

func TestParse_Issues(t *testing.T) {
	csv := `Medidor;Lectura actual
not-a-meter;10
` + meterA.String() + `;abc
` + meterB.String() + `;-4
` + meterB.String() + `;
`

	sheet, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Empty(t, sheet.Rows)
	require.Len(t, sheet.Issues, 4)
	assert.Equal(t, 2, sheet.Issues[0].Line)
	assert.Contains(t, sheet.Issues[0].Reason, "invalid meter")
	assert.Contains(t, sheet.Issues[1].Reason, "invalid reading")
	assert.Contains(t, sheet.Issues[2].Reason, "negative reading")
	assert.Contains(t, sheet.Issues[3].Reason, "missing reading")
}

func TestParse_UnknownLayout(t *testing.T) {
	_, err := importer.Parse(strings.NewReader("Fecha;Monto\n01-01-2024;10\n"))
	assert.Error(t, err)
}
