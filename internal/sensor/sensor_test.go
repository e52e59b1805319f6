package sensor

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceReturnsGoodReading(t *testing.T) {
	reader := NewFakeReader(&Reading{Temperature: 21.0, Humidity: 45})
	source := NewSource(reader, slog.Default())

	got := source.Read()
	assert.Equal(t, Reading{Temperature: 21.0, Humidity: 45}, got)
	assert.Equal(t, 0, source.Faults())
}

// Three consecutive faults after one good reading must all return the last
// known good reading.
func TestSourceFallbackToLastKnownGood(t *testing.T) {
	reader := NewFakeReader(
		&Reading{Temperature: 21.0, Humidity: 45},
		nil, nil, nil,
	)
	source := NewSource(reader, slog.Default())

	require.Equal(t, Reading{Temperature: 21.0, Humidity: 45}, source.Read())

	for i := 0; i < 3; i++ {
		got := source.Read()
		assert.Equalf(t, Reading{Temperature: 21.0, Humidity: 45}, got, "fault %d", i+1)
	}
	assert.Equal(t, 3, source.Faults())
}

// With no prior good reading, a fault returns the documented defaults.
func TestSourceFallbackToDefault(t *testing.T) {
	reader := NewFakeReader(nil)
	source := NewSource(reader, slog.Default())

	got := source.Read()
	assert.Equal(t, Reading{Temperature: DefaultTemperature, Humidity: DefaultHumidity}, got)
	assert.Equal(t, 1, source.Faults())
}

func TestSourceRecoversAfterFault(t *testing.T) {
	reader := NewFakeReader(
		&Reading{Temperature: 20.0, Humidity: 40},
		nil,
		&Reading{Temperature: 22.5, Humidity: 55},
	)
	source := NewSource(reader, slog.Default())

	source.Read()
	source.Read() // fault, falls back
	got := source.Read()
	assert.Equal(t, Reading{Temperature: 22.5, Humidity: 55}, got)

	// The new reading becomes the fallback.
	assert.Equal(t, Reading{Temperature: 22.5, Humidity: 55}, source.last)
}

func TestRealReaderParsesSysfs(t *testing.T) {
	dir := t.TempDir()
	tempPath := filepath.Join(dir, "in_temp_input")
	humPath := filepath.Join(dir, "in_humidityrelative_input")
	require.NoError(t, os.WriteFile(tempPath, []byte("21500\n"), 0o644))
	require.NoError(t, os.WriteFile(humPath, []byte("45200\n"), 0o644))

	reader, err := NewRealReader(tempPath, humPath, 0, 40)
	require.NoError(t, err)

	got, err := reader.Read()
	require.NoError(t, err)
	assert.InDelta(t, 21.5, got.Temperature, 0.001)
	assert.InDelta(t, 45.2, got.Humidity, 0.001)
}

func TestRealReaderRejectsOutOfRange(t *testing.T) {
	dir := t.TempDir()
	tempPath := filepath.Join(dir, "in_temp_input")
	humPath := filepath.Join(dir, "in_humidityrelative_input")
	require.NoError(t, os.WriteFile(tempPath, []byte("85000\n"), 0o644))
	require.NoError(t, os.WriteFile(humPath, []byte("45000\n"), 0o644))

	reader, err := NewRealReader(tempPath, humPath, 0, 40)
	require.NoError(t, err)

	_, err = reader.Read()
	assert.Error(t, err)
}

func TestRealReaderMissingDevice(t *testing.T) {
	_, err := NewRealReader("/nonexistent/temp", "/nonexistent/hum", 0, 40)
	assert.Error(t, err)
}
