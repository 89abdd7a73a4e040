package output_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/optitraffic/output"
	"github.com/tsinghua-fib-lab/optitraffic/utils/config"
)

func TestNewRunRecord(t *testing.T) {
	r := output.NewRunRecord("marl", 123, 45.6789)
	assert.NotEmpty(t, r.RunID)
	assert.NotEmpty(t, r.Timestamp)
	assert.Equal(t, "marl", r.Strategy)
	assert.Equal(t, int32(123), r.VehiclesPassed)
	// 等待时间保留两位小数
	assert.Equal(t, 45.68, r.WaitTime)

	r2 := output.NewRunRecord("fixed", 0, 0)
	assert.NotEqual(t, r.RunID, r2.RunID)
}

func TestRecorderAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	rec := output.NewRecorder(config.Output{File: path})
	defer rec.Close()

	assert.NoError(t, rec.Write(output.NewRunRecord("fixed", 10, 1.5)))
	assert.NoError(t, rec.Write(output.NewRunRecord("marl", 20, 2.5)))

	records, err := output.ReadRecords(path)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "fixed", records[0].Strategy)
	assert.Equal(t, int32(10), records[0].VehiclesPassed)
	assert.Equal(t, "marl", records[1].Strategy)
	assert.Equal(t, 2.5, records[1].WaitTime)
}

func TestRecorderDisabled(t *testing.T) {
	rec := output.NewRecorder(config.Output{})
	defer rec.Close()
	assert.NoError(t, rec.Write(output.NewRunRecord("fixed", 1, 1)))
}

func TestReadRecordsMissingFile(t *testing.T) {
	records, err := output.ReadRecords(filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, err)
	assert.Empty(t, records)
}
