// Package export writes order-history snapshots as parquet, either to the
// local filesystem or to cloud object storage, for offline analysis.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/yuchialin/canteend/internal/cloudwriter"
	"github.com/yuchialin/canteend/internal/models"
)

type historyRow struct {
	ID             string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	OwnerID        string  `parquet:"name=owner_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	RestaurantName string  `parquet:"name=restaurant_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Items          string  `parquet:"name=items, type=BYTE_ARRAY, convertedtype=UTF8"` // JSON-encoded item list
	TotalPrice     int64   `parquet:"name=total_price, type=INT64"`
	TotalCalories  float64 `parquet:"name=total_calories, type=DOUBLE"`
	Timestamp      int64   `parquet:"name=timestamp, type=INT64"`
}

// WriteLocal writes records to a parquet file at path.
func WriteLocal(path string, records []models.HistoryRecord) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create local file writer: %w", err)
	}
	return writeRecords(fw, records)
}

// WriteCloud writes records as a single parquet object through the cloud
// writer factory.
func WriteCloud(factory cloudwriter.CloudWriterFactory, bucket, objectPath string, records []models.HistoryRecord) error {
	cw, err := factory.NewWriter(bucket, objectPath)
	if err != nil {
		return fmt.Errorf("failed to create cloud file writer: %w", err)
	}
	return writeRecords(newCloudParquetFile(cw), records)
}

func writeRecords(fw source.ParquetFile, records []models.HistoryRecord) error {
	pw, err := writer.NewParquetWriter(fw, new(historyRow), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	for _, record := range records {
		items, err := json.Marshal(record.Items)
		if err != nil {
			fw.Close()
			return fmt.Errorf("failed to encode items for record %s: %w", record.ID, err)
		}
		row := historyRow{
			ID:             record.ID,
			OwnerID:        record.OwnerID,
			RestaurantName: record.RestaurantName,
			Items:          string(items),
			TotalPrice:     int64(record.TotalPrice),
			TotalCalories:  record.TotalCalories,
			Timestamp:      record.Timestamp,
		}
		if err := pw.Write(row); err != nil {
			fw.Close()
			return fmt.Errorf("failed to write record %s: %w", record.ID, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return fw.Close()
}

// cloudParquetFile adapts a CloudWriter to the ParquetFile interface. It is
// write-only and append-only; the parquet writer never reads back or seeks
// while producing a fresh file.
type cloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func newCloudParquetFile(cw cloudwriter.CloudWriter) *cloudParquetFile {
	return &cloudParquetFile{cloudWriter: cw}
}

func (c *cloudParquetFile) Create(name string) (source.ParquetFile, error) {
	// the object is implicitly created on first write
	return c, nil
}

func (c *cloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *cloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *cloudParquetFile) Read(p []byte) (int, error) {
	return 0, io.EOF
}

func (c *cloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		// size is unknown until Close; treat as current end
	}
	return c.offset, nil
}

func (c *cloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
