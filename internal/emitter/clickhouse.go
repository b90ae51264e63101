package emitter

import (
	"context"
	"fmt"
	"log"

	"NetSentry/internal/config"
	coremodel "NetSentry/internal/core/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS alerts (
    Timestamp     DateTime,
    DeviceID      String,
    AlertType     String,
    Severity      String,
    Description   String,
    SourceIP      Nullable(String),
    DestinationIP Nullable(String),
    Protocol      Nullable(String),
    Port          Nullable(UInt16)
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (DeviceID, Timestamp);
`

// ClickHouseSink archives alerts into an alerts table for later analysis.
type ClickHouseSink struct {
	conn driver.Conn
}

// NewClickHouseSink connects to ClickHouse and ensures the alerts table
// exists.
func NewClickHouseSink(cfg config.ClickHouseConfig) (*ClickHouseSink, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create alerts table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured alerts table exists.")

	return &ClickHouseSink{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

func (s *ClickHouseSink) Write(alert coremodel.Alert) error {
	batch, err := s.conn.PrepareBatch(context.Background(), "INSERT INTO alerts")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	err = batch.Append(
		alert.Timestamp,
		alert.DeviceID,
		string(alert.Type),
		string(alert.Severity),
		alert.Description,
		alert.SourceIP,
		alert.DestinationIP,
		alert.Protocol,
		alert.Port,
	)
	if err != nil {
		return fmt.Errorf("failed to append alert to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}
