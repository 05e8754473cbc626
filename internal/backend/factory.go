package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/amqp"
	"finledger/internal/events"
	"finledger/internal/events/kafka"
	"finledger/internal/log"
	"finledger/internal/record"
	"finledger/internal/services"
	"finledger/internal/sheets"
	gsheet "finledger/internal/sheets/google"
	"finledger/internal/storage"
	"finledger/internal/store"
	"finledger/internal/store/csvfile"
	"finledger/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

var _ Factory = (*DefaultFactory)(nil)

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger.With(log.FieldComponent, log.ComponentBackend),
	}
}

// CreateSnapshot implements Factory.CreateSnapshot
func (f *DefaultFactory) CreateSnapshot(ctx context.Context, config Config) (store.Snapshotter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	codec := record.Codec{Location: config.Location}

	switch config.Type {
	case CSVBackend:
		f.logger.Info("Initialized CSV backend", "path", config.LedgerFile)
		return csvfile.New(config.LedgerFile, codec), nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, codec)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	case SheetsBackend:
		snap, err := f.sheetsSnapshot(ctx, config, codec)
		if err != nil {
			return nil, err
		}
		f.logger.Info("Initialized Google Sheets backend", "sheet", snap.Sheet())
		return snap, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (*sheets.Snapshot, error) {
	if config.GoogleSpreadsheetID == "" {
		return nil, fmt.Errorf("Google Spreadsheet ID is required for the mirror")
	}
	return f.sheetsSnapshot(ctx, config, record.Codec{Location: config.Location})
}

func (f *DefaultFactory) sheetsSnapshot(ctx context.Context, config Config, codec record.Codec) (*sheets.Snapshot, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	return sheets.NewSnapshot(cli, config.GoogleSheetName, codec), nil
}

// CreatePublisher implements Factory.CreatePublisher
func (f *DefaultFactory) CreatePublisher(_ context.Context, config Config) (events.Publisher, error) {
	switch config.Events {
	case NoEvents, "":
		return events.Nop{}, nil
	case AMQPEvents:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
			return events.Nop{}, nil
		}
		f.logger.Info("Initialized AMQP client",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return client, nil
	case KafkaEvents:
		f.logger.Info("Initialized Kafka publisher",
			"brokers", config.KafkaBrokers,
			"topic", config.KafkaTopic)
		return kafka.NewPublisher(config.KafkaBrokers, config.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unsupported events backend: %s", config.Events)
	}
}

// CreateLedger implements Factory.CreateLedger
func (f *DefaultFactory) CreateLedger(ctx context.Context, config Config) (*BackendResult, error) {
	snap, err := f.CreateSnapshot(ctx, config)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, config.Type.String(), snap)
	if err != nil {
		if c, ok := snap.(interface{ Close() error }); ok {
			c.Close()
		}
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}

	publisher, err := f.CreatePublisher(ctx, config)
	if err != nil {
		st.Close()
		return nil, err
	}

	opts := []services.Option{services.WithLocation(config.Location)}
	if config.Goal.IsPositive() {
		opts = append(opts, services.WithGoal(config.Goal))
	}
	svc := services.NewLedgerService(st, publisher, opts...)

	f.logger.Info("Ledger ready",
		log.FieldBackend, config.Type,
		"events", config.Events,
		log.FieldCount, svc.Count())

	return &BackendResult{
		Ledger:  svc,
		Cleanup: svc.Close,
	}, nil
}
