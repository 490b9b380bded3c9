// internal/repository/printer_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"epos-bridge/internal/database"
	"epos-bridge/internal/model"
)

const printerColumns = `id, printer_id, name, brand, model, connection_type,
	connection_config, paper_width, enabled, last_print_at, created_at, updated_at`

// uniqueViolation is the PostgreSQL SQLSTATE for duplicate keys
const uniqueViolation = "23505"

// printerRepository implements PrinterRepository on PostgreSQL
type printerRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPrinterRepository creates a new printer repository
func NewPrinterRepository(db *database.DB, logger *zap.Logger) PrinterRepository {
	return &printerRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new printer
func (r *printerRepository) Create(ctx context.Context, printer *model.Printer) error {
	query := `
		INSERT INTO printers (
			id, printer_id, name, brand, model, connection_type,
			connection_config, paper_width, enabled
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		printer.ID, printer.PrinterID, printer.Name, printer.Brand, printer.Model,
		printer.ConnectionType, printer.ConnectionConfig, printer.PaperWidth, printer.Enabled,
	).Scan(&printer.CreatedAt, &printer.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrPrinterExists, printer.PrinterID)
		}
		r.logger.Error("Failed to create printer", zap.Error(err), zap.String("printer_id", printer.PrinterID))
		return fmt.Errorf("failed to create printer: %w", err)
	}

	r.logger.Info("Printer created successfully", zap.String("printer_id", printer.PrinterID))
	return nil
}

// GetByPrinterID retrieves a printer by its printer ID
func (r *printerRepository) GetByPrinterID(ctx context.Context, printerID string) (*model.Printer, error) {
	query := `SELECT ` + printerColumns + ` FROM printers WHERE printer_id = $1`

	printer, err := scanPrinter(r.db.QueryRowContext(ctx, query, printerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrPrinterNotFound, printerID)
		}
		r.logger.Error("Failed to get printer", zap.Error(err), zap.String("printer_id", printerID))
		return nil, fmt.Errorf("failed to get printer: %w", err)
	}
	return printer, nil
}

// Update updates an existing printer
func (r *printerRepository) Update(ctx context.Context, printer *model.Printer) error {
	query := `
		UPDATE printers SET
			name = $2, brand = $3, model = $4, connection_type = $5,
			connection_config = $6, paper_width = $7, enabled = $8,
			updated_at = CURRENT_TIMESTAMP
		WHERE printer_id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		printer.PrinterID, printer.Name, printer.Brand, printer.Model,
		printer.ConnectionType, printer.ConnectionConfig, printer.PaperWidth, printer.Enabled,
	).Scan(&printer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrPrinterNotFound, printer.PrinterID)
		}
		r.logger.Error("Failed to update printer", zap.Error(err), zap.String("printer_id", printer.PrinterID))
		return fmt.Errorf("failed to update printer: %w", err)
	}

	r.logger.Debug("Printer updated successfully", zap.String("printer_id", printer.PrinterID))
	return nil
}

// Delete removes a printer and, by cascade, its job history
func (r *printerRepository) Delete(ctx context.Context, printerID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM printers WHERE printer_id = $1`, printerID)
	if err != nil {
		r.logger.Error("Failed to delete printer", zap.Error(err), zap.String("printer_id", printerID))
		return fmt.Errorf("failed to delete printer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrPrinterNotFound, printerID)
	}

	r.logger.Info("Printer deleted successfully", zap.String("printer_id", printerID))
	return nil
}

// List returns printers matching filter, ordered by printer ID
func (r *printerRepository) List(ctx context.Context, filter *PrinterFilter) ([]*model.Printer, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter != nil {
		if filter.Brand != nil {
			args = append(args, *filter.Brand)
			conditions = append(conditions, fmt.Sprintf("brand = $%d", len(args)))
		}
		if filter.ConnectionType != nil {
			args = append(args, *filter.ConnectionType)
			conditions = append(conditions, fmt.Sprintf("connection_type = $%d", len(args)))
		}
		if filter.Enabled != nil {
			args = append(args, *filter.Enabled)
			conditions = append(conditions, fmt.Sprintf("enabled = $%d", len(args)))
		}
	}

	query := `SELECT ` + printerColumns + ` FROM printers`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY printer_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list printers: %w", err)
	}
	defer rows.Close()

	printers := []*model.Printer{}
	for rows.Next() {
		printer, err := scanPrinter(rows)
		if err != nil {
			r.logger.Error("Failed to scan printer row", zap.Error(err))
			continue
		}
		printers = append(printers, printer)
	}
	return printers, rows.Err()
}

// TouchLastPrint records that a job reached the printer
func (r *printerRepository) TouchLastPrint(ctx context.Context, printerID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE printers SET last_print_at = CURRENT_TIMESTAMP WHERE printer_id = $1`, printerID)
	if err != nil {
		return fmt.Errorf("failed to update last print time: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrinter(row rowScanner) (*model.Printer, error) {
	printer := &model.Printer{}
	err := row.Scan(
		&printer.ID, &printer.PrinterID, &printer.Name, &printer.Brand, &printer.Model,
		&printer.ConnectionType, &printer.ConnectionConfig, &printer.PaperWidth,
		&printer.Enabled, &printer.LastPrintAt, &printer.CreatedAt, &printer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return printer, nil
}
