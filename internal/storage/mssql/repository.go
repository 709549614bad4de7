package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"conference-scraper/internal/checksum"
	"conference-scraper/internal/observability"
	"conference-scraper/internal/storage"
)

// Repository дублирует заголовки и ссылки в таблицу TblConferences.
// Ключ — TitleHash, поэтому повторные прогоны не плодят дубликаты.
type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	checksum       *checksum.Generator
	logger         *observability.Logger
}

var _ storage.Mirror = (*Repository)(nil)

const upsertTitleQuery = `
	MERGE INTO TblConferences AS target
	USING (SELECT @TitleHash AS TitleHash) AS source
	ON target.[TitleHash] = source.TitleHash
	WHEN MATCHED THEN
		UPDATE SET
			[LastSeenAt] = @SeenAt,
			[LastRunID] = @RunID,
			[Page] = @Page
	WHEN NOT MATCHED THEN
		INSERT ([TitleHash], [Title], [Page], [FirstSeenAt], [LastSeenAt], [LastRunID])
		VALUES (@TitleHash, @Title, @Page, @SeenAt, @SeenAt, @RunID);
`

const updateLinkQuery = `
	UPDATE TblConferences
	SET [Link] = @Link, [LinkRunID] = @RunID, [LinkResolvedAt] = @ResolvedAt
	WHERE [TitleHash] = @TitleHash
`

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		checksum:       checksum.NewGenerator(),
		logger:         logger,
	}, nil
}

// SaveTitles сохраняет заголовки одной страницы в одной транзакции
func (r *Repository) SaveTitles(ctx context.Context, runID string, page int, titles []string) error {
	if len(titles) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	return r.inTx(ctx, upsertTitleQuery, func(stmt *sql.Stmt) error {
		seenAt := time.Now().UTC()
		for _, title := range titles {
			_, err := stmt.ExecContext(ctx,
				sql.Named("TitleHash", r.checksum.GenerateTitleHash(title)),
				sql.Named("Title", title),
				sql.Named("Page", page),
				sql.Named("SeenAt", seenAt),
				sql.Named("RunID", runID),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert title %q: %w", title, err)
			}
		}
		return nil
	})
}

// SaveLinks проставляет ссылки уже сохранённым заголовкам
func (r *Repository) SaveLinks(ctx context.Context, runID string, links []storage.TitleLink) error {
	if len(links) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	return r.inTx(ctx, updateLinkQuery, func(stmt *sql.Stmt) error {
		resolvedAt := time.Now().UTC()
		for _, tl := range links {
			link := sql.NullString{String: tl.Link, Valid: tl.Link != ""}
			_, err := stmt.ExecContext(ctx,
				sql.Named("TitleHash", r.checksum.GenerateTitleHash(tl.Title)),
				sql.Named("Link", link),
				sql.Named("RunID", runID),
				sql.Named("ResolvedAt", resolvedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to update link for %q: %w", tl.Title, err)
			}
		}
		return nil
	})
}

func (r *Repository) inTx(ctx context.Context, query string, fn func(stmt *sql.Stmt) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	if err := fn(stmt); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("Failed to rollback", "error", rbErr.Error())
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
