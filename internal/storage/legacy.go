package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
)

type column struct {
	name string
	ddl  string
}

// chatColumns lists chat_sessions columns that older schemas may lack, in
// the order they are added. Rows that predate the cipher column were
// written with the shift codec, hence its default.
var chatColumns = []column{
	{name: "encrypted", ddl: "encrypted BOOLEAN NOT NULL DEFAULT FALSE"},
	{name: "response", ddl: "response TEXT"},
	{name: "response_encrypted", ddl: "response_encrypted BOOLEAN DEFAULT FALSE"},
	{name: "cipher", ddl: "cipher TEXT NOT NULL DEFAULT 'shift'"},
}

// MissingChatColumns returns the chat_sessions columns absent from the
// current database. A database without the table reports none.
func MissingChatColumns(ctx context.Context, db *sql.DB) ([]string, error) {
	existing, err := tableColumns(ctx, db, "chat_sessions")
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}

	var missing []string
	for _, c := range chatColumns {
		if _, ok := existing[c.name]; !ok {
			missing = append(missing, c.name)
		}
	}
	return missing, nil
}

// UpgradeChatTable adds every missing chat_sessions column and returns the
// names it added. Running it on a current schema is a no-op.
func UpgradeChatTable(ctx context.Context, db *sql.DB) ([]string, error) {
	missing, err := MissingChatColumns(ctx, db)
	if err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(missing))
	for _, m := range missing {
		want[m] = struct{}{}
	}

	var added []string
	for _, c := range chatColumns {
		if _, ok := want[c.name]; !ok {
			continue
		}
		if _, err := db.ExecContext(ctx, "ALTER TABLE chat_sessions ADD COLUMN "+c.ddl); err != nil {
			return added, fmt.Errorf("%w: add column %s: %w", common.ErrStorageUnavailable, c.name, err)
		}
		added = append(added, c.name)
	}
	return added, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]struct{}, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("%w: inspect %s: %w", common.ErrStorageUnavailable, table, err)
	}
	defer rows.Close()

	cols := map[string]struct{}{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: inspect %s: %w", common.ErrStorageUnavailable, table, err)
		}
		cols[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: inspect %s: %w", common.ErrStorageUnavailable, table, err)
	}
	return cols, nil
}
