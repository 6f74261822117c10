package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent_server/core/port/out"
)

const stripTagQuery = `UPDATE consultants SET tags = array_remove(tags, $1) WHERE $1 = ANY(tags) RETURNING *`

func TestTagAdapter_List(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewTagAdapter(db)
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(listTagsQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "usage_count", "created_by", "created_at"}).
			AddRow("go", 3, "u1", created).
			AddRow("sql", 0, nil, nil))

	tags, err := adapter.List(context.Background())

	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Name)
	assert.Equal(t, 3, tags[0].UsageCount)
	assert.Equal(t, "u1", *tags[0].CreatedBy)
	assert.Nil(t, tags[1].CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagAdapter_ListEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewTagAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(listTagsQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "usage_count", "created_by", "created_at"}))

	tags, err := adapter.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestTagAdapter_Create(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewTagAdapter(db)
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO tags \(name, created_by\)`).
		WithArgs("go", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "created_by", "created_at"}).AddRow("go", "u1", created))

	tag, err := adapter.Create(context.Background(), "go", "u1")

	require.NoError(t, err)
	assert.Equal(t, "go", tag.Name)
	assert.Equal(t, created, *tag.CreatedAt)
}

func TestTagAdapter_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewTagAdapter(db)

	mock.ExpectQuery(`INSERT INTO tags \(name, created_by\)`).
		WithArgs("go", "").
		WillReturnRows(sqlmock.NewRows([]string{"name", "created_by", "created_at"}))

	_, err := adapter.Create(context.Background(), "go", "")

	assert.ErrorIs(t, err, out.ErrDuplicate)
}

func TestTagAdapter_DeleteStripsConsultants(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewTagAdapter(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags WHERE name = $1`)).
		WithArgs("go").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(stripTagQuery)).
		WithArgs("go").
		WillReturnRows(sqlmock.NewRows(consultantColumns).
			AddRow(consultantRowValues("c1", "Jean")...).
			AddRow(consultantRowValues("c2", "Marie")...))
	mock.ExpectCommit()

	changed, err := adapter.Delete(context.Background(), "go")

	require.NoError(t, err)
	require.Len(t, changed, 2)
	assert.Equal(t, "c1", changed[0].ID)
	assert.Equal(t, "Marie", *changed[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagAdapter_DeleteUnknown(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewTagAdapter(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags WHERE name = $1`)).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(stripTagQuery)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(consultantColumns))
	mock.ExpectRollback()

	_, err := adapter.Delete(context.Background(), "nope")

	assert.ErrorIs(t, err, out.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
