package repository

import (
	"testing"

	"post_audit_service/internal/domain/post/moderation"
	"post_audit_service/pkg/quicktag"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockRepo(t *testing.T) (PostRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewPostRepository(gdb), mock
}

func TestFindPageStatusFilter(t *testing.T) {
	repo, mock := newMockRepo(t)

	approved := quicktag.Approved.Value()

	// 状态筛选用位包含而非相等
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE posts\.quick_tag & \$1 = \$2`).
		WithArgs(approved, approved).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`SELECT .* FROM "posts" WHERE posts\.quick_tag & \$1 = \$2 ORDER BY posts\.created_at desc`).
		WithArgs(approved, approved, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author_id", "quick_tag"}).
			AddRow("post-1", "Approved Post", "author-1", approved))

	// Preload Author
	mock.ExpectQuery(`SELECT .* FROM "users" WHERE "users"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow("author-1", "alice"))

	posts, total, err := repo.FindPage(PageQuery{
		Status: moderation.StatusApproved,
		Offset: 0,
		Limit:  10,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, posts, 1)
	assert.Equal(t, "Approved Post", posts[0].Title)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "alice", posts[0].Author.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPageKeywordSearch(t *testing.T) {
	repo, mock := newMockRepo(t)

	// 关键词搜索: LEFT JOIN users + 四个字段的 OR 并集，每个都带状态合取
	countQuery := `SELECT count\(\*\) FROM "posts" LEFT JOIN users ON users\.id = posts\.author_id WHERE \(\(posts\.title ILIKE .* AND posts\.quick_tag & .* OR \(posts\.content::text ILIKE .* OR \(posts\.location ILIKE .* OR \(users\.username ILIKE .*`
	mock.ExpectQuery(countQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(`SELECT .* FROM "posts" LEFT JOIN users ON users\.id = posts\.author_id WHERE .*ILIKE.* ORDER BY posts\.created_at desc`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, total, err := repo.FindPage(PageQuery{
		Status:  moderation.StatusApproved,
		Keyword: "beach",
		Offset:  0,
		Limit:   10,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDForUpdateLocksRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM "posts" WHERE id = \$1 .* FOR UPDATE`).
		WithArgs("post-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "quick_tag"}).
			AddRow("post-1", "Locked Post", quicktag.Pending.Value()))

	post, err := repo.GetByIDForUpdate("post-1")

	assert.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)
	assert.True(t, post.Tag().Has(quicktag.Pending))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReportsRowsAffected(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "posts" SET .*"quick_tag".* WHERE id = \$`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows, err := repo.Update("post-1", map[string]interface{}{
		"quick_tag":     quicktag.Approved.Value(),
		"reject_reason": "",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReportsRowsAffected(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "posts" WHERE id = \$1`).
		WithArgs("no-such-post").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	rows, err := repo.Delete("no-such-post")

	assert.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
