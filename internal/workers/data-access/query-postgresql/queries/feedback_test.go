package queries

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedbackColumns = []string{
	"feedback_id", "netheid_score", "wifi_score", "ruimte_score", "stilte_score",
	"algemene_score", "extra_opmerkingen", "is_reviewed", "starttijd", "desk_number",
	"dienst", "building_id", "adress", "floor",
}

var startedAt = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newMockRepository(t *testing.T, inverted bool) (*FeedbackRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFeedbackRepository(db, inverted), mock
}

func TestFeedbackRepository_LoadBatch(t *testing.T) {
	repo, mock := newMockRepository(t, false)

	rows := sqlmock.NewRows(feedbackColumns).
		AddRow(1, 4, 2, 5, 3, 4, "Wifi traag", false, startedAt, 12, "ICT", 3, "Kerkstraat 1", 2).
		AddRow(2, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, 7, nil, nil)
	mock.ExpectQuery(`FROM "Feedback" f .* WHERE f\.organization_id = \$1 ORDER BY f\.feedback_id`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	records, err := repo.LoadBatch(context.Background(), 5, false)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, 4, *first.Ratings.Cleanliness)
	assert.Equal(t, 2, *first.Ratings.Wifi)
	assert.Equal(t, 5, *first.Ratings.Space)
	assert.Equal(t, 3, *first.Ratings.Quiet)
	assert.Equal(t, 4, *first.Ratings.Overall)
	assert.Equal(t, "Wifi traag", first.Comment)
	assert.False(t, first.Reviewed)
	require.NotNil(t, first.CreatedAt)
	assert.True(t, startedAt.Equal(*first.CreatedAt))
	assert.Equal(t, "12", first.DeskNumber)
	assert.Equal(t, "ICT", first.Department)
	assert.Equal(t, "Kerkstraat 1 (Floor 2)", first.BuildingName)

	second := records[1]
	assert.Empty(t, second.Ratings.Values())
	assert.Empty(t, second.Comment)
	assert.Nil(t, second.CreatedAt)
	assert.Empty(t, second.DeskNumber)
	assert.Equal(t, "No department", second.Department)
	assert.Equal(t, "Building 7", second.BuildingName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_LoadBatch_OnlyUnreviewed(t *testing.T) {
	repo, mock := newMockRepository(t, false)

	mock.ExpectQuery(`WHERE f\.organization_id = \$1 AND NOT COALESCE\(f\.is_reviewed, FALSE\) ORDER BY`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(feedbackColumns))

	records, err := repo.LoadBatch(context.Background(), 5, true)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_InvertedRatings(t *testing.T) {
	repo, mock := newMockRepository(t, true)

	rows := sqlmock.NewRows(feedbackColumns).
		AddRow(1, 1, 5, nil, 2, 3, "", true, startedAt, 1, "", 1, "", 0)
	mock.ExpectQuery(`FROM "Feedback" f`).WillReturnRows(rows)

	records, err := repo.LoadBatch(context.Background(), 1, false)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0].Ratings
	assert.Equal(t, 5, *r.Cleanliness)
	assert.Equal(t, 1, *r.Wifi)
	assert.Nil(t, r.Space)
	assert.Equal(t, 4, *r.Quiet)
	assert.Equal(t, 3, *r.Overall)
	assert.True(t, records[0].Reviewed)
	assert.Equal(t, "Building 1", records[0].BuildingName)
}

func TestFeedbackRepository_LoadBatch_Errors(t *testing.T) {
	t.Run("query error", func(t *testing.T) {
		repo, mock := newMockRepository(t, false)
		mock.ExpectQuery(`FROM "Feedback" f`).WillReturnError(errors.New("connection reset"))

		records, err := repo.LoadBatch(context.Background(), 1, false)
		assert.Error(t, err)
		assert.Nil(t, records)
	})

	t.Run("row error", func(t *testing.T) {
		repo, mock := newMockRepository(t, false)
		rows := sqlmock.NewRows(feedbackColumns).
			AddRow(1, 4, 4, 4, 4, 4, "", false, startedAt, 1, "", 1, "", 0).
			RowError(0, errors.New("broken row"))
		mock.ExpectQuery(`FROM "Feedback" f`).WillReturnRows(rows)

		_, err := repo.LoadBatch(context.Background(), 1, false)
		assert.ErrorContains(t, err, "broken row")
	})
}

func TestFeedbackRepository_LoadByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepository(t, false)
		rows := sqlmock.NewRows(feedbackColumns).
			AddRow(9, 5, 5, 5, 5, 5, "Top", false, startedAt, 4, "HR", 2, "Markt 3", nil)
		mock.ExpectQuery(`WHERE f\.organization_id = \$1 AND f\.feedback_id = \$2`).
			WithArgs(int64(3), int64(9)).
			WillReturnRows(rows)

		rec, err := repo.LoadByID(context.Background(), 3, 9)
		require.NoError(t, err)
		assert.Equal(t, int64(9), rec.ID)
		assert.Equal(t, "Markt 3", rec.BuildingName)
		assert.Equal(t, "HR", rec.Department)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepository(t, false)
		mock.ExpectQuery(`AND f\.feedback_id = \$2`).
			WithArgs(int64(3), int64(9)).
			WillReturnError(sql.ErrNoRows)

		rec, err := repo.LoadByID(context.Background(), 3, 9)
		assert.Nil(t, rec)
		assert.ErrorIs(t, err, ErrFeedbackNotFound)
		assert.True(t, IsInputError(err))
	})
}

func TestFeedbackRepository_SummaryCounts(t *testing.T) {
	repo, mock := newMockRepository(t, false)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "reviewed", "with_comment"}).AddRow(10, 4, 7))

	counts, err := repo.SummaryCounts(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, &SummaryCounts{Total: 10, Reviewed: 4, Unreviewed: 6, WithComment: 7}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_MarkReviewed(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("updates rows", func(t *testing.T) {
		repo, mock := newMockRepository(t, false)
		mock.ExpectExec(`UPDATE "Feedback" SET is_reviewed = TRUE, reviewed_at = \$3 WHERE organization_id = \$1 AND feedback_id = ANY\(\$2\)`).
			WithArgs(int64(4), pq.Array([]int64{3, 8}), at).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := repo.MarkReviewed(context.Background(), 4, []int64{3, 8}, at)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no ids skips the database", func(t *testing.T) {
		repo, mock := newMockRepository(t, false)
		n, err := repo.MarkReviewed(context.Background(), 4, nil, at)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		repo, mock := newMockRepository(t, false)
		mock.ExpectExec(`UPDATE "Feedback"`).WillReturnError(errors.New("deadlock detected"))

		_, err := repo.MarkReviewed(context.Background(), 4, []int64{1}, at)
		assert.ErrorContains(t, err, "deadlock")
	})
}

func TestExecute_UnknownQueryType(t *testing.T) {
	_, _, _, err := Execute(context.Background(), nil, "desk_bookings", nil)
	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestFeedbackByID_MissingParam(t *testing.T) {
	_, _, _, err := FeedbackByID(context.Background(), nil, map[string]interface{}{"organizationId": int64(1)})
	assert.ErrorIs(t, err, ErrMissingParam)
	assert.ErrorContains(t, err, "feedbackId")
}
