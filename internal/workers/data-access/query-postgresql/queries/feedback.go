package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"desk-feedback-workers/internal/analytics"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

const (
	noDepartment = "No department"

	// Storage may hold ratings as 6 - stars.
	invertedRatingBase = analytics.MaxRating + 1
)

const feedbackSelect = `
	SELECT f.feedback_id, f.netheid_score, f.wifi_score, f.ruimte_score,
	       f.stilte_score, f.algemene_score, f.extra_opmerkingen, f.is_reviewed,
	       r.starttijd, d.desk_number, d.dienst, b.building_id, b.adress, b.floor
	FROM "Feedback" f
	JOIN reservation r ON f.reservation_id = r.res_id
	JOIN desk d ON r.desk_id = d.desk_id
	JOIN building b ON d.building_id = b.building_id
	WHERE f.organization_id = $1`

const summaryCountsQuery = `
	SELECT COUNT(*),
	       COUNT(*) FILTER (WHERE f.is_reviewed),
	       COUNT(*) FILTER (WHERE COALESCE(f.extra_opmerkingen, '') <> '')
	FROM "Feedback" f
	WHERE f.organization_id = $1`

const markReviewedQuery = `
	UPDATE "Feedback"
	SET is_reviewed = TRUE, reviewed_at = $3
	WHERE organization_id = $1 AND feedback_id = ANY($2) AND NOT COALESCE(is_reviewed, FALSE)`

// SummaryCounts is the review backlog of one organization.
type SummaryCounts struct {
	Total       int `json:"total"`
	Reviewed    int `json:"reviewed"`
	Unreviewed  int `json:"unreviewed"`
	WithComment int `json:"withComment"`
}

// FeedbackRepository reads desk feedback joined with its reservation, desk
// and building, and maps rows onto analyzer records.
type FeedbackRepository struct {
	db              *sql.DB
	ratingsInverted bool
}

func NewFeedbackRepository(db *sql.DB, ratingsInverted bool) *FeedbackRepository {
	return &FeedbackRepository{db: db, ratingsInverted: ratingsInverted}
}

// LoadBatch returns the feedback of an organization ordered by id.
func (r *FeedbackRepository) LoadBatch(ctx context.Context, organizationID int64, onlyUnreviewed bool) ([]analytics.FeedbackRecord, error) {
	query := feedbackSelect
	if onlyUnreviewed {
		query += ` AND NOT COALESCE(f.is_reviewed, FALSE)`
	}
	query += ` ORDER BY f.feedback_id`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []analytics.FeedbackRecord{}
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *FeedbackRepository) LoadByID(ctx context.Context, organizationID, feedbackID int64) (*analytics.FeedbackRecord, error) {
	row := r.db.QueryRowContext(ctx, feedbackSelect+` AND f.feedback_id = $2`, organizationID, feedbackID)
	rec, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrFeedbackNotFound, feedbackID)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *FeedbackRepository) SummaryCounts(ctx context.Context, organizationID int64) (*SummaryCounts, error) {
	var counts SummaryCounts
	err := r.db.QueryRowContext(ctx, summaryCountsQuery, organizationID).
		Scan(&counts.Total, &counts.Reviewed, &counts.WithComment)
	if err != nil {
		return nil, err
	}
	counts.Unreviewed = counts.Total - counts.Reviewed
	return &counts, nil
}

// MarkReviewed flags the given feedback as reviewed and returns how many rows
// changed. Ids of other organizations and rows already reviewed are skipped.
func (r *FeedbackRepository) MarkReviewed(ctx context.Context, organizationID int64, feedbackIDs []int64, at time.Time) (int64, error) {
	if len(feedbackIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, markReviewedQuery, organizationID, pq.Array(feedbackIDs), at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *FeedbackRepository) scan(row rowScanner) (analytics.FeedbackRecord, error) {
	var (
		id                                   int64
		netheid, wifi, ruimte, stilte, total sql.NullInt64
		comment, department, address         sql.NullString
		reviewed                             sql.NullBool
		startedAt                            sql.NullTime
		deskNumber, floor                    sql.NullInt64
		buildingID                           int64
	)
	err := row.Scan(
		&id, &netheid, &wifi, &ruimte, &stilte, &total, &comment, &reviewed,
		&startedAt, &deskNumber, &department, &buildingID, &address, &floor,
	)
	if err != nil {
		return analytics.FeedbackRecord{}, err
	}

	rec := analytics.FeedbackRecord{
		ID: id,
		Ratings: analytics.Ratings{
			Cleanliness: r.rating(netheid),
			Wifi:        r.rating(wifi),
			Space:       r.rating(ruimte),
			Quiet:       r.rating(stilte),
			Overall:     r.rating(total),
		},
		Comment:      comment.String,
		Reviewed:     reviewed.Bool,
		BuildingName: buildingName(buildingID, address, floor),
		Department:   noDepartment,
	}
	if startedAt.Valid {
		t := startedAt.Time
		rec.CreatedAt = &t
	}
	if deskNumber.Valid {
		rec.DeskNumber = strconv.FormatInt(deskNumber.Int64, 10)
	}
	if department.String != "" {
		rec.Department = department.String
	}
	return rec, nil
}

func (r *FeedbackRepository) rating(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	if r.ratingsInverted {
		n = invertedRatingBase - n
	}
	return &n
}

func buildingName(id int64, address sql.NullString, floor sql.NullInt64) string {
	name := address.String
	if name == "" {
		name = fmt.Sprintf("Building %d", id)
	}
	if floor.Valid && floor.Int64 != 0 {
		name += fmt.Sprintf(" (Floor %d)", floor.Int64)
	}
	return name
}
