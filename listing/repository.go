package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested listing does not exist.
var ErrNotFound = errors.New("listing: not found")

const maxFindLimit = 2000

// Store is the read-only query capability the engine consumes.
type Store interface {
	Find(ctx context.Context, filter Filter) ([]Listing, error)
	Get(ctx context.Context, id string) (Listing, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const listingColumns = `id, title, description, status, listing_type, property_type,
	price::float8, original_price::float8, rental_price::float8, original_rental_price::float8,
	price_per_area::float8, rent_per_area::float8, floor_area::float8,
	district, subdistrict, province, popular_area, near_bts, near_mrt, transit_station,
	image_url, created_at, updated_at`

func (r *PGRepository) Get(ctx context.Context, id string) (Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("listing: get: %w", err)
	}
	return l, nil
}

func (r *PGRepository) Find(ctx context.Context, filter Filter) ([]Listing, error) {
	where, args := filterClause(filter)

	limit := filter.Limit
	if limit <= 0 || limit > maxFindLimit {
		limit = maxFindLimit
	}

	query := fmt.Sprintf(`SELECT %s FROM listings WHERE %s ORDER BY updated_at DESC, id DESC LIMIT %d`,
		listingColumns, where, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing: query find: %w", err)
	}
	defer rows.Close()

	list := []Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("listing: scan: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing: iterate: %w", err)
	}
	return list, nil
}

func filterClause(filter Filter) (string, []any) {
	where := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)+1))
		args = append(args, statusStrings(filter.Statuses))
	}
	if len(filter.ListingTypes) > 0 {
		where = append(where, fmt.Sprintf("listing_type = ANY($%d)", len(args)+1))
		args = append(args, listingTypeStrings(filter.ListingTypes))
	}
	if filter.PropertyType != nil {
		where = append(where, fmt.Sprintf("property_type = $%d", len(args)+1))
		args = append(args, string(*filter.PropertyType))
	}
	if filter.FloorAreaMin != nil {
		where = append(where, fmt.Sprintf("floor_area >= $%d", len(args)+1))
		args = append(args, *filter.FloorAreaMin)
	}
	if filter.FloorAreaMax != nil {
		where = append(where, fmt.Sprintf("floor_area < $%d", len(args)+1))
		args = append(args, *filter.FloorAreaMax)
	}
	if filter.NearTransit {
		where = append(where, "(near_bts OR near_mrt)")
	}
	if filter.After != nil {
		where = append(where, fmt.Sprintf("(updated_at, id) < ($%d::timestamptz, $%d::uuid)", len(args)+1, len(args)+2))
		args = append(args, filter.After.UpdatedAt, filter.After.ID)
	}

	return strings.Join(where, " AND "), args
}

func scanListing(row pgx.Row) (Listing, error) {
	var l Listing
	return l, row.Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.Status,
		&l.ListingType,
		&l.PropertyType,
		&l.Price,
		&l.OriginalPrice,
		&l.RentalPrice,
		&l.OriginalRentalPrice,
		&l.PricePerArea,
		&l.RentPerArea,
		&l.FloorArea,
		&l.District,
		&l.Subdistrict,
		&l.Province,
		&l.PopularArea,
		&l.NearBTS,
		&l.NearMRT,
		&l.TransitStation,
		&l.ImageURL,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
}

func statusStrings(in []Status) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func listingTypeStrings(in []ListingType) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = string(t)
	}
	return out
}
