package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrDuplicateReview = errors.New("review already exists for this product")
)

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `id, name, image, category, description, price, count_in_stock, rating`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Image, &p.Category, &p.Description, &p.Price, &p.CountInStock, &p.Rating)
	return p, err
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Recommend returns the ten products closest to the "high rating, low price"
// corner of the rating/price plane.
func (r *Repo) Recommend(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+productColumns+` FROM products
		ORDER BY rating DESC, price ASC
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("select recommended products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(name, image, category, description, price, count_in_stock, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.Name, p.Image, p.Category, p.Description, p.Price, p.CountInStock, p.Rating,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *Repo) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

// GetProductDetail loads a product and its reviews, labelling each review
// with a sentiment score.
func (r *Repo) GetProductDetail(ctx context.Context, id int64) (ProductDetail, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, product_id, name, rating, comment
		FROM reviews WHERE product_id=$1 ORDER BY id`, id)
	if err != nil {
		return ProductDetail{}, fmt.Errorf("select reviews: %w", err)
	}
	defer rows.Close()

	detail := ProductDetail{Product: p, Reviews: []ReviewWithSentiment{}}
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Name, &rv.Rating, &rv.Comment); err != nil {
			return ProductDetail{}, err
		}
		score := Score(rv.Comment)
		detail.Reviews = append(detail.Reviews, ReviewWithSentiment{
			ID:             rv.ID,
			Rating:         rv.Rating,
			Comment:        rv.Comment,
			Sentiment:      Label(score),
			SentimentScore: score,
		})
	}
	return detail, rows.Err()
}

func (r *Repo) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, image=$3, category=$4, description=$5, price=$6, count_in_stock=$7, rating=$8
		WHERE id=$1`,
		p.ID, p.Name, p.Image, p.Category, p.Description, p.Price, p.CountInStock, p.Rating)
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateReview inserts a review and refreshes the product's aggregate rating
// in the same transaction. One review per user per product.
func (r *Repo) CreateReview(ctx context.Context, rv Review) (Review, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Review{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := r.GetProduct(ctx, rv.ProductID); err != nil {
		return Review{}, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO reviews(user_id, product_id, name, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING id`,
		rv.UserID, rv.ProductID, rv.Name, rv.Rating, rv.Comment,
	).Scan(&rv.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, ErrDuplicateReview
	}
	if err != nil {
		return Review{}, fmt.Errorf("insert review: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products
		SET rating = (SELECT COALESCE(AVG(rating), 0)::int FROM reviews WHERE product_id=$1)
		WHERE id=$1`, rv.ProductID); err != nil {
		return Review{}, fmt.Errorf("update product rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Review{}, err
	}
	return rv, nil
}

func (r *Repo) ListReviews(ctx context.Context) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, product_id, name, rating, comment
		FROM reviews ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Name, &rv.Rating, &rv.Comment); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// DecrementStock reduces count_in_stock for the product matching the
// snapshotted line-item name, clamped at zero. The checkout payload carries
// no product id, so the name is the only join key available.
func (r *Repo) DecrementStock(ctx context.Context, name string, qty int) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE products
		SET count_in_stock = GREATEST(count_in_stock - $2, 0)
		WHERE name=$1`, name, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}
