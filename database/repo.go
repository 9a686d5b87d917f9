package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope is a composable query fragment, applied with gorm's Scopes.
type Scope = func(*gorm.DB) *gorm.DB

// Repo is the CRUD core shared by every table repository.
type Repo[T any] struct {
	db       *gorm.DB
	order    string
	preloads []string
}

func NewRepo[T any](db *gorm.DB, order string, preloads ...string) *Repo[T] {
	return &Repo[T]{db: db, order: order, preloads: preloads}
}

func (r *Repo[T]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, p := range r.preloads {
		q = q.Preload(p)
	}
	return q
}

// FindAll returns every row in the repository's default order
func (r *Repo[T]) FindAll(ctx context.Context) ([]T, error) {
	var rows []T
	err := r.query(ctx).Order(r.order).Find(&rows).Error
	return rows, err
}

// Find returns the rows selected by scopes. Ordering is up to the scopes.
func (r *Repo[T]) Find(ctx context.Context, scopes ...Scope) ([]T, error) {
	rows := []T{}
	err := r.query(ctx).Scopes(scopes...).Find(&rows).Error
	return rows, err
}

// Count returns the number of rows selected by scopes
func (r *Repo[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Count(&n).Error
	return n, err
}

// FindByID returns a row by its ID, or gorm.ErrRecordNotFound
func (r *Repo[T]) FindByID(ctx context.Context, id uint, scopes ...Scope) (*T, error) {
	var row T
	err := r.query(ctx).Scopes(scopes...).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Exists reports whether a row with the ID exists
func (r *Repo[T]) Exists(ctx context.Context, id uint) (bool, error) {
	n, err := r.Count(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("id = ?", id) })
	return n > 0, err
}

// Add inserts a new row into the database
func (r *Repo[T]) Add(ctx context.Context, row *T) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// Update saves every column of an existing row. Associations are left alone.
func (r *Repo[T]) Update(ctx context.Context, row *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations, "CreatedAt").Save(row).Error
}

// Delete removes a row by id. Models with a DeletedAt field are soft deleted.
func (r *Repo[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
