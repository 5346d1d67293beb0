package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// CatalogRepository implements domain.CatalogRepository using SQLite.
type CatalogRepository struct {
	db *sql.DB
}

var _ domain.CatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) CreateProduct(ctx context.Context, p domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO products (id, name) VALUES (?, ?)`, p.ID, p.Name,
	); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	for i, name := range p.Subfolders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_subfolders (product_id, position, name) VALUES (?, ?, ?)`,
			p.ID, i, name,
		); err != nil {
			return fmt.Errorf("inserting product subfolder: %w", err)
		}
	}

	return tx.Commit()
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("scanning product: %w", err)
	}

	p.Subfolders, err = r.subfolders(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		products[i].Subfolders, err = r.subfolders(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (r *CatalogRepository) subfolders(ctx context.Context, productID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM product_subfolders WHERE product_id = ? ORDER BY position`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing product subfolders: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning subfolder row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *CatalogRepository) CreateStatus(ctx context.Context, s domain.Status) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO statuses (id, name) VALUES (?, ?)`, s.ID, s.Name,
	); err != nil {
		return fmt.Errorf("inserting status: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetStatus(ctx context.Context, id string) (domain.Status, error) {
	var s domain.Status
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM statuses WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Status{}, domain.ErrStatusNotFound
		}
		return domain.Status{}, fmt.Errorf("scanning status: %w", err)
	}
	return s, nil
}

func (r *CatalogRepository) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM statuses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing statuses: %w", err)
	}
	defer rows.Close()

	var statuses []domain.Status
	for rows.Next() {
		var s domain.Status
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scanning status row: %w", err)
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *CatalogRepository) CreateUser(ctx context.Context, u domain.User) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, full_name, email, is_staff, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.FullName, u.Email, u.IsStaff,
		u.CreatedAt.Format(timeFormat),
	); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, full_name, email, is_staff, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.IsStaff, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("scanning user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return u, nil
}

func (r *CatalogRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, full_name, email, is_staff, created_at
		 FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.IsStaff, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		u.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *CatalogRepository) CreateLawyer(ctx context.Context, l domain.Lawyer) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO lawyers (id, user_id) VALUES (?, ?)`, l.ID, l.UserID,
	); err != nil {
		return fmt.Errorf("inserting lawyer: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetLawyer(ctx context.Context, id string) (domain.Lawyer, error) {
	var l domain.Lawyer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id FROM lawyers WHERE id = ?`, id,
	).Scan(&l.ID, &l.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Lawyer{}, domain.ErrLawyerNotFound
		}
		return domain.Lawyer{}, fmt.Errorf("scanning lawyer: %w", err)
	}
	return l, nil
}

func (r *CatalogRepository) ListLawyers(ctx context.Context) ([]domain.Lawyer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id FROM lawyers`)
	if err != nil {
		return nil, fmt.Errorf("listing lawyers: %w", err)
	}
	defer rows.Close()

	var lawyers []domain.Lawyer
	for rows.Next() {
		var l domain.Lawyer
		if err := rows.Scan(&l.ID, &l.UserID); err != nil {
			return nil, fmt.Errorf("scanning lawyer row: %w", err)
		}
		lawyers = append(lawyers, l)
	}
	return lawyers, rows.Err()
}
