package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// ClientRepository implements domain.ClientRepository using SQLite.
type ClientRepository struct {
	db *sql.DB
}

var _ domain.ClientRepository = (*ClientRepository)(nil)

const clientColumns = `id, person_type, name, email, phone, cnpj, state_registration, cpf,
	 zip, street, number, district, city, state, created_at, updated_at`

func (r *ClientRepository) Create(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (`+clientColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.PersonType), c.Name, c.Email, c.Phone,
		c.CNPJ, c.StateRegistration, c.CPF,
		c.Zip, c.Street, c.Number, c.District, c.City, c.State,
		c.CreatedAt.Format(timeFormat), c.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (domain.Client, error) {
	return scanClient(r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id,
	))
}

func (r *ClientRepository) List(ctx context.Context, filter domain.ClientFilter) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var where []string
	var args []any

	if filter.PersonType != nil {
		where = append(where, `person_type = ?`)
		args = append(args, string(*filter.PersonType))
	}
	if filter.Search != "" {
		where = append(where, `name LIKE ?`)
		args = append(args, "%"+filter.Search+"%")
	}
	for i, w := range where {
		if i == 0 {
			query += ` WHERE ` + w
		} else {
			query += ` AND ` + w
		}
	}

	query += ` ORDER BY name`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClientFromRows(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c domain.Client) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE clients SET person_type = ?, name = ?, email = ?, phone = ?,
		 cnpj = ?, state_registration = ?, cpf = ?,
		 zip = ?, street = ?, number = ?, district = ?, city = ?, state = ?,
		 updated_at = ?
		 WHERE id = ?`,
		string(c.PersonType), c.Name, c.Email, c.Phone,
		c.CNPJ, c.StateRegistration, c.CPF,
		c.Zip, c.Street, c.Number, c.District, c.City, c.State,
		time.Now().UTC().Format(timeFormat), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

func scanClient(row *sql.Row) (domain.Client, error) {
	var c domain.Client
	var personType, createdAt, updatedAt string

	err := row.Scan(&c.ID, &personType, &c.Name, &c.Email, &c.Phone,
		&c.CNPJ, &c.StateRegistration, &c.CPF,
		&c.Zip, &c.Street, &c.Number, &c.District, &c.City, &c.State,
		&createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Client{}, domain.ErrClientNotFound
		}
		return domain.Client{}, fmt.Errorf("scanning client: %w", err)
	}

	c.PersonType = domain.PersonType(personType)
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return c, nil
}

func scanClientFromRows(rows *sql.Rows) (domain.Client, error) {
	var c domain.Client
	var personType, createdAt, updatedAt string

	err := rows.Scan(&c.ID, &personType, &c.Name, &c.Email, &c.Phone,
		&c.CNPJ, &c.StateRegistration, &c.CPF,
		&c.Zip, &c.Street, &c.Number, &c.District, &c.City, &c.State,
		&createdAt, &updatedAt)
	if err != nil {
		return domain.Client{}, fmt.Errorf("scanning client row: %w", err)
	}

	c.PersonType = domain.PersonType(personType)
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return c, nil
}
