package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/davicafu/hexasalon/internal/notification/domain"
)

const birthDateLayout = "2006-01-02"

// CustomerDirectorySQLite lee la tabla customers. birth_date se guarda como YYYY-MM-DD.
type CustomerDirectorySQLite struct {
	db *sql.DB
}

var _ domain.CustomerDirectory = (*CustomerDirectorySQLite)(nil)

func NewCustomerDirectorySQLite(db *sql.DB) *CustomerDirectorySQLite {
	return &CustomerDirectorySQLite{db: db}
}

// ListBirthdays devuelve los clientes que cumplen el día/mes de 'day'.
// En años no bisiestos los nacidos un 29/02 se saludan el 28/02.
func (d *CustomerDirectorySQLite) ListBirthdays(ctx context.Context, day time.Time) ([]domain.Party, error) {
	monthDays := []interface{}{day.Format("01-02")}
	if day.Month() == time.February && day.Day() == 28 && !isLeap(day.Year()) {
		monthDays = append(monthDays, "02-29")
	}

	query := `SELECT id, name FROM customers WHERE substr(birth_date, 6, 5) IN (?)`
	if len(monthDays) == 2 {
		query = `SELECT id, name FROM customers WHERE substr(birth_date, 6, 5) IN (?, ?)`
	}

	rows, err := d.db.QueryContext(ctx, query+` ORDER BY id`, monthDays...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Party
	for rows.Next() {
		var p domain.Party
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		customers = append(customers, p)
	}
	return customers, rows.Err()
}

// SaveCustomer inserta o reemplaza un cliente.
func (d *CustomerDirectorySQLite) SaveCustomer(ctx context.Context, id, name string, birthDate time.Time) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, birth_date) VALUES (?,?,?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, birth_date = excluded.birth_date`,
		id, name, birthDate.Format(birthDateLayout),
	)
	return err
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
