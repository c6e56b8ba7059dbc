package repository

import "database/sql"

// requireRow converts a zero-row exec result into sql.ErrNoRows so services
// can map it to NOT_FOUND uniformly.
func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
