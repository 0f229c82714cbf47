package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByLastChecked = "last_checked"
	orderByName        = "name"
	orderByPrice       = "price"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByLastChecked: "last_checked DESC",
	orderByName:        "name ASC",
	orderByPrice:       "price ASC NULLS LAST",
}

const defaultOrderBy = "last_checked DESC"

const baseProductsSelect = `SELECT url, name, retailer, in_stock, price, category, set_name, image_url, last_checked
FROM products`

const countProductsSelect = "SELECT COUNT(*) FROM products"

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for a product
// query. It returns two SQL strings (one for the data query, one for the
// count query) and the positional parameters.
func (q *ProductQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.Retailer != nil {
		conditions = append(conditions, fmt.Sprintf("retailer = $%d", paramIdx))
		args = append(args, *q.Retailer)
		paramIdx++
	}

	if q.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", paramIdx))
		args = append(args, *q.Category)
		paramIdx++
	}

	if q.InStock != nil {
		conditions = append(conditions, fmt.Sprintf("in_stock = $%d", paramIdx))
		args = append(args, *q.InStock)
		paramIdx++
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := defaultOrderBy
	if q.OrderBy != "" {
		if col, ok := validOrderBy[q.OrderBy]; ok {
			orderClause = col
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseProductsSelect, whereClause, orderClause, limit, offset,
	)

	countSQL = countProductsSelect + whereClause

	return dataSQL, countSQL, args
}
