package repository

import (
	"fmt"
	"strconv"
	"strings"

	"algoritmia_backend/internal/util"

	"gorm.io/gorm"
)

// Pagination is the common part of every listing request.
type Pagination struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
}

// Normalized fills defaults and clamps the limit.
func (p Pagination) Normalized() Pagination {
	if p.Page < 1 {
		p.Page = util.DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = util.DefaultLimit
	}
	if p.Limit > util.MaxLimit {
		p.Limit = util.MaxLimit
	}
	if strings.EqualFold(p.Order, "desc") {
		p.Order = "desc"
	} else {
		p.Order = "asc"
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// SortColumns maps the sort keys accepted by the API onto columns. The "id"
// key doubles as the tie breaker.
type SortColumns map[string]string

// NumberRange is an inclusive numeric bucket such as "13-17" or "18+".
// A nil bound is open.
type NumberRange struct {
	Min *int
	Max *int
}

func (r NumberRange) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// ParseNumberRange accepts "a-b", "a+", "-b" and "a".
func ParseNumberRange(s string) (NumberRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NumberRange{}, nil
	}

	parse := func(v string) (*int, error) {
		if v == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid range %q", s)
		}
		return &n, nil
	}

	var r NumberRange
	var err error
	switch {
	case strings.HasSuffix(s, "+"):
		r.Min, err = parse(strings.TrimSuffix(s, "+"))
		if err == nil && r.Min == nil {
			err = fmt.Errorf("invalid range %q", s)
		}
	case strings.Contains(s, "-"):
		parts := strings.SplitN(s, "-", 2)
		if r.Min, err = parse(parts[0]); err != nil {
			break
		}
		r.Max, err = parse(parts[1])
	default:
		r.Min, err = parse(s)
		r.Max = r.Min
	}
	if err != nil {
		return NumberRange{}, err
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return NumberRange{}, fmt.Errorf("invalid range %q", s)
	}
	return r, nil
}

// applySearch adds a case-insensitive substring match over columns.
func applySearch(db *gorm.DB, search string, columns ...string) *gorm.DB {
	if search == "" || len(columns) == 0 {
		return db
	}
	term := "%" + strings.ToLower(search) + "%"
	conds := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		conds = append(conds, "LOWER("+col+") LIKE ?")
		args = append(args, term)
	}
	return db.Where("("+strings.Join(conds, " OR ")+")", args...)
}

func applyRange(db *gorm.DB, column string, r NumberRange) *gorm.DB {
	if r.Min != nil {
		db = db.Where(column+" >= ?", *r.Min)
	}
	if r.Max != nil {
		db = db.Where(column+" <= ?", *r.Max)
	}
	return db
}

// applySort orders by the requested key, falling back to fallback for
// unknown keys. Column names only ever come from the whitelist.
func applySort(db *gorm.DB, p Pagination, columns SortColumns, fallback string) *gorm.DB {
	key := p.Sort
	col, ok := columns[key]
	if !ok {
		key = fallback
		col = columns[fallback]
	}
	db = db.Order(col + " " + p.Order)
	if idCol, ok := columns["id"]; ok && key != "id" {
		db = db.Order(idCol + " asc")
	}
	return db
}

// findPage counts the filtered rows and loads one page of them. scopes (for
// preloads) only apply to the page query.
func findPage[T any](db *gorm.DB, p Pagination, columns SortColumns, fallback string, out *[]T, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	base := db.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 || p.Offset() >= int(total) {
		*out = []T{}
		return total, nil
	}

	query := applySort(base, p, columns, fallback).Scopes(scopes...)
	if err := query.Offset(p.Offset()).Limit(p.Limit).Find(out).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// liveUsers keeps soft-deleted users out of a preload even when the parent
// query is unscoped.
func liveUsers(db *gorm.DB) *gorm.DB {
	return db.Where("users.deleted_at IS NULL")
}
