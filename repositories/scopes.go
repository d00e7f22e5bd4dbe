package repositories

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"safetravels-api/models"
)

// Sort orders by a column; rows with equal values fall back to id in the
// same direction so pages stay stable.
type Sort struct {
	Column string
	Desc   bool
}

var NewestFirst = Sort{Column: "created_at", Desc: true}

func paginate(page models.PageRequest) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(page.Offset()).Limit(page.Limit)
	}
}

func orderBy(sort Sort) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: sort.Column}, Desc: sort.Desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: sort.Desc})
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern wraps v for a LIKE substring match with wildcards escaped.
func containsPattern(v string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(v)) + "%"
}

// containsFold is a case-insensitive substring match on column.
func containsFold(column, v string) clause.Expression {
	return clause.Expr{
		SQL:  "LOWER(?) LIKE ?",
		Vars: []interface{}{clause.Column{Name: column}, containsPattern(v)},
	}
}

func eq(column string, v interface{}) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: column}, Value: v}
}

func gte(column string, v interface{}) clause.Expression {
	return clause.Gte{Column: clause.Column{Name: column}, Value: v}
}

func lte(column string, v interface{}) clause.Expression {
	return clause.Lte{Column: clause.Column{Name: column}, Value: v}
}
