package controllers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"safetravels-api/errs"
	"safetravels-api/models"
	"safetravels-api/repositories"
)

const maxPageLimit = 100

// maxPage keeps (page-1)*limit inside a 32-bit OFFSET.
const maxPage = math.MaxInt32 / maxPageLimit

// queryParser reads typed query parameters and collects a field error for
// every malformed one, so a request reports all of its problems at once.
type queryParser struct {
	c      *gin.Context
	fields []errs.FieldError
}

func newQuery(c *gin.Context) *queryParser {
	return &queryParser{c: c}
}

func (q *queryParser) fail(name, message string) {
	q.fields = append(q.fields, errs.FieldError{Field: name, Message: message})
}

func (q *queryParser) String(name string) string {
	return strings.TrimSpace(q.c.Query(name))
}

func (q *queryParser) Int(name string) *int {
	raw := q.String(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, "must be an integer")
		return nil
	}
	return &v
}

func (q *queryParser) Float(name string) *float64 {
	raw := q.String(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		q.fail(name, "must be a number")
		return nil
	}
	return &v
}

func (q *queryParser) Bool(name string) *bool {
	switch strings.ToLower(q.String(name)) {
	case "":
		return nil
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		q.fail(name, "must be true or false")
		return nil
	}
}

// Page reads page and limit, falling back to page 1 and defaultLimit.
func (q *queryParser) Page(defaultLimit int) models.PageRequest {
	page := models.PageRequest{Page: 1, Limit: defaultLimit}

	if v := q.Int("page"); v != nil {
		if *v < 1 || *v > maxPage {
			q.fail("page", fmt.Sprintf("must be between 1 and %d", maxPage))
		} else {
			page.Page = *v
		}
	}

	if v := q.Int("limit"); v != nil {
		if *v < 1 || *v > maxPageLimit {
			q.fail("limit", fmt.Sprintf("must be between 1 and %d", maxPageLimit))
		} else {
			page.Limit = *v
		}
	}

	return page
}

// Sort reads sortBy and sortOrder against an allow-list of columns. The
// default is newest first.
func (q *queryParser) Sort(columns map[string]string) repositories.Sort {
	sort := repositories.NewestFirst

	if by := q.String("sortBy"); by != "" {
		column, ok := columns[by]
		if !ok {
			q.fail("sortBy", "is not a sortable field")
		} else {
			sort.Column = column
		}
	}

	switch strings.ToLower(q.String("sortOrder")) {
	case "":
	case "asc":
		sort.Desc = false
	case "desc":
		sort.Desc = true
	default:
		q.fail("sortOrder", "must be asc or desc")
	}

	return sort
}

func (q *queryParser) Err() error {
	if len(q.fields) == 0 {
		return nil
	}
	return errs.NewValidation("Invalid query parameters", q.fields)
}

// parseID reads the :id path parameter as a positive integer.
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errs.NewValidation("Invalid ID", []errs.FieldError{{Field: "id", Message: "must be a positive integer"}})
	}
	return uint(id), nil
}
