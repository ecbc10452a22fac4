// Package pagination разбирает limit/offset и строит конверт страницы
// {count, next, previous, results}.
package pagination

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

var ErrInvalidParams = errors.New("invalid pagination parameters")

type Params struct {
	Limit  int
	Offset int
}

// Page: тело ответа со страницей результатов.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Parse читает limit и offset из query. Отсутствующий limit равен
// defaultLimit, значения больше maxLimit обрезаются.
func Parse(c *gin.Context, defaultLimit, maxLimit int) (Params, error) {
	p := Params{Limit: defaultLimit}

	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Params{}, ErrInvalidParams
		}
		p.Limit = n
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Params{}, ErrInvalidParams
		}
		p.Offset = n
	}
	return p, nil
}

// NewPage собирает страницу; ссылки next/previous строятся от URL запроса.
func NewPage[T any](c *gin.Context, p Params, total int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: total, Results: results}

	if int64(p.Offset+p.Limit) < total {
		next := pageURL(c, p.Limit, p.Offset+p.Limit)
		page.Next = &next
	}
	if p.Offset > 0 {
		prev := pageURL(c, p.Limit, max(p.Offset-p.Limit, 0))
		page.Previous = &prev
	}
	return page
}

func pageURL(c *gin.Context, limit, offset int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}

	q := c.Request.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
