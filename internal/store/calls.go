// ABOUTME: Backend call history storage.
// ABOUTME: Inserts and queries one row per request the admin sends to the REST backend.

package store

import (
	"fmt"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Call is one request sent to the backend.
type Call struct {
	ID           int64
	Timestamp    time.Time
	Resource     string
	Method       string
	URL          string
	Path         string
	StatusCode   int // 0 when no response arrived
	DurationMs   int
	Error        string
	RequestBody  string
	ResponseBody string
}

// Failed reports whether the call got no response or a non-2xx status.
func (c *Call) Failed() bool {
	return c.StatusCode < 200 || c.StatusCode > 299
}

// LogCall inserts a call. A zero Timestamp means now.
func (s *Store) LogCall(c *Call) error {
	ts := c.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO backend_calls (timestamp, resource, method, url, path, status_code, duration_ms, error, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ts.UTC().Format(timeLayout), c.Resource, c.Method, c.URL, c.Path, c.StatusCode, c.DurationMs, c.Error, c.RequestBody, c.ResponseBody)
	return err
}

// CallQuery represents filters for the call history
type CallQuery struct {
	Limit      int
	Offset     int
	Resource   string
	Method     string
	PathPrefix string
	StatusCode int
	FailedOnly bool
}

// CallStats represents aggregate statistics
type CallStats struct {
	TotalCalls      int
	TodayCalls      int
	FailedCalls     int
	AvgDurationMs   int
	UniqueEndpoints int
	Resources       int
}

// GetCalls retrieves calls newest first with filtering
func (s *Store) GetCalls(q *CallQuery) ([]*Call, error) {
	query := `SELECT id, timestamp, COALESCE(resource, ''), method, url, path, COALESCE(status_code, 0), COALESCE(duration_ms, 0),
	          COALESCE(error, ''), COALESCE(request_body, ''), COALESCE(response_body, '')
	          FROM backend_calls WHERE 1=1`
	args := []any{}

	if q.Resource != "" {
		query += " AND resource = ?"
		args = append(args, q.Resource)
	}
	if q.Method != "" {
		query += " AND method = ?"
		args = append(args, q.Method)
	}
	if q.PathPrefix != "" {
		query += ` AND path LIKE ? ESCAPE '\'`
		args = append(args, prefixPattern(q.PathPrefix))
	}
	if q.StatusCode > 0 {
		query += " AND status_code = ?"
		args = append(args, q.StatusCode)
	}
	if q.FailedOnly {
		query += " AND (status_code < 200 OR status_code > 299)"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []*Call
	for rows.Next() {
		c := &Call{}
		var timestamp string
		if err := rows.Scan(&c.ID, &timestamp, &c.Resource, &c.Method, &c.URL, &c.Path, &c.StatusCode,
			&c.DurationMs, &c.Error, &c.RequestBody, &c.ResponseBody); err != nil {
			return nil, err
		}
		c.Timestamp, _ = time.Parse(timeLayout, timestamp)
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// GetCallStats returns aggregate statistics
func (s *Store) GetCallStats() (*CallStats, error) {
	stats := &CallStats{}
	today := time.Now().UTC().Format("2006-01-02")

	queries := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.TotalCalls, "SELECT COUNT(*) FROM backend_calls", nil},
		{&stats.TodayCalls, "SELECT COUNT(*) FROM backend_calls WHERE substr(timestamp, 1, 10) = ?", []any{today}},
		{&stats.FailedCalls, "SELECT COUNT(*) FROM backend_calls WHERE status_code < 200 OR status_code > 299", nil},
		{&stats.AvgDurationMs, "SELECT CAST(COALESCE(AVG(duration_ms), 0) AS INTEGER) FROM backend_calls", nil},
		{&stats.UniqueEndpoints, "SELECT COUNT(DISTINCT method || ' ' || path) FROM backend_calls", nil},
		{&stats.Resources, "SELECT COUNT(DISTINCT resource) FROM backend_calls WHERE resource != ''", nil},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query, q.args...).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("call stats: %w", err)
		}
	}

	return stats, nil
}

// Endpoint is one row of GetTopEndpoints
type Endpoint struct {
	Method string
	Path   string
	Count  int
	AvgMs  int
}

// GetTopEndpoints returns the most frequently called endpoints
func (s *Store) GetTopEndpoints(limit int) ([]Endpoint, error) {
	rows, err := s.db.Query(`
		SELECT method, path, COUNT(*) as count, AVG(duration_ms) as avg_ms
		FROM backend_calls
		GROUP BY method, path
		ORDER BY count DESC, path ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []Endpoint
	for rows.Next() {
		var e Endpoint
		var avgMs float64
		if err := rows.Scan(&e.Method, &e.Path, &e.Count, &avgMs); err != nil {
			return nil, err
		}
		e.AvgMs = int(avgMs)
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

// GetResourceCallCount returns the number of calls for a resource since a given time
func (s *Store) GetResourceCallCount(resource string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM backend_calls
		WHERE resource = ? AND timestamp >= ?
	`, resource, since.UTC().Format(timeLayout)).Scan(&count)
	return count, err
}

// GetResourceErrorRate returns the failed call percentage for a resource since a given time
func (s *Store) GetResourceErrorRate(resource string, since time.Time) (float64, error) {
	var totalCount, errorCount int
	from := since.UTC().Format(timeLayout)

	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status_code < 200 OR status_code > 299 THEN 1 ELSE 0 END), 0)
		FROM backend_calls
		WHERE resource = ? AND timestamp >= ?
	`, resource, from).Scan(&totalCount, &errorCount)
	if err != nil {
		return 0, err
	}

	if totalCount == 0 {
		return 0, nil
	}
	return (float64(errorCount) / float64(totalCount)) * 100.0, nil
}

// PruneCalls deletes calls older than before and returns how many were removed
func (s *Store) PruneCalls(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM backend_calls WHERE timestamp < ?`, before.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
