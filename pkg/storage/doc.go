// Package storage persists the in-progress wizard record on a string
// key-value store. Persistence owns the stored keys:
//
//	formData            JSON object of field -> value
//	formData_timestamp  last save, epoch milliseconds
//	formCompleted       "true" once submitted, absent otherwise
//	formCompleted_date  RFC 3339 completion time
//
// KV implementations are provided for memory, a JSON file, SQLite and Redis.
package storage
