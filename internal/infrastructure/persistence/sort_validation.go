package persistence

import "strings"

// ValidateSortOrder normalizes a sort direction to ASC or DESC, defaulting
// to DESC so listings show the newest records first.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks a requested sort column against a whitelist.
// Column names reach the ORDER BY clause verbatim, so anything outside the
// whitelist falls back to the default.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	if field := strings.TrimSpace(sortField); allowedFields[field] {
		return field
	}
	return defaultField
}

// Sortable columns per listing endpoint.
var (
	OrganizationSortFields = map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"type":       true,
		"email":      true,
	}

	OrderSortFields = map[string]bool{
		"id":           true,
		"created_at":   true,
		"updated_at":   true,
		"order_number": true,
		"status":       true,
		"start_date":   true,
		"total_value":  true,
	}

	InvoiceSortFields = map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
		"number":     true,
		"status":     true,
		"due_date":   true,
	}
)
