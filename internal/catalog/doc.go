// Package catalog persists canonical records.
//
// Output is a JSON array indented by two spaces with HTML escaping disabled,
// so URLs containing & stay readable. Files are replaced atomically. Read
// accepts both output shapes and tolerates bitrates written as strings.
package catalog
