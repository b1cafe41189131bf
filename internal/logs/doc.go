// Package logs reads the radiocat log file for the `radiocat logs` command.
//
// Last returns the trailing lines of the file together with the byte offset
// they end at; Follow polls from that offset and emits lines as runs append
// them.
package logs
