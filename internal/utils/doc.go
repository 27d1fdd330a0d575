// Package utils holds process-level plumbing for the command-line front end:
// logger construction and layered application settings.
package utils
