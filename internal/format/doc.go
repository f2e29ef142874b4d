// Package format holds pure string formatters shared by the CLI presenters.
package format
