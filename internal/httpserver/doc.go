// Package httpserver exposes the daemon's health, metrics and manual trigger endpoints.
package httpserver
