// Package calendar renders stored events as an iCalendar (RFC 5545) feed.
package calendar
