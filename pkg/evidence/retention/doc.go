// Package retention enforces evidence retention policy: age-based and
// count-based pruning, optionally archiving records to JSON before
// deletion, on a cron schedule.
package retention
