// Package logging provides structured logging for the query pipeline
// built on log/slog, with automatic redaction of consumer PII.
//
// Queries in this system touch complaint narratives, account data and
// regulatory filings, so log output is treated as an exfiltration
// surface: the Redactor scrubs SSNs, account numbers, card numbers,
// emails and phone numbers from log values before they are written, and
// values under sensitive keys (narrative, ssn, account_number) are
// masked wholesale.
//
// A configured Logger is installed as the slog default so that
// component loggers created with slog.Default().With(...) inherit the
// format, level and redaction settings.
package logging
