/*
Package types defines the records exchanged with the RelayMail dashboard API.

# Records

EmailRecord:
  - One delivery attempt as listed by GET /api/v1/emails
  - Status drives the badge shown next to the row
  - KeyName is nil when the originating key is unknown

MetricsSnapshot:
  - Aggregate counters from GET /api/v1/metrics
  - Rate is a percentage with one decimal

APIKeyRecord:
  - One active key as listed by GET /api/v1/keys
  - KeyToken is already masked by the server
  - CreatedAt and LastUsed are optional

CreatedKey:
  - Response of POST /api/v1/keys, the only place the full secret appears

ActivityEntry:
  - One create, revoke or logout performed from this machine
  - Kept in the local history database, never sent to the backend

# Time Values

The backend emits instants in several shapes depending on the route:
RFC 3339, naive ISO 8601 (treated as UTC) and HTTP dates. Instant accepts
all of them and always marshals back to RFC 3339.

# Identifiers

Key identifiers arrive as JSON numbers from the reference backend but are
opaque to the dashboard. KeyID keeps them as strings.

Backend records are replaced wholesale on every refresh and are never persisted.
*/
package types
