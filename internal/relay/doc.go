/*
Package relay is the dashboard's client for the RelayMail REST API.

# Endpoints

	GET    /api/v1/emails     list of EmailRecord, empty is valid
	GET    /api/v1/metrics    MetricsSnapshot
	GET    /api/v1/keys       list of APIKeyRecord, empty is valid
	POST   /api/v1/keys       {"name": ...} -> {"key": ...}
	DELETE /api/v1/keys/{id}  best-effort, status unchecked
	GET    /logout            ends the session

# Errors

Every operation returns one of three error types so callers can pick a
recovery with errors.As:

  - TransportError: no response was received
  - ParseError: the body was not the expected JSON
  - RequestRejected: the server answered with a non-2xx status

RevokeKey never returns RequestRejected. No operation retries.
*/
package relay
