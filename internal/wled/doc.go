// Package wled talks HTTP to WLED LED controllers.
//
// It covers the three endpoints wledctl needs:
//
//	GET  /cfg.json      device configuration
//	GET  /presets.json  saved presets
//	POST /update        firmware upload (multipart field "file")
//
// Every call performs exactly one request and classifies the outcome with
// Classify:
//
//	transport failure    -> OutcomeTransportError
//	status in [200,300)  -> OutcomeSuccess
//	status >= 400        -> OutcomeServerError
//	anything else        -> OutcomeUnexpectedResponse
//
// Failures carry a *DeviceError with the host and the status code or the
// underlying network error. There are no retries and redirects are not
// followed.
package wled
