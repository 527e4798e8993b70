// Package api handles incoming HTTP requests: routing-facing handlers,
// request decoding and validation, and response formatting. It translates
// HTTP concerns into calls on the stores and services and maps internal
// errors to safe client-facing responses.
package api
