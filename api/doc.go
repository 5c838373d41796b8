// Package api is the goSocial GraphQL client.
//
// [Client] sends operations to a single HTTP endpoint, attaching the current
// credential from a [TokenSource] as a bearer token. Each exported method maps to one
// query or mutation of the goSocial schema and decodes only the fields the client
// uses.
//
// Errors are returned as [*OperationError]; use errors.Is with [ErrRemote] for
// errors reported by the server and [ErrTransport] for everything that kept the
// request from completing.
package api
